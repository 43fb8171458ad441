package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-livesite/pkg/interfaces"
)

func TestNewProviderModuleLogger(t *testing.T) {
	p, err := NewProvider(Config{
		Level:  "debug",
		Format: "console",
		Focus:  []string{" session ", ""},
		Fields: map[string]any{"service": "livesite"},
	})
	require.NoError(t, err)

	logger := p.GetLogger("session")
	require.NotNil(t, logger)
	logger.(interfaces.FieldsLogger).WithFields(map[string]any{"tenant": "acme"}).Debug("session.loaded")
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	_, err := NewProvider(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	assert.NotNil(t, p.GetLogger("themes"))
}

func TestAdapterForwardsFieldsToFieldsLogger(t *testing.T) {
	stub := &fieldsStub{}
	fields := map[string]any{"page": "about"}
	logger := newAdapter(stub).WithFields(fields)
	fields["page"] = "contact"

	logger.Info("component.updated", "id", "hero-1")

	require.Len(t, stub.fields, 1)
	assert.Equal(t, "about", stub.fields[0]["page"])
	assert.Equal(t, []any{"id", "hero-1"}, stub.lastArgs)
}

func TestAdapterAppendsFieldsAsArgs(t *testing.T) {
	stub := &plainStub{}
	logger := newAdapter(stub).
		WithFields(map[string]any{"tenant": "acme", "page": "about"}).(interfaces.FieldsLogger).
		WithFields(map[string]any{"theme": "urban"})

	logger.Warn("theme.persist_failed", "error", "boom")

	assert.Equal(t, "warn", stub.level)
	assert.Equal(t, []any{"error", "boom", "page", "about", "tenant", "acme", "theme", "urban"}, stub.args)
}

func TestAdapterPropagatesContext(t *testing.T) {
	stub := &plainStub{}
	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	newAdapter(stub).WithFields(map[string]any{"tenant": "acme"}).WithContext(ctx).Error("failed")

	require.Len(t, stub.contexts, 1)
	assert.Equal(t, ctx, stub.contexts[0])
	assert.Equal(t, []any{"tenant", "acme"}, stub.args)
}

type plainStub struct {
	level    string
	args     []any
	contexts []context.Context
}

var _ glog.Logger = (*plainStub)(nil)

func (s *plainStub) log(level string, args []any) {
	s.level = level
	s.args = args
}

func (s *plainStub) Trace(_ string, args ...any) { s.log("trace", args) }
func (s *plainStub) Debug(_ string, args ...any) { s.log("debug", args) }
func (s *plainStub) Info(_ string, args ...any)  { s.log("info", args) }
func (s *plainStub) Warn(_ string, args ...any)  { s.log("warn", args) }
func (s *plainStub) Error(_ string, args ...any) { s.log("error", args) }
func (s *plainStub) Fatal(_ string, args ...any) { s.log("fatal", args) }

func (s *plainStub) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

type fieldsStub struct {
	plainStub
	fields   []map[string]any
	lastArgs []any
}

var _ glog.FieldsLogger = (*fieldsStub)(nil)

func (s *fieldsStub) Info(_ string, args ...any) { s.lastArgs = args }

func (s *fieldsStub) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, fields)
	return s
}
