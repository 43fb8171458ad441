package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/logging/console"
)

func TestConsoleLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("livesite.themes").WithContext(
		logging.WithTenant(context.Background(), "acme"),
	)
	logger.Info("theme.apply.success", "theme", "coastal", "pages", 4, "err", errors.New("none at all"))

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z INFO theme.apply.success err="none at all" logger=livesite.themes pages=4 tenant=acme theme=coastal`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelWarn
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("livesite.test")
	logger.Info("dropped")
	logger.Warn("kept", "odd")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "WARN kept field_0=odd") {
		t.Fatalf("unexpected entry %q", lines[0])
	}
}

func TestParseLevel(t *testing.T) {
	if level, ok := console.ParseLevel("warning"); !ok || level != console.LevelWarn {
		t.Fatalf("expected warning alias, got %v %v", level, ok)
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
