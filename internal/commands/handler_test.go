package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

type testMessage struct{}

func (testMessage) Type() string { return "livesite.test.message" }

func (testMessage) Validate() error { return nil }

type tenantMessage struct {
	Tenant string
}

func (tenantMessage) Type() string { return "livesite.test.tenant" }

func (m tenantMessage) Validate() error {
	return validation.ValidateStruct(&m, validation.Field(&m.Tenant, validation.Required))
}

func TestHandlerOutcomes(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name       string
		ctx        context.Context
		msg        tenantMessage
		exec       func(context.Context) error
		timeout    time.Duration
		wantCalled bool
		category   goerrors.Category
		status     TelemetryStatus
	}{
		{
			name:       "success",
			ctx:        context.Background(),
			msg:        tenantMessage{Tenant: "acme"},
			exec:       func(context.Context) error { return nil },
			wantCalled: true,
			status:     TelemetryStatusSuccess,
		},
		{
			name:     "validation short circuits",
			ctx:      context.Background(),
			exec:     func(context.Context) error { return nil },
			category: goerrors.CategoryValidation,
		},
		{
			name:     "cancelled before run",
			ctx:      cancelled,
			msg:      tenantMessage{Tenant: "acme"},
			exec:     func(context.Context) error { return nil },
			category: goerrors.CategoryCommand,
		},
		{
			name:       "execution failure",
			ctx:        context.Background(),
			msg:        tenantMessage{Tenant: "acme"},
			exec:       func(context.Context) error { return errors.New("boom") },
			wantCalled: true,
			category:   goerrors.CategoryCommand,
			status:     TelemetryStatusFailed,
		},
		{
			name: "timeout",
			ctx:  context.Background(),
			msg:  tenantMessage{Tenant: "acme"},
			exec: func(ctx context.Context) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			},
			timeout:    10 * time.Millisecond,
			wantCalled: true,
			category:   goerrors.CategoryCommand,
			status:     TelemetryStatusContextError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			var status TelemetryStatus
			opts := []HandlerOption[tenantMessage]{
				WithTelemetry(func(_ context.Context, _ tenantMessage, info TelemetryInfo) {
					status = info.Status
				}),
			}
			if tc.timeout > 0 {
				opts = append(opts, WithTimeout[tenantMessage](tc.timeout))
			}
			h := NewHandler(func(ctx context.Context, _ tenantMessage) error {
				called = true
				return tc.exec(ctx)
			}, opts...)

			err := h.Execute(tc.ctx, tc.msg)
			if called != tc.wantCalled {
				t.Fatalf("called = %v, want %v", called, tc.wantCalled)
			}
			if status != tc.status {
				t.Fatalf("telemetry status = %q, want %q", status, tc.status)
			}
			if tc.category == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected %s category, got %v", tc.category, err)
			}
		})
	}
}

func TestHandlerTelemetryReceivesMessageFields(t *testing.T) {
	var info TelemetryInfo
	h := NewHandler(func(context.Context, tenantMessage) error {
		return errors.New("boom")
	},
		WithOperation[tenantMessage]("test.tenant"),
		WithMessageFields(func(msg tenantMessage) map[string]any {
			return map[string]any{"tenant": msg.Tenant}
		}),
		WithTelemetry(func(_ context.Context, _ tenantMessage, got TelemetryInfo) {
			info = got
		}),
	)

	if err := h.Execute(context.Background(), tenantMessage{Tenant: "acme"}); err == nil {
		t.Fatal("expected execution error")
	}
	if info.Fields["tenant"] != "acme" || info.Fields["operation"] != "test.tenant" {
		t.Fatalf("unexpected telemetry fields %v", info.Fields)
	}
	if info.Command != "livesite.test.tenant" {
		t.Fatalf("unexpected command %q", info.Command)
	}
}

func TestWrapSessionErrorIsExternal(t *testing.T) {
	err := wrapSessionError(errors.New("redis down"))
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
	if wrapSessionError(nil) != nil {
		t.Fatal("expected nil passthrough")
	}
}
