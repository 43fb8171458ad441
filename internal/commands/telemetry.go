package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/themes"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// TelemetryStatus is the outcome category of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks after each execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Diverged reports a theme change that was applied in memory but not persisted.
func (i TelemetryInfo) Diverged() bool {
	return i.Status == TelemetryStatusFailed && errors.Is(i.Error, themes.ErrPersistFailed)
}

// Telemetry is an optional callback invoked after command execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs outcomes with the supplied logger, scoped to the
// tenant named in the message fields. Diverged theme changes log as warnings.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logger
		if tenant, ok := info.Fields["tenant"].(string); ok && tenant != "" {
			entry = logging.WithTenantFields(entry, tenant, nil)
		}
		entry = logging.WithFields(entry, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch {
		case info.Status == TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case info.Diverged():
			entry.Warn("command.execute.diverged", append(args, "error", info.Error)...)
		case info.Status == TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}
