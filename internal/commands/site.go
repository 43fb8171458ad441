package commands

import (
	"context"
	"strings"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/session"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// Sessions hands out the session of a tenant.
type Sessions interface {
	Session(ctx context.Context, tenantKey string) (*session.Session, error)
}

// ApplyThemeHandler applies a theme bundle to a tenant session.
type ApplyThemeHandler struct {
	inner *Handler[ApplyThemeCommand]
}

// NewApplyThemeHandler constructs a handler wired to sessions.
func NewApplyThemeHandler(sessions Sessions, logger interfaces.Logger, opts ...HandlerOption[ApplyThemeCommand]) *ApplyThemeHandler {
	if sessions == nil {
		panic(ErrSessionsRequired)
	}
	exec := func(ctx context.Context, msg ApplyThemeCommand) error {
		s, err := sessions.Session(ctx, msg.TenantKey)
		if err != nil {
			return wrapSessionError(err)
		}
		_, err = s.ApplyTheme(ctx, strings.TrimSpace(msg.Theme))
		return err
	}
	handlerOpts := []HandlerOption[ApplyThemeCommand]{
		WithLogger[ApplyThemeCommand](logger),
		WithOperation[ApplyThemeCommand]("themes.apply"),
		WithMessageFields(func(msg ApplyThemeCommand) map[string]any {
			return themeFields(msg.TenantKey, msg.Theme)
		}),
		WithTelemetry(DefaultTelemetry[ApplyThemeCommand](logger)),
	}
	return &ApplyThemeHandler{inner: NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[ApplyThemeCommand].
func (h *ApplyThemeHandler) Execute(ctx context.Context, msg ApplyThemeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ResetThemeHandler resets a tenant session to a theme's defaults.
type ResetThemeHandler struct {
	inner *Handler[ResetThemeCommand]
}

// NewResetThemeHandler constructs a handler wired to sessions.
func NewResetThemeHandler(sessions Sessions, logger interfaces.Logger, opts ...HandlerOption[ResetThemeCommand]) *ResetThemeHandler {
	if sessions == nil {
		panic(ErrSessionsRequired)
	}
	exec := func(ctx context.Context, msg ResetThemeCommand) error {
		s, err := sessions.Session(ctx, msg.TenantKey)
		if err != nil {
			return wrapSessionError(err)
		}
		_, err = s.ResetTheme(ctx, strings.TrimSpace(msg.Theme))
		return err
	}
	handlerOpts := []HandlerOption[ResetThemeCommand]{
		WithLogger[ResetThemeCommand](logger),
		WithOperation[ResetThemeCommand]("themes.reset"),
		WithMessageFields(func(msg ResetThemeCommand) map[string]any {
			return themeFields(msg.TenantKey, msg.Theme)
		}),
		WithTelemetry(DefaultTelemetry[ResetThemeCommand](logger)),
	}
	return &ResetThemeHandler{inner: NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[ResetThemeCommand].
func (h *ResetThemeHandler) Execute(ctx context.Context, msg ResetThemeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CreatePageHandler queues a page creation on a tenant session.
type CreatePageHandler struct {
	inner *Handler[CreatePageCommand]
}

// NewCreatePageHandler constructs a handler wired to sessions.
func NewCreatePageHandler(sessions Sessions, logger interfaces.Logger, opts ...HandlerOption[CreatePageCommand]) *CreatePageHandler {
	if sessions == nil {
		panic(ErrSessionsRequired)
	}
	exec := func(ctx context.Context, msg CreatePageCommand) error {
		s, err := sessions.Session(ctx, msg.TenantKey)
		if err != nil {
			return wrapSessionError(err)
		}
		if _, err := s.CreatePage(ctx, session.CreatePageInput{Title: msg.Title, Slug: msg.Slug}); err != nil {
			return err
		}
		if msg.Save {
			s.RequestSave(ctx)
		}
		return nil
	}
	handlerOpts := []HandlerOption[CreatePageCommand]{
		WithLogger[CreatePageCommand](logger),
		WithOperation[CreatePageCommand]("pages.create"),
		WithMessageFields(func(msg CreatePageCommand) map[string]any {
			fields := map[string]any{"tenant": strings.TrimSpace(msg.TenantKey)}
			if slug := strings.TrimSpace(msg.Slug); slug != "" {
				fields["slug"] = slug
			}
			return fields
		}),
		WithTelemetry(DefaultTelemetry[CreatePageCommand](logger)),
	}
	return &CreatePageHandler{inner: NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[CreatePageCommand].
func (h *CreatePageHandler) Execute(ctx context.Context, msg CreatePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

func themeFields(tenant, theme string) map[string]any {
	return map[string]any{
		"tenant": strings.TrimSpace(tenant),
		"theme":  strings.TrimSpace(theme),
	}
}

// Subscription is a dispatcher registration that can be cancelled.
type Subscription interface {
	Unsubscribe()
}

// Register subscribes the site handlers to the go-command dispatcher and
// returns a function removing them again.
func Register(sessions Sessions, provider interfaces.LoggerProvider) func() {
	logger := CommandLogger(provider, "site")
	subs := []Subscription{
		dispatcher.SubscribeCommand(NewApplyThemeHandler(sessions, logger)),
		dispatcher.SubscribeCommand(NewResetThemeHandler(sessions, logger)),
		dispatcher.SubscribeCommand(NewCreatePageHandler(sessions, logger)),
	}
	logging.WithFields(logger, map[string]any{"handlers": len(subs)}).Debug("commands.registered")
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}
