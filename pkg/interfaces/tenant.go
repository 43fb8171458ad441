package interfaces

import (
	"context"

	"github.com/goliatone/go-livesite/internal/sites"
)

// TenantFetcher loads the persisted site document of a tenant.
type TenantFetcher interface {
	FetchTenant(ctx context.Context, tenantKey string) (*sites.TenantSnapshot, error)
}

// SaveReason describes why a save was requested.
type SaveReason string

const (
	SaveReasonEdit       SaveReason = "edit"
	SaveReasonThemeApply SaveReason = "theme_apply"
	SaveReasonThemeReset SaveReason = "theme_reset"
)

// SaveRequest carries the full tenant document to persist.
type SaveRequest struct {
	TenantKey string
	Snapshot  *sites.TenantSnapshot
	Reason    SaveReason
}

// SaveCoordinator persists tenant documents on behalf of the editor.
type SaveCoordinator interface {
	RequestSave(ctx context.Context, req SaveRequest) error
}

// NoticeKind classifies user facing notifications.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notifier delivers toast style messages to the user.
type Notifier interface {
	Notify(ctx context.Context, message string, kind NoticeKind)
}
