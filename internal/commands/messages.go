package commands

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	applyThemeMessageType = "livesite.themes.apply"
	resetThemeMessageType = "livesite.themes.reset"
	createPageMessageType = "livesite.pages.create"
)

// ApplyThemeCommand rewrites every page of a tenant to a theme bundle.
type ApplyThemeCommand struct {
	TenantKey string `json:"tenant"`
	Theme     string `json:"theme"`
}

// Type implements command.Message.
func (ApplyThemeCommand) Type() string { return applyThemeMessageType }

// Validate ensures tenant and theme are present.
func (m ApplyThemeCommand) Validate() error {
	return validateThemeMessage(applyThemeMessageType, m.TenantKey, m.Theme)
}

// ResetThemeCommand rewrites every page of a tenant to a theme's defaults.
type ResetThemeCommand struct {
	TenantKey string `json:"tenant"`
	Theme     string `json:"theme"`
}

// Type implements command.Message.
func (ResetThemeCommand) Type() string { return resetThemeMessageType }

// Validate ensures tenant and theme are present.
func (m ResetThemeCommand) Validate() error {
	return validateThemeMessage(resetThemeMessageType, m.TenantKey, m.Theme)
}

func validateThemeMessage(prefix, tenant, theme string) error {
	errs := validation.Errors{}
	if strings.TrimSpace(tenant) == "" {
		errs["tenant"] = validation.NewError(prefix+".tenant_required", "tenant is required")
	}
	if strings.TrimSpace(theme) == "" {
		errs["theme"] = validation.NewError(prefix+".theme_required", "theme is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreatePageCommand creates a page in the editor and optionally saves the
// tenant document right away.
type CreatePageCommand struct {
	TenantKey string `json:"tenant"`
	Title     string `json:"title"`
	Slug      string `json:"slug,omitempty"`
	Save      bool   `json:"save,omitempty"`
}

// Type implements command.Message.
func (CreatePageCommand) Type() string { return createPageMessageType }

// Validate ensures the tenant and one of title or slug are present.
func (m CreatePageCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.TenantKey, validation.Required),
		validation.Field(&m.Title, validation.When(strings.TrimSpace(m.Slug) == "", validation.Required), validation.Length(0, 120)),
		validation.Field(&m.Slug, validation.Length(0, 120)),
	)
}
