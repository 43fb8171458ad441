package themes

import (
	"errors"
	"sort"

	"github.com/goliatone/go-livesite/internal/sites"
)

var (
	ErrBundleRepositoryRequired = errors.New("themes: bundle repository required")
	ErrSnapshotStoreRequired    = errors.New("themes: snapshot store required")
	ErrRegistryRequired         = errors.New("themes: registry required")

	ErrThemeNameRequired    = errors.New("themes: name required")
	ErrThemeVersionRequired = errors.New("themes: version required")
	ErrThemeExists          = errors.New("themes: theme already exists")
	ErrThemeNotFound        = errors.New("themes: theme not found")
	ErrBundleInvalid        = errors.New("themes: bundle invalid")

	ErrTenantKeyRequired = errors.New("themes: tenant key required")
	ErrApplyInProgress   = errors.New("themes: theme operation already in progress")
	ErrPersistFailed     = errors.New("themes: persisting theme failed")
)

// Bundle is a named set of canonical component lists, one per page slug.
type Bundle struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	// Pages holds the canonical components written by an apply.
	Pages map[string][]sites.ComponentRecord `json:"pages"`
	// Defaults holds the components written by a reset. Pages missing here
	// fall back to Pages.
	Defaults map[string][]sites.ComponentRecord `json:"defaults,omitempty"`
	// Fallback is used for tenant pages the bundle does not ship.
	Fallback []sites.ComponentRecord `json:"fallback,omitempty"`
	// PageOrder is the canonical page set provisioned for a brand-new tenant.
	PageOrder []string `json:"pageOrder,omitempty"`
	// ManifestPath points to an optional design manifest directory.
	ManifestPath string         `json:"manifest,omitempty"`
	Branding     map[string]any `json:"branding,omitempty"`
}

// CanonicalPages returns PageOrder, or the shipped page slugs with the
// homepage first and the rest in lexical order.
func (b *Bundle) CanonicalPages() []string {
	if len(b.PageOrder) > 0 {
		return append([]string(nil), b.PageOrder...)
	}
	slugs := make([]string, 0, len(b.Pages))
	for slug := range b.Pages {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool {
		if slugs[i] == sites.HomepageSlug || slugs[j] == sites.HomepageSlug {
			return slugs[i] == sites.HomepageSlug
		}
		return slugs[i] < slugs[j]
	})
	return slugs
}

// Components returns the records mode writes to slug.
func (b *Bundle) Components(mode Mode, slug string) []sites.ComponentRecord {
	if mode == ModeReset {
		if records, ok := b.Defaults[slug]; ok {
			return sites.CloneRecords(records)
		}
	}
	if records, ok := b.Pages[slug]; ok {
		return sites.CloneRecords(records)
	}
	return sites.CloneRecords(b.Fallback)
}

// Mode distinguishes apply from reset operations.
type Mode string

const (
	ModeApply Mode = "apply"
	ModeReset Mode = "reset"
)

// State is the lifecycle state of the theme service.
type State string

const (
	StateIdle     State = "idle"
	StateApplying State = "applying"
	StateFailed   State = "failed"
)

// Result describes a completed theme operation.
type Result struct {
	Theme string   `json:"theme"`
	Mode  Mode     `json:"mode"`
	Pages []string `json:"pages"`
	Guard int64    `json:"guard"`
	// Persisted is false when the backend did not accept the rewritten
	// document; memory still holds the applied theme.
	Persisted bool `json:"persisted"`
}
