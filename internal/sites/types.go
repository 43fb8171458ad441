package sites

import (
	"strings"
	"time"
)

// HomepageSlug is the reserved slug of the site homepage.
const HomepageSlug = ""

// ContentKey names the user-visible content sub-object inside a component payload.
const ContentKey = "content"

// ComponentRecord is one placed component instance on a page.
type ComponentRecord struct {
	ID       string         `json:"id"`
	Family   string         `json:"familyType"`
	Variant  string         `json:"variantName"`
	Data     map[string]any `json:"data,omitempty"`
	Position int            `json:"position"`
	Layout   string         `json:"layoutHint,omitempty"`
	// Schema carries the payload schema tag, e.g. "hero.split@v2.0.0".
	// Records persisted before tagging was introduced leave it empty.
	Schema string `json:"schema,omitempty"`
}

// SEORecord holds the search metadata published for a page path.
type SEORecord struct {
	Path        string   `json:"path"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// SiteLayout aggregates site-wide metadata owned by the tenant.
type SiteLayout struct {
	Branding     map[string]any `json:"branding,omitempty"`
	Pages        []SEORecord    `json:"pages,omitempty"`
	CurrentTheme string         `json:"currentTheme,omitempty"`
}

// TenantSnapshot is the last known server state of a tenant site.
type TenantSnapshot struct {
	TenantKey         string            `json:"tenant"`
	ComponentSettings ComponentSettings `json:"componentSettings"`
	SiteLayout        SiteLayout        `json:"siteLayout"`
	// Revisions tracks the per-page monotonic revision counter. Missing pages are at revision 0.
	Revisions map[string]uint64 `json:"revisions,omitempty"`
	FetchedAt time.Time         `json:"-"`
}

// PageDescriptor is one navigable page entry of the catalog.
type PageDescriptor struct {
	Slug        string    `json:"slug"`
	DisplayName string    `json:"displayName"`
	Path        string    `json:"path"`
	IsStatic    bool      `json:"isStatic"`
	SEO         SEORecord `json:"seo"`
}

// Revision returns the stored revision for the page slug.
func (s *TenantSnapshot) Revision(slug string) uint64 {
	if s == nil || s.Revisions == nil {
		return 0
	}
	return s.Revisions[slug]
}

// SetRevision records the revision for a page slug.
func (s *TenantSnapshot) SetRevision(slug string, revision uint64) {
	if s == nil {
		return
	}
	if s.Revisions == nil {
		s.Revisions = make(map[string]uint64)
	}
	s.Revisions[slug] = revision
}

// HasPage reports whether the snapshot carries component settings for slug.
func (s *TenantSnapshot) HasPage(slug string) bool {
	if s == nil {
		return false
	}
	return s.ComponentSettings.Has(slug)
}

// PagePath renders the canonical path of a page slug.
func PagePath(slug string) string {
	trimmed := strings.Trim(strings.TrimSpace(slug), "/")
	return "/" + trimmed
}

// Content returns the content sub-object of a payload when it is well formed.
func Content(data map[string]any) (map[string]any, bool) {
	if data == nil {
		return nil, false
	}
	content, ok := data[ContentKey].(map[string]any)
	return content, ok
}
