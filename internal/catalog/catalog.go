package catalog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// StaticPage is a page the catalog always lists, whether or not the tenant
// stored components for it.
type StaticPage struct {
	Slug        string `json:"slug" yaml:"slug"`
	DisplayName string `json:"displayName,omitempty" yaml:"display_name"`
}

// DefaultStaticPages lists the detail and intake pages every site carries.
func DefaultStaticPages() []StaticPage {
	return []StaticPage{
		{Slug: "project", DisplayName: "Project"},
		{Slug: "property", DisplayName: "Property"},
		{Slug: "lead-intake", DisplayName: "Lead intake"},
	}
}

// DefaultCannedSEO returns the shipped SEO records for well-known slugs.
func DefaultCannedSEO() map[string]sites.SEORecord {
	return map[string]sites.SEORecord{
		"property": {
			Path:        "/property",
			Title:       "Property details",
			Description: "Photos, pricing and features of this property.",
		},
		"project": {
			Path:        "/project",
			Title:       "Project details",
			Description: "Availability, amenities and progress of this development.",
		},
		"lead-intake": {
			Path:        "/lead-intake",
			Title:       "Contact us",
			Description: "Tell us what you are looking for and an agent will reach out.",
		},
		"about": {
			Path:        "/about",
			Title:       "About us",
			Description: "Meet the team behind the agency.",
		},
	}
}

// DefaultHomepage returns the canned homepage descriptor.
func DefaultHomepage() sites.PageDescriptor {
	return sites.PageDescriptor{
		Slug:        sites.HomepageSlug,
		DisplayName: "Home",
		Path:        "/",
		SEO: sites.SEORecord{
			Path:        "/",
			Title:       "Home",
			Description: "Find your next property with us.",
		},
	}
}

// TemplateSEO builds the generic SEO record used when nothing else matches.
func TemplateSEO(slug, displayName string) sites.SEORecord {
	return sites.SEORecord{
		Path:        sites.PagePath(slug),
		Title:       displayName,
		Description: fmt.Sprintf("%s page", displayName),
	}
}

// Option configures a Builder.
type Option func(*Builder)

// WithStaticPages replaces the mandatory static pages.
func WithStaticPages(pages []StaticPage) Option {
	return func(b *Builder) {
		b.static = append([]StaticPage(nil), pages...)
	}
}

// WithCannedSEO merges canned SEO records keyed by slug.
func WithCannedSEO(records map[string]sites.SEORecord) Option {
	return func(b *Builder) {
		for slug, record := range records {
			b.canned[slug] = sites.CloneSEO(record)
		}
	}
}

// WithHomepage sets the canned homepage descriptor.
func WithHomepage(desc sites.PageDescriptor) Option {
	return func(b *Builder) {
		desc.Slug = sites.HomepageSlug
		if desc.Path == "" {
			desc.Path = "/"
		}
		b.homepage = desc
	}
}

// WithSEOTemplate sets the fallback SEO generator.
func WithSEOTemplate(fn func(slug, displayName string) sites.SEORecord) Option {
	return func(b *Builder) {
		if fn != nil {
			b.template = fn
		}
	}
}

// WithLogger sets the builder logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder derives the navigable page catalog of a tenant. It holds no
// tenant state and is safe for concurrent use.
type Builder struct {
	static   []StaticPage
	canned   map[string]sites.SEORecord
	homepage sites.PageDescriptor
	template func(slug, displayName string) sites.SEORecord
	logger   interfaces.Logger
}

// NewBuilder constructs a builder with the default static pages and canned SEO.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		static:   DefaultStaticPages(),
		canned:   DefaultCannedSEO(),
		homepage: DefaultHomepage(),
		template: TemplateSEO,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// StaticPages returns the mandatory static pages.
func (b *Builder) StaticPages() []StaticPage {
	return append([]StaticPage(nil), b.static...)
}

// Build returns the ordered catalog: stored pages in document order, then
// pending creations, with the homepage first and every static page present
// exactly once. Duplicates keep their first occurrence.
func (b *Builder) Build(snapshot *sites.TenantSnapshot, pending []sites.PageDescriptor) []sites.PageDescriptor {
	var seo []sites.SEORecord
	var slugs []string
	if snapshot != nil {
		seo = snapshot.SiteLayout.Pages
		slugs = snapshot.ComponentSettings.Slugs()
	}

	list := &catalogList{}
	var homepage *sites.PageDescriptor

	for _, slug := range slugs {
		if slug == sites.HomepageSlug {
			continue
		}
		list.add(b.describe(slug, "", seo, false))
	}

	for _, desc := range pending {
		if desc.Slug == sites.HomepageSlug {
			if homepage == nil {
				d := b.complete(desc, seo)
				homepage = &d
			}
			continue
		}
		if list.hasSlug(desc.Slug) {
			b.logger.Debug("catalog.pending.duplicate", "slug", desc.Slug)
			continue
		}
		list.add(b.complete(desc, seo))
	}

	if homepage == nil {
		home := b.homepageDescriptor(seo)
		homepage = &home
	}
	list.entries = append([]sites.PageDescriptor{*homepage}, list.entries...)

	for _, page := range b.static {
		if idx := list.find(page.Slug); idx >= 0 {
			list.entries[idx].IsStatic = true
			continue
		}
		list.add(b.describe(page.Slug, page.DisplayName, seo, true))
	}

	return list.entries
}

func (b *Builder) describe(slug, displayName string, seo []sites.SEORecord, static bool) sites.PageDescriptor {
	if displayName == "" {
		displayName = DisplayName(slug)
	}
	return sites.PageDescriptor{
		Slug:        slug,
		DisplayName: displayName,
		Path:        sites.PagePath(slug),
		IsStatic:    static,
		SEO:         b.resolveSEO(slug, displayName, seo),
	}
}

func (b *Builder) complete(desc sites.PageDescriptor, seo []sites.SEORecord) sites.PageDescriptor {
	if desc.DisplayName == "" {
		desc.DisplayName = DisplayName(desc.Slug)
	}
	if desc.Path == "" {
		desc.Path = sites.PagePath(desc.Slug)
	}
	if desc.SEO.Path == "" && desc.SEO.Title == "" {
		desc.SEO = b.resolveSEO(desc.Slug, desc.DisplayName, seo)
	} else {
		desc.SEO = sites.CloneSEO(desc.SEO)
	}
	return desc
}

func (b *Builder) homepageDescriptor(seo []sites.SEORecord) sites.PageDescriptor {
	home := b.homepage
	home.SEO = sites.CloneSEO(home.SEO)
	if record, ok := FindSEO(seo, sites.HomepageSlug); ok {
		home.SEO = record
	}
	return home
}

func (b *Builder) resolveSEO(slug, displayName string, seo []sites.SEORecord) sites.SEORecord {
	if record, ok := FindSEO(seo, slug); ok {
		return record
	}
	if record, ok := b.canned[slug]; ok {
		return sites.CloneSEO(record)
	}
	return b.template(slug, displayName)
}

// FindSEO returns the first record whose path is "/slug" or "slug". Records
// without a path never match, so the homepage only matches "/".
func FindSEO(records []sites.SEORecord, slug string) (sites.SEORecord, bool) {
	slash := sites.PagePath(slug)
	bare := strings.Trim(slug, "/")
	for _, record := range records {
		path := strings.TrimSpace(record.Path)
		if path == "" {
			continue
		}
		if path == slash || path == bare {
			return sites.CloneSEO(record), true
		}
	}
	return sites.SEORecord{}, false
}

// DisplayName renders a slug for navigation: hyphens and underscores become
// spaces and the first letter is upper-cased.
func DisplayName(slug string) string {
	name := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(strings.Trim(slug, "/")))
	if name == "" {
		return "Home"
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

type catalogList struct {
	entries []sites.PageDescriptor
}

func (l *catalogList) add(desc sites.PageDescriptor) {
	if l.find(desc.Slug) >= 0 || l.findPath(desc.Path) >= 0 {
		return
	}
	l.entries = append(l.entries, desc)
}

func (l *catalogList) hasSlug(slug string) bool {
	return l.find(slug) >= 0
}

// find locates a page by slug or by canonical path.
func (l *catalogList) find(slug string) int {
	for i, entry := range l.entries {
		if entry.Slug == slug {
			return i
		}
	}
	return l.findPath(sites.PagePath(slug))
}

func (l *catalogList) findPath(path string) int {
	if path == "" {
		return -1
	}
	for i, entry := range l.entries {
		if entry.Path == path {
			return i
		}
	}
	return -1
}
