package registry

import (
	"github.com/goliatone/go-livesite/internal/sites"
)

// SkipReason explains why Seed left a page untouched.
type SkipReason string

const (
	// SkipThemeGuard marks pages protected by a recent theme rewrite.
	SkipThemeGuard SkipReason = "theme_guard"
	// SkipNotNewer marks pages whose snapshot revision is not newer than the local one.
	SkipNotNewer SkipReason = "not_newer"
	// SkipInvalid marks snapshot pages carrying duplicate or empty instance ids.
	SkipInvalid SkipReason = "invalid"
)

// SeedReport summarises a Seed pass.
type SeedReport struct {
	Applied []string
	Skipped map[string]SkipReason
}

// Seed repopulates the registry from a snapshot. A snapshot page is applied
// when the registry does not know the page yet or the snapshot revision is
// newer than the local one. While the theme guard is set, pages that already
// hold components are never overwritten.
func (r *Registry) Seed(snapshot *sites.TenantSnapshot) SeedReport {
	report := SeedReport{Skipped: map[string]SkipReason{}}
	if snapshot == nil {
		return report
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, slug := range snapshot.ComponentSettings.Slugs() {
		records, _ := snapshot.ComponentSettings.Page(slug)
		remote := snapshot.Revision(slug)
		local := r.find(slug)

		switch {
		case local != nil && r.guard > 0 && len(local.records) > 0:
			report.Skipped[slug] = SkipThemeGuard
		case local != nil && remote <= local.revision && !(local.revision == 0 && len(local.records) == 0):
			report.Skipped[slug] = SkipNotNewer
		case validateUnique(records) != nil:
			report.Skipped[slug] = SkipInvalid
		default:
			p := r.ensurePage(slug)
			p.records = records
			p.revision = remote
			report.Applied = append(report.Applied, slug)
			continue
		}
		r.metrics.SeedSkipped(string(report.Skipped[slug]))
	}

	r.logger.Debug("registry.seed", "applied", len(report.Applied), "skipped", len(report.Skipped))
	return report
}
