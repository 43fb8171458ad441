package themes

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-livesite/internal/sites"
)

func cloneBundle(bundle *Bundle) *Bundle {
	if bundle == nil {
		return nil
	}
	out := *bundle
	out.Pages = clonePages(bundle.Pages)
	out.Defaults = clonePages(bundle.Defaults)
	out.Fallback = sites.CloneRecords(bundle.Fallback)
	out.PageOrder = append([]string(nil), bundle.PageOrder...)
	out.Branding = sites.CloneMap(bundle.Branding)
	return &out
}

func clonePages(pages map[string][]sites.ComponentRecord) map[string][]sites.ComponentRecord {
	if pages == nil {
		return nil
	}
	out := make(map[string][]sites.ComponentRecord, len(pages))
	for slug, records := range pages {
		out[slug] = sites.CloneRecords(records)
	}
	return out
}

// ValidateBundle checks the bundle metadata and that component ids are
// unique within every page it ships.
func ValidateBundle(bundle *Bundle) error {
	if bundle == nil {
		return ErrBundleInvalid
	}
	if strings.TrimSpace(bundle.Name) == "" {
		return ErrThemeNameRequired
	}
	if strings.TrimSpace(bundle.Version) == "" {
		return ErrThemeVersionRequired
	}
	for _, set := range []map[string][]sites.ComponentRecord{bundle.Pages, bundle.Defaults} {
		for slug, records := range set {
			if err := validateRecords(slug, records); err != nil {
				return err
			}
		}
	}
	return validateRecords("fallback", bundle.Fallback)
}

func validateRecords(slug string, records []sites.ComponentRecord) error {
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			return fmt.Errorf("%w: page %q has a component without id", ErrBundleInvalid, slug)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: page %q repeats component id %q", ErrBundleInvalid, slug, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
