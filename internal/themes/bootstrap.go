package themes

import (
	"context"
	"errors"

	"github.com/goliatone/go-livesite/internal/sites"
)

// Bootstrap registers bundles in repo, updating the ones already present.
func Bootstrap(ctx context.Context, repo BundleRepository, bundles []*Bundle) error {
	if repo == nil {
		return ErrBundleRepositoryRequired
	}
	for _, bundle := range bundles {
		if err := ValidateBundle(bundle); err != nil {
			return err
		}
		if _, err := repo.Create(ctx, bundle); err != nil {
			if !errors.Is(err, ErrThemeExists) {
				return err
			}
			if _, err := repo.Update(ctx, bundle); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuiltinBundles returns the themes shipped with the editor.
func BuiltinBundles() []*Bundle {
	return []*Bundle{
		{
			Name:        "coastal",
			Version:     "1.0.0",
			Description: "Airy layout with large photography for seaside agencies.",
			PageOrder:   []string{sites.HomepageSlug, "about", "property"},
			Branding:    map[string]any{"primaryColor": "#0e7490", "font": "Lora"},
			Pages: map[string][]sites.ComponentRecord{
				sites.HomepageSlug: {
					heroRecord("coastal-hero", "split", "Live by the sea", 0),
					{ID: "coastal-grid", Family: "property_grid", Variant: "cards", Position: 1, Schema: "property_grid.cards@v1.0.0",
						Data: map[string]any{"content": map[string]any{"title": "Waterfront listings"}}},
					{ID: "coastal-cta", Family: "cta", Variant: "banner", Position: 2, Schema: "cta.banner@v1.0.0",
						Data: map[string]any{"content": map[string]any{"title": "Find your beach house"}}},
				},
				"about": {
					heroRecord("coastal-about-hero", "centered", "Our story", 0),
				},
				"property": {
					{ID: "coastal-property-form", Family: "lead_form", Variant: "inline", Schema: "lead_form.inline@v1.0.0",
						Data: map[string]any{"content": map[string]any{"title": "Ask about this home"}}},
				},
			},
			Defaults: map[string][]sites.ComponentRecord{
				sites.HomepageSlug: {
					heroRecord("coastal-hero", "split", "Welcome home", 0),
				},
			},
			Fallback: []sites.ComponentRecord{
				heroRecord("coastal-page-hero", "centered", "", 0),
			},
		},
		{
			Name:        "urban",
			Version:     "1.0.0",
			Description: "Dense grid layout for city brokers.",
			PageOrder:   []string{sites.HomepageSlug, "listings"},
			Branding:    map[string]any{"primaryColor": "#111827", "font": "Inter"},
			Pages: map[string][]sites.ComponentRecord{
				sites.HomepageSlug: {
					heroRecord("urban-hero", "centered", "City living", 0),
					{ID: "urban-grid", Family: "property_grid", Variant: "list", Position: 1, Schema: "property_grid.list@v1.0.0",
						Data: map[string]any{"content": map[string]any{"title": "Latest apartments"}}},
				},
				"listings": {
					{ID: "urban-listings", Family: "property_grid", Variant: "list", Schema: "property_grid.list@v1.0.0",
						Data: map[string]any{"pageSize": 30}},
				},
			},
			Fallback: []sites.ComponentRecord{
				heroRecord("urban-page-hero", "centered", "", 0),
			},
		},
	}
}

func heroRecord(id, variant, title string, position int) sites.ComponentRecord {
	record := sites.ComponentRecord{
		ID:       id,
		Family:   "hero",
		Variant:  variant,
		Position: position,
		Data:     map[string]any{},
	}
	switch variant {
	case "split":
		record.Schema = "hero.split@v2.0.0"
	default:
		record.Schema = "hero." + variant + "@v1.0.0"
	}
	if title != "" {
		record.Data["content"] = map[string]any{"title": title}
	}
	return record
}
