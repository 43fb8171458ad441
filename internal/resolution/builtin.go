package resolution

// BuiltinFamilies returns the component families shipped with the editor.
func BuiltinFamilies() []FamilyDefinition {
	return []FamilyDefinition{
		{
			Name:           "hero",
			DefaultVariant: "split",
			Defaults: map[string]any{
				"layout": "full",
				"content": map[string]any{
					"title":       "Find your next home",
					"description": "Browse listings curated by our agents.",
					"cta":         map[string]any{"label": "View properties", "href": "/property"},
				},
			},
			Variants: map[string]VariantDefinition{
				"split": {
					SchemaVersion: "v2.0.0",
					Defaults:      map[string]any{"content": map[string]any{"imagePosition": "right"}},
				},
				"centered": {
					SchemaVersion: "v1.0.0",
					Defaults:      map[string]any{"layout": "narrow"},
				},
			},
			Retired: []RetiredVariant{
				{
					Variant:       "classic",
					SchemaVersion: "v1.0.0",
					Content: map[string]any{
						"title":       "Welcome to our agency",
						"description": "Your trusted real estate partner.",
					},
				},
			},
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"layout": map[string]any{"type": "string"},
					"content": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":       map[string]any{"type": "string"},
							"description": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
		{
			Name:           "property_grid",
			DefaultVariant: "cards",
			Defaults: map[string]any{
				"pageSize": 9,
				"content": map[string]any{
					"title":      "Featured properties",
					"emptyState": "No properties match your search yet.",
				},
			},
			Variants: map[string]VariantDefinition{
				"cards": {SchemaVersion: "v1.0.0"},
				"list":  {SchemaVersion: "v1.0.0", Defaults: map[string]any{"pageSize": 20}},
			},
		},
		{
			Name:           "lead_form",
			DefaultVariant: "inline",
			Defaults: map[string]any{
				"content": map[string]any{
					"title":         "Talk to an agent",
					"submitLabel":   "Send",
					"successNotice": "Thanks, we will be in touch shortly.",
				},
			},
			Variants: map[string]VariantDefinition{
				"inline": {SchemaVersion: "v1.0.0"},
				"modal":  {SchemaVersion: "v1.0.0"},
			},
		},
		{
			Name:           "cta",
			DefaultVariant: "banner",
			Defaults: map[string]any{
				"content": map[string]any{
					"title": "Ready to move?",
					"label": "Book a visit",
					"href":  "/lead-intake",
				},
			},
			Variants: map[string]VariantDefinition{
				"banner": {SchemaVersion: "v1.0.0"},
			},
		},
	}
}
