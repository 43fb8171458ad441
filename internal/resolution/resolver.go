package resolution

import (
	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/metrics"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// Layer names reported in ResolvedConfig.Sources and StaleLayers.
const (
	LayerDefaults  = "defaults"
	LayerSnapshot  = "snapshot"
	LayerRegistry  = "registry"
	LayerOverrides = "overrides"
)

// Layers carries the inputs of one resolution pass. Snapshot must already be
// the record matching (Family, Variant, InstanceID) exactly.
type Layers struct {
	Family     string
	Variant    string
	InstanceID string
	Snapshot   *sites.ComponentRecord
	Registry   *sites.ComponentRecord
	Overrides  map[string]any
}

// ResolvedConfig is the final render configuration of a component instance.
type ResolvedConfig struct {
	Family      string         `json:"family"`
	Variant     string         `json:"variant"`
	InstanceID  string         `json:"instanceId"`
	Schema      string         `json:"schema,omitempty"`
	Data        map[string]any `json:"data"`
	Sources     []string       `json:"sources"`
	StaleLayers []string       `json:"staleLayers,omitempty"`
}

// Content returns the resolved content object, never nil.
func (c ResolvedConfig) Content() map[string]any {
	content, ok := sites.Content(c.Data)
	if !ok {
		return map[string]any{}
	}
	return content
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(r *Resolver) {
		if recorder != nil {
			r.metrics = recorder
		}
	}
}

// Resolver merges defaults, snapshot, registry and overrides into one
// configuration. It reads its inputs only and never fails.
type Resolver struct {
	defs    *Definitions
	logger  interfaces.Logger
	metrics metrics.Recorder
}

// NewResolver constructs a resolver over defs. A nil defs resolves every
// family to empty defaults.
func NewResolver(defs *Definitions, opts ...Option) *Resolver {
	r := &Resolver{
		defs:    defs,
		logger:  logging.NoOp(),
		metrics: metrics.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Definitions exposes the family definitions used by the resolver.
func (r *Resolver) Definitions() *Definitions {
	return r.defs
}

// Resolve computes the configuration of one component instance. Top-level
// fields overlay per key while the content object merges field by field
// across every layer.
func (r *Resolver) Resolve(layers Layers) ResolvedConfig {
	family, known := r.defs.entry(layers.Family)
	variant := layers.Variant
	if known {
		variant = family.variant(variant)
	}

	data := r.defs.Defaults(layers.Family, variant)
	content, _ := splitPayload(data)
	out := ResolvedConfig{
		Family:     layers.Family,
		Variant:    variant,
		InstanceID: layers.InstanceID,
		Schema:     r.defs.CurrentTag(layers.Family, variant),
		Sources:    []string{LayerDefaults},
	}

	stored := []struct {
		name   string
		record *sites.ComponentRecord
	}{
		{LayerSnapshot, layers.Snapshot},
		{LayerRegistry, layers.Registry},
	}
	for _, layer := range stored {
		payload, layerContent, ok := r.usable(layer.name, layers, layer.record)
		if !ok {
			continue
		}
		if known {
			if retired, stale := family.staleBy(layer.record, layerContent, variant); stale {
				r.logger.Debug("resolution.layer.stale",
					"layer", layer.name, "family", layers.Family, "instance", layers.InstanceID, "retired_variant", retired)
				r.metrics.StaleContent(layer.name)
				out.StaleLayers = append(out.StaleLayers, layer.name)
				payload = withoutContent(payload)
				layerContent = nil
			}
			if err := family.validate(payload); err != nil {
				r.logger.Debug("resolution.layer.invalid",
					"layer", layer.name, "family", layers.Family, "instance", layers.InstanceID, "error", err)
				continue
			}
		}
		overlayFields(data, payload)
		content = mergeContent(content, layerContent)
		out.Sources = append(out.Sources, layer.name)
	}

	if len(layers.Overrides) > 0 {
		if overrideContent, ok := splitPayload(layers.Overrides); ok {
			overlayFields(data, layers.Overrides)
			content = mergeContent(content, overrideContent)
			out.Sources = append(out.Sources, LayerOverrides)
		} else {
			r.logger.Debug("resolution.layer.malformed", "layer", LayerOverrides, "family", layers.Family, "instance", layers.InstanceID)
		}
	}

	if content == nil {
		content = map[string]any{}
	}
	data[sites.ContentKey] = content
	out.Data = data
	return out
}

func (r *Resolver) usable(name string, layers Layers, record *sites.ComponentRecord) (map[string]any, map[string]any, bool) {
	if record == nil || record.Data == nil {
		return nil, nil, false
	}
	if record.Family != "" && record.Family != layers.Family {
		r.logger.Debug("resolution.layer.family_mismatch", "layer", name, "family", layers.Family, "record_family", record.Family)
		return nil, nil, false
	}
	if layers.InstanceID != "" && record.ID != "" && record.ID != layers.InstanceID {
		return nil, nil, false
	}
	content, ok := splitPayload(record.Data)
	if !ok {
		r.logger.Debug("resolution.layer.malformed", "layer", name, "family", layers.Family, "instance", layers.InstanceID)
		return nil, nil, false
	}
	return record.Data, content, true
}

func withoutContent(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		if key == sites.ContentKey {
			continue
		}
		out[key] = value
	}
	return out
}

// FindSnapshotRecord scans the snapshot for the record matching the exact
// (family, variant, id) triple. A non-nil page restricts the scan to that page.
func FindSnapshotRecord(snapshot *sites.TenantSnapshot, page *string, family, variant, id string) (*sites.ComponentRecord, bool) {
	if snapshot == nil {
		return nil, false
	}
	slugs := snapshot.ComponentSettings.Slugs()
	if page != nil {
		slugs = []string{*page}
	}
	for _, slug := range slugs {
		records, ok := snapshot.ComponentSettings.Page(slug)
		if !ok {
			continue
		}
		for i := range records {
			record := records[i]
			if record.ID == id && record.Family == family && record.Variant == variant {
				return &record, true
			}
		}
	}
	return nil, false
}
