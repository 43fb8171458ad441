package resolution

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-livesite/internal/sites"
)

var (
	ErrFamilyNameRequired = errors.New("resolution: family name required")
	ErrFamilyDefaults     = errors.New("resolution: family defaults must carry a content object")
	ErrFamilySchema       = errors.New("resolution: family schema invalid")
)

// VariantDefinition describes one live preset of a family.
type VariantDefinition struct {
	Defaults      map[string]any
	SchemaVersion string
}

// RetiredVariant records a preset that is no longer shipped. Content is the
// default content it used to ship, kept to recognise untagged legacy records.
// An empty SchemaVersion retires every version of the variant.
type RetiredVariant struct {
	Variant       string
	SchemaVersion string
	Content       map[string]any
}

// FamilyDefinition is the built-in configuration of a component family.
type FamilyDefinition struct {
	Name           string
	DefaultVariant string
	Defaults       map[string]any
	Variants       map[string]VariantDefinition
	Retired        []RetiredVariant
	Schema         map[string]any
}

type compiledFamily struct {
	def    FamilyDefinition
	schema *jsonschema.Schema
}

// Definitions stores family definitions keyed by name. It is safe for
// concurrent use.
type Definitions struct {
	mu       sync.RWMutex
	families map[string]compiledFamily
}

// NewDefinitions constructs a registry holding defs.
func NewDefinitions(defs ...FamilyDefinition) (*Definitions, error) {
	d := &Definitions{families: make(map[string]compiledFamily)}
	for _, def := range defs {
		if err := d.Register(def); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Register validates and stores def, replacing an existing family with the same name.
func (d *Definitions) Register(def FamilyDefinition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return ErrFamilyNameRequired
	}
	if def.Defaults == nil {
		def.Defaults = map[string]any{sites.ContentKey: map[string]any{}}
	}
	if _, ok := sites.Content(def.Defaults); !ok {
		return fmt.Errorf("%w: %s", ErrFamilyDefaults, def.Name)
	}

	entry := compiledFamily{def: cloneDefinition(def)}
	if def.Schema != nil {
		compiled, err := compileSchema(def.Schema)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFamilySchema, def.Name, err)
		}
		entry.schema = compiled
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.families == nil {
		d.families = make(map[string]compiledFamily)
	}
	d.families[def.Name] = entry
	return nil
}

// Lookup returns a copy of the named family definition.
func (d *Definitions) Lookup(name string) (FamilyDefinition, bool) {
	entry, ok := d.entry(name)
	if !ok {
		return FamilyDefinition{}, false
	}
	return cloneDefinition(entry.def), true
}

// Families lists registered family names in lexical order.
func (d *Definitions) Families() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.families))
	for name := range d.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentTag returns the schema tag new records of family/variant carry.
func (d *Definitions) CurrentTag(family, variant string) string {
	entry, ok := d.entry(family)
	if !ok {
		return ""
	}
	if variant == "" {
		variant = entry.def.DefaultVariant
	}
	if variant == "" {
		return ""
	}
	return NewSchemaTag(family, variant, entry.def.Variants[variant].SchemaVersion).String()
}

// Defaults returns the family defaults overlaid with the variant defaults.
// Unknown families yield an empty payload with an empty content object.
func (d *Definitions) Defaults(family, variant string) map[string]any {
	entry, ok := d.entry(family)
	if !ok {
		return map[string]any{sites.ContentKey: map[string]any{}}
	}
	return entry.defaults(variant)
}

func (d *Definitions) entry(name string) (compiledFamily, bool) {
	if d == nil {
		return compiledFamily{}, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.families[strings.TrimSpace(name)]
	return entry, ok
}

func (c compiledFamily) variant(name string) string {
	if name == "" {
		return c.def.DefaultVariant
	}
	return name
}

func (c compiledFamily) defaults(variant string) map[string]any {
	payload := sites.CloneMap(c.def.Defaults)
	content, _ := splitPayload(payload)
	if def, ok := c.def.Variants[c.variant(variant)]; ok && def.Defaults != nil {
		overlayFields(payload, def.Defaults)
		if extra, ok := splitPayload(def.Defaults); ok {
			content = mergeContent(content, extra)
		}
	}
	if content == nil {
		content = map[string]any{}
	}
	payload[sites.ContentKey] = content
	return payload
}

// validate reports whether payload satisfies the family schema.
func (c compiledFamily) validate(payload map[string]any) error {
	if c.schema == nil {
		return nil
	}
	normalized, err := normalizePayload(payload)
	if err != nil {
		return err
	}
	return c.schema.Validate(normalized)
}

// staleBy reports the retired variant a record's content belongs to. Tagged
// records are judged by their tag alone; untagged records fall back to
// comparing their content with retired default content.
func (c compiledFamily) staleBy(record *sites.ComponentRecord, content map[string]any, resolving string) (string, bool) {
	if strings.TrimSpace(record.Schema) != "" {
		tag, err := ParseSchemaTag(record.Schema)
		if err != nil {
			return "", false
		}
		for _, retired := range c.def.Retired {
			if retired.Variant == resolving {
				continue
			}
			if tag.Matches(c.def.Name, retired.Variant, retired.SchemaVersion) {
				return retired.Variant, true
			}
		}
		return "", false
	}
	if len(content) == 0 {
		return "", false
	}
	for _, retired := range c.def.Retired {
		if retired.Variant == resolving || len(retired.Content) == 0 {
			continue
		}
		if sites.EqualPayload(content, retired.Content) {
			return retired.Variant, true
		}
	}
	return "", false
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// normalizePayload round-trips payload through JSON so the validator only
// sees JSON-native values.
func normalizePayload(payload map[string]any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneDefinition(def FamilyDefinition) FamilyDefinition {
	out := def
	out.Defaults = sites.CloneMap(def.Defaults)
	out.Schema = sites.CloneMap(def.Schema)
	if def.Variants != nil {
		out.Variants = make(map[string]VariantDefinition, len(def.Variants))
		for name, variant := range def.Variants {
			out.Variants[name] = VariantDefinition{
				Defaults:      sites.CloneMap(variant.Defaults),
				SchemaVersion: variant.SchemaVersion,
			}
		}
	}
	if def.Retired != nil {
		out.Retired = make([]RetiredVariant, len(def.Retired))
		for i, retired := range def.Retired {
			out.Retired[i] = RetiredVariant{
				Variant:       retired.Variant,
				SchemaVersion: retired.SchemaVersion,
				Content:       sites.CloneMap(retired.Content),
			}
		}
	}
	return out
}
