package sites

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// PageSettings groups the component records placed on one page.
type PageSettings struct {
	Slug       string
	Components []ComponentRecord
}

// ComponentSettings maps page slugs to their component records while keeping
// the document order of pages. The zero value is an empty mapping.
type ComponentSettings struct {
	pages []PageSettings
}

// NewComponentSettings builds settings from pages, keeping the first entry per slug.
func NewComponentSettings(pages ...PageSettings) ComponentSettings {
	var settings ComponentSettings
	for _, page := range pages {
		if settings.Has(page.Slug) {
			continue
		}
		settings.Set(page.Slug, page.Components)
	}
	return settings
}

// Len returns the number of pages.
func (s ComponentSettings) Len() int {
	return len(s.pages)
}

// Slugs lists page slugs in document order.
func (s ComponentSettings) Slugs() []string {
	out := make([]string, 0, len(s.pages))
	for _, page := range s.pages {
		out = append(out, page.Slug)
	}
	return out
}

// Has reports whether slug has an entry, even an empty one.
func (s ComponentSettings) Has(slug string) bool {
	return s.index(slug) >= 0
}

// Page returns a copy of the component records stored for slug.
func (s ComponentSettings) Page(slug string) ([]ComponentRecord, bool) {
	idx := s.index(slug)
	if idx < 0 {
		return nil, false
	}
	return CloneRecords(s.pages[idx].Components), true
}

// Set replaces the component records of slug, appending the page when new.
func (s *ComponentSettings) Set(slug string, records []ComponentRecord) {
	ordered := SortRecords(CloneRecords(records))
	if idx := s.index(slug); idx >= 0 {
		s.pages[idx].Components = ordered
		return
	}
	s.pages = append(s.pages, PageSettings{Slug: slug, Components: ordered})
}

// Delete removes slug from the mapping.
func (s *ComponentSettings) Delete(slug string) {
	idx := s.index(slug)
	if idx < 0 {
		return
	}
	s.pages = append(s.pages[:idx], s.pages[idx+1:]...)
}

// Clone returns a deep copy.
func (s ComponentSettings) Clone() ComponentSettings {
	if len(s.pages) == 0 {
		return ComponentSettings{}
	}
	out := ComponentSettings{pages: make([]PageSettings, len(s.pages))}
	for i, page := range s.pages {
		out.pages[i] = PageSettings{Slug: page.Slug, Components: CloneRecords(page.Components)}
	}
	return out
}

func (s ComponentSettings) index(slug string) int {
	for i, page := range s.pages {
		if page.Slug == slug {
			return i
		}
	}
	return -1
}

// MarshalJSON renders the settings as slug -> id -> record objects in order.
func (s ComponentSettings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, page := range s.pages {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(page.Slug)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(":{")
		for j, record := range page.Components {
			if j > 0 {
				buf.WriteByte(',')
			}
			id, err := json.Marshal(record.ID)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(record)
			if err != nil {
				return nil, fmt.Errorf("sites: encode component %s/%s: %w", page.Slug, record.ID, err)
			}
			buf.Write(id)
			buf.WriteByte(':')
			buf.Write(payload)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes slug -> id -> record objects, keeping key order.
func (s *ComponentSettings) UnmarshalJSON(data []byte) error {
	s.pages = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return decodeOrderedObject(data, func(slug string, raw json.RawMessage) error {
		var records []ComponentRecord
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			s.pages = append(s.pages, PageSettings{Slug: slug})
			return nil
		}
		err := decodeOrderedObject(raw, func(id string, value json.RawMessage) error {
			var record ComponentRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return fmt.Errorf("sites: decode component %s/%s: %w", slug, id, err)
			}
			if record.ID == "" {
				record.ID = id
			}
			records = append(records, record)
			return nil
		})
		if err != nil {
			return err
		}
		if s.Has(slug) {
			return nil
		}
		s.pages = append(s.pages, PageSettings{Slug: slug, Components: SortRecords(records)})
		return nil
	})
}

// UnmarshalJSON tolerates malformed data payloads by dropping them.
func (r *ComponentRecord) UnmarshalJSON(data []byte) error {
	type plain ComponentRecord
	var wire struct {
		plain
		Data json.RawMessage `json:"data,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = ComponentRecord(wire.plain)
	r.Data = nil
	if len(wire.Data) > 0 {
		var payload map[string]any
		if err := json.Unmarshal(wire.Data, &payload); err == nil {
			r.Data = payload
		}
	}
	return nil
}

func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("sites: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("sites: expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// SortRecords orders records by position, keeping insertion order for ties.
func SortRecords(records []ComponentRecord) []ComponentRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Position < records[j].Position
	})
	return records
}
