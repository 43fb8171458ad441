package sites

import (
	"bytes"
	"encoding/json"
)

// CloneRecord returns a deep copy of record.
func CloneRecord(record ComponentRecord) ComponentRecord {
	out := record
	out.Data = CloneMap(record.Data)
	return out
}

// CloneRecords returns a deep copy of records.
func CloneRecords(records []ComponentRecord) []ComponentRecord {
	if records == nil {
		return nil
	}
	out := make([]ComponentRecord, len(records))
	for i, record := range records {
		out[i] = CloneRecord(record)
	}
	return out
}

// CloneMap deep copies nested maps and slices.
func CloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep copies map and slice values, returning scalars as-is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

// CloneSnapshot returns a deep copy of snapshot.
func CloneSnapshot(snapshot *TenantSnapshot) *TenantSnapshot {
	if snapshot == nil {
		return nil
	}
	out := *snapshot
	out.ComponentSettings = snapshot.ComponentSettings.Clone()
	out.SiteLayout = CloneLayout(snapshot.SiteLayout)
	if snapshot.Revisions != nil {
		out.Revisions = make(map[string]uint64, len(snapshot.Revisions))
		for slug, rev := range snapshot.Revisions {
			out.Revisions[slug] = rev
		}
	}
	return &out
}

// CloneLayout returns a deep copy of layout.
func CloneLayout(layout SiteLayout) SiteLayout {
	out := layout
	out.Branding = CloneMap(layout.Branding)
	if layout.Pages != nil {
		out.Pages = make([]SEORecord, len(layout.Pages))
		for i, record := range layout.Pages {
			out.Pages[i] = CloneSEO(record)
		}
	}
	return out
}

// CloneSEO returns a deep copy of record.
func CloneSEO(record SEORecord) SEORecord {
	out := record
	if record.Keywords != nil {
		out.Keywords = append([]string(nil), record.Keywords...)
	}
	return out
}

// EqualPayload compares two payloads by their canonical JSON encoding so
// values decoded from documents match values declared in code.
func EqualPayload(a, b map[string]any) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
