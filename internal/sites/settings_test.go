package sites

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestComponentSettingsPreservesDocumentOrder(t *testing.T) {
	doc := []byte(`{
		"zeta": {"b": {"familyType": "hero", "variantName": "split", "position": 2}, "a": {"familyType": "cta", "position": 1}},
		"": {"hero-1": {"familyType": "hero", "variantName": "split", "data": {"content": {"title": "Home"}}}},
		"alpha": {}
	}`)

	var settings ComponentSettings
	if err := json.Unmarshal(doc, &settings); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, want := settings.Slugs(), []string{"zeta", "", "alpha"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("slugs = %v, want %v", got, want)
	}

	zeta, ok := settings.Page("zeta")
	if !ok {
		t.Fatalf("expected zeta page")
	}
	if zeta[0].ID != "a" || zeta[1].ID != "b" {
		t.Fatalf("expected components ordered by position, got %s,%s", zeta[0].ID, zeta[1].ID)
	}

	encoded, err := json.Marshal(settings)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again ComponentSettings
	if err := json.Unmarshal(encoded, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	if !reflect.DeepEqual(again.Slugs(), settings.Slugs()) {
		t.Fatalf("order lost on re-encode: %v", again.Slugs())
	}
}

func TestComponentRecordDropsMalformedData(t *testing.T) {
	var record ComponentRecord
	if err := json.Unmarshal([]byte(`{"id":"x","familyType":"hero","data":"oops"}`), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record.Data != nil {
		t.Fatalf("expected malformed data to be dropped, got %#v", record.Data)
	}
	if record.Family != "hero" || record.ID != "x" {
		t.Fatalf("unexpected record %#v", record)
	}
}

func TestComponentSettingsSetAndDelete(t *testing.T) {
	settings := NewComponentSettings(
		PageSettings{Slug: "about"},
		PageSettings{Slug: "about", Components: []ComponentRecord{{ID: "dup"}}},
	)
	if settings.Len() != 1 {
		t.Fatalf("expected first occurrence to win, got %d pages", settings.Len())
	}

	settings.Set("contact", []ComponentRecord{{ID: "form", Family: "lead_form"}})
	settings.Set("about", []ComponentRecord{{ID: "text"}})
	if got := settings.Slugs(); !reflect.DeepEqual(got, []string{"about", "contact"}) {
		t.Fatalf("unexpected slugs %v", got)
	}

	settings.Delete("about")
	if settings.Has("about") {
		t.Fatalf("expected about removed")
	}
}

func TestCloneSnapshotIsDeep(t *testing.T) {
	snapshot := &TenantSnapshot{TenantKey: "acme"}
	snapshot.ComponentSettings.Set("", []ComponentRecord{{
		ID:   "hero-1",
		Data: map[string]any{"content": map[string]any{"title": "Old"}},
	}})
	snapshot.SetRevision("", 3)

	clone := CloneSnapshot(snapshot)
	records, _ := clone.ComponentSettings.Page("")
	records[0].Data["content"].(map[string]any)["title"] = "Mutated"
	clone.SetRevision("", 9)

	original, _ := snapshot.ComponentSettings.Page("")
	content, _ := Content(original[0].Data)
	if content["title"] != "Old" {
		t.Fatalf("clone mutation leaked into original: %v", content["title"])
	}
	if snapshot.Revision("") != 3 {
		t.Fatalf("revision leaked: %d", snapshot.Revision(""))
	}
}

func TestEqualPayloadNormalisesNumbers(t *testing.T) {
	a := map[string]any{"content": map[string]any{"count": 3}}
	b := map[string]any{"content": map[string]any{"count": float64(3)}}
	if !EqualPayload(a, b) {
		t.Fatalf("expected payloads to compare equal")
	}
	if EqualPayload(a, map[string]any{}) {
		t.Fatalf("expected mismatch against empty payload")
	}
}
