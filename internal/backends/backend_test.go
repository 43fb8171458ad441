package backends

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
	"github.com/goliatone/go-livesite/pkg/testsupport"
)

func TestDocumentCodecKeepsPageOrderAndRevisions(t *testing.T) {
	snapshot := &sites.TenantSnapshot{TenantKey: "acme"}
	snapshot.ComponentSettings.Set("zeta", []sites.ComponentRecord{{ID: "z", Family: "hero"}})
	snapshot.ComponentSettings.Set("", []sites.ComponentRecord{{ID: "h", Family: "hero"}})
	snapshot.SetRevision("zeta", 4)
	snapshot.SiteLayout.CurrentTheme = "coastal"

	payload, err := EncodeDocument(snapshot)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDocument("acme", payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded.ComponentSettings.Slugs(), []string{"zeta", ""}) {
		t.Fatalf("unexpected order %v", decoded.ComponentSettings.Slugs())
	}
	if decoded.Revision("zeta") != 4 || decoded.SiteLayout.CurrentTheme != "coastal" {
		t.Fatalf("unexpected decoded document %+v", decoded)
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	decoded, err := DecodeDocument("acme", nil)
	if err != nil || decoded.TenantKey != "acme" || decoded.ComponentSettings.Len() != 0 {
		t.Fatalf("unexpected result %+v %v", decoded, err)
	}
}

func TestCheckSave(t *testing.T) {
	if _, err := CheckSave(interfaces.SaveRequest{}); !errors.Is(err, ErrSnapshotRequired) {
		t.Fatalf("expected ErrSnapshotRequired, got %v", err)
	}
	key, err := CheckSave(interfaces.SaveRequest{Snapshot: &sites.TenantSnapshot{TenantKey: " acme "}})
	if err != nil || key != "acme" {
		t.Fatalf("unexpected key %q err %v", key, err)
	}
	if _, err := CheckSave(interfaces.SaveRequest{Snapshot: &sites.TenantSnapshot{}}); !errors.Is(err, ErrTenantKeyRequired) {
		t.Fatalf("expected ErrTenantKeyRequired, got %v", err)
	}
}

func TestDecodeLegacyDocumentFixture(t *testing.T) {
	payload := testsupport.Fixture(t, "testdata/legacy_document.json")
	decoded, err := DecodeDocument("legacy", payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TenantKey != "legacy" {
		t.Fatalf("expected tenant key fallback, got %q", decoded.TenantKey)
	}
	if !reflect.DeepEqual(decoded.ComponentSettings.Slugs(), []string{"", "about-us"}) {
		t.Fatalf("unexpected slugs %v", decoded.ComponentSettings.Slugs())
	}
	home, _ := decoded.ComponentSettings.Page("")
	if len(home) != 2 || home[0].ID != "hero-1" || home[0].Schema != "" {
		t.Fatalf("unexpected homepage records %+v", home)
	}
	if home[1].Data != nil {
		t.Fatalf("expected malformed payload dropped, got %#v", home[1].Data)
	}
	if decoded.Revision("") != 0 || decoded.SiteLayout.CurrentTheme != "coastal" {
		t.Fatalf("unexpected layout or revisions %+v", decoded)
	}

	var golden sites.TenantSnapshot
	testsupport.DecodeFixture(t, "testdata/legacy_document.json", &golden)
	if len(golden.SiteLayout.Pages) != 1 || golden.SiteLayout.Pages[0].Title != "About the team" {
		t.Fatalf("unexpected golden layout %+v", golden.SiteLayout)
	}
}
