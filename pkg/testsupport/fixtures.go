// Package testsupport holds helpers shared by backend tests.
package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// Fixture returns the raw bytes of a tenant document fixture, failing t when
// the file cannot be read.
func Fixture(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("testsupport: read fixture %s: %v", path, err)
	}
	return data
}

// DecodeFixture unmarshals the JSON fixture at path into v.
func DecodeFixture(t testing.TB, path string, v any) {
	t.Helper()
	if err := json.Unmarshal(Fixture(t, path), v); err != nil {
		t.Fatalf("testsupport: decode fixture %s: %v", path, err)
	}
}
