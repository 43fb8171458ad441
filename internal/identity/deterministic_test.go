package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestTenantUUIDIsStableAndCaseSensitive(t *testing.T) {
	first := TenantUUID("Acme")
	if first == uuid.Nil {
		t.Fatalf("expected non-nil uuid")
	}
	if again := TenantUUID(" Acme "); again != first {
		t.Fatalf("expected trimmed key to map to %s, got %s", first, again)
	}
	if lower := TenantUUID("acme"); lower == first {
		t.Fatalf("case variants collided on %s", first)
	}
	if other := TenantUUID("globex"); other == first {
		t.Fatalf("distinct tenants collided on %s", first)
	}
}

func TestTenantUUIDEmptyKey(t *testing.T) {
	if got := TenantUUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid, got %s", got)
	}
}
