package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const tenantNamespace = "livesite:tenant:"

// TenantUUID returns the stable document id of a tenant key. Surrounding space
// is ignored; case is significant, matching tenant key lookups.
func TenantUUID(tenantKey string) uuid.UUID {
	key := strings.TrimSpace(tenantKey)
	if key == "" {
		return uuid.Nil
	}
	return derive(tenantNamespace + key)
}

// derive hashes key with go-hashid, falling back to a name-based UUID when
// hashing fails.
func derive(key string) uuid.UUID {
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(false))
	if err == nil && id != uuid.Nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}
