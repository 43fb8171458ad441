package backends

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

var (
	ErrTenantKeyRequired = errors.New("backends: tenant key required")
	ErrSnapshotRequired  = errors.New("backends: snapshot required")
)

// Backend stores tenant documents.
type Backend interface {
	interfaces.TenantFetcher
	interfaces.SaveCoordinator
}

// NormalizeKey trims a tenant key and rejects empty keys.
func NormalizeKey(tenantKey string) (string, error) {
	key := strings.TrimSpace(tenantKey)
	if key == "" {
		return "", ErrTenantKeyRequired
	}
	return key, nil
}

// CheckSave validates a save request and returns its normalised tenant key.
func CheckSave(req interfaces.SaveRequest) (string, error) {
	if req.Snapshot == nil {
		return "", ErrSnapshotRequired
	}
	key := req.TenantKey
	if strings.TrimSpace(key) == "" {
		key = req.Snapshot.TenantKey
	}
	return NormalizeKey(key)
}

// EncodeDocument renders the wire form of a tenant document.
func EncodeDocument(snapshot *sites.TenantSnapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, ErrSnapshotRequired
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("backends: encode document %s: %w", snapshot.TenantKey, err)
	}
	return payload, nil
}

// DecodeDocument parses a tenant document. Empty payloads decode to an empty
// snapshot for tenantKey.
func DecodeDocument(tenantKey string, payload []byte) (*sites.TenantSnapshot, error) {
	snapshot := &sites.TenantSnapshot{TenantKey: tenantKey}
	if len(bytes.TrimSpace(payload)) == 0 {
		return snapshot, nil
	}
	if err := json.Unmarshal(payload, snapshot); err != nil {
		return nil, fmt.Errorf("backends: decode document %s: %w", tenantKey, err)
	}
	if snapshot.TenantKey == "" {
		snapshot.TenantKey = tenantKey
	}
	return snapshot, nil
}
