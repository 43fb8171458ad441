package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-livesite/internal/backends"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// Store keeps tenant documents in process memory. Failures can be injected
// to exercise error paths.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]*sites.TenantSnapshot
	saves    []interfaces.SaveRequest
	fetchErr error
	saveErr  error
}

// New constructs a store seeded with snapshots.
func New(seed ...*sites.TenantSnapshot) *Store {
	s := &Store{docs: make(map[string]*sites.TenantSnapshot)}
	for _, snapshot := range seed {
		if snapshot != nil {
			s.docs[snapshot.TenantKey] = sites.CloneSnapshot(snapshot)
		}
	}
	return s
}

// FetchTenant returns the stored document, or an empty one for unknown tenants.
func (s *Store) FetchTenant(_ context.Context, tenantKey string) (*sites.TenantSnapshot, error) {
	key, err := backends.NormalizeKey(tenantKey)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if doc, ok := s.docs[key]; ok {
		return sites.CloneSnapshot(doc), nil
	}
	return &sites.TenantSnapshot{TenantKey: key}, nil
}

// RequestSave stores the document carried by req.
func (s *Store) RequestSave(_ context.Context, req interfaces.SaveRequest) error {
	key, err := backends.CheckSave(req)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	doc := sites.CloneSnapshot(req.Snapshot)
	doc.TenantKey = key
	s.docs[key] = doc
	req.Snapshot = sites.CloneSnapshot(doc)
	s.saves = append(s.saves, req)
	return nil
}

// FailFetch makes subsequent fetches return err; nil clears it.
func (s *Store) FailFetch(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
}

// FailSave makes subsequent saves return err; nil clears it.
func (s *Store) FailSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns the accepted save requests in order.
func (s *Store) Saves() []interfaces.SaveRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]interfaces.SaveRequest(nil), s.saves...)
}

// Document returns a copy of the stored document of tenantKey.
func (s *Store) Document(tenantKey string) (*sites.TenantSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[tenantKey]
	if !ok {
		return nil, false
	}
	return sites.CloneSnapshot(doc), true
}
