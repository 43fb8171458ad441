package themes

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryBundleRepository provides an in-memory implementation of BundleRepository.
type MemoryBundleRepository struct {
	mu     sync.RWMutex
	byName map[string]*Bundle
}

// NewMemoryBundleRepository constructs an empty memory-backed bundle repository.
func NewMemoryBundleRepository() *MemoryBundleRepository {
	return &MemoryBundleRepository{
		byName: make(map[string]*Bundle),
	}
}

func (r *MemoryBundleRepository) Create(_ context.Context, bundle *Bundle) (*Bundle, error) {
	if bundle == nil {
		return nil, nil
	}
	cloned := cloneBundle(bundle)
	key := canonicalKey(cloned.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[key]; ok {
		return nil, ErrThemeExists
	}
	r.byName[key] = cloned
	return cloneBundle(cloned), nil
}

func (r *MemoryBundleRepository) Update(_ context.Context, bundle *Bundle) (*Bundle, error) {
	if bundle == nil {
		return nil, nil
	}
	key := canonicalKey(bundle.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[key]; !ok {
		return nil, &NotFoundError{Resource: "theme", Key: bundle.Name}
	}
	cloned := cloneBundle(bundle)
	r.byName[key] = cloned
	return cloneBundle(cloned), nil
}

func (r *MemoryBundleRepository) GetByName(_ context.Context, name string) (*Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byName[canonicalKey(name)]
	if !ok {
		return nil, &NotFoundError{Resource: "theme", Key: name}
	}
	return cloneBundle(record), nil
}

func (r *MemoryBundleRepository) List(_ context.Context) ([]*Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Bundle, 0, len(r.byName))
	for _, bundle := range r.byName {
		out = append(out, cloneBundle(bundle))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func canonicalKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
