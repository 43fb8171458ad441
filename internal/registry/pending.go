package registry

import (
	"github.com/goliatone/go-livesite/internal/sites"
)

// QueueCreate records a page created locally that the backend has not
// confirmed yet, and opens an empty page for it. It returns false when the
// slug is already queued.
func (r *Registry) QueueCreate(desc sites.PageDescriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, queued := range r.pending {
		if queued.Slug == desc.Slug {
			return false
		}
	}
	r.pending = append(r.pending, desc)
	r.ensurePage(desc.Slug)
	return true
}

// Pending returns the unconfirmed page creations in creation order.
func (r *Registry) Pending() []sites.PageDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]sites.PageDescriptor, len(r.pending))
	for i, desc := range r.pending {
		out[i] = desc
		out[i].SEO = sites.CloneSEO(desc.SEO)
	}
	return out
}

// Reconcile drops queued creations confirmed by snapshot and returns their slugs.
func (r *Registry) Reconcile(snapshot *sites.TenantSnapshot) []string {
	if snapshot == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var confirmed []string
	kept := r.pending[:0]
	for _, desc := range r.pending {
		if snapshot.HasPage(desc.Slug) {
			confirmed = append(confirmed, desc.Slug)
			continue
		}
		kept = append(kept, desc)
	}
	r.pending = kept
	return confirmed
}
