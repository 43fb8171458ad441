package themes

import (
	"context"
	"fmt"
)

// BundleRepository stores theme bundles.
type BundleRepository interface {
	Create(ctx context.Context, bundle *Bundle) (*Bundle, error)
	Update(ctx context.Context, bundle *Bundle) (*Bundle, error)
	GetByName(ctx context.Context, name string) (*Bundle, error)
	List(ctx context.Context) ([]*Bundle, error)
}

// NotFoundError is returned when a bundle cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
