package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-livesite/internal/backends"
	"github.com/goliatone/go-livesite/internal/identity"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

const documentNamespace = "livesite_tenant_document"

// NotFoundError is returned when a tenant row does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Store persists tenant documents in a SQL database through bun.
type Store struct {
	repo         repository.Repository[*TenantDocument]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

// NewRepository creates the bun repository for tenant documents.
func NewRepository(db *bun.DB) repository.Repository[*TenantDocument] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*TenantDocument]{
		NewRecord: func() *TenantDocument { return &TenantDocument{} },
		GetID: func(doc *TenantDocument) uuid.UUID {
			return doc.ID
		},
		SetID: func(doc *TenantDocument, id uuid.UUID) {
			doc.ID = id
		},
		GetIdentifier: func() string {
			return "tenant_key"
		},
		GetIdentifierValue: func(doc *TenantDocument) string {
			return doc.TenantKey
		},
	})
}

// New creates a store without caching.
func New(db *bun.DB) *Store {
	return NewWithCache(db, nil, nil)
}

// NewWithCache creates a store whose reads go through the repository cache.
func NewWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *Store {
	base := NewRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = documentNamespace + cache.KeySeparator
	}
	return &Store{
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateTable creates the tenant document table when missing.
func CreateTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*TenantDocument)(nil)).IfNotExists().Exec(ctx)
	return err
}

// FetchTenant loads the stored document of tenantKey. Unknown tenants yield
// an empty document.
func (s *Store) FetchTenant(ctx context.Context, tenantKey string) (*sites.TenantSnapshot, error) {
	key, err := backends.NormalizeKey(tenantKey)
	if err != nil {
		return nil, err
	}
	row, err := s.get(ctx, key)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return &sites.TenantSnapshot{TenantKey: key}, nil
		}
		return nil, err
	}
	return backends.DecodeDocument(key, []byte(row.Document))
}

// RequestSave writes the document carried by req, creating the row when new.
func (s *Store) RequestSave(ctx context.Context, req interfaces.SaveRequest) error {
	key, err := backends.CheckSave(req)
	if err != nil {
		return err
	}
	snapshot := sites.CloneSnapshot(req.Snapshot)
	snapshot.TenantKey = key
	payload, err := backends.EncodeDocument(snapshot)
	if err != nil {
		return err
	}

	now := s.now()
	row, err := s.get(ctx, key)
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		_, err = s.repo.Create(ctx, &TenantDocument{
			ID:           identity.TenantUUID(key),
			TenantKey:    key,
			Document:     string(payload),
			CurrentTheme: snapshot.SiteLayout.CurrentTheme,
			LastReason:   string(req.Reason),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	case err != nil:
		return err
	default:
		row.Document = string(payload)
		row.CurrentTheme = snapshot.SiteLayout.CurrentTheme
		row.LastReason = string(req.Reason)
		row.UpdatedAt = now
		_, err = s.repo.Update(ctx, row)
	}
	if err != nil {
		return fmt.Errorf("tenant document %s: %w", key, err)
	}
	return s.InvalidateCache(ctx)
}

// InvalidateCache drops cached tenant rows.
func (s *Store) InvalidateCache(ctx context.Context) error {
	if s.cacheService == nil || s.cachePrefix == "" {
		return nil
	}
	return s.cacheService.DeleteByPrefix(ctx, s.cachePrefix)
}

func (s *Store) get(ctx context.Context, key string) (*TenantDocument, error) {
	row, err := s.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "tenant_document", key)
	}
	return row, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
