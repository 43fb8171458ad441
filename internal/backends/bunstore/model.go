package bunstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TenantDocument is the persisted row of one tenant site document.
type TenantDocument struct {
	bun.BaseModel `bun:"table:livesite_tenant_documents,alias:ltd"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	TenantKey    string    `bun:"tenant_key,notnull,unique" json:"tenant_key"`
	Document     string    `bun:"document,notnull" json:"document"`
	CurrentTheme string    `bun:"current_theme" json:"current_theme,omitempty"`
	LastReason   string    `bun:"last_reason" json:"last_reason,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
