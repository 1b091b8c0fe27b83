// Package entity provides the shared base record and reference types of ledger entities.
package entity

import (
	"context"
	"time"

	"taxiledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields common to every ledger entity.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Active is false once the row is soft-deleted
	Active bool `db:"active" json:"active"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates an active BaseEntity with generated ID and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the primary key.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// Deactivate soft-deletes the entity.
func (b *BaseEntity) Deactivate() {
	b.Active = false
}

// IsActive reports whether the entity is not soft-deleted.
func (b *BaseEntity) IsActive() bool {
	return b.Active
}

// SetVersion updates the version number (used by repository after sync).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

// SetUpdatedAt updates the updated_at timestamp (used by repository).
func (b *BaseEntity) SetUpdatedAt(t time.Time) {
	b.UpdatedAt = t
}
