package dto

import (
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/catalogs/movementtype"
)

// CreateMovementTypeRequest registers an income or expense type.
type CreateMovementTypeRequest struct {
	Kind              movementtype.Kind  `json:"kind" binding:"required"`
	Name              string             `json:"name" binding:"required"`
	MonthlyRecurrence bool               `json:"monthlyRecurrence"`
	DefaultAmount     *types.Money       `json:"defaultAmount,omitempty"`
	AppliesTo         entity.AccountKind `json:"appliesTo,omitempty"`
}

// ToEntity converts the request into a new type.
func (r CreateMovementTypeRequest) ToEntity() *movementtype.Type {
	t := movementtype.NewType(r.Kind, r.Name, r.MonthlyRecurrence)
	if r.DefaultAmount != nil {
		t.DefaultAmount = *r.DefaultAmount
	}
	t.AppliesTo = r.AppliesTo
	return t
}

// UpdateMovementTypeRequest changes a type. Version guards against lost updates.
type UpdateMovementTypeRequest struct {
	Name              *string             `json:"name"`
	MonthlyRecurrence *bool               `json:"monthlyRecurrence"`
	DefaultAmount     *types.Money        `json:"defaultAmount"`
	AppliesTo         *entity.AccountKind `json:"appliesTo"`
	Version           int                 `json:"version" binding:"required,min=1"`
}

// ApplyTo copies the set fields onto t.
func (r UpdateMovementTypeRequest) ApplyTo(t *movementtype.Type) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.MonthlyRecurrence != nil {
		t.MonthlyRecurrence = *r.MonthlyRecurrence
	}
	if r.DefaultAmount != nil {
		t.DefaultAmount = *r.DefaultAmount
	}
	if r.AppliesTo != nil {
		t.AppliesTo = *r.AppliesTo
	}
	t.Version = r.Version
}
