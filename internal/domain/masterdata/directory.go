// Package masterdata defines the lookup port for members, subscribers and vehicles.
// The ledger never manages these records; it only checks that an owner exists.
package masterdata

import (
	"context"
	"sync"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
)

// Owner carries the basic attributes of an account owner.
type Owner struct {
	Kind        entity.AccountKind `json:"kind"`
	ID          id.ID              `json:"id"`
	DisplayName string             `json:"displayName"`
	Active      bool               `json:"active"`
}

// Directory resolves account owners by kind and id.
type Directory interface {
	// Lookup returns the owner or a NotFound error.
	Lookup(ctx context.Context, kind entity.AccountKind, ownerID id.ID) (Owner, error)
}

// Exists reports whether an active owner exists in dir.
func Exists(ctx context.Context, dir Directory, kind entity.AccountKind, ownerID id.ID) (bool, error) {
	owner, err := dir.Lookup(ctx, kind, ownerID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner.Active, nil
}

// Static is an in-process Directory used by the memory backend and tests.
type Static struct {
	mu     sync.RWMutex
	owners map[entity.AccountKind]map[id.ID]Owner
}

var _ Directory = (*Static)(nil)

// NewStatic creates an empty directory.
func NewStatic() *Static {
	return &Static{owners: make(map[entity.AccountKind]map[id.ID]Owner)}
}

// Register adds an active owner and returns its id.
func (s *Static) Register(kind entity.AccountKind, name string) id.ID {
	owner := Owner{Kind: kind, ID: id.New(), DisplayName: name, Active: true}
	s.Put(owner)
	return owner.ID
}

// Put stores or replaces an owner.
func (s *Static) Put(owner Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owners[owner.Kind] == nil {
		s.owners[owner.Kind] = make(map[id.ID]Owner)
	}
	s.owners[owner.Kind][owner.ID] = owner
}

// Lookup implements Directory.
func (s *Static) Lookup(_ context.Context, kind entity.AccountKind, ownerID id.ID) (Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[kind][ownerID]
	if !ok {
		return Owner{}, apperror.NewNotFound(string(kind), ownerID.String())
	}
	return owner, nil
}
