// Package directory resolves user identifiers or display names to canonical
// user records. The rest of the system treats it as an external collaborator:
// profile management lives elsewhere, the core only reads snapshots.
package directory

import (
	"context"

	"github.com/Shagunjha0111/community-section/internal/model"
	"github.com/Shagunjha0111/community-section/internal/store"
)

// Resolver is the lookup surface the router depends on.
type Resolver interface {
	// Resolve canonicalizes an id or display name into a UserRef snapshot.
	// Returns model.ErrUnknownUser when no record matches.
	Resolve(ctx context.Context, idOrName string) (*model.UserRef, error)

	// List enumerates all known users.
	List(ctx context.Context) ([]*model.UserRef, error)
}

// StoreDirectory serves lookups from the users table.
type StoreDirectory struct {
	users store.Users
}

var _ Resolver = (*StoreDirectory)(nil)

func NewStoreDirectory(users store.Users) *StoreDirectory {
	return &StoreDirectory{users: users}
}

func (d *StoreDirectory) Resolve(ctx context.Context, idOrName string) (*model.UserRef, error) {
	if idOrName == "" {
		return nil, model.ErrUnknownUser
	}
	return d.users.Get(ctx, idOrName)
}

func (d *StoreDirectory) List(ctx context.Context) ([]*model.UserRef, error) {
	return d.users.List(ctx)
}
