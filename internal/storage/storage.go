package storage

import (
	"context"

	"github.com/edusys/delego/internal/model"
)

// Repository is the persistence boundary for assignments and their
// delegations.
type Repository interface {
	// CreateAssignment registers a parent assignment. Assignments are owned by
	// the external assignment subsystem, this engine only stores what it is
	// given so delegations have something to hang from.
	CreateAssignment(ctx context.Context, a model.Assignment) error
	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)

	// GetDelegation returns a delegation by ID, soft-deleted ones included so
	// they stay queryable for audit.
	GetDelegation(ctx context.Context, id string) (*model.Delegation, error)
	ListDelegationsByParent(ctx context.Context, parentID string, includeDeleted bool) ([]model.Delegation, error)

	// UpdateParent runs fn inside a transaction holding an exclusive lock on
	// the parent assignment, serializing concurrent updates per parent while
	// leaving unrelated parents unaffected. Any error returned by fn rolls the
	// whole transaction back.
	UpdateParent(ctx context.Context, parentID string, fn UpdateFunc) error
}

// UpdateFunc is the unit of work executed under a parent assignment lock. It
// may run more than once if the implementation retries, so it must not carry
// side effects outside the transaction.
type UpdateFunc func(ctx context.Context, tx Tx) error

// Tx is the view of the store inside an UpdateParent transaction. All
// delegation operations are scoped to the locked parent.
type Tx interface {
	// Assignment returns the parent assignment row as read under the lock.
	Assignment() *model.Assignment
	SaveAssignment(ctx context.Context, a model.Assignment) error

	CreateDelegation(ctx context.Context, d model.Delegation) error
	GetDelegation(ctx context.Context, id string) (*model.Delegation, error)
	ListDelegations(ctx context.Context, includeDeleted bool) ([]model.Delegation, error)
	SaveDelegation(ctx context.Context, d model.Delegation) error
	SoftDeleteDelegation(ctx context.Context, id string) error
}
