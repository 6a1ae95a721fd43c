package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/edusys/delego/internal/log"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository, used on
// tests and as an embedded store.
type Repository struct {
	mu          sync.RWMutex
	assignments map[string]model.Assignment
	delegations map[string]model.Delegation

	parentMusMu sync.Mutex
	parentMus   map[string]*sync.Mutex

	logger log.Logger
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		assignments: make(map[string]model.Assignment),
		delegations: make(map[string]model.Delegation),
		parentMus:   make(map[string]*sync.Mutex),
		logger:      cfg.Logger,
	}, nil
}

// CreateAssignment registers a parent assignment.
func (r *Repository) CreateAssignment(ctx context.Context, a model.Assignment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid assignment: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assignments[a.ID]; ok {
		return fmt.Errorf("assignment %s: %w", a.ID, model.ErrAlreadyExists)
	}

	r.assignments[a.ID] = a
	r.logger.Debugf("Created assignment in repository: %s", a.ID)

	return nil
}

// GetAssignment retrieves an assignment by ID.
func (r *Repository) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assignments[id]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", id, model.ErrNotFound)
	}

	aCopy := a
	return &aCopy, nil
}

// GetDelegation retrieves a delegation by ID, soft-deleted ones included.
func (r *Repository) GetDelegation(ctx context.Context, id string) (*model.Delegation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.delegations[id]
	if !ok {
		return nil, fmt.Errorf("delegation %s: %w", id, model.ErrNotFound)
	}

	dCopy := copyDelegation(d)
	return &dCopy, nil
}

// ListDelegationsByParent returns the delegations of a parent assignment.
func (r *Repository) ListDelegationsByParent(ctx context.Context, parentID string, includeDeleted bool) ([]model.Delegation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listByParentLocked(parentID, includeDeleted), nil
}

func (r *Repository) listByParentLocked(parentID string, includeDeleted bool) []model.Delegation {
	ds := []model.Delegation{}
	for _, d := range r.delegations {
		if d.ParentAssignmentID != parentID {
			continue
		}
		if d.Deleted() && !includeDeleted {
			continue
		}
		ds = append(ds, copyDelegation(d))
	}

	// Stable order for callers and tests.
	sort.Slice(ds, func(i, j int) bool {
		if !ds[i].CreatedAt.Equal(ds[j].CreatedAt) {
			return ds[i].CreatedAt.Before(ds[j].CreatedAt)
		}
		return ds[i].ID < ds[j].ID
	})

	return ds
}

// UpdateParent runs fn while holding the lock of the parent assignment.
// Writes are staged and applied only when fn succeeds.
func (r *Repository) UpdateParent(ctx context.Context, parentID string, fn storage.UpdateFunc) error {
	mu := r.parentMu(parentID)
	mu.Lock()
	defer mu.Unlock()

	r.mu.RLock()
	parent, ok := r.assignments[parentID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("assignment %s: %w", parentID, model.ErrNotFound)
	}

	tx := &txn{repo: r, parent: parent, staged: map[string]model.Delegation{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.parentDirty {
		r.assignments[parentID] = tx.parent
	}
	for id, d := range tx.staged {
		r.delegations[id] = d
	}

	return nil
}

func (r *Repository) parentMu(parentID string) *sync.Mutex {
	r.parentMusMu.Lock()
	defer r.parentMusMu.Unlock()

	mu, ok := r.parentMus[parentID]
	if !ok {
		mu = &sync.Mutex{}
		r.parentMus[parentID] = mu
	}
	return mu
}

// txn stages writes so a failing update leaves the repository untouched.
type txn struct {
	repo        *Repository
	parent      model.Assignment
	parentDirty bool
	staged      map[string]model.Delegation
}

func (t *txn) Assignment() *model.Assignment {
	aCopy := t.parent
	return &aCopy
}

func (t *txn) SaveAssignment(ctx context.Context, a model.Assignment) error {
	if a.ID != t.parent.ID {
		return fmt.Errorf("assignment %s is not the locked parent: %w", a.ID, model.ErrNotValid)
	}
	t.parent = a
	t.parentDirty = true
	return nil
}

func (t *txn) CreateDelegation(ctx context.Context, d model.Delegation) error {
	if d.ParentAssignmentID != t.parent.ID {
		return fmt.Errorf("delegation parent %s is not the locked parent: %w", d.ParentAssignmentID, model.ErrNotValid)
	}

	if _, ok := t.staged[d.ID]; ok {
		return fmt.Errorf("delegation %s: %w", d.ID, model.ErrAlreadyExists)
	}
	t.repo.mu.RLock()
	_, exists := t.repo.delegations[d.ID]
	t.repo.mu.RUnlock()
	if exists {
		return fmt.Errorf("delegation %s: %w", d.ID, model.ErrAlreadyExists)
	}

	t.staged[d.ID] = copyDelegation(d)
	return nil
}

func (t *txn) GetDelegation(ctx context.Context, id string) (*model.Delegation, error) {
	if d, ok := t.staged[id]; ok {
		dCopy := copyDelegation(d)
		return &dCopy, nil
	}

	t.repo.mu.RLock()
	d, ok := t.repo.delegations[id]
	t.repo.mu.RUnlock()
	if !ok || d.ParentAssignmentID != t.parent.ID {
		return nil, fmt.Errorf("delegation %s: %w", id, model.ErrNotFound)
	}

	dCopy := copyDelegation(d)
	return &dCopy, nil
}

func (t *txn) ListDelegations(ctx context.Context, includeDeleted bool) ([]model.Delegation, error) {
	t.repo.mu.RLock()
	ds := t.repo.listByParentLocked(t.parent.ID, true)
	t.repo.mu.RUnlock()

	// Overlay staged writes.
	merged := map[string]model.Delegation{}
	for _, d := range ds {
		merged[d.ID] = d
	}
	for id, d := range t.staged {
		merged[id] = copyDelegation(d)
	}

	result := []model.Delegation{}
	for _, d := range merged {
		if d.Deleted() && !includeDeleted {
			continue
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (t *txn) SaveDelegation(ctx context.Context, d model.Delegation) error {
	cur, err := t.GetDelegation(ctx, d.ID)
	if err != nil {
		return err
	}
	if cur.ParentAssignmentID != d.ParentAssignmentID {
		return fmt.Errorf("delegation parent cannot change: %w", model.ErrNotValid)
	}

	t.staged[d.ID] = copyDelegation(d)
	return nil
}

func (t *txn) SoftDeleteDelegation(ctx context.Context, id string) error {
	cur, err := t.GetDelegation(ctx, id)
	if err != nil {
		return err
	}
	if cur.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	cur.DeletedAt = &now
	t.staged[id] = *cur

	return nil
}

func copyDelegation(d model.Delegation) model.Delegation {
	if d.CompletionData != nil {
		data := make(map[string]interface{}, len(d.CompletionData))
		for k, v := range d.CompletionData {
			data[k] = v
		}
		d.CompletionData = data
	}
	return d
}
