package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/storage"
	"github.com/edusys/delego/internal/storage/memory"
)

func assignmentFixture(id string) model.Assignment {
	return model.Assignment{
		ID:          id,
		TaskID:      "task-1",
		TaskTitle:   "Quarterly report",
		OwnerUserID: "user-owner",
	}
}

func delegationFixture(id, parentID, userID string) model.Delegation {
	return model.Delegation{
		ID:                 id,
		TaskID:             "task-1",
		ParentAssignmentID: parentID,
		DelegatedToUserID:  userID,
		DelegatedByUserID:  "user-owner",
		Status:             model.DelegationStatusPending,
		CreatedAt:          time.Now().UTC(),
	}
}

func newRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	return repo
}

func createDelegation(t *testing.T, repo *memory.Repository, d model.Delegation) {
	t.Helper()
	err := repo.UpdateParent(context.Background(), d.ParentAssignmentID, func(ctx context.Context, tx storage.Tx) error {
		return tx.CreateDelegation(ctx, d)
	})
	require.NoError(t, err)
}

func TestRepositoryAssignments(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.CreateAssignment(ctx, assignmentFixture("a-1")))

	got, err := repo.GetAssignment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "task-1", got.TaskID)

	err = repo.CreateAssignment(ctx, assignmentFixture("a-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	_, err = repo.GetAssignment(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryDelegationCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.CreateAssignment(ctx, assignmentFixture("a-1")))

	createDelegation(t, repo, delegationFixture("d-1", "a-1", "user-1"))
	createDelegation(t, repo, delegationFixture("d-2", "a-1", "user-2"))

	got, err := repo.GetDelegation(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.DelegatedToUserID)

	ds, err := repo.ListDelegationsByParent(ctx, "a-1", false)
	require.NoError(t, err)
	assert.Len(t, ds, 2)

	// Save a status change.
	err = repo.UpdateParent(ctx, "a-1", func(ctx context.Context, tx storage.Tx) error {
		d, err := tx.GetDelegation(ctx, "d-1")
		if err != nil {
			return err
		}
		d.Status = model.DelegationStatusAccepted
		return tx.SaveDelegation(ctx, *d)
	})
	require.NoError(t, err)

	got, err = repo.GetDelegation(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, model.DelegationStatusAccepted, got.Status)
}

func TestRepositorySoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.CreateAssignment(ctx, assignmentFixture("a-1")))
	createDelegation(t, repo, delegationFixture("d-1", "a-1", "user-1"))
	createDelegation(t, repo, delegationFixture("d-2", "a-1", "user-2"))

	err := repo.UpdateParent(ctx, "a-1", func(ctx context.Context, tx storage.Tx) error {
		return tx.SoftDeleteDelegation(ctx, "d-2")
	})
	require.NoError(t, err)

	ds, err := repo.ListDelegationsByParent(ctx, "a-1", false)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "d-1", ds[0].ID)

	// Deleted delegations remain queryable for audit.
	all, err := repo.ListDelegationsByParent(ctx, "a-1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deleted, err := repo.GetDelegation(ctx, "d-2")
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())
}

func TestRepositoryUpdateParentRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.CreateAssignment(ctx, assignmentFixture("a-1")))

	errBoom := errors.New("boom")
	err := repo.UpdateParent(ctx, "a-1", func(ctx context.Context, tx storage.Tx) error {
		if err := tx.CreateDelegation(ctx, delegationFixture("d-1", "a-1", "user-1")); err != nil {
			return err
		}
		parent := tx.Assignment()
		parent.SubDelegationCount = 1
		if err := tx.SaveAssignment(ctx, *parent); err != nil {
			return err
		}
		return errBoom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))

	// Nothing persisted.
	_, err = repo.GetDelegation(ctx, "d-1")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	parent, err := repo.GetAssignment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, 0, parent.SubDelegationCount)
}

func TestRepositoryUpdateParentUnknownParent(t *testing.T) {
	repo := newRepo(t)

	err := repo.UpdateParent(context.Background(), "missing", func(ctx context.Context, tx storage.Tx) error {
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryUpdateParentSerializesWriters(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.CreateAssignment(ctx, assignmentFixture("a-1")))

	const workers = 10
	const increments = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				err := repo.UpdateParent(ctx, "a-1", func(ctx context.Context, tx storage.Tx) error {
					parent := tx.Assignment()
					parent.SubDelegationCount++
					if err := tx.CreateDelegation(ctx, delegationFixture(fmt.Sprintf("d-%d-%d", w, i), "a-1", "user-1")); err != nil {
						return err
					}
					return tx.SaveAssignment(ctx, *parent)
				})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	parent, err := repo.GetAssignment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, workers*increments, parent.SubDelegationCount)

	ds, err := repo.ListDelegationsByParent(ctx, "a-1", false)
	require.NoError(t, err)
	assert.Len(t, ds, workers*increments)
}
