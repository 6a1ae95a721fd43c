package lib_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusys/delego/pkg/lib"
)

// newTestClient creates a client with a temp SQLite DB for test isolation.
func newTestClient(t *testing.T) *lib.Client {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	client, err := lib.New(ctx, lib.Config{
		DBPath: dbPath,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// newTestAssignment registers an assignment and returns it.
func newTestAssignment(t *testing.T, client *lib.Client) *lib.Assignment {
	t.Helper()

	a, err := client.CreateAssignment(context.Background(), lib.CreateAssignmentOpts{
		TaskID: "task-1",
		Title:  "Quarterly report",
		Owner:  "alice",
	})
	require.NoError(t, err)
	return a
}

func TestCreateAssignment(t *testing.T) {
	tests := map[string]struct {
		opts   lib.CreateAssignmentOpts
		expErr bool
		expIs  error
	}{
		"Creating an assignment should work.": {
			opts: lib.CreateAssignmentOpts{
				TaskID: "task-1",
				Title:  "Quarterly report",
				Owner:  "alice",
			},
		},

		"Creating an assignment with an explicit ID should keep it.": {
			opts: lib.CreateAssignmentOpts{
				ID:     "a-custom",
				TaskID: "task-1",
				Owner:  "alice",
			},
		},

		"Creating an assignment without owner should fail.": {
			opts: lib.CreateAssignmentOpts{
				TaskID: "task-1",
			},
			expErr: true,
			expIs:  lib.ErrNotValid,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t)

			a, err := client.CreateAssignment(context.Background(), tt.opts)

			if tt.expErr {
				require.Error(t, err)
				if tt.expIs != nil {
					assert.True(t, errors.Is(err, tt.expIs))
				}
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, a.ID)
				if tt.opts.ID != "" {
					assert.Equal(t, tt.opts.ID, a.ID)
				}
			}
		})
	}
}

func TestCreateAssignmentAlreadyExists(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateAssignment(ctx, lib.CreateAssignmentOpts{ID: "a-1", TaskID: "task-1", Owner: "alice"})
	require.NoError(t, err)

	_, err = client.CreateAssignment(ctx, lib.CreateAssignmentOpts{ID: "a-1", TaskID: "task-1", Owner: "alice"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, lib.ErrAlreadyExists))
}

func TestDelegate(t *testing.T) {
	tests := map[string]struct {
		specs  []lib.DelegationSpec
		expErr bool
		expIs  error
	}{
		"Delegating to two users should create two pending delegations.": {
			specs: []lib.DelegationSpec{
				{UserID: "bob", Notes: "sections 1-3"},
				{UserID: "carol"},
			},
		},

		"Delegating twice to the same user should create independent delegations.": {
			specs: []lib.DelegationSpec{
				{UserID: "bob", Notes: "part one"},
				{UserID: "bob", Notes: "part two"},
			},
		},

		"An empty batch should fail.": {
			specs:  []lib.DelegationSpec{},
			expErr: true,
			expIs:  lib.ErrNotValid,
		},

		"A batch with a missing user should fail atomically.": {
			specs: []lib.DelegationSpec{
				{UserID: "bob"},
				{},
			},
			expErr: true,
			expIs:  lib.ErrNotValid,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t)
			a := newTestAssignment(t, client)
			ctx := context.Background()

			ds, err := client.Delegate(ctx, lib.DelegateOpts{
				ParentID: a.ID,
				Actor:    "alice",
				Specs:    tt.specs,
			})

			if tt.expErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expIs))

				got, err := client.GetAssignment(ctx, a.ID)
				require.NoError(t, err)
				assert.Equal(t, 0, got.SubDelegationCount)
			} else {
				require.NoError(t, err)
				require.Len(t, ds, len(tt.specs))
				for _, d := range ds {
					assert.Equal(t, lib.StatusPending, d.Status)
					assert.Equal(t, "alice", d.DelegatedByUserID)
				}

				got, err := client.GetAssignment(ctx, a.ID)
				require.NoError(t, err)
				assert.Equal(t, len(tt.specs), got.SubDelegationCount)
				assert.True(t, got.HasSubDelegations)
			}
		})
	}
}

func TestDelegationLifecycle(t *testing.T) {
	client := newTestClient(t)
	a := newTestAssignment(t, client)
	ctx := context.Background()

	ds, err := client.Delegate(ctx, lib.DelegateOpts{
		ParentID: a.ID,
		Actor:    "alice",
		Specs:    []lib.DelegationSpec{{UserID: "bob"}, {UserID: "carol"}},
	})
	require.NoError(t, err)
	require.Len(t, ds, 2)

	// Bob accepts and works.
	d, err := client.AcceptDelegation(ctx, ds[0].ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, lib.StatusAccepted, d.Status)
	assert.NotNil(t, d.AcceptedAt)

	d, err = client.StartDelegation(ctx, ds[0].ID, "bob", &lib.StartOpts{Progress: lib.Progress(60)})
	require.NoError(t, err)
	assert.Equal(t, lib.StatusInProgress, d.Status)
	assert.Equal(t, 60, d.Progress)

	// Carol starts directly from pending, acceptance is implied.
	d, err = client.StartDelegation(ctx, ds[1].ID, "carol", &lib.StartOpts{Progress: lib.Progress(40)})
	require.NoError(t, err)
	assert.NotNil(t, d.AcceptedAt)

	got, err := client.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)

	// Bob completes.
	d, err = client.CompleteDelegation(ctx, ds[0].ID, "bob", &lib.CompleteOpts{
		Notes: "done",
		Data:  map[string]interface{}{"hours": 12.0},
	})
	require.NoError(t, err)
	assert.Equal(t, lib.StatusCompleted, d.Status)
	assert.Equal(t, 100, d.Progress)
	assert.Equal(t, "done", d.CompletionNotes)

	got, err = client.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, got.Progress)
	assert.Equal(t, 1, got.CompletedSubDelegations)

	all, err := client.AllCompleted(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, all)

	// Carol completes, everything is done.
	_, err = client.CompleteDelegation(ctx, ds[1].ID, "carol", nil)
	require.NoError(t, err)

	all, err = client.AllCompleted(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, all)

	got, err = client.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
}

func TestDelegationInvalidTransition(t *testing.T) {
	client := newTestClient(t)
	a := newTestAssignment(t, client)
	ctx := context.Background()

	ds, err := client.Delegate(ctx, lib.DelegateOpts{
		ParentID: a.ID,
		Actor:    "alice",
		Specs:    []lib.DelegationSpec{{UserID: "bob"}},
	})
	require.NoError(t, err)

	_, err = client.CompleteDelegation(ctx, ds[0].ID, "bob", nil)
	require.NoError(t, err)

	// Completed is terminal.
	_, err = client.StartDelegation(ctx, ds[0].ID, "bob", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lib.ErrInvalidTransition))

	_, err = client.CancelDelegation(ctx, ds[0].ID, "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lib.ErrInvalidTransition))
}

func TestRemoveDelegation(t *testing.T) {
	client := newTestClient(t)
	a := newTestAssignment(t, client)
	ctx := context.Background()

	ds, err := client.Delegate(ctx, lib.DelegateOpts{
		ParentID: a.ID,
		Actor:    "alice",
		Specs:    []lib.DelegationSpec{{UserID: "bob"}, {UserID: "carol"}},
	})
	require.NoError(t, err)

	require.NoError(t, client.RemoveDelegation(ctx, ds[1].ID, "alice"))

	// Counters updated, live listing shrinks, audit listing keeps the row.
	got, err := client.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SubDelegationCount)

	live, err := client.ListDelegations(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Len(t, live, 1)

	all, err := client.ListDelegations(ctx, a.ID, &lib.ListDelegationsOpts{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	removed, err := client.GetDelegation(ctx, ds[1].ID)
	require.NoError(t, err)
	assert.NotNil(t, removed.DeletedAt)

	// A removed delegation can no longer transition.
	_, err = client.AcceptDelegation(ctx, ds[1].ID, "carol")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lib.ErrNotFound))
}

func TestGetDelegationNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetDelegation(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lib.ErrNotFound))
}

func TestEvents(t *testing.T) {
	client := newTestClient(t)
	a := newTestAssignment(t, client)
	ctx := context.Background()

	events, unsubscribe := client.Events(16)
	defer unsubscribe()

	ds, err := client.Delegate(ctx, lib.DelegateOpts{
		ParentID: a.ID,
		Actor:    "alice",
		Specs:    []lib.DelegationSpec{{UserID: "bob"}},
	})
	require.NoError(t, err)

	_, err = client.CompleteDelegation(ctx, ds[0].ID, "bob", nil)
	require.NoError(t, err)

	// delegated_to_you, delegation_completed, all_completed.
	var types []string
	for i := 0; i < 3; i++ {
		ev := <-events
		types = append(types, string(ev.Type))
	}
	assert.Equal(t, []string{"delegated_to_you", "delegation_completed", "all_completed"}, types)
}
