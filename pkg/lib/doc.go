// Package lib provides a Go SDK for managing task delegations programmatically.
//
// This package allows applications to delegate assignments, drive delegation
// lifecycles and read aggregated progress without shelling out to the delego
// CLI binary. It is useful for scripting, automation, and building tools on
// top of delego.
//
// # Quick Start
//
// Create a client, delegate work, and drive the delegation lifecycle:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Register the parent assignment.
//	a, err := client.CreateAssignment(ctx, lib.CreateAssignmentOpts{
//	    TaskID: "task-1",
//	    Title:  "Quarterly report",
//	    Owner:  "alice",
//	})
//
//	// Delegate two pieces of it.
//	ds, err := client.Delegate(ctx, lib.DelegateOpts{
//	    ParentID: a.ID,
//	    Actor:    "alice",
//	    Specs: []lib.DelegationSpec{
//	        {UserID: "bob", Notes: "sections 1-3"},
//	        {UserID: "carol"},
//	    },
//	})
//
//	// Drive the lifecycle.
//	client.AcceptDelegation(ctx, ds[0].ID, "bob")
//	client.StartDelegation(ctx, ds[0].ID, "bob", &lib.StartOpts{Progress: lib.Progress(60)})
//	client.CompleteDelegation(ctx, ds[0].ID, "bob", &lib.CompleteOpts{Notes: "done"})
//
// # Progress Aggregation
//
// The parent assignment's progress is the average of its active delegations,
// cancelled and removed ones excluded. It is kept in sync on every status
// change and can be recomputed on demand:
//
//	progress, _ := client.RecomputeProgress(ctx, a.ID)
//	allDone, _ := client.AllCompleted(ctx, a.ID)
//
// # Events
//
// Subscribe to the notification events the engine emits (delegation created,
// accepted, completed, all completed):
//
//	events, unsubscribe := client.Events(16)
//	defer unsubscribe()
//	go func() {
//	    for ev := range events {
//	        fmt.Printf("%s -> %s\n", ev.Type, ev.Recipient)
//	    }
//	}()
//
// Events are emitted only after the storage transaction committed. A
// subscriber with a full buffer misses events instead of blocking the engine.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist (or is soft-deleted).
//   - [ErrAlreadyExists]: Resource with the same ID already exists.
//   - [ErrNotValid]: Invalid input or payload.
//   - [ErrInvalidTransition]: The requested status change is not allowed.
//   - [ErrConflict]: A concurrent update won, retry the operation.
//
// # Testing
//
// Use a temporary database path to write tests without touching the real
// store:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    DBPath: filepath.Join(t.TempDir(), "test.db"),
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. The
// underlying storage uses SQLite with WAL mode, and updates of the same
// parent assignment are serialized by the engine.
package lib
