package lib_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edusys/delego/pkg/lib"
)

// This example shows how to create a client with a temporary database for testing.
func Example_testing() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "delego-example-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "delego.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Register an assignment.
	a, err := client.CreateAssignment(ctx, lib.CreateAssignmentOpts{
		TaskID: "task-1",
		Title:  "Quarterly report",
		Owner:  "alice",
	})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Created assignment for: %s (owner: %s)\n", a.TaskTitle, a.OwnerUserID)

	// Output:
	// Created assignment for: Quarterly report (owner: alice)
}

// This example shows the full delegation lifecycle: delegate, accept, start,
// complete, and the aggregated progress along the way.
func Example_lifecycle() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "delego-example-lifecycle-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "delego.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	a, err := client.CreateAssignment(ctx, lib.CreateAssignmentOpts{
		TaskID: "task-1",
		Title:  "Quarterly report",
		Owner:  "alice",
	})
	if err != nil {
		panic(err)
	}

	ds, err := client.Delegate(ctx, lib.DelegateOpts{
		ParentID: a.ID,
		Actor:    "alice",
		Specs: []lib.DelegationSpec{
			{UserID: "bob", Notes: "sections 1-3"},
			{UserID: "carol", Notes: "sections 4-6"},
		},
	})
	if err != nil {
		panic(err)
	}

	// Bob works through the lifecycle.
	if _, err := client.AcceptDelegation(ctx, ds[0].ID, "bob"); err != nil {
		panic(err)
	}
	if _, err := client.StartDelegation(ctx, ds[0].ID, "bob", &lib.StartOpts{Progress: lib.Progress(60)}); err != nil {
		panic(err)
	}

	progress, err := client.RecomputeProgress(ctx, a.ID)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Progress: %d%%\n", progress)

	if _, err := client.CompleteDelegation(ctx, ds[0].ID, "bob", &lib.CompleteOpts{Notes: "done"}); err != nil {
		panic(err)
	}
	if _, err := client.CompleteDelegation(ctx, ds[1].ID, "carol", nil); err != nil {
		panic(err)
	}

	all, err := client.AllCompleted(ctx, a.ID)
	if err != nil {
		panic(err)
	}
	fmt.Printf("All completed: %v\n", all)

	// Output:
	// Progress: 30%
	// All completed: true
}

// This example shows error inspection with errors.Is.
func Example_errorHandling() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "delego-example-errors-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "delego.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	_, err = client.GetDelegation(ctx, "does-not-exist")
	fmt.Printf("Not found: %v\n", errors.Is(err, lib.ErrNotFound))

	// Output:
	// Not found: true
}
