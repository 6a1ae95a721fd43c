package model

import "fmt"

// Assignment represents a task's assignment to a responsible party. It is
// created and owned by the assignment subsystem; this engine only mutates its
// progress and the delegation bookkeeping counters.
type Assignment struct {
	ID          string
	TaskID      string
	TaskTitle   string // Denormalized task title, used in notification payloads.
	OwnerUserID string // The delegator that holds the assignment.

	Progress                int // 0-100, derived from the active delegations.
	HasSubDelegations       bool
	SubDelegationCount      int
	CompletedSubDelegations int
}

// Validate validates the assignment.
func (a Assignment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if a.TaskID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}
	if a.OwnerUserID == "" {
		return fmt.Errorf("owner user id is required: %w", ErrNotValid)
	}
	if a.Progress < 0 || a.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
	}
	return nil
}
