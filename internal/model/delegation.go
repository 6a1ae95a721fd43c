package model

import (
	"fmt"
	"time"
)

// DelegationStatus represents the lifecycle state of a delegation.
type DelegationStatus string

const (
	// DelegationStatusPending indicates the delegation has been handed to the
	// delegate but not accepted yet.
	DelegationStatusPending DelegationStatus = "pending"
	// DelegationStatusAccepted indicates the delegate accepted the work.
	DelegationStatusAccepted DelegationStatus = "accepted"
	// DelegationStatusInProgress indicates the delegate is working on it.
	DelegationStatusInProgress DelegationStatus = "in_progress"
	// DelegationStatusCompleted indicates the work is done (terminal).
	DelegationStatusCompleted DelegationStatus = "completed"
	// DelegationStatusCancelled indicates the delegation was called off (terminal).
	DelegationStatusCancelled DelegationStatus = "cancelled"
)

// Validate validates the delegation status value.
func (s DelegationStatus) Validate() error {
	switch s {
	case DelegationStatusPending, DelegationStatusAccepted, DelegationStatusInProgress,
		DelegationStatusCompleted, DelegationStatusCancelled:
		return nil
	}
	return fmt.Errorf("unknown delegation status %q: %w", s, ErrNotValid)
}

// Terminal returns true when no further transition is legal out of the status.
func (s DelegationStatus) Terminal() bool {
	return s == DelegationStatusCompleted || s == DelegationStatusCancelled
}

// Delegation is one unit of work handed from the holder of a task assignment
// to a single delegate. Many delegations can reference the same parent
// assignment, each with an independent lifecycle.
type Delegation struct {
	ID                 string
	TaskID             string
	ParentAssignmentID string
	DelegatedToUserID  string
	DelegatedByUserID  string
	Status             DelegationStatus
	Progress           int // 0-100.
	Notes              string
	Deadline           *time.Time
	CompletionNotes    string
	CompletionData     map[string]interface{}
	AcceptedAt         *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CreatedAt          time.Time

	// DeletedAt marks a soft-deleted delegation. Soft-deleted delegations are
	// excluded from counts and aggregation but remain queryable for audit.
	DeletedAt *time.Time
}

// Deleted returns true when the delegation has been soft-deleted.
func (d Delegation) Deleted() bool { return d.DeletedAt != nil }

// DelegationSpec is one entry of a delegation batch.
type DelegationSpec struct {
	UserID   string
	Deadline *time.Time
	Notes    string
}

// Validate validates the delegation batch entry.
func (s DelegationSpec) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("user id is required: %w", ErrNotValid)
	}
	return nil
}
