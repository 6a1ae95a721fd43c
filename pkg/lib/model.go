package lib

import (
	"errors"
	"time"

	"github.com/edusys/delego/internal/model"
)

var (
	// ErrNotFound is returned when a resource does not exist (or is soft-deleted).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource with the same ID already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input or payloads.
	ErrNotValid = errors.New("not valid")
	// ErrInvalidTransition is returned when a status change is not allowed from
	// the delegation's current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict is returned when a concurrent update won, retry the operation.
	ErrConflict = errors.New("conflict")
)

// DelegationStatus represents the lifecycle state of a delegation.
//
// The typical lifecycle is:
//
//	pending -> accepted -> in_progress -> completed
//
// A delegation can be cancelled from any non-terminal status. Starting work
// directly from pending implies acceptance.
type DelegationStatus string

const (
	// StatusPending indicates the delegation is waiting for the delegate.
	StatusPending DelegationStatus = "pending"
	// StatusAccepted indicates the delegate accepted the work.
	StatusAccepted DelegationStatus = "accepted"
	// StatusInProgress indicates the delegate is working and reporting progress.
	StatusInProgress DelegationStatus = "in_progress"
	// StatusCompleted indicates the work is done. Terminal.
	StatusCompleted DelegationStatus = "completed"
	// StatusCancelled indicates the delegation was called off. Terminal, the
	// progress at cancellation time is kept for audit.
	StatusCancelled DelegationStatus = "cancelled"
)

// Delegation represents a delegated piece of work returned by the SDK.
//
// This is a read-only snapshot of the delegation state at the time of the API
// call. Use [Client.GetDelegation] to get the latest state.
type Delegation struct {
	// ID is the unique identifier (ULID) assigned at creation.
	ID string
	// TaskID is the task this delegation belongs to.
	TaskID string
	// ParentAssignmentID is the assignment this delegation hangs from.
	ParentAssignmentID string
	// DelegatedToUserID is the user doing the work.
	DelegatedToUserID string
	// DelegatedByUserID is the user that delegated the work.
	DelegatedByUserID string
	// Status is the current lifecycle state.
	Status DelegationStatus
	// Progress is the reported progress percentage (0-100).
	Progress int
	// Notes are the instructions given at delegation time.
	Notes string
	// Deadline is the optional deadline. Nil if none was set.
	Deadline *time.Time
	// CompletionNotes are the notes reported at completion. Empty until completed.
	CompletionNotes string
	// CompletionData is the structured result reported at completion.
	CompletionData map[string]interface{}
	// CreatedAt is when the delegation was created.
	CreatedAt time.Time
	// AcceptedAt is when the delegation was accepted. Nil if never accepted.
	AcceptedAt *time.Time
	// StartedAt is when work started. Nil if never started.
	StartedAt *time.Time
	// CompletedAt is when the work completed. Nil if not completed.
	CompletedAt *time.Time
	// CancelledAt is when the delegation was cancelled. Nil if not cancelled.
	CancelledAt *time.Time
	// DeletedAt is when the delegation was removed. Nil for live delegations.
	DeletedAt *time.Time
}

// Assignment represents a parent assignment with its aggregated delegation view.
type Assignment struct {
	// ID is the unique identifier.
	ID string
	// TaskID is the task the assignment belongs to.
	TaskID string
	// TaskTitle is the task title shown in notifications.
	TaskTitle string
	// OwnerUserID is the user that owns the assignment.
	OwnerUserID string
	// Progress is the aggregated progress percentage (0-100).
	Progress int
	// HasSubDelegations is true while the assignment has live delegations.
	HasSubDelegations bool
	// SubDelegationCount is the number of live delegations.
	SubDelegationCount int
	// CompletedSubDelegations is the number of live completed delegations.
	CompletedSubDelegations int
}

// DelegationSpec describes one delegation to create.
type DelegationSpec struct {
	// UserID is the user to delegate to (required). The same user may appear
	// in several specs of a batch, those are independent work items.
	UserID string
	// Deadline is an optional deadline.
	Deadline *time.Time
	// Notes are optional instructions for the delegate.
	Notes string
}

// CreateAssignmentOpts configures assignment registration.
//
// TaskID and Owner are required. ID is generated when omitted.
type CreateAssignmentOpts struct {
	// ID is the assignment ID. Generated (ULID) when empty.
	ID string
	// TaskID is the task the assignment belongs to (required).
	TaskID string
	// Title is the task title shown in notifications.
	Title string
	// Owner is the user that owns the assignment (required).
	Owner string
}

// DelegateOpts configures delegation batch creation.
//
// ParentID, Actor and at least one spec are required. The batch is atomic: on
// any invalid entry nothing is persisted.
type DelegateOpts struct {
	// ParentID is the parent assignment ID (required).
	ParentID string
	// Actor is the user performing the delegation (required).
	Actor string
	// Specs are the delegations to create (at least one required).
	Specs []DelegationSpec
}

// StartOpts configures starting work on a delegation.
//
// Pass nil to [Client.StartDelegation] to start without reporting progress.
type StartOpts struct {
	// Progress is the reported progress percentage (0-100). Nil keeps the
	// current value.
	Progress *int
}

// Progress is a helper to build the optional progress value of [StartOpts].
func Progress(p int) *int { return &p }

// CompleteOpts configures delegation completion.
//
// Pass nil to [Client.CompleteDelegation] to complete without notes or data.
type CompleteOpts struct {
	// Notes are free-form completion notes.
	Notes string
	// Data is a structured completion result.
	Data map[string]interface{}
}

// ListDelegationsOpts configures delegation listing.
//
// Pass nil to [Client.ListDelegations] to list only live delegations.
type ListDelegationsOpts struct {
	// IncludeDeleted also returns soft-deleted delegations (for audit).
	IncludeDeleted bool
}

// --- Internal conversion helpers ---

func toInternalSpecs(specs []DelegationSpec) []model.DelegationSpec {
	result := make([]model.DelegationSpec, len(specs))
	for i, s := range specs {
		result[i] = model.DelegationSpec{
			UserID:   s.UserID,
			Deadline: s.Deadline,
			Notes:    s.Notes,
		}
	}
	return result
}

func fromInternalDelegation(d model.Delegation) Delegation {
	return Delegation{
		ID:                 d.ID,
		TaskID:             d.TaskID,
		ParentAssignmentID: d.ParentAssignmentID,
		DelegatedToUserID:  d.DelegatedToUserID,
		DelegatedByUserID:  d.DelegatedByUserID,
		Status:             DelegationStatus(d.Status),
		Progress:           d.Progress,
		Notes:              d.Notes,
		Deadline:           d.Deadline,
		CompletionNotes:    d.CompletionNotes,
		CompletionData:     d.CompletionData,
		CreatedAt:          d.CreatedAt,
		AcceptedAt:         d.AcceptedAt,
		StartedAt:          d.StartedAt,
		CompletedAt:        d.CompletedAt,
		CancelledAt:        d.CancelledAt,
		DeletedAt:          d.DeletedAt,
	}
}

func fromInternalDelegationList(ds []model.Delegation) []Delegation {
	result := make([]Delegation, len(ds))
	for i, d := range ds {
		result[i] = fromInternalDelegation(d)
	}
	return result
}

func fromInternalAssignment(a model.Assignment) Assignment {
	return Assignment{
		ID:                      a.ID,
		TaskID:                  a.TaskID,
		TaskTitle:               a.TaskTitle,
		OwnerUserID:             a.OwnerUserID,
		Progress:                a.Progress,
		HasSubDelegations:       a.HasSubDelegations,
		SubDelegationCount:      a.SubDelegationCount,
		CompletedSubDelegations: a.CompletedSubDelegations,
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrInvalidTransition):
		return joinErrors(err, ErrInvalidTransition)
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrConflict):
		return joinErrors(err, ErrConflict)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
