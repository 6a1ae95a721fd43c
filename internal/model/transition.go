package model

import (
	"fmt"
	"time"
)

// TransitionPayload carries the optional data a caller can attach to a status
// transition.
type TransitionPayload struct {
	// Progress is an optional 0-100 value, honored on transitions into
	// in_progress. Completions always force progress to 100.
	Progress *int
	// CompletionNotes and CompletionData are stored on transitions into
	// completed.
	CompletionNotes string
	CompletionData  map[string]interface{}
}

type transitionKey struct {
	from DelegationStatus
	to   DelegationStatus
}

type transitionFunc func(d Delegation, p TransitionPayload, now time.Time) (Delegation, error)

// transitions is the legal transition table. Adding a state means adding
// entries here, not another branch in a conditional.
var transitions = map[transitionKey]transitionFunc{
	{DelegationStatusPending, DelegationStatusAccepted}: applyAccept,

	// pending -> in_progress is an implicit accept.
	{DelegationStatusPending, DelegationStatusInProgress}:  applyStart,
	{DelegationStatusAccepted, DelegationStatusInProgress}: applyStart,

	{DelegationStatusPending, DelegationStatusCompleted}:    applyComplete,
	{DelegationStatusAccepted, DelegationStatusCompleted}:   applyComplete,
	{DelegationStatusInProgress, DelegationStatusCompleted}: applyComplete,

	{DelegationStatusPending, DelegationStatusCancelled}:    applyCancel,
	{DelegationStatusAccepted, DelegationStatusCancelled}:   applyCancel,
	{DelegationStatusInProgress, DelegationStatusCancelled}: applyCancel,
}

// ApplyTransition validates a status transition and returns the updated
// delegation, leaving the received one untouched. Re-applying the status the
// delegation is already in is a no-op success so retried requests don't fail.
func ApplyTransition(d Delegation, target DelegationStatus, p TransitionPayload, now time.Time) (Delegation, error) {
	if err := target.Validate(); err != nil {
		return Delegation{}, err
	}

	if d.Status == target {
		return d, nil
	}

	fn, ok := transitions[transitionKey{from: d.Status, to: target}]
	if !ok {
		return Delegation{}, InvalidTransitionError{From: d.Status, To: target}
	}

	return fn(d, p, now)
}

func applyAccept(d Delegation, _ TransitionPayload, now time.Time) (Delegation, error) {
	d.Status = DelegationStatusAccepted
	if d.AcceptedAt == nil {
		d.AcceptedAt = &now
	}
	return d, nil
}

func applyStart(d Delegation, p TransitionPayload, now time.Time) (Delegation, error) {
	if d.AcceptedAt == nil {
		d.AcceptedAt = &now
	}
	d.Status = DelegationStatusInProgress
	if d.StartedAt == nil {
		d.StartedAt = &now
	}

	if p.Progress != nil {
		if *p.Progress < 0 || *p.Progress > 100 {
			return Delegation{}, fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
		}
		d.Progress = *p.Progress
	}

	return d, nil
}

func applyComplete(d Delegation, p TransitionPayload, now time.Time) (Delegation, error) {
	d.Status = DelegationStatusCompleted
	d.Progress = 100 // Forced, regardless of payload.
	if d.CompletedAt == nil {
		d.CompletedAt = &now
	}
	if p.CompletionNotes != "" {
		d.CompletionNotes = p.CompletionNotes
	}
	if p.CompletionData != nil {
		d.CompletionData = p.CompletionData
	}
	return d, nil
}

func applyCancel(d Delegation, _ TransitionPayload, now time.Time) (Delegation, error) {
	d.Status = DelegationStatusCancelled
	if d.CancelledAt == nil {
		d.CancelledAt = &now
	}
	// Progress is retained for audit, aggregation ignores cancelled delegations.
	return d, nil
}
