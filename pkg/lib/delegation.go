package lib

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/edusys/delego/internal/app/delegate"
	"github.com/edusys/delego/internal/app/progress"
	"github.com/edusys/delego/internal/app/remove"
	"github.com/edusys/delego/internal/app/status"
	"github.com/edusys/delego/internal/model"
)

// CreateAssignment registers a parent assignment so it can receive delegations.
//
// Returns [ErrAlreadyExists] if an assignment with the same ID exists, or
// [ErrNotValid] on missing fields.
func (c *Client) CreateAssignment(ctx context.Context, opts CreateAssignmentOpts) (*Assignment, error) {
	id := opts.ID
	if id == "" {
		id = ulid.Make().String()
	}

	a := model.Assignment{
		ID:          id,
		TaskID:      opts.TaskID,
		TaskTitle:   opts.Title,
		OwnerUserID: opts.Owner,
	}
	if err := a.Validate(); err != nil {
		return nil, mapError(err)
	}

	if err := c.repo.CreateAssignment(ctx, a); err != nil {
		return nil, mapError(err)
	}

	result := fromInternalAssignment(a)
	return &result, nil
}

// GetAssignment returns the parent assignment with its aggregated view.
//
// Returns [ErrNotFound] if the assignment does not exist.
func (c *Client) GetAssignment(ctx context.Context, id string) (*Assignment, error) {
	a, err := c.repo.GetAssignment(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalAssignment(*a)
	return &result, nil
}

// Delegate creates one pending delegation per spec on the parent assignment.
//
// The batch is atomic: either every delegation is created or none is. The
// same user may appear in several specs, those are independent work items.
//
// Returns [ErrNotFound] if the parent does not exist, or [ErrNotValid] on an
// empty or invalid batch.
func (c *Client) Delegate(ctx context.Context, opts DelegateOpts) ([]Delegation, error) {
	svc, err := delegate.NewService(delegate.ServiceConfig{
		Repository: c.repo,
		Notifier:   c.events,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	created, err := svc.Delegate(ctx, delegate.DelegateOptions{
		ParentID: opts.ParentID,
		Specs:    toInternalSpecs(opts.Specs),
		ActorID:  opts.Actor,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalDelegationList(created), nil
}

// AcceptDelegation marks a pending delegation as accepted by the delegate.
//
// Accepting an already accepted delegation is a no-op. Returns
// [ErrInvalidTransition] when the delegation is beyond acceptance.
func (c *Client) AcceptDelegation(ctx context.Context, delegationID, actor string) (*Delegation, error) {
	return c.updateStatus(ctx, delegationID, actor, model.DelegationStatusAccepted, model.TransitionPayload{})
}

// StartDelegation marks a delegation as in progress, optionally reporting
// progress. Starting from pending implies acceptance. Pass nil opts to start
// without a progress value.
//
// Returns [ErrNotValid] if the progress is out of the 0-100 range.
func (c *Client) StartDelegation(ctx context.Context, delegationID, actor string, opts *StartOpts) (*Delegation, error) {
	payload := model.TransitionPayload{}
	if opts != nil {
		payload.Progress = opts.Progress
	}
	return c.updateStatus(ctx, delegationID, actor, model.DelegationStatusInProgress, payload)
}

// CompleteDelegation marks a delegation as completed, forcing its progress to
// 100 and recording the optional notes and data. Pass nil opts to complete
// without them.
//
// When this completion is the one that completes every active delegation of
// the parent, an all completed event fires towards the assignment owner.
func (c *Client) CompleteDelegation(ctx context.Context, delegationID, actor string, opts *CompleteOpts) (*Delegation, error) {
	payload := model.TransitionPayload{}
	if opts != nil {
		payload.CompletionNotes = opts.Notes
		payload.CompletionData = opts.Data
	}
	return c.updateStatus(ctx, delegationID, actor, model.DelegationStatusCompleted, payload)
}

// CancelDelegation cancels a delegation, keeping its progress at the
// cancellation value for audit. Cancelled delegations no longer count towards
// the parent's aggregated progress.
//
// Returns [ErrInvalidTransition] if the delegation already reached a terminal
// status.
func (c *Client) CancelDelegation(ctx context.Context, delegationID, actor string) (*Delegation, error) {
	return c.updateStatus(ctx, delegationID, actor, model.DelegationStatusCancelled, model.TransitionPayload{})
}

func (c *Client) updateStatus(ctx context.Context, delegationID, actor string, target model.DelegationStatus, payload model.TransitionPayload) (*Delegation, error) {
	svc, err := status.NewService(status.ServiceConfig{
		Repository: c.repo,
		Notifier:   c.events,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	d, err := svc.Update(ctx, status.UpdateOptions{
		DelegationID: delegationID,
		Target:       target,
		Payload:      payload,
		ActorID:      actor,
	})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalDelegation(*d)
	return &result, nil
}

// RemoveDelegation soft-deletes a delegation. The row stays readable through
// [Client.GetDelegation] and audit listings, and the parent's counters are
// updated. Removing an already removed delegation is a no-op.
//
// Returns [ErrNotFound] if the delegation never existed.
func (c *Client) RemoveDelegation(ctx context.Context, delegationID, actor string) error {
	svc, err := remove.NewService(remove.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Remove(ctx, remove.RemoveOptions{
		DelegationID: delegationID,
		ActorID:      actor,
	})
	if err != nil {
		return mapError(err)
	}

	return nil
}

// GetDelegation returns a delegation by ID, soft-deleted ones included so
// they stay readable for audit.
//
// Returns [ErrNotFound] if the delegation does not exist.
func (c *Client) GetDelegation(ctx context.Context, id string) (*Delegation, error) {
	d, err := c.repo.GetDelegation(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalDelegation(*d)
	return &result, nil
}

// ListDelegations returns the delegations of a parent assignment ordered by
// creation time. Pass nil opts to list only live delegations.
func (c *Client) ListDelegations(ctx context.Context, parentID string, opts *ListDelegationsOpts) ([]Delegation, error) {
	includeDeleted := opts != nil && opts.IncludeDeleted

	ds, err := c.repo.ListDelegationsByParent(ctx, parentID, includeDeleted)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalDelegationList(ds), nil
}

// RecomputeProgress recalculates the parent assignment's aggregated progress
// from its active delegations and persists it when changed. Returns the
// resulting progress.
//
// Returns [ErrNotFound] if the assignment does not exist.
func (c *Client) RecomputeProgress(ctx context.Context, parentID string) (int, error) {
	svc, err := progress.NewService(progress.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return 0, fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.CalculateParentProgress(ctx, parentID)
	if err != nil {
		return 0, mapError(err)
	}

	return p, nil
}

// AllCompleted reports whether every active delegation of the parent is
// completed. With no active delegations it is vacuously true.
//
// Returns [ErrNotFound] if the assignment does not exist.
func (c *Client) AllCompleted(ctx context.Context, parentID string) (bool, error) {
	svc, err := progress.NewService(progress.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return false, fmt.Errorf("could not create service: %w", err)
	}

	all, err := svc.AreAllCompleted(ctx, parentID)
	if err != nil {
		return false, mapError(err)
	}

	return all, nil
}
