package status

import (
	"context"
	"fmt"
	"time"

	"github.com/edusys/delego/internal/log"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/notify"
	"github.com/edusys/delego/internal/storage"
)

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	Repository storage.Repository
	Notifier   notify.Notifier
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Notifier == nil {
		c.Notifier = notify.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})
	return nil
}

// Service applies delegation status transitions and keeps the parent
// assignment's counters and aggregated progress in sync.
type Service struct {
	repo     storage.Repository
	notifier notify.Notifier
	logger   log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:     cfg.Repository,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}, nil
}

// UpdateOptions are the options for a status transition.
type UpdateOptions struct {
	DelegationID string
	Target       model.DelegationStatus
	Payload      model.TransitionPayload
	ActorID      string
}

func (o UpdateOptions) validate() error {
	if o.DelegationID == "" {
		return fmt.Errorf("delegation id is required: %w", model.ErrNotValid)
	}
	if o.ActorID == "" {
		return fmt.Errorf("acting user id is required: %w", model.ErrNotValid)
	}
	return nil
}

// Update applies a status transition on a delegation, recomputes the parent
// assignment's aggregate progress, and emits the matching notification
// events once the transaction committed. Re-applying the current status is
// an idempotent no-op that writes and notifies nothing.
func (s *Service) Update(ctx context.Context, opts UpdateOptions) (*model.Delegation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// Resolve the parent so the transaction can lock it.
	d, err := s.repo.GetDelegation(ctx, opts.DelegationID)
	if err != nil {
		return nil, fmt.Errorf("could not get delegation: %w", err)
	}

	var updated *model.Delegation
	var events []notify.Event

	err = s.repo.UpdateParent(ctx, d.ParentAssignmentID, func(ctx context.Context, tx storage.Tx) error {
		events = events[:0]

		cur, err := tx.GetDelegation(ctx, opts.DelegationID)
		if err != nil {
			return fmt.Errorf("could not get delegation: %w", err)
		}
		if cur.Deleted() {
			return fmt.Errorf("delegation %s: %w", cur.ID, model.ErrNotFound)
		}

		if cur.Status == opts.Target {
			updated = cur
			return nil
		}

		next, err := model.ApplyTransition(*cur, opts.Target, opts.Payload, time.Now().UTC())
		if err != nil {
			return err
		}

		parent := tx.Assignment()

		ds, err := tx.ListDelegations(ctx, false)
		if err != nil {
			return fmt.Errorf("could not list delegations: %w", err)
		}
		before := model.AggregateProgress(parent.Progress, ds)

		if err := tx.SaveDelegation(ctx, next); err != nil {
			return fmt.Errorf("could not save delegation: %w", err)
		}

		// Completed counter bookkeeping. The decrement branch is unreachable
		// through the transition table (completed is terminal) but guards
		// against drift if that ever changes.
		if next.Status == model.DelegationStatusCompleted && cur.Status != model.DelegationStatusCompleted {
			parent.CompletedSubDelegations++
		}
		if cur.Status == model.DelegationStatusCompleted && next.Status != model.DelegationStatusCompleted && parent.CompletedSubDelegations > 0 {
			parent.CompletedSubDelegations--
		}

		for i := range ds {
			if ds[i].ID == next.ID {
				ds[i] = next
			}
		}
		after := model.AggregateProgress(parent.Progress, ds)
		parent.Progress = after.Progress

		if err := tx.SaveAssignment(ctx, *parent); err != nil {
			return fmt.Errorf("could not update parent assignment: %w", err)
		}

		events = append(events, transitionEvent(*cur, next, opts.ActorID, parent.TaskTitle))

		// all_completed fires exactly once: only the completion that tips the
		// whole set over announces it. Cancelling the last active delegation
		// leaves the set vacuously complete but announces nothing.
		if next.Status == model.DelegationStatusCompleted && after.AllCompleted && !before.AllCompleted {
			events = append(events, notify.NewEvent(
				notify.EventTypeAllCompleted, parent.ID, parent.TaskID, opts.ActorID, parent.OwnerUserID,
				map[string]interface{}{
					"task_title": parent.TaskTitle,
					"progress":   after.Progress,
				},
			))
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Notify(ctx, events...); err != nil {
		s.logger.Warningf("Could not notify status events: %s", err)
	}

	s.logger.Infof("Delegation %s moved to %s", opts.DelegationID, updated.Status)

	return updated, nil
}

func transitionEvent(from, to model.Delegation, actorID, taskTitle string) notify.Event {
	payload := map[string]interface{}{
		"task_title": taskTitle,
		"from":       string(from.Status),
		"to":         string(to.Status),
		"progress":   to.Progress,
	}

	switch to.Status {
	case model.DelegationStatusAccepted:
		return notify.NewEvent(notify.EventTypeDelegationAccepted, to.ID, to.TaskID, actorID, to.DelegatedByUserID, payload)
	case model.DelegationStatusCompleted:
		if to.CompletionNotes != "" {
			payload["completion_notes"] = to.CompletionNotes
		}
		return notify.NewEvent(notify.EventTypeDelegationCompleted, to.ID, to.TaskID, actorID, to.DelegatedByUserID, payload)
	default:
		return notify.NewEvent(notify.EventTypeStatusChanged, to.ID, to.TaskID, actorID, to.DelegatedByUserID, payload)
	}
}
