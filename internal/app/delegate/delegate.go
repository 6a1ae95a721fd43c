package delegate

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/edusys/delego/internal/log"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/notify"
	"github.com/edusys/delego/internal/storage"
)

// ServiceConfig is the configuration for the delegate service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Delegate"})
	return nil
}

// Service creates delegation batches on a parent assignment.
type Service struct {
	repo     storage.Repository
	notifier notify.Notifier
	logger   log.Logger
}

// NewService creates a new delegate service.
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

// DelegateOptions are the options for creating a delegation batch.
type DelegateOptions struct {
	ParentID string
	Specs    []model.DelegationSpec
	ActorID  string
}

func (o DelegateOptions) validate() error {
	if o.ParentID == "" {
		return fmt.Errorf("parent assignment id is required: %w", model.ErrNotValid)
	}
	if o.ActorID == "" {
		return fmt.Errorf("acting user id is required: %w", model.ErrNotValid)
	}
	if len(o.Specs) == 0 {
		return fmt.Errorf("at least one delegation is required: %w", model.ErrNotValid)
	}
	for i, spec := range o.Specs {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("delegation %d: %w", i, err)
		}
	}
	return nil
}

// Delegate creates one pending delegation per spec, all in one transaction,
// and bumps the parent's delegation counters. The same user may appear more
// than once, those are independent work items. On any invalid entry the
// whole batch is rejected and nothing is persisted.
func (s *Service) Delegate(ctx context.Context, opts DelegateOptions) ([]model.Delegation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var created []model.Delegation
	var events []notify.Event

	err := s.repo.UpdateParent(ctx, opts.ParentID, func(ctx context.Context, tx storage.Tx) error {
		created = created[:0]
		events = events[:0]

		parent := tx.Assignment()
		now := time.Now().UTC()

		for _, spec := range opts.Specs {
			d := model.Delegation{
				ID:                 ulid.Make().String(),
				TaskID:             parent.TaskID,
				ParentAssignmentID: parent.ID,
				DelegatedToUserID:  spec.UserID,
				DelegatedByUserID:  opts.ActorID,
				Status:             model.DelegationStatusPending,
				Notes:              spec.Notes,
				Deadline:           spec.Deadline,
				CreatedAt:          now,
			}

			if err := tx.CreateDelegation(ctx, d); err != nil {
				return fmt.Errorf("could not create delegation: %w", err)
			}
			created = append(created, d)

			payload := map[string]interface{}{
				"task_title": parent.TaskTitle,
			}
			if d.Deadline != nil {
				payload["deadline"] = d.Deadline.Format(time.RFC3339)
			}
			if d.Notes != "" {
				payload["notes"] = d.Notes
			}
			events = append(events, notify.NewEvent(notify.EventTypeDelegatedToYou, d.ID, d.TaskID, opts.ActorID, d.DelegatedToUserID, payload))
		}

		// New delegations are always pending, completed_sub_delegations is
		// untouched.
		parent.SubDelegationCount += len(created)
		parent.HasSubDelegations = parent.SubDelegationCount > 0

		if err := tx.SaveAssignment(ctx, *parent); err != nil {
			return fmt.Errorf("could not update parent assignment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Emitted only once the transaction is known to have committed, a rolled
	// back batch never notifies anyone.
	if err := s.notifier.Notify(ctx, events...); err != nil {
		s.logger.Warningf("Could not notify delegation events: %s", err)
	}

	s.logger.Infof("Created %d delegations on assignment %s", len(created), opts.ParentID)

	return created, nil
}
