package remove

import (
	"context"
	"fmt"

	"github.com/edusys/delego/internal/log"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/storage"
)

// ServiceConfig is the configuration for the remove service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Remove"})
	return nil
}

// Service soft-deletes delegations, keeping the parent's counters in sync.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// RemoveOptions are the options for removing a delegation.
type RemoveOptions struct {
	DelegationID string
	ActorID      string
}

func (o RemoveOptions) validate() error {
	if o.DelegationID == "" {
		return fmt.Errorf("delegation id is required: %w", model.ErrNotValid)
	}
	if o.ActorID == "" {
		return fmt.Errorf("acting user id is required: %w", model.ErrNotValid)
	}
	return nil
}

// Remove soft-deletes a delegation and updates the parent's delegation
// counters. The row stays queryable for audit. The parent's aggregated
// progress is deliberately not recomputed here, the deleted delegation's
// historical contribution stays frozen until the next recompute.
func (s *Service) Remove(ctx context.Context, opts RemoveOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	d, err := s.repo.GetDelegation(ctx, opts.DelegationID)
	if err != nil {
		return fmt.Errorf("could not get delegation: %w", err)
	}

	err = s.repo.UpdateParent(ctx, d.ParentAssignmentID, func(ctx context.Context, tx storage.Tx) error {
		cur, err := tx.GetDelegation(ctx, opts.DelegationID)
		if err != nil {
			return fmt.Errorf("could not get delegation: %w", err)
		}
		if cur.Deleted() {
			// Repeated deletes are a no-op so retried requests don't fail.
			return nil
		}

		if err := tx.SoftDeleteDelegation(ctx, cur.ID); err != nil {
			return fmt.Errorf("could not soft delete delegation: %w", err)
		}

		parent := tx.Assignment()
		if parent.SubDelegationCount > 0 {
			parent.SubDelegationCount--
		}
		if cur.Status == model.DelegationStatusCompleted && parent.CompletedSubDelegations > 0 {
			parent.CompletedSubDelegations--
		}
		parent.HasSubDelegations = parent.SubDelegationCount > 0

		if err := tx.SaveAssignment(ctx, *parent); err != nil {
			return fmt.Errorf("could not update parent assignment: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infof("Removed delegation %s by %s", opts.DelegationID, opts.ActorID)

	return nil
}
