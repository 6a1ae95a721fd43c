package progress

import (
	"context"
	"fmt"

	"github.com/edusys/delego/internal/log"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/storage"
)

// ServiceConfig is the configuration for the progress service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Progress"})
	return nil
}

// Service exposes the parent assignment's aggregated progress view to
// read-side callers such as reporting.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new progress service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// CalculateParentProgress recomputes the aggregated progress of a parent
// assignment and persists it when it changed. The write is skipped when the
// value is numerically unchanged, so downstream listeners see no redundant
// updates.
func (s *Service) CalculateParentProgress(ctx context.Context, parentID string) (int, error) {
	if parentID == "" {
		return 0, fmt.Errorf("parent assignment id is required: %w", model.ErrNotValid)
	}

	var result int
	err := s.repo.UpdateParent(ctx, parentID, func(ctx context.Context, tx storage.Tx) error {
		parent := tx.Assignment()

		ds, err := tx.ListDelegations(ctx, false)
		if err != nil {
			return fmt.Errorf("could not list delegations: %w", err)
		}

		agg := model.AggregateProgress(parent.Progress, ds)
		result = agg.Progress

		if agg.Progress == parent.Progress {
			return nil
		}

		parent.Progress = agg.Progress
		if err := tx.SaveAssignment(ctx, *parent); err != nil {
			return fmt.Errorf("could not update parent assignment: %w", err)
		}

		s.logger.Debugf("Assignment %s progress recomputed to %d", parentID, agg.Progress)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return result, nil
}

// AreAllCompleted reports whether every active delegation of the parent is
// completed, without writing anything. With no active delegations the flag
// is vacuously true, callers deciding completion side effects must guard for
// that.
func (s *Service) AreAllCompleted(ctx context.Context, parentID string) (bool, error) {
	if parentID == "" {
		return false, fmt.Errorf("parent assignment id is required: %w", model.ErrNotValid)
	}

	parent, err := s.repo.GetAssignment(ctx, parentID)
	if err != nil {
		return false, fmt.Errorf("could not get assignment: %w", err)
	}

	ds, err := s.repo.ListDelegationsByParent(ctx, parentID, false)
	if err != nil {
		return false, fmt.Errorf("could not list delegations: %w", err)
	}

	return model.AggregateProgress(parent.Progress, ds).AllCompleted, nil
}
