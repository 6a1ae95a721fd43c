package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edusys/delego/internal/model"
)

func TestAggregateProgress(t *testing.T) {
	now := time.Now().UTC()

	type d struct {
		status   model.DelegationStatus
		progress int
		deleted  bool
	}

	mkDelegations := func(specs []d) []model.Delegation {
		ds := make([]model.Delegation, 0, len(specs))
		for _, s := range specs {
			dl := model.Delegation{Status: s.status, Progress: s.progress}
			if s.deleted {
				dl.DeletedAt = &now
			}
			ds = append(ds, dl)
		}
		return ds
	}

	tests := map[string]struct {
		current         int
		delegations     []d
		expProgress     int
		expAllCompleted bool
	}{
		"No delegations should keep the current progress and report vacuous completion": {
			current:         42,
			delegations:     nil,
			expProgress:     42,
			expAllCompleted: true,
		},

		"Only cancelled delegations should behave like an empty set": {
			current: 17,
			delegations: []d{
				{status: model.DelegationStatusCancelled, progress: 50},
				{status: model.DelegationStatusCancelled, progress: 90},
			},
			expProgress:     17,
			expAllCompleted: true,
		},

		"Cancelled delegations should not drag the average": {
			current: 0,
			delegations: []d{
				{status: model.DelegationStatusInProgress, progress: 80},
				{status: model.DelegationStatusCancelled, progress: 0},
			},
			expProgress:     80,
			expAllCompleted: false,
		},

		"Soft deleted delegations should be excluded": {
			current: 0,
			delegations: []d{
				{status: model.DelegationStatusCompleted, progress: 100},
				{status: model.DelegationStatusInProgress, progress: 10, deleted: true},
			},
			expProgress:     100,
			expAllCompleted: true,
		},

		"Pending delegations should count in the denominator": {
			current: 0,
			delegations: []d{
				{status: model.DelegationStatusInProgress, progress: 60},
				{status: model.DelegationStatusPending, progress: 0},
			},
			expProgress:     30,
			expAllCompleted: false,
		},

		"Mixed progress should average": {
			current: 0,
			delegations: []d{
				{status: model.DelegationStatusInProgress, progress: 60},
				{status: model.DelegationStatusInProgress, progress: 40},
			},
			expProgress:     50,
			expAllCompleted: false,
		},

		"Half values should round up": {
			current: 0,
			delegations: []d{
				{status: model.DelegationStatusInProgress, progress: 50},
				{status: model.DelegationStatusInProgress, progress: 25},
			},
			expProgress:     38, // 37.5 rounds half up.
			expAllCompleted: false,
		},

		"Completed plus in_progress should average but not report completion": {
			current: 0,
			delegations: []d{
				{status: model.DelegationStatusCompleted, progress: 100},
				{status: model.DelegationStatusInProgress, progress: 40},
			},
			expProgress:     70,
			expAllCompleted: false,
		},

		"Completed plus cancelled should report completion": {
			current: 0,
			delegations: []d{
				{status: model.DelegationStatusCompleted, progress: 100},
				{status: model.DelegationStatusCancelled, progress: 30},
			},
			expProgress:     100,
			expAllCompleted: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := model.AggregateProgress(tt.current, mkDelegations(tt.delegations))

			assert.Equal(t, tt.expProgress, got.Progress)
			assert.Equal(t, tt.expAllCompleted, got.AllCompleted)
		})
	}
}
