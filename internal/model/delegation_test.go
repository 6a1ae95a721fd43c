package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edusys/delego/internal/model"
)

func TestDelegationSpecValidate(t *testing.T) {
	tests := map[string]struct {
		spec   model.DelegationSpec
		expErr bool
	}{
		"A valid spec should not fail": {
			spec: model.DelegationSpec{UserID: "user-1", Notes: "check section 3"},
		},

		"Missing user id should fail": {
			spec:   model.DelegationSpec{Notes: "check section 3"},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.spec.Validate()

			if tt.expErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssignmentValidate(t *testing.T) {
	valid := model.Assignment{
		ID:          "assignment-1",
		TaskID:      "task-1",
		TaskTitle:   "Quarterly report",
		OwnerUserID: "user-1",
		Progress:    50,
	}

	tests := map[string]struct {
		mutate func(a *model.Assignment)
		expErr bool
	}{
		"A valid assignment should not fail": {
			mutate: func(a *model.Assignment) {},
		},

		"Missing id should fail": {
			mutate: func(a *model.Assignment) { a.ID = "" },
			expErr: true,
		},

		"Missing task id should fail": {
			mutate: func(a *model.Assignment) { a.TaskID = "" },
			expErr: true,
		},

		"Missing owner should fail": {
			mutate: func(a *model.Assignment) { a.OwnerUserID = "" },
			expErr: true,
		},

		"Progress over 100 should fail": {
			mutate: func(a *model.Assignment) { a.Progress = 120 },
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)

			err := a.Validate()
			if tt.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDelegationStatusTerminal(t *testing.T) {
	assert.False(t, model.DelegationStatusPending.Terminal())
	assert.False(t, model.DelegationStatusAccepted.Terminal())
	assert.False(t, model.DelegationStatusInProgress.Terminal())
	assert.True(t, model.DelegationStatusCompleted.Terminal())
	assert.True(t, model.DelegationStatusCancelled.Terminal())
}
