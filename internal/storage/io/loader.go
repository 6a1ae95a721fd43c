package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/edusys/delego/internal/model"
)

// BatchYAMLRepository loads delegation batches from YAML files.
type BatchYAMLRepository struct {
	fs fs.FS
}

// NewBatchYAMLRepository creates a new YAML delegation batch repository.
func NewBatchYAMLRepository(filesystem fs.FS) *BatchYAMLRepository {
	return &BatchYAMLRepository{fs: filesystem}
}

// GetBatch loads a delegation batch from a YAML file and returns validated
// domain specs.
func (r *BatchYAMLRepository) GetBatch(ctx context.Context, path string) ([]model.DelegationSpec, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var batch DelegationBatch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := batch.validate(); err != nil {
		return nil, fmt.Errorf("invalid batch: %w", err)
	}

	return batch.toModel(), nil
}

// DelegationBatch represents the YAML structure of a delegation batch file.
type DelegationBatch struct {
	Delegations []DelegationEntry `yaml:"delegations"`
}

// DelegationEntry represents one delegation of a batch file.
type DelegationEntry struct {
	User     string     `yaml:"user"`
	Deadline *time.Time `yaml:"deadline,omitempty"`
	Notes    string     `yaml:"notes,omitempty"`
}

func (b DelegationBatch) validate() error {
	if len(b.Delegations) == 0 {
		return fmt.Errorf("at least one delegation is required")
	}

	for i, d := range b.Delegations {
		if d.User == "" {
			return fmt.Errorf("delegation %d: user is required", i)
		}
	}

	return nil
}

func (b DelegationBatch) toModel() []model.DelegationSpec {
	specs := make([]model.DelegationSpec, 0, len(b.Delegations))
	for _, d := range b.Delegations {
		specs = append(specs, model.DelegationSpec{
			UserID:   d.User,
			Deadline: d.Deadline,
			Notes:    d.Notes,
		})
	}
	return specs
}
