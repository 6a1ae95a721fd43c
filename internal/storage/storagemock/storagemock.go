// Package storagemock contains testify mocks for the storage interfaces.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/storage"
)

// MockRepository is a mock implementation of storage.Repository.
type MockRepository struct {
	mock.Mock
}

var _ storage.Repository = (*MockRepository)(nil)

func (m *MockRepository) CreateAssignment(ctx context.Context, a model.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRepository) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.Assignment), args.Error(1)
}

func (m *MockRepository) GetDelegation(ctx context.Context, id string) (*model.Delegation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.Delegation), args.Error(1)
}

func (m *MockRepository) ListDelegationsByParent(ctx context.Context, parentID string, includeDeleted bool) ([]model.Delegation, error) {
	args := m.Called(ctx, parentID, includeDeleted)
	return args.Get(0).([]model.Delegation), args.Error(1)
}

func (m *MockRepository) UpdateParent(ctx context.Context, parentID string, fn storage.UpdateFunc) error {
	args := m.Called(ctx, parentID, fn)
	return args.Error(0)
}

// MockTx is a mock implementation of storage.Tx.
type MockTx struct {
	mock.Mock
}

var _ storage.Tx = (*MockTx)(nil)

func (m *MockTx) Assignment() *model.Assignment {
	args := m.Called()
	return args.Get(0).(*model.Assignment)
}

func (m *MockTx) SaveAssignment(ctx context.Context, a model.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockTx) CreateDelegation(ctx context.Context, d model.Delegation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockTx) GetDelegation(ctx context.Context, id string) (*model.Delegation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.Delegation), args.Error(1)
}

func (m *MockTx) ListDelegations(ctx context.Context, includeDeleted bool) ([]model.Delegation, error) {
	args := m.Called(ctx, includeDeleted)
	return args.Get(0).([]model.Delegation), args.Error(1)
}

func (m *MockTx) SaveDelegation(ctx context.Context, d model.Delegation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockTx) SoftDeleteDelegation(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
