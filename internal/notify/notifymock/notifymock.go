// Package notifymock contains testify mocks for the notify interfaces.
package notifymock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edusys/delego/internal/notify"
)

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

var _ notify.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, events ...notify.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
