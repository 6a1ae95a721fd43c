package notify

import (
	"context"

	"github.com/edusys/delego/internal/log"
)

// LoggerNotifier logs every event it receives. It is the default sink on the
// CLI, where no delivery system is attached.
type LoggerNotifier struct {
	logger log.Logger
}

var _ Notifier = (*LoggerNotifier)(nil)

// NewLoggerNotifier creates a notifier that logs events.
func NewLoggerNotifier(logger log.Logger) *LoggerNotifier {
	if logger == nil {
		logger = log.Noop
	}
	return &LoggerNotifier{logger: logger.WithValues(log.Kv{"svc": "notify.Logger"})}
}

func (n *LoggerNotifier) Notify(ctx context.Context, events ...Event) error {
	for _, ev := range events {
		n.logger.WithValues(log.Kv{
			"event":     ev.ID,
			"type":      ev.Type,
			"entity":    ev.EntityID,
			"task":      ev.TaskID,
			"recipient": ev.Recipient,
		}).Infof("Notification event emitted")
	}
	return nil
}
