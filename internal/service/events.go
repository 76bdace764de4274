package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"snapshare/internal/queue"
)

// publish emits an activity event after a committed write. Failures are
// logged and never returned.
func publish(ctx context.Context, publisher queue.Publisher, logger logrus.FieldLogger, event queue.ActivityEvent) {
	if publisher == nil {
		return
	}
	if _, err := publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
		logger.WithError(err).WithField("event", event.Type).Warn("Failed to publish activity event")
	}
}
