package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event ActivityEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client redis.Cmdable
	logger logrus.FieldLogger
	maxLen int64
}

// NewPublisher creates a new Publisher backed by Redis Streams.
// maxLen caps the stream approximately; zero leaves it unbounded.
func NewPublisher(client redis.Cmdable, logger logrus.FieldLogger, maxLen int64) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		logger: logger.WithField("component", "publisher"),
		maxLen: maxLen,
	}
}

// Publish adds an event to the stream using XADD.
// Uses "*" for auto-generated message ID (timestamp-sequence).
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event ActivityEvent) (string, error) {
	startTime := time.Now()
	log := p.logger.WithFields(logrus.Fields{"stream": stream, "type": event.Type})

	values, err := event.ToMap()
	if err != nil {
		log.WithError(err).Warn("Publish failed")
		return "", fmt.Errorf("serialize event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	messageID, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		log.WithError(err).Warn("Publish failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.WithFields(logrus.Fields{
		"msg_id":   messageID,
		"actor":    event.ActorID,
		"post":     event.PostID,
		"target":   event.TargetUserID,
		"duration": time.Since(startTime),
	}).Debug("Publish OK")

	return messageID, nil
}
