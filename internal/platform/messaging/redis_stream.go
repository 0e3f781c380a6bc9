package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	contractsv1 "govengine/contracts/gen/events/v1"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "governance.events"

func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// RedisStream appends every published envelope to one Redis stream. The
// topic travels as a field so consumers can filter by event type.
type RedisStream struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisStream(client *redis.Client, stream string, logger *slog.Logger) *RedisStream {
	if strings.TrimSpace(stream) == "" {
		stream = DefaultStream
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStream{client: client, stream: stream, logger: logger}
}

func (r *RedisStream) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: StreamValues(topic, event, payload),
	}).Result()
	if err != nil {
		r.logger.Error("redis stream publish failed",
			"event", "redis_stream_publish_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"stream", r.stream,
			"topic", topic,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	r.logger.Debug("event appended to redis stream",
		"event", "redis_stream_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"stream", r.stream,
		"stream_id", id,
		"event_id", event.EventID,
	)
	return nil
}

func (r *RedisStream) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// StreamValues is the field layout of one stream entry.
func StreamValues(topic string, event contractsv1.Envelope, payload []byte) map[string]any {
	return map[string]any{
		"topic":         topic,
		"event_id":      event.EventID,
		"event_type":    event.EventType,
		"partition_key": event.PartitionKey,
		"occurred_at":   event.OccurredAt.Unix(),
		"payload":       string(payload),
	}
}
