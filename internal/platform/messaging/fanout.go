package messaging

import (
	"context"

	contractsv1 "govengine/contracts/gen/events/v1"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
}

// Fanout publishes to every publisher in order and stops at the first error,
// so the outbox row stays pending and the whole set is retried.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	for _, publisher := range f {
		if publisher == nil {
			continue
		}
		if err := publisher.Publish(ctx, topic, event); err != nil {
			return err
		}
	}
	return nil
}
