package event

import (
	"context"
	"fmt"
	"slotkeeper/infras/kafka"
)

// KafkaForwarder publishes every event it receives to one topic, keyed by
// resource so per-resource ordering survives partitioning.
type KafkaForwarder struct {
	client kafka.Client
	topic  string
}

func NewKafkaForwarder(client kafka.Client, topic string) *KafkaForwarder {
	return &KafkaForwarder{client: client, topic: topic}
}

func (f *KafkaForwarder) Handle(ctx context.Context, event Event) error {
	err := f.client.SendMessages(ctx, f.topic, kafka.Message{Key: event.ResourceID, Value: event})
	if err != nil {
		return fmt.Errorf("failed to forward %s event: %w", event.Kind, err)
	}

	return nil
}
