package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer reads application events for one consumer group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume decodes each message into an ApplicationEvent and hands it to the
// handler. Malformed messages are skipped, not retried; a handler error
// stops the loop.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, ApplicationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event ApplicationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("WARNING: skip malformed event at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}
