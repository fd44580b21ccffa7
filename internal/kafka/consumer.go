package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avdonin/shareit/internal/logger"
	"github.com/segmentio/kafka-go"
)

// EventHandler receives decoded booking events in consumed order.
type EventHandler func(ctx context.Context, event BookingEvent) error

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

// Consume reads booking events until the context is canceled or the handler
// fails. Payloads that do not decode are logged and skipped so one bad
// message cannot stall the group.
func (c *Consumer) Consume(ctx context.Context, handle EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handleMessage(ctx, msg, handle); err != nil {
			return err
		}
	}
}

func handleMessage(ctx context.Context, msg kafka.Message, handle EventHandler) error {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Warn("skipping undecodable booking event", map[string]any{
			"topic":  msg.Topic,
			"offset": msg.Offset,
			"error":  err.Error(),
		})
		return nil
	}
	return handle(ctx, event)
}
