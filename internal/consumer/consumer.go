package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/cache"
)

const (
	topic   = "order-completed"
	groupID = "storefront-cart"
)

// Consumer drops a user's cached cart view when the backend reports a
// completed order. The backend empties the server cart itself as part of
// order placement; without this the storefront would keep showing the
// pre-checkout cart until the view expired.
type Consumer struct {
	view   cache.CartView
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(view cache.CartView, log *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{view: view, reader: reader, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn("order-completed read failed", zap.Error(err))
			}
			continue
		}

		if err := c.processMessage(ctx, m.Value); err != nil {
			c.log.Warn("order-completed event dropped", zap.Error(err))
		}
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Warn("closing order-completed reader failed", zap.Error(err))
	}
}

type orderCompleted struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
}

func (c *Consumer) processMessage(ctx context.Context, value []byte) error {
	var event orderCompleted
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("parse order-completed event: %w", err)
	}
	if event.UserID == "" {
		return fmt.Errorf("order-completed event missing user_id")
	}

	if err := c.view.Delete(ctx, event.UserID); err != nil {
		return fmt.Errorf("invalidate cart view for %s: %w", event.UserID, err)
	}

	c.log.Info("cart view invalidated after order completion",
		zap.String("user_id", event.UserID))
	return nil
}
