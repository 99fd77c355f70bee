package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

// Publisher emits committed order status changes so cached order views can
// refresh. Keyed by order ID, so consumers see one order's events in order.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

type orderStatusEvent struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
	At      time.Time          `json:"at"`
}

func (p *Publisher) PublishOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error {
	value, err := json.Marshal(orderStatusEvent{OrderID: orderID, Status: status, At: at})
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write status event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
