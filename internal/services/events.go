package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/rentify/internal/models"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCanceled      = "OrderCanceled"
	EventOrderDeleted       = "OrderDeleted"
)

// OrderEvent is the payload published on every order lifecycle change.
type OrderEvent struct {
	Type         string              `json:"type"`
	OrderID      uint                `json:"order_id"`
	UserID       uint                `json:"user_id"`
	CarID        uint                `json:"car_id"`
	Status       models.OrderStatus  `json:"order_status"`
	PaymentState models.PaymentState `json:"payment_state"`
	TotalPrice   string              `json:"total_price"`
	OccurredAt   time.Time           `json:"occurred_at"`
}

func newOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		UserID:       order.UserID,
		CarID:        order.CarID,
		Status:       order.OrderStatus,
		PaymentState: order.PaymentState,
		TotalPrice:   order.TotalPrice.StringFixed(2),
		OccurredAt:   time.Now().UTC(),
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher returns a Kafka-backed publisher, or a no-op one when
// no brokers are configured.
func NewEventPublisher(cfg KafkaConfig) EventPublisher {
	if len(cfg.Brokers) == 0 {
		return noopPublisher{}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}

	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, OrderEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
