package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-be/internal/order"

	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

// OrderCreatedEvent is the payload published for every new order.
type OrderCreatedEvent struct {
	OrderID       string          `json:"order_id"`
	Email         string          `json:"email"`
	City          string          `json:"city"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes an OrderCreatedEvent keyed by order id.
type KafkaSink struct {
	producer producer
	topic    string
}

// NewKafkaSink connects a producer to brokers. The returned func closes it.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, func(), error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSink{producer: client, topic: topic}, client.Close, nil
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Send(ctx context.Context, o order.Order) error {
	items := 0
	for _, li := range o.Products {
		items += li.Quantity
	}

	payload, err := json.Marshal(OrderCreatedEvent{
		OrderID:       o.ID.String(),
		Email:         o.Email,
		City:          o.City,
		Total:         o.Total,
		ItemCount:     items,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	rec := &kgo.Record{Topic: s.topic, Key: []byte(o.ID.String()), Value: payload}
	if err := s.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
