package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/Spok95/construction-api/internal/domain/orders"
)

// Publisher writes order lifecycle events to a Kafka topic.
type Publisher struct {
	w *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) OrderEvent(ctx context.Context, event string, o *orders.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%d", event, o.ID)),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
