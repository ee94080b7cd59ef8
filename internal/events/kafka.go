package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events to a topic keyed by user id, so one user's
// events land on one partition in commit order.
type KafkaPublisher struct {
	producer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := encodeMessage(ev)
	if err != nil {
		return err
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s event to kafka: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

func encodeMessage(ev Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(ev.UserID),
		Value: value,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}, nil
}
