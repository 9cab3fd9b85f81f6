package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"property-wallet-go/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultTopic = "wallet-events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes events keyed by wallet id so that one wallet's
// events stay ordered within a partition.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(cfg models.KafkaConfig) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka config requires at least one broker")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = defaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		MaxAttempts:  10,
	}

	zap.L().Info("Kafka notifier initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", topic))
	return &KafkaNotifier{writer: writer}, nil
}

func (n *KafkaNotifier) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet event: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.WalletId),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
