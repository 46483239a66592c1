package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/config"
)

// MessageHandler receives the key and value of one consumed message.
// Handler errors are logged, not fatal: one malformed message must not stop
// the subscription.
type MessageHandler func(key, value []byte) error

// Consumer wraps a Kafka consumer subscribed to one topic.
type Consumer struct {
	consumer *kafka.Consumer
	topic    string
	logger   *zap.Logger
}

// NewConsumer connects a consumer for the topic within the configured group.
func NewConsumer(cfg config.KafkaConfig, topic string, logger *zap.Logger) (*Consumer, error) {
	consumerConfig := &kafka.ConfigMap{
		"bootstrap.servers": cfg.BootstrapServers,
		"security.protocol": cfg.SecurityProtocol,
		"group.id":          cfg.GroupID,
		"auto.offset.reset": "latest",
	}
	if cfg.SASLMechanism != "" {
		_ = consumerConfig.SetKey("sasl.mechanism", cfg.SASLMechanism)
		_ = consumerConfig.SetKey("sasl.username", cfg.SASLUsername)
		_ = consumerConfig.SetKey("sasl.password", cfg.SASLPassword)
	}

	c, err := kafka.NewConsumer(consumerConfig)
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	if err := c.Subscribe(topic, nil); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	logger.Info("Kafka consumer subscribed",
		zap.String("topic", topic), zap.String("group_id", cfg.GroupID))

	return &Consumer{consumer: c, topic: topic, logger: logger}, nil
}

// Run polls the topic until the context is cancelled, dispatching every
// message to the handler.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		message, err := c.consumer.ReadMessage(500 * time.Millisecond)
		if err != nil {
			if kafkaErr, ok := err.(kafka.Error); ok && kafkaErr.IsTimeout() {
				continue
			}
			c.logger.Error("read message failed",
				zap.String("topic", c.topic), zap.Error(err))
			continue
		}

		if err := handler(message.Key, message.Value); err != nil {
			c.logger.Warn("message handler failed",
				zap.String("topic", c.topic),
				zap.String("key", string(message.Key)),
				zap.Error(err))
		}
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.consumer.Close()
}
