package messaging

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/config"
)

// Producer wraps a Kafka producer for the pipeline's JSON messages: string
// keys, JSON values, asynchronous delivery report handling.
type Producer struct {
	producer     *kafka.Producer
	deliveryChan chan kafka.Event
	logger       *zap.Logger

	messagesSent   atomic.Int64
	messagesAcked  atomic.Int64
	messagesFailed atomic.Int64

	wg     sync.WaitGroup
	closed chan struct{}
}

// NewProducer connects a producer using the shared Kafka configuration.
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) (*Producer, error) {
	producerConfig := &kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"security.protocol":  cfg.SecurityProtocol,
		"client.id":          "traffic-advisory-" + uuid.NewString(),
		"acks":               "all",
		"enable.idempotence": true,
	}
	if cfg.SASLMechanism != "" {
		_ = producerConfig.SetKey("sasl.mechanism", cfg.SASLMechanism)
		_ = producerConfig.SetKey("sasl.username", cfg.SASLUsername)
		_ = producerConfig.SetKey("sasl.password", cfg.SASLPassword)
	}

	p, err := kafka.NewProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}

	producer := &Producer{
		producer:     p,
		deliveryChan: make(chan kafka.Event, 1024),
		logger:       logger,
		closed:       make(chan struct{}),
	}

	producer.wg.Add(1)
	go producer.handleDeliveryReports()

	logger.Info("Kafka producer initialized", zap.String("servers", cfg.BootstrapServers))
	return producer, nil
}

func (p *Producer) handleDeliveryReports() {
	defer p.wg.Done()

	for {
		select {
		case <-p.closed:
			return
		case e := <-p.deliveryChan:
			m, ok := e.(*kafka.Message)
			if !ok {
				continue
			}
			if m.TopicPartition.Error != nil {
				p.messagesFailed.Add(1)
				p.logger.Error("delivery failed",
					zap.Error(m.TopicPartition.Error),
					zap.Any("offset", m.TopicPartition.Offset))
			} else {
				p.messagesAcked.Add(1)
			}
		}
	}
}

// Publish enqueues one message. Delivery is confirmed asynchronously through
// the delivery report handler.
func (p *Producer) Publish(topic, key string, payload []byte) error {
	message := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          payload,
	}

	if err := p.producer.Produce(message, p.deliveryChan); err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	p.messagesSent.Add(1)
	return nil
}

// Metrics returns the send/ack/fail counters.
func (p *Producer) Metrics() map[string]int64 {
	return map[string]int64{
		"messages_sent":   p.messagesSent.Load(),
		"messages_acked":  p.messagesAcked.Load(),
		"messages_failed": p.messagesFailed.Load(),
	}
}

// Close flushes pending messages and shuts the producer down.
func (p *Producer) Close() {
	remaining := p.producer.Flush(int((30 * time.Second).Milliseconds()))
	if remaining > 0 {
		p.logger.Warn("messages still in queue after flush", zap.Int("remaining", remaining))
	}

	close(p.closed)
	p.wg.Wait()
	p.producer.Close()

	p.logger.Info("Kafka producer closed",
		zap.Int64("sent", p.messagesSent.Load()),
		zap.Int64("acked", p.messagesAcked.Load()),
		zap.Int64("failed", p.messagesFailed.Load()))
}
