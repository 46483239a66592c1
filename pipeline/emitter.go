package pipeline

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/feed"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/messaging"
)

// TrafficEventEmitter polls the measurement feed on a fixed cadence and
// publishes every retrieved event to the traffic-event topic, keyed by
// sensor id.
type TrafficEventEmitter struct {
	retriever *feed.TrafficRetriever
	producer  *messaging.Producer
	topic     string
	interval  time.Duration
	logger    *zap.Logger
}

// NewTrafficEventEmitter builds the poller.
func NewTrafficEventEmitter(
	retriever *feed.TrafficRetriever,
	producer *messaging.Producer,
	topic string,
	interval time.Duration,
	logger *zap.Logger,
) *TrafficEventEmitter {
	return &TrafficEventEmitter{
		retriever: retriever,
		producer:  producer,
		topic:     topic,
		interval:  interval,
		logger:    logger,
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately, the next ones on the configured interval.
func (e *TrafficEventEmitter) Run(ctx context.Context) {
	e.emit(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.emit(ctx)
		}
	}
}

func (e *TrafficEventEmitter) emit(ctx context.Context) {
	events, err := e.retriever.Retrieve(ctx)
	if err != nil {
		e.logger.Error("traffic feed poll failed", zap.Error(err))
		return
	}

	published := 0
	for _, event := range events {
		if err := e.publish(event); err != nil {
			e.logger.Warn("publishing traffic event failed",
				zap.Int("sensor_id", event.SensorID), zap.Error(err))
			continue
		}
		published++
	}

	e.logger.Info("published traffic events",
		zap.Int("retrieved", len(events)), zap.Int("published", published))
}

func (e *TrafficEventEmitter) publish(event domain.TrafficEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return err
	}
	return e.producer.Publish(e.topic, strconv.Itoa(event.SensorID), payload)
}
