package messaging

import (
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// AdviceProducer publishes route change advisories to the advice topic,
// keyed by vehicle id so a vehicle's advisories stay in one partition.
type AdviceProducer struct {
	producer *Producer
	topic    string
}

// NewAdviceProducer wraps the shared producer for the advice topic.
func NewAdviceProducer(producer *Producer, topic string) *AdviceProducer {
	return &AdviceProducer{producer: producer, topic: topic}
}

// SendAdvice publishes one advisory.
func (a *AdviceProducer) SendAdvice(advice domain.VehicleRouteChangeAdvice) error {
	payload, err := advice.ToJSON()
	if err != nil {
		return err
	}
	return a.producer.Publish(a.topic, advice.VehicleID, payload)
}

// AdviceLogger decodes advisories read back from the advice topic and logs
// them. Used for demo purposes only.
func AdviceLogger(logger *zap.Logger) MessageHandler {
	return func(_, value []byte) error {
		advice, err := domain.VehicleRouteChangeAdviceFromJSON(value)
		if err != nil {
			return err
		}
		logger.Info("received route change advice",
			zap.String("vehicle_id", advice.VehicleID),
			zap.String("suggestion", advice.RouteChangeSuggestion))
		return nil
	}
}
