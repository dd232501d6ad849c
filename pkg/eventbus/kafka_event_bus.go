package eventbus

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/lumahq/automation/pkg/eventbus/kafka"
)

// NewKafkaEventBus builds an EventBus backed by Kafka for the given topic.
// serviceName determines the consumer group, so distinct services each see
// the full stream.
func NewKafkaEventBus(logger *slog.Logger, serviceName, topic string) (EventBus, error) {
	pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), serviceName)
	if err != nil {
		return nil, err
	}

	return NewWatermillEventBus(pub, sub, topic), nil
}
