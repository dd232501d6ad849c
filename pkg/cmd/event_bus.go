package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/lumahq/automation/pkg/eventbus"
	"github.com/lumahq/automation/pkg/eventbus/gochannel"
)

// NewEventBus creates an event bus for one topic. serviceName determines
// the Kafka consumer group.
func NewEventBus(provider string, logger *slog.Logger, serviceName, topic string) eventbus.EventBus {
	switch provider {
	case "kafka":
		bus, err := eventbus.NewKafkaEventBus(logger, serviceName, topic)
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka event bus: %w", err))
		}

		return bus
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create in-memory event bus: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub, topic)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
