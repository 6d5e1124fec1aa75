package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/manasvi0103/ai-blog-platform/pkg/channels/gochannel"
	"github.com/manasvi0103/ai-blog-platform/pkg/channels/kafka"
	"github.com/manasvi0103/ai-blog-platform/pkg/eventbus"
)

const serviceName = "blogpublisher"

// NewEventBus creates the event bus for provider: "gochannel" keeps events in
// process, "kafka" publishes them to brokers (a comma separated list).
func NewEventBus(logger *slog.Logger, provider, brokers string) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, kafka.ParseBrokers(brokers), serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}
