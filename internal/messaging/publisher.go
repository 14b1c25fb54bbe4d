package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publish hands one event to the bus. Remote log events travel through it on
// their way from the request path to the forwarder.
type Publish[T any] func(event *T) error

// NewPublishFunc binds a JSON publish function to topic. Errors name the topic
// and wrap the transport error.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", topic, err)
		}

		if err := publisher.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}

		return nil
	}
}

// PublisherGroup owns the publisher of the selected log transport, gochannel or
// redis streams, and closes it on shutdown.
type PublisherGroup struct {
	publisher message.Publisher
}

func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher exposes the transport so typed publish functions can be bound to it.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
