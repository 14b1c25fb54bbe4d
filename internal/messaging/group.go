package messaging

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable represents a component that can be started and shutdown.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup manages multiple consumers sharing one subscriber.
type ConsumerGroup struct {
	consumers  []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
	started    int
	stopOnce   sync.Once
	stopErr    error
}

// NewConsumerGroup creates a new consumer group.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a consumer to the group.
func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// Start starts all consumers in the group.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = g.consumers[j].Shutdown()
			}

			g.started = 0

			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}

		g.started = i + 1
	}

	g.logger.Info("consumer group started", zap.Int("count", len(g.consumers)))

	return nil
}

// Shutdown stops the started consumers and closes the subscriber. Safe to call twice.
func (g *ConsumerGroup) Shutdown() error {
	g.stopOnce.Do(func() {
		g.logger.Info("shutting down consumer group")

		for _, consumer := range g.consumers[:g.started] {
			if err := consumer.Shutdown(); err != nil && g.stopErr == nil {
				g.stopErr = err
			}
		}

		if err := g.subscriber.Close(); err != nil && g.stopErr == nil {
			g.stopErr = err
		}
	})

	return g.stopErr
}
