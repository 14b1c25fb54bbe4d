package remotelog

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-resty/resty/v2"
	"github.com/serroba/shortener-demo-go/internal/messaging"
	"go.uber.org/zap"
)

// Sink delivers an event to its final destination.
type Sink interface {
	Send(ctx context.Context, event *Event) error
}

// Collector posts events to a remote log collector over HTTP.
type Collector struct {
	client   *resty.Client
	endpoint string
	token    string
}

// NewCollector creates a collector sink. An empty token sends no Authorization header.
func NewCollector(client *resty.Client, endpoint, token string) *Collector {
	return &Collector{
		client:   client,
		endpoint: endpoint,
		token:    token,
	}
}

func (c *Collector) Send(ctx context.Context, event *Event) error {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event)

	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("post log event: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("collector responded %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// Noop keeps events local when no collector is configured.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a sink that debug-logs events.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) Send(_ context.Context, event *Event) error {
	n.logger.Debug("remote log event",
		zap.String("stack", string(event.Stack)),
		zap.String("level", string(event.Level)),
		zap.String("package", string(event.Package)),
		zap.String("message", event.Message),
	)

	return nil
}

// Forward returns a consumer handler passing each event to sink.
func Forward(sink Sink) messaging.Handler[Event] {
	return func(ctx context.Context, event *Event) error {
		return sink.Send(ctx, event)
	}
}

// NewForwarder builds a consumer that drops events the sink fails to deliver.
func NewForwarder(subscriber message.Subscriber, sink Sink, logger *zap.Logger) *messaging.Consumer[Event] {
	return messaging.NewConsumer(subscriber, TopicEvents, Forward(sink), messaging.Drop, logger)
}

// Compile-time check.
var (
	_ Sink = (*Collector)(nil)
	_ Sink = (*Noop)(nil)
)
