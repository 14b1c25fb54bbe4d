// Package container wires the application with samber/do. Each *Package function
// registers the providers of one concern; commands pick the packages they need.
package container

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortener-demo-go/internal/batch"
	"github.com/serroba/shortener-demo-go/internal/handlers"
	"github.com/serroba/shortener-demo-go/internal/health"
	"github.com/serroba/shortener-demo-go/internal/messaging"
	"github.com/serroba/shortener-demo-go/internal/middleware"
	"github.com/serroba/shortener-demo-go/internal/remotelog"
	"github.com/serroba/shortener-demo-go/internal/session"
	"github.com/serroba/shortener-demo-go/internal/shortener"
	"github.com/serroba/shortener-demo-go/internal/store"
	"go.uber.org/zap"
)

const (
	BackendHTTP = "http"
	BackendMock = "mock"

	TransportMemory = "memory"
	TransportRedis  = "redis"

	// ForwarderGroup is the redis stream consumer group of the log forwarder.
	ForwarderGroup = "remote-log-forwarder"
)

type Options struct {
	Port           int    `default:"8888"           help:"Port to listen on"                                        short:"p"`
	LogLevel       string `default:"info"           help:"Minimum log level"`
	LogFormat      string `default:"console"        help:"Log encoding: console or json"`
	Backend        string `default:"http"           help:"Shortening backend: http or mock"                         short:"b"`
	ServiceURL     string `default:""               help:"Shortening endpoint (defaults to this server's mock)"`
	ServiceTimeout int    `default:"10"             help:"Shortening request timeout in seconds"`
	PublicURL      string `default:""               help:"Base URL of mock-issued short links"`
	ServeMock      bool   `default:"true"           help:"Expose the mock backend under /mock and /redirect"`
	MockLatency    int    `default:"0"              help:"Artificial mock backend latency in milliseconds"`
	CodeLength     int    `default:"8"              help:"Length of generated short codes"                          short:"c"`
	CollectorURL   string `default:""               help:"Remote log collector endpoint; empty keeps events local"`
	CollectorToken string `default:""               help:"Bearer token sent to the log collector"`
	LogStack       string `default:"frontend"       help:"Stack tag of remote log events: frontend or backend"`
	LogTransport   string `default:"memory"         help:"Remote log transport: memory or redis"`
	RedisAddr      string `default:"localhost:6379" help:"Redis server address"                                     short:"r"`
}

var (
	ErrUnknownBackend   = errors.New("unknown backend")
	ErrUnknownTransport = errors.New("unknown log transport")
	// ErrNoShorteningService means the http backend would default to the mock
	// endpoint of this server while the mock is not served.
	ErrNoShorteningService = errors.New("--service-url is required when --serve-mock=false")
)

// Validate rejects option combinations the server cannot run with.
func (o *Options) Validate() error {
	switch o.Backend {
	case BackendHTTP, BackendMock:
	default:
		return fmt.Errorf("%w %q", ErrUnknownBackend, o.Backend)
	}

	switch o.LogTransport {
	case TransportMemory, TransportRedis:
	default:
		return fmt.Errorf("%w %q", ErrUnknownTransport, o.LogTransport)
	}

	if o.Backend == BackendHTTP && o.ServiceURL == "" && !o.ServeMock {
		return ErrNoShorteningService
	}

	return nil
}

func (o *Options) publicURL() string {
	if o.PublicURL != "" {
		return o.PublicURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

func (o *Options) serviceURL() string {
	if o.ServiceURL != "" {
		return o.ServiceURL
	}

	return o.publicURL() + "/mock/shorten"
}

// LoggerPackage provides the application logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		level, err := zap.ParseAtomicLevel(opts.LogLevel)
		if err != nil {
			return nil, err
		}

		cfg := zap.NewDevelopmentConfig()
		if opts.LogFormat == "json" {
			cfg = zap.NewProductionConfig()
		}

		cfg.Level = level

		return cfg.Build()
	})
}

// RedisPackage provides the redis client backing the redis log transport.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: opts.RedisAddr}), nil
	})
}

// MessagingPackage provides the publisher and subscriber of the selected transport.
func MessagingPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		wmLogger := messaging.NewZapAdapter(do.MustInvoke[*zap.Logger](i))

		if opts.LogTransport == TransportRedis {
			publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
				Client:     do.MustInvoke[*redis.Client](i),
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			}, wmLogger)
			if err != nil {
				return nil, err
			}

			return messaging.NewPublisherGroup(publisher), nil
		}

		return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogTransport == TransportRedis {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*redis.Client](i),
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: ForwarderGroup,
			}, messaging.NewZapAdapter(do.MustInvoke[*zap.Logger](i)))
		}

		return do.MustInvoke[*gochannel.GoChannel](i), nil
	})

	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, messaging.NewZapAdapter(logger)), nil
	})
}

// RemoteLogPackage provides the fire-and-forget remote logger and its sink.
func RemoteLogPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*remotelog.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		stack, err := remotelog.ParseStack(opts.LogStack)
		if err != nil {
			return nil, err
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)
		publish := messaging.NewPublishFunc[remotelog.Event](group.Publisher(), remotelog.TopicEvents)

		return remotelog.NewLogger(stack, publish, do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (remotelog.Sink, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.CollectorURL == "" {
			return remotelog.NewNoop(logger), nil
		}

		client := resty.New().SetTimeout(5 * time.Second)

		return remotelog.NewCollector(client, opts.CollectorURL, opts.CollectorToken), nil
	})
}

// ConsumerGroupPackage provides the consumer group forwarding remote log events
// to the configured sink.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)
		sink := do.MustInvoke[remotelog.Sink](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(remotelog.NewForwarder(subscriber, sink, logger))

		return group, nil
	})
}

// ShortenerPackage provides the shortening backend selected by --backend.
func ShortenerPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.MockService, error) {
		opts := do.MustInvoke[*Options](i)

		generate, err := nanoid.Standard(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewMockService(
			do.MustInvoke[*store.MemoryStore](i),
			generate,
			opts.publicURL(),
			time.Duration(opts.MockLatency)*time.Millisecond,
		), nil
	})

	do.Provide(i, func(i *do.Injector) (shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Backend {
		case BackendMock:
			return do.MustInvoke[*shortener.MockService](i), nil
		case BackendHTTP:
			client := resty.New().SetTimeout(time.Duration(opts.ServiceTimeout) * time.Second)

			return shortener.NewHTTPService(client, opts.serviceURL()), nil
		default:
			return nil, fmt.Errorf("%w %q", ErrUnknownBackend, opts.Backend)
		}
	})
}

// SessionPackage provides the per-session workspace registry.
func SessionPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*session.Registry, error) {
		return session.NewRegistry(), nil
	})
}

// BatchPackage provides the submission orchestrator.
func BatchPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*batch.Orchestrator, error) {
		return batch.NewOrchestrator(
			do.MustInvoke[shortener.Service](i),
			do.MustInvoke[*remotelog.Logger](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener Demo", "1.0.0"))
		api.UseMiddleware(middleware.AccessLog(logger))
		api.UseMiddleware(middleware.Session(api))

		sessions := do.MustInvoke[*session.Registry](i)
		handlers.RegisterRoutes(api,
			handlers.NewBatchHandler(do.MustInvoke[*batch.Orchestrator](i), sessions, logger),
			handlers.NewWorkspaceHandler(sessions),
		)

		if opts.ServeMock {
			handlers.RegisterMockRoutes(api, handlers.NewMockHandler(do.MustInvoke[*shortener.MockService](i), logger))
		}

		checks := map[string]health.Checker{}
		if opts.LogTransport == TransportRedis {
			checks["redis"] = health.NewRedisChecker(do.MustInvoke[*redis.Client](i))
		}

		health.RegisterRoutes(api, health.NewHandler(checks))

		return api, nil
	})
}
