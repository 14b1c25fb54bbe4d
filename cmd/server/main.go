package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortener-demo-go/internal/container"
	"github.com/serroba/shortener-demo-go/internal/messaging"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.MessagingPackage(injector)
	container.RemoteLogPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.ShortenerPackage(injector)
	container.SessionPackage(injector)
	container.BatchPackage(injector)
	container.HTTPPackage(injector)
}

// startLocalForwarder runs the remote log forwarder in-process when events travel
// over the in-memory bus. With the redis transport cmd/logforwarder does it.
func startLocalForwarder(ctx context.Context, injector *do.Injector, options *container.Options) error {
	if options.LogTransport != container.TransportMemory {
		return nil
	}

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	return group.Start(ctx)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			if err := options.Validate(); err != nil {
				logger.Fatal("invalid options", zap.Error(err))
			}

			if err := startLocalForwarder(context.Background(), injector, options); err != nil {
				logger.Fatal("failed to start log forwarder", zap.Error(err))
			}

			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("backend", options.Backend),
				zap.String("log_transport", options.LogTransport),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Root().AddCommand(newShortenCommand())

	cli.Run()
}
