package remotelog

import (
	"github.com/serroba/shortener-demo-go/internal/messaging"
	"go.uber.org/zap"
)

// Logger emits remote log events without waiting for delivery.
type Logger struct {
	stack   Stack
	publish messaging.Publish[Event]
	logger  *zap.Logger
}

// NewLogger creates a logger tagging every event with stack.
func NewLogger(stack Stack, publish messaging.Publish[Event], logger *zap.Logger) *Logger {
	return &Logger{
		stack:   stack,
		publish: publish,
		logger:  logger,
	}
}

// Log hands the event to the bus in the background and returns immediately.
// Failures are only reported to the local logger.
func (l *Logger) Log(level Level, pkg Package, message string) {
	event := &Event{
		Stack:   l.stack,
		Level:   level,
		Package: pkg,
		Message: message,
	}

	if err := event.Validate(); err != nil {
		l.logger.Warn("discarding remote log event", zap.Error(err))

		return
	}

	go func() {
		if err := l.publish(event); err != nil {
			l.logger.Warn("remote logging unavailable",
				zap.String("level", string(level)),
				zap.String("package", string(pkg)),
				zap.Error(err),
			)
		}
	}()
}
