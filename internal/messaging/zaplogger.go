package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// ZapAdapter lets watermill components log through zap.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter wraps logger as a watermill.LoggerAdapter.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{logger: logger}
}

func (a *ZapAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(toZapFields(fields), zap.Error(err))...)
}

func (a *ZapAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, toZapFields(fields)...)
}

func (a *ZapAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, toZapFields(fields)...)
}

// Trace maps to debug; zap has no lower level.
func (a *ZapAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, toZapFields(fields)...)
}

func (a *ZapAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZapAdapter{logger: a.logger.With(toZapFields(fields)...)}
}

func toZapFields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}

	return out
}

// Compile-time check.
var _ watermill.LoggerAdapter = (*ZapAdapter)(nil)
