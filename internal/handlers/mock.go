package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortener-demo-go/internal/shortener"
	"go.uber.org/zap"
)

// MockHandler serves the mock shortening backend and resolves its short URLs.
type MockHandler struct {
	service *shortener.MockService
	logger  *zap.Logger
}

// NewMockHandler creates a new mock backend handler.
func NewMockHandler(service *shortener.MockService, logger *zap.Logger) *MockHandler {
	return &MockHandler{
		service: service,
		logger:  logger,
	}
}

func (h *MockHandler) Shorten(ctx context.Context, req *MockShortenRequest) (*MockShortenResponse, error) {
	res, err := h.service.Shorten(ctx, shortener.Request{
		LongURL:   req.Body.LongURL,
		Validity:  req.Body.Validity,
		Shortcode: req.Body.Shortcode,
	})
	if err != nil {
		var svcErr *shortener.ServiceError
		if errors.As(err, &svcErr) {
			return nil, huma.NewError(svcErr.StatusCode, svcErr.Body)
		}

		h.logger.Error("mock shortening failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to shorten url")
	}

	return &MockShortenResponse{Body: *res}, nil
}

func (h *MockHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	target, err := h.service.Resolve(ctx, req.Code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	resp := &RedirectResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = target

	return resp, nil
}
