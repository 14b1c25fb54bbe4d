package shortener

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// MockRedirectPath prefixes the path of every short URL issued by MockService.
const MockRedirectPath = "/redirect/"

const maxCodeAttempts = 3

// CodeGenerator generates unique short codes.
type CodeGenerator func() string

// Registry remembers which code was issued for which URL.
type Registry interface {
	// SaveIfAbsent stores code->url. It returns ErrCodeTaken when code already
	// maps to a different URL.
	SaveIfAbsent(ctx context.Context, code, url string) error
	// Get returns the URL for code or ErrNotFound.
	Get(ctx context.Context, code string) (string, error)
}

// MockService is a local stand-in for the external shortening service.
type MockService struct {
	registry     Registry
	generateCode CodeGenerator
	baseURL      string
	latency      time.Duration
	now          func() time.Time
}

// NewMockService creates a mock backend issuing short URLs under baseURL.
func NewMockService(registry Registry, generator CodeGenerator, baseURL string, latency time.Duration) *MockService {
	return &MockService{
		registry:     registry,
		generateCode: generator,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		latency:      latency,
		now:          time.Now,
	}
}

func (m *MockService) Shorten(ctx context.Context, req Request) (*Result, error) {
	if m.latency > 0 {
		select {
		case <-time.After(m.latency):
		case <-ctx.Done():
			return nil, &TransportError{Err: ctx.Err()}
		}
	}

	code, err := m.issue(ctx, req)
	if err != nil {
		return nil, err
	}

	validity := req.Validity
	if validity <= 0 {
		validity = 30
	}

	return &Result{
		ShortURL: m.baseURL + MockRedirectPath + code,
		Expiry:   ExpiryAfter(m.now(), validity),
	}, nil
}

func (m *MockService) issue(ctx context.Context, req Request) (string, error) {
	if req.Shortcode != "" {
		err := m.registry.SaveIfAbsent(ctx, req.Shortcode, req.LongURL)
		if errors.Is(err, ErrCodeTaken) && m.sameTarget(ctx, req.Shortcode, req.LongURL) {
			return req.Shortcode, nil
		}

		if err != nil {
			return "", asServiceError(err)
		}

		return req.Shortcode, nil
	}

	var err error

	for range maxCodeAttempts {
		code := m.generateCode()

		err = m.registry.SaveIfAbsent(ctx, code, req.LongURL)
		if err == nil {
			return code, nil
		}

		if !errors.Is(err, ErrCodeTaken) {
			return "", err
		}
	}

	return "", asServiceError(err)
}

// sameTarget reports whether code already points at a URL equivalent to target.
// The registry keeps the URL as first submitted; only the comparison is normalized.
func (m *MockService) sameTarget(ctx context.Context, code, target string) bool {
	existing, err := m.registry.Get(ctx, code)
	if err != nil {
		return false
	}

	a, errA := NormalizeURL(existing)
	b, errB := NormalizeURL(target)

	return errA == nil && errB == nil && a == b
}

// Resolve returns the long URL behind a mock-issued code.
func (m *MockService) Resolve(ctx context.Context, code string) (string, error) {
	return m.registry.Get(ctx, code)
}

func asServiceError(err error) error {
	if errors.Is(err, ErrCodeTaken) {
		return &ServiceError{StatusCode: http.StatusConflict, Body: err.Error()}
	}

	return err
}

// IsMockShortURL reports whether short was issued by MockService.
func IsMockShortURL(short string) bool {
	return strings.Contains(short, MockRedirectPath)
}

// Compile-time check.
var _ Service = (*MockService)(nil)
