package shortener

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFailureMessage is reported when a failure carries no usable text.
const DefaultFailureMessage = "Failed to shorten URL"

var (
	ErrNotFound      = errors.New("short code not found")
	ErrCodeTaken     = errors.New("shortcode already in use")
	ErrMissingResult = errors.New("service response missing shortUrl")
)

// ServiceError is a non-2xx answer from the shortening service.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// TransportError is a failure to reach the shortening service at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FailureMessage turns a shortening failure into the text stored on an error entry.
func FailureMessage(err error) string {
	if err == nil {
		return DefaultFailureMessage
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Error()
	}

	var trErr *TransportError
	if errors.As(err, &trErr) && trErr.Err != nil {
		if msg := trErr.Err.Error(); msg != "" {
			return msg
		}

		return DefaultFailureMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return DefaultFailureMessage
}
