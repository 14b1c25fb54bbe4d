package shortener

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// HTTPService calls an external shortening endpoint speaking the JSON contract
// {longUrl, validity, shortcode?} -> {shortUrl, expiry}.
type HTTPService struct {
	client   *resty.Client
	endpoint string
}

// NewHTTPService creates a service posting to endpoint with the given client.
func NewHTTPService(client *resty.Client, endpoint string) *HTTPService {
	return &HTTPService{
		client:   client,
		endpoint: endpoint,
	}
}

func (s *HTTPService) Shorten(ctx context.Context, req Request) (*Result, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(req).
		Post(s.endpoint)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	var result Result
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode shortening response: %w", err)
	}

	if result.ShortURL == "" {
		return nil, &ServiceError{StatusCode: resp.StatusCode(), Body: ErrMissingResult.Error()}
	}

	return &result, nil
}

// Compile-time check.
var _ Service = (*HTTPService)(nil)
