package shortener

import (
	"context"
	"time"
)

// ExpiryLayout matches the millisecond ISO-8601 form browsers produce.
const ExpiryLayout = "2006-01-02T15:04:05.000Z07:00"

// Request is the body sent to a shortening service.
type Request struct {
	LongURL   string `json:"longUrl"`
	Validity  int    `json:"validity"`
	Shortcode string `json:"shortcode,omitempty"`
}

// Result is what a shortening service returns on success.
type Result struct {
	ShortURL string `json:"shortUrl"`
	Expiry   string `json:"expiry"`
}

// Service shortens one URL.
type Service interface {
	Shorten(ctx context.Context, req Request) (*Result, error)
}

// ExpiryAfter formats now+validity minutes as an expiry timestamp.
func ExpiryAfter(now time.Time, validity int) string {
	return now.Add(time.Duration(validity) * time.Minute).UTC().Format(ExpiryLayout)
}
