package batch

import (
	"fmt"
	"strings"

	"github.com/serroba/shortener-demo-go/internal/shortener"
	"github.com/serroba/shortener-demo-go/internal/validate"
)

// MaxBatchSize is the largest number of drafts accepted in one submission.
const MaxBatchSize = 5

const (
	MsgNoURLs   = "Please enter at least one URL"
	MsgTooMany  = "You can shorten at most 5 URLs at once"
	entryPrefix = "URL %d: %s"
)

// ValidationError lists every problem found in a rejected submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Validate checks a submission. Blank drafts are ignored, but at least one draft
// must carry a URL. Entry numbers in messages are 1-based positions in drafts.
func Validate(drafts []shortener.Draft) error {
	if len(drafts) > MaxBatchSize {
		return &ValidationError{Messages: []string{MsgTooMany}}
	}

	var (
		messages []string
		nonBlank int
	)

	for i, d := range drafts {
		if d.IsBlank() {
			continue
		}

		nonBlank++

		if !validate.IsValidURL(strings.TrimSpace(d.LongURL)) {
			messages = append(messages, fmt.Sprintf(entryPrefix, i+1, validate.MsgInvalidURL))
		}

		if code := strings.TrimSpace(d.Shortcode); code != "" && !validate.IsValidShortcode(code) {
			messages = append(messages, fmt.Sprintf(entryPrefix, i+1, validate.MsgInvalidShortcode))
		}

		if !validate.IsValidValidity(d.Validity) {
			messages = append(messages, fmt.Sprintf(entryPrefix, i+1, validate.MsgInvalidValidity))
		}
	}

	if nonBlank == 0 {
		return &ValidationError{Messages: []string{MsgNoURLs}}
	}

	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}

	return nil
}

// toRequest converts a validated, non-blank draft into a service request.
func toRequest(d shortener.Draft) shortener.Request {
	validity, _ := validate.ResolveValidity(d.Validity)

	return shortener.Request{
		LongURL:   strings.TrimSpace(d.LongURL),
		Validity:  validity,
		Shortcode: strings.TrimSpace(d.Shortcode),
	}
}
