// Package validate holds the form-level checks applied to URL drafts before submission.
package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultValidity is used when a draft leaves validity empty.
	DefaultValidity = 30
	MinValidity     = 1
	MaxValidity     = 1440
)

// Messages shown next to the offending field.
const (
	MsgInvalidURL       = "Please enter a valid URL starting with http:// or https://"
	MsgInvalidShortcode = "Shortcode must be 1-10 alphanumeric characters"
	MsgInvalidValidity  = "Validity must be between 1 and 1440 minutes"
)

var ErrInvalidValidity = errors.New("validity out of range")

var (
	urlPattern       = regexp.MustCompile(`^https?://.+\..+`)
	shortcodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,10}$`)
)

// IsValidURL reports whether s looks like an http(s) URL with at least one dot after the scheme.
// It is a structural check only and accepts plenty of malformed URLs.
func IsValidURL(s string) bool {
	return urlPattern.MatchString(s)
}

// IsValidShortcode reports whether s is 1 to 10 ASCII letters or digits.
func IsValidShortcode(s string) bool {
	return shortcodePattern.MatchString(s)
}

// IsValidValidity reports whether s is empty (use default) or an integer in [1, 1440].
func IsValidValidity(s string) bool {
	_, err := ResolveValidity(s)

	return err == nil
}

// ResolveValidity converts a validity draft into minutes, applying DefaultValidity when blank.
func ResolveValidity(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultValidity, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidValidity
	}

	if n < MinValidity || n > MaxValidity {
		return 0, ErrInvalidValidity
	}

	return n, nil
}
