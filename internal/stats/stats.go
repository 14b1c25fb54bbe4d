// Package stats derives the statistics view over tracked entries: status and text
// filtering, per-status counts, and display formatting of timestamps.
package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/serroba/shortener-demo-go/internal/session"
	"github.com/serroba/shortener-demo-go/internal/shortener"
)

// StatusFilter selects entries by status. All matches every entry.
type StatusFilter string

const All StatusFilter = "all"

const createdLayout = "Jan 2, 2006, 03:04 PM"

var ErrUnknownFilter = errors.New("unknown status filter")

// ParseStatusFilter accepts "all", "success", "error", "pending" or "" (all).
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", All:
		return All, nil
	case StatusFilter(shortener.StatusSuccess), StatusFilter(shortener.StatusError), StatusFilter(shortener.StatusPending):
		return StatusFilter(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// Summary counts entries per status.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
}

// Summarize counts entries per status.
func Summarize(entries []shortener.Entry) Summary {
	s := Summary{Total: len(entries)}

	for _, e := range entries {
		switch e.Status() {
		case shortener.StatusSuccess:
			s.Successful++
		case shortener.StatusError:
			s.Failed++
		case shortener.StatusPending:
			s.Pending++
		}
	}

	return s
}

// Filter returns the entries matching status whose original or short URL contains
// search, case-insensitively, newest first. The input is not modified.
func Filter(entries []shortener.Entry, status StatusFilter, search string) []shortener.Entry {
	term := strings.ToLower(search)
	out := make([]shortener.Entry, 0, len(entries))

	for _, e := range entries {
		if status != All && status != "" && StatusFilter(e.Status()) != status {
			continue
		}

		if term != "" &&
			!strings.Contains(strings.ToLower(e.Original), term) &&
			!strings.Contains(strings.ToLower(e.Short()), term) {
			continue
		}

		out = append(out, e)
	}

	session.SortNewestFirst(out)

	return out
}

// FormatExpiry renders the time left until expiry. Unparseable input is returned as is.
func FormatExpiry(expiry string, now time.Time) string {
	t, err := time.Parse(time.RFC3339Nano, expiry)
	if err != nil {
		return expiry
	}

	mins := int(math.Floor(t.Sub(now).Minutes()))

	switch {
	case mins <= 0:
		return "Expired"
	case mins < 60:
		return fmt.Sprintf("%d minutes left", mins)
	case mins < 1440:
		return fmt.Sprintf("%d hours left", mins/60)
	default:
		return fmt.Sprintf("%d days left", mins/1440)
	}
}

// FormatCreated renders a creation time for display.
func FormatCreated(t time.Time) string {
	return t.Format(createdLayout)
}
