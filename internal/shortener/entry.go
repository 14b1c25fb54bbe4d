package shortener

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a tracked shortening attempt.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Draft is the user-supplied input for one URL before submission.
type Draft struct {
	LongURL   string `json:"longUrl"`
	Validity  string `json:"validity"`
	Shortcode string `json:"shortcode"`
}

// IsBlank reports whether the draft carries no long URL.
func (d Draft) IsBlank() bool {
	return strings.TrimSpace(d.LongURL) == ""
}

// outcome is the sealed sum of pending, success and error states.
type outcome interface {
	status() Status
}

type pending struct{}

func (pending) status() Status { return StatusPending }

type succeeded struct {
	short  string
	expiry string
}

func (succeeded) status() Status { return StatusSuccess }

type failed struct {
	message string
}

func (failed) status() Status { return StatusError }

// Entry is one tracked shortening attempt. Short URL and expiry exist only on
// successful entries and a failure message only on failed ones.
type Entry struct {
	ID        string
	Original  string
	CreatedAt time.Time
	outcome   outcome
}

// NewPendingEntry creates a placeholder for a submitted URL.
func NewPendingEntry(id, original string, createdAt time.Time) Entry {
	return Entry{
		ID:        id,
		Original:  original,
		CreatedAt: createdAt,
		outcome:   pending{},
	}
}

// Succeed returns the terminal success generation of e under a new id.
func (e Entry) Succeed(id, short, expiry string) Entry {
	return Entry{
		ID:        id,
		Original:  e.Original,
		CreatedAt: e.CreatedAt,
		outcome:   succeeded{short: short, expiry: expiry},
	}
}

// Fail returns the terminal error generation of e under a new id.
func (e Entry) Fail(id, message string) Entry {
	if message == "" {
		message = DefaultFailureMessage
	}

	return Entry{
		ID:        id,
		Original:  e.Original,
		CreatedAt: e.CreatedAt,
		outcome:   failed{message: message},
	}
}

// Status returns the entry state. The zero Entry reports pending.
func (e Entry) Status() Status {
	if e.outcome == nil {
		return StatusPending
	}

	return e.outcome.status()
}

// Short returns the short URL of a successful entry.
func (e Entry) Short() string {
	if s, ok := e.outcome.(succeeded); ok {
		return s.short
	}

	return ""
}

// Expiry returns the ISO-8601 expiry of a successful entry.
func (e Entry) Expiry() string {
	if s, ok := e.outcome.(succeeded); ok {
		return s.expiry
	}

	return ""
}

// Failure returns the error message of a failed entry.
func (e Entry) Failure() string {
	if f, ok := e.outcome.(failed); ok {
		return f.message
	}

	return ""
}

// IsTerminal reports whether the entry has settled.
func (e Entry) IsTerminal() bool {
	return e.Status() != StatusPending
}

// VisitURL returns the address a "visit" action should open. Short URLs issued by
// the mock backend point back at this demo, so the original URL is opened instead.
func (e Entry) VisitURL() string {
	short := e.Short()
	if short == "" || IsMockShortURL(short) {
		return e.Original
	}

	return short
}
