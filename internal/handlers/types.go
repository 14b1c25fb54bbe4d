package handlers

import (
	"time"

	"github.com/serroba/shortener-demo-go/internal/shortener"
	"github.com/serroba/shortener-demo-go/internal/stats"
)

// DraftInput is one row of the shortening form.
type DraftInput struct {
	LongURL   string `doc:"The URL to shorten"                    example:"https://example.com/very/long/path" json:"longUrl"`
	Validity  string `doc:"Validity in minutes, 1-1440 (default 30)" example:"30"                             json:"validity,omitempty"  required:"false"`
	Shortcode string `doc:"Optional custom shortcode"              example:"promo1"                            json:"shortcode,omitempty" required:"false"`
}

func toDrafts(in []DraftInput) []shortener.Draft {
	out := make([]shortener.Draft, len(in))
	for i, d := range in {
		out[i] = shortener.Draft{LongURL: d.LongURL, Validity: d.Validity, Shortcode: d.Shortcode}
	}

	return out
}

func fromDrafts(in []shortener.Draft) []DraftInput {
	out := make([]DraftInput, len(in))
	for i, d := range in {
		out[i] = DraftInput{LongURL: d.LongURL, Validity: d.Validity, Shortcode: d.Shortcode}
	}

	return out
}

// EntryView is the JSON rendering of a tracked entry.
type EntryView struct {
	ID        string           `doc:"Entry id"                              json:"id"`
	Status    shortener.Status `doc:"Entry status"                          enum:"pending,success,error" json:"status"`
	Original  string           `doc:"The submitted URL"                     json:"original"`
	Short     string           `doc:"The short URL"                         json:"short,omitempty"`
	Expiry    string           `doc:"Expiry timestamp (ISO-8601)"           json:"expiry,omitempty"`
	ExpiresIn string           `doc:"Time left until expiry"                json:"expiresIn,omitempty"`
	VisitURL  string           `doc:"Address a visit action should open"    json:"visitUrl,omitempty"`
	Error     string           `doc:"Failure message"                       json:"error,omitempty"`
	CreatedAt time.Time        `doc:"Creation time"                         json:"createdAt"`
	Created   string           `doc:"Creation time formatted for display"   json:"created"`
}

func newEntryView(e shortener.Entry, now time.Time) EntryView {
	v := EntryView{
		ID:        e.ID,
		Status:    e.Status(),
		Original:  e.Original,
		Short:     e.Short(),
		Expiry:    e.Expiry(),
		Error:     e.Failure(),
		CreatedAt: e.CreatedAt,
		Created:   stats.FormatCreated(e.CreatedAt),
	}

	if v.Status == shortener.StatusSuccess {
		v.VisitURL = e.VisitURL()
		v.ExpiresIn = stats.FormatExpiry(v.Expiry, now)
	}

	return v
}

func newEntryViews(entries []shortener.Entry, now time.Time) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = newEntryView(e, now)
	}

	return out
}

// BatchView is the JSON rendering of a submitted batch.
type BatchView struct {
	ID      string      `doc:"Batch id"                                 json:"id"`
	Settled bool        `doc:"Whether every entry has settled"          json:"settled"`
	Error   string      `doc:"Batch-level failure, if the join failed"  json:"error,omitempty"`
	Entries []EntryView `doc:"Entries in submission order"              json:"entries"`
}

// SubmitBatchRequest is the request body for submitting a batch.
type SubmitBatchRequest struct {
	Body struct {
		URLs []DraftInput `doc:"Up to 5 URL drafts; blank rows are ignored" json:"urls"`
	}
}

// SubmitBatchResponse is returned once the batch has been accepted.
type SubmitBatchResponse struct {
	Headers struct {
		Location string `doc:"Where to poll for the batch outcome" header:"Location"`
	}
	Body BatchView
}

// GetBatchRequest identifies a batch.
type GetBatchRequest struct {
	ID string `doc:"Batch id" path:"id"`
}

// GetBatchResponse reports the state of a batch.
type GetBatchResponse struct {
	Body BatchView
}

// ListEntriesRequest filters the statistics view.
type ListEntriesRequest struct {
	Status string `default:"all" doc:"Status filter"                        enum:"all,success,error,pending" query:"status"`
	Query  string `doc:"Case-insensitive search over original and short URLs" query:"q"`
}

// ListEntriesResponse is the statistics view.
type ListEntriesResponse struct {
	Body struct {
		Statistics stats.Summary `doc:"Counts over all entries"       json:"statistics"`
		Count      int           `doc:"Number of entries returned"    json:"count"`
		Entries    []EntryView   `doc:"Matching entries, newest first" json:"entries"`
	}
}

// DraftsBody carries the form state.
type DraftsBody struct {
	URLs []DraftInput `doc:"Current URL drafts" json:"urls"`
}

// GetDraftsResponse returns the form state.
type GetDraftsResponse struct {
	Body DraftsBody
}

// PutDraftsRequest replaces the form state.
type PutDraftsRequest struct {
	Body DraftsBody
}

// MockShortenRequest is the declared shortening contract served by the mock backend.
type MockShortenRequest struct {
	Body struct {
		LongURL   string `doc:"The URL to shorten"         json:"longUrl"   minLength:"1"`
		Validity  int    `doc:"Validity in minutes"        json:"validity"  maximum:"1440" minimum:"1"`
		Shortcode string `doc:"Optional custom shortcode" json:"shortcode,omitempty" required:"false"`
	}
}

// MockShortenResponse is the mock backend's answer.
type MockShortenResponse struct {
	Body shortener.Result
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse redirects to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `header:"Location"`
	}
}
