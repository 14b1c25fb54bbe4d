package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortener-demo-go/internal/batch"
	"github.com/serroba/shortener-demo-go/internal/session"
	"github.com/serroba/shortener-demo-go/internal/shortener"
	"github.com/serroba/shortener-demo-go/internal/stats"
)

// WorkspaceHandler serves the session's entries and form state.
type WorkspaceHandler struct {
	sessions *session.Registry
	now      func() time.Time
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(sessions *session.Registry) *WorkspaceHandler {
	return &WorkspaceHandler{
		sessions: sessions,
		now:      time.Now,
	}
}

func (h *WorkspaceHandler) ListEntries(ctx context.Context, req *ListEntriesRequest) (*ListEntriesResponse, error) {
	filter, err := stats.ParseStatusFilter(req.Status)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	var all []shortener.Entry
	if ws, ok := h.sessions.Lookup(session.IDFromContext(ctx)); ok {
		all = ws.Entries()
	}

	matched := stats.Filter(all, filter, req.Query)

	resp := &ListEntriesResponse{}
	resp.Body.Statistics = stats.Summarize(all)
	resp.Body.Count = len(matched)
	resp.Body.Entries = newEntryViews(matched, h.now())

	return resp, nil
}

func (h *WorkspaceHandler) GetDrafts(ctx context.Context, _ *struct{}) (*GetDraftsResponse, error) {
	drafts := []shortener.Draft{{}}
	if ws, ok := h.sessions.Lookup(session.IDFromContext(ctx)); ok {
		drafts = ws.Drafts()
	}

	return &GetDraftsResponse{Body: DraftsBody{URLs: fromDrafts(drafts)}}, nil
}

func (h *WorkspaceHandler) PutDrafts(ctx context.Context, req *PutDraftsRequest) (*GetDraftsResponse, error) {
	if len(req.Body.URLs) > batch.MaxBatchSize {
		return nil, huma.Error422UnprocessableEntity(batch.MsgTooMany)
	}

	ws := h.sessions.Get(session.IDFromContext(ctx))
	ws.SetDrafts(toDrafts(req.Body.URLs))

	return &GetDraftsResponse{Body: DraftsBody{URLs: fromDrafts(ws.Drafts())}}, nil
}
