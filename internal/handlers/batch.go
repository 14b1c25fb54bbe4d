package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortener-demo-go/internal/batch"
	"github.com/serroba/shortener-demo-go/internal/session"
	"go.uber.org/zap"
)

// BatchHandler submits batches and reports their progress.
type BatchHandler struct {
	orchestrator *batch.Orchestrator
	sessions     *session.Registry
	logger       *zap.Logger
	now          func() time.Time
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(orchestrator *batch.Orchestrator, sessions *session.Registry, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{
		orchestrator: orchestrator,
		sessions:     sessions,
		logger:       logger,
		now:          time.Now,
	}
}

func (h *BatchHandler) SubmitBatch(ctx context.Context, req *SubmitBatchRequest) (*SubmitBatchResponse, error) {
	ws := h.sessions.Get(session.IDFromContext(ctx))

	b, err := h.orchestrator.Submit(ctx, ws, toDrafts(req.Body.URLs))
	if err != nil {
		var vErr *batch.ValidationError
		if errors.As(err, &vErr) {
			return nil, validationProblem(vErr)
		}

		h.logger.Error("failed to submit batch", zap.Error(err))

		return nil, huma.Error500InternalServerError(batch.FailureMessage)
	}

	resp := &SubmitBatchResponse{}
	resp.Headers.Location = "/batches/" + b.ID
	resp.Body = h.view(b)

	return resp, nil
}

func (h *BatchHandler) GetBatch(ctx context.Context, req *GetBatchRequest) (*GetBatchResponse, error) {
	b, err := h.orchestrator.Batch(req.ID)
	if err != nil || b.SessionID != session.IDFromContext(ctx) {
		return nil, huma.Error404NotFound("batch not found")
	}

	return &GetBatchResponse{Body: h.view(b)}, nil
}

func (h *BatchHandler) view(b *batch.Batch) BatchView {
	v := BatchView{
		ID:      b.ID,
		Settled: b.Settled(),
		Entries: newEntryViews(b.Entries(), h.now()),
	}

	if b.Err() != nil {
		v.Error = batch.FailureMessage
	}

	return v
}

func validationProblem(vErr *batch.ValidationError) error {
	details := make([]error, len(vErr.Messages))
	for i, m := range vErr.Messages {
		details[i] = &huma.ErrorDetail{Message: m, Location: "body.urls"}
	}

	return huma.Error422UnprocessableEntity("Form validation failed", details...)
}
