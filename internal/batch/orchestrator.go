// Package batch turns submitted URL drafts into tracked entries: it validates the
// drafts, dispatches one shortening request per URL concurrently, and reconciles
// all results into the session workspace in one update.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortener-demo-go/internal/remotelog"
	"github.com/serroba/shortener-demo-go/internal/session"
	"github.com/serroba/shortener-demo-go/internal/shortener"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FailureMessage is shown when a batch could not be reconciled as a whole.
const FailureMessage = "Failed to shorten URLs"

const defaultHistory = 1000

var (
	// ErrBatchFailed reports a breakdown of the join itself, not of a single request.
	ErrBatchFailed = errors.New("batch reconciliation failed")
	ErrNotFound    = errors.New("batch not found")
)

// EventLogger receives one remote log event per outbound request.
type EventLogger interface {
	Log(level remotelog.Level, pkg remotelog.Package, message string)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for creation and expiry timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides how entry and batch ids are generated. It must be
// safe for concurrent use.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// WithHistory bounds how many batches stay available to Batch.
func WithHistory(n int) Option {
	return func(o *Orchestrator) { o.history = n }
}

// Orchestrator submits batches of drafts against a shortening service.
type Orchestrator struct {
	service shortener.Service
	events  EventLogger
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	history int

	mu      sync.Mutex
	batches map[string]*Batch
	order   []string
	running sync.WaitGroup
}

// NewOrchestrator creates an orchestrator dispatching to service.
func NewOrchestrator(service shortener.Service, events EventLogger, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		service: service,
		events:  events,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		history: defaultHistory,
		batches: make(map[string]*Batch),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Submit records drafts as the workspace form state, validates them and, when
// valid, prepends one pending entry per non-blank draft and dispatches them.
// It returns without waiting for the service; use Batch.Wait for the outcome.
// Dispatch does not inherit cancellation from ctx.
func (o *Orchestrator) Submit(ctx context.Context, ws *session.Workspace, drafts []shortener.Draft) (*Batch, error) {
	version := ws.SetDrafts(drafts)

	if err := Validate(drafts); err != nil {
		o.events.Log(remotelog.LevelError, remotelog.PackageComponent, "Form validation failed")

		return nil, err
	}

	createdAt := o.now()
	requests := make([]shortener.Request, 0, len(drafts))
	pending := make([]shortener.Entry, 0, len(drafts))

	for _, d := range drafts {
		if d.IsBlank() {
			continue
		}

		req := toRequest(d)
		requests = append(requests, req)
		pending = append(pending, shortener.NewPendingEntry(o.newID(), req.LongURL, createdAt))
	}

	b := newBatch(o.newID(), session.IDFromContext(ctx), pending)
	o.track(b)

	ws.Prepend(pending...)

	o.logger.Info("batch submitted",
		zap.String("batch_id", b.ID),
		zap.String("session_id", b.SessionID),
		zap.Int("count", len(pending)),
	)

	o.running.Add(1)

	go func() {
		defer o.running.Done()
		o.run(context.WithoutCancel(ctx), ws, version, b, requests)
	}()

	return b, nil
}

// Batch returns a tracked batch by id.
func (o *Orchestrator) Batch(id string) (*Batch, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.batches[id]
	if !ok {
		return nil, ErrNotFound
	}

	return b, nil
}

// Shutdown waits for in-flight batches to settle.
func (o *Orchestrator) Shutdown() error {
	o.running.Wait()

	return nil
}

func (o *Orchestrator) track(b *Batch) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.batches[b.ID] = b
	o.order = append(o.order, b.ID)

	for len(o.order) > o.history {
		delete(o.batches, o.order[0])
		o.order = o.order[1:]
	}
}

// run settles b and reconciles it into ws. Drafts are cleared on full success
// only if the form still holds what b was submitted with.
func (o *Orchestrator) run(
	ctx context.Context,
	ws *session.Workspace,
	draftsVersion uint64,
	b *Batch,
	requests []shortener.Request,
) {
	results, err := o.dispatch(ctx, b.pending, requests)
	if err != nil {
		o.logger.Error("batch failed",
			zap.String("batch_id", b.ID),
			zap.Error(err),
		)
		o.events.Log(remotelog.LevelError, remotelog.PackageAPI, FailureMessage)
	}

	replacements := make(map[string]shortener.Entry, len(results))
	succeeded := 0

	for i, p := range b.pending {
		if results[i].ID == "" {
			results[i] = p.Fail(o.newID(), FailureMessage)
		}

		if results[i].Status() == shortener.StatusSuccess {
			succeeded++
		}

		replacements[p.ID] = results[i]
	}

	ws.Replace(replacements)

	if err == nil && succeeded == len(results) && !ws.ResetDraftsIf(draftsVersion) {
		o.logger.Debug("drafts changed since submit, keeping them",
			zap.String("batch_id", b.ID),
		)
	}

	o.logger.Info("batch settled",
		zap.String("batch_id", b.ID),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(results)-succeeded),
	)

	b.settle(results, err)
}

// dispatch runs one request per entry and waits for all of them. A request
// failure becomes an error entry; only a panic escapes as ErrBatchFailed, in
// which case the affected slots are left zero.
func (o *Orchestrator) dispatch(
	ctx context.Context,
	pending []shortener.Entry,
	requests []shortener.Request,
) ([]shortener.Entry, error) {
	results := make([]shortener.Entry, len(pending))

	var g errgroup.Group

	for i := range pending {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", ErrBatchFailed, r)
				}
			}()

			results[i] = o.resolve(ctx, pending[i], requests[i])

			return nil
		})
	}

	return results, g.Wait()
}

func (o *Orchestrator) resolve(ctx context.Context, p shortener.Entry, req shortener.Request) shortener.Entry {
	res, err := o.service.Shorten(ctx, req)
	if err != nil {
		msg := shortener.FailureMessage(err)

		o.logger.Warn("shorten request failed",
			zap.String("url", req.LongURL),
			zap.Error(err),
		)
		o.events.Log(remotelog.LevelError, remotelog.PackageAPI, "Failed to shorten URL: "+msg)

		return p.Fail(o.newID(), msg)
	}

	expiry := res.Expiry
	if expiry == "" {
		expiry = shortener.ExpiryAfter(o.now(), req.Validity)
	}

	o.events.Log(remotelog.LevelInfo, remotelog.PackageAPI, "URL shortened successfully")

	return p.Succeed(o.newID(), res.ShortURL, expiry)
}
