package batch_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serroba/shortener-demo-go/internal/batch"
	"github.com/serroba/shortener-demo-go/internal/remotelog"
	"github.com/serroba/shortener-demo-go/internal/session"
	"github.com/serroba/shortener-demo-go/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedResponse struct {
	result *shortener.Result
	err    error
	delay  time.Duration
	panic  bool
}

type scriptedService struct {
	mu        sync.Mutex
	responses map[string]scriptedResponse
	requests  []shortener.Request
	release   chan struct{}
}

func (s *scriptedService) Shorten(ctx context.Context, req shortener.Request) (*shortener.Result, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	resp := s.responses[req.LongURL]
	release := s.release
	s.mu.Unlock()

	if release != nil {
		<-release
	}

	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if resp.panic {
		panic("join exploded")
	}

	if resp.err != nil {
		return nil, resp.err
	}

	if resp.result != nil {
		return resp.result, nil
	}

	return &shortener.Result{ShortURL: "https://sho.rt/" + req.Shortcode, Expiry: "2026-01-01T00:30:00.000Z"}, nil
}

func (s *scriptedService) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

type loggedEvent struct {
	level   remotelog.Level
	pkg     remotelog.Package
	message string
}

type recordingEvents struct {
	mu     sync.Mutex
	events []loggedEvent
}

func (r *recordingEvents) Log(level remotelog.Level, pkg remotelog.Package, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, loggedEvent{level: level, pkg: pkg, message: message})
}

func (r *recordingEvents) all() []loggedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]loggedEvent(nil), r.events...)
}

func sequentialIDs() func() string {
	var n atomic.Int64

	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

var fixedNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newOrchestrator(svc shortener.Service, events batch.EventLogger, now func() time.Time) *batch.Orchestrator {
	if now == nil {
		now = func() time.Time { return fixedNow }
	}

	return batch.NewOrchestrator(svc, events, zap.NewNop(),
		batch.WithClock(now),
		batch.WithIDGenerator(sequentialIDs()),
	)
}

func waitBatch(t *testing.T, b *batch.Batch) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, b.Wait(ctx))
}

func TestOrchestrator_Submit_Validation(t *testing.T) {
	t.Run("all blank is rejected without dispatch", func(t *testing.T) {
		svc := &scriptedService{}
		events := &recordingEvents{}
		ws := session.NewWorkspace()
		orch := newOrchestrator(svc, events, nil)

		b, err := orch.Submit(context.Background(), ws, []shortener.Draft{{}, {}})

		var vErr *batch.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Nil(t, b)
		assert.Equal(t, []string{batch.MsgNoURLs}, vErr.Messages)
		assert.Empty(t, ws.Entries())
		assert.Zero(t, svc.requestCount())
		assert.Equal(t, []loggedEvent{{remotelog.LevelError, remotelog.PackageComponent, "Form validation failed"}}, events.all())
	})

	t.Run("invalid shortcode keeps drafts as typed", func(t *testing.T) {
		svc := &scriptedService{}
		ws := session.NewWorkspace()
		orch := newOrchestrator(svc, &recordingEvents{}, nil)
		drafts := []shortener.Draft{{LongURL: "https://x.y", Shortcode: "ab_cd"}}

		_, err := orch.Submit(context.Background(), ws, drafts)

		require.Error(t, err)
		assert.Equal(t, drafts, ws.Drafts())
		assert.Zero(t, svc.requestCount())
	})
}

func TestOrchestrator_Submit(t *testing.T) {
	t.Run("mixed outcomes settle together and keep drafts", func(t *testing.T) {
		svc := &scriptedService{responses: map[string]scriptedResponse{
			"https://a.com": {result: &shortener.Result{ShortURL: "https://s/1", Expiry: "2026-01-01T00:30:00.000Z"}},
			"https://b.com": {err: &shortener.ServiceError{StatusCode: http.StatusInternalServerError, Body: "boom"}, delay: 20 * time.Millisecond},
		}}
		events := &recordingEvents{}
		ws := session.NewWorkspace()
		orch := newOrchestrator(svc, events, nil)
		drafts := []shortener.Draft{{LongURL: "https://a.com"}, {LongURL: "https://b.com"}}

		b, err := orch.Submit(context.Background(), ws, drafts)
		require.NoError(t, err)

		pending := b.Pending()
		require.Len(t, pending, 2)
		assert.Equal(t, "https://a.com", pending[0].Original)
		assert.Equal(t, "https://b.com", pending[1].Original)

		waitBatch(t, b)

		require.NoError(t, b.Err())
		assert.False(t, b.Succeeded())

		entries := ws.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, shortener.StatusSuccess, entries[0].Status())
		assert.Equal(t, "https://s/1", entries[0].Short())
		assert.Equal(t, "2026-01-01T00:30:00.000Z", entries[0].Expiry())
		assert.Equal(t, shortener.StatusError, entries[1].Status())
		assert.Equal(t, "HTTP 500: boom", entries[1].Failure())
		assert.Empty(t, entries[1].Short())

		assert.Equal(t, drafts, ws.Drafts())
		assert.Len(t, events.all(), 2)
	})

	t.Run("full success resets drafts", func(t *testing.T) {
		ws := session.NewWorkspace()
		orch := newOrchestrator(&scriptedService{}, &recordingEvents{}, nil)

		b, err := orch.Submit(context.Background(), ws, []shortener.Draft{
			{LongURL: "https://a.com", Shortcode: "abc"},
			{},
		})
		require.NoError(t, err)

		waitBatch(t, b)

		assert.True(t, b.Succeeded())
		assert.Equal(t, []shortener.Draft{{}}, ws.Drafts())

		entries := b.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "https://sho.rt/abc", entries[0].Short())
	})

	t.Run("sends resolved validity and shortcode", func(t *testing.T) {
		svc := &scriptedService{}
		orch := newOrchestrator(svc, &recordingEvents{}, nil)

		b, err := orch.Submit(context.Background(), session.NewWorkspace(), []shortener.Draft{
			{LongURL: "https://a.com"},
			{LongURL: "https://b.com", Validity: "90", Shortcode: "mine"},
		})
		require.NoError(t, err)
		waitBatch(t, b)

		svc.mu.Lock()
		defer svc.mu.Unlock()

		assert.ElementsMatch(t, []shortener.Request{
			{LongURL: "https://a.com", Validity: 30},
			{LongURL: "https://b.com", Validity: 90, Shortcode: "mine"},
		}, svc.requests)
	})

	t.Run("computes expiry when service omits it", func(t *testing.T) {
		svc := &scriptedService{responses: map[string]scriptedResponse{
			"https://a.com": {result: &shortener.Result{ShortURL: "https://s/1"}},
		}}
		orch := newOrchestrator(svc, &recordingEvents{}, nil)

		b, err := orch.Submit(context.Background(), session.NewWorkspace(), []shortener.Draft{
			{LongURL: "https://a.com", Validity: "10"},
		})
		require.NoError(t, err)
		waitBatch(t, b)

		assert.Equal(t, "2026-01-01T00:10:00.000Z", b.Entries()[0].Expiry())
	})

	t.Run("pending stays until every sibling settles", func(t *testing.T) {
		svc := &scriptedService{
			responses: map[string]scriptedResponse{
				"https://slow.com": {delay: 50 * time.Millisecond},
			},
			release: make(chan struct{}),
		}
		ws := session.NewWorkspace()
		orch := newOrchestrator(svc, &recordingEvents{}, nil)

		b, err := orch.Submit(context.Background(), ws, []shortener.Draft{
			{LongURL: "https://fast.com"},
			{LongURL: "https://slow.com"},
			{LongURL: "https://other.com"},
		})
		require.NoError(t, err)

		for _, e := range ws.Entries() {
			assert.Equal(t, shortener.StatusPending, e.Status())
		}

		close(svc.release)
		waitBatch(t, b)

		entries := ws.Entries()
		require.Len(t, entries, 3)

		for _, e := range entries {
			assert.Equal(t, shortener.StatusSuccess, e.Status())
		}

		assert.Equal(t, []string{"https://fast.com", "https://slow.com", "https://other.com"},
			[]string{entries[0].Original, entries[1].Original, entries[2].Original})
	})

	t.Run("terminal entries get new ids and keep creation time", func(t *testing.T) {
		ws := session.NewWorkspace()
		orch := newOrchestrator(&scriptedService{}, &recordingEvents{}, nil)

		b, err := orch.Submit(context.Background(), ws, []shortener.Draft{{LongURL: "https://a.com"}})
		require.NoError(t, err)
		waitBatch(t, b)

		p := b.Pending()[0]
		e := b.Entries()[0]
		assert.NotEqual(t, p.ID, e.ID)
		assert.Equal(t, p.CreatedAt, e.CreatedAt)

		_, ok := ws.Entry(p.ID)
		assert.False(t, ok)
	})

	t.Run("dispatch ignores caller cancellation", func(t *testing.T) {
		svc := &scriptedService{responses: map[string]scriptedResponse{
			"https://a.com": {delay: 20 * time.Millisecond},
		}}
		orch := newOrchestrator(svc, &recordingEvents{}, nil)
		ctx, cancel := context.WithCancel(context.Background())

		b, err := orch.Submit(ctx, session.NewWorkspace(), []shortener.Draft{{LongURL: "https://a.com"}})
		require.NoError(t, err)
		cancel()

		waitBatch(t, b)

		assert.True(t, b.Succeeded())
	})

	t.Run("records session id from context", func(t *testing.T) {
		orch := newOrchestrator(&scriptedService{}, &recordingEvents{}, nil)
		ctx := session.ContextWithID(context.Background(), "sess-1")

		b, err := orch.Submit(ctx, session.NewWorkspace(), []shortener.Draft{{LongURL: "https://a.com"}})
		require.NoError(t, err)

		assert.Equal(t, "sess-1", b.SessionID)
		waitBatch(t, b)
	})
}

func TestOrchestrator_IndependentBatches(t *testing.T) {
	svc := &scriptedService{responses: map[string]scriptedResponse{
		"https://slow.com": {delay: 80 * time.Millisecond},
	}}
	ws := session.NewWorkspace()

	var tick atomic.Int64

	now := func() time.Time { return fixedNow.Add(time.Duration(tick.Add(1)) * time.Second) }
	orch := newOrchestrator(svc, &recordingEvents{}, now)

	slow, err := orch.Submit(context.Background(), ws, []shortener.Draft{{LongURL: "https://slow.com"}})
	require.NoError(t, err)

	fast, err := orch.Submit(context.Background(), ws, []shortener.Draft{{LongURL: "https://fast.com"}})
	require.NoError(t, err)

	waitBatch(t, fast)

	entries := ws.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "https://fast.com", entries[0].Original)
	assert.Equal(t, shortener.StatusSuccess, entries[0].Status())
	assert.Equal(t, shortener.StatusPending, entries[1].Status())

	waitBatch(t, slow)

	entries = ws.Entries()
	assert.Equal(t, shortener.StatusSuccess, entries[1].Status())
}

func TestOrchestrator_SettledBatchKeepsNewerDrafts(t *testing.T) {
	t.Run("rejected resubmit survives an earlier success", func(t *testing.T) {
		svc := &scriptedService{release: make(chan struct{})}
		ws := session.NewWorkspace()
		orch := newOrchestrator(svc, &recordingEvents{}, nil)

		first, err := orch.Submit(context.Background(), ws, []shortener.Draft{{LongURL: "https://a.com"}})
		require.NoError(t, err)

		rejected := []shortener.Draft{{LongURL: "https://b.com", Shortcode: "bad_code"}}
		_, err = orch.Submit(context.Background(), ws, rejected)

		var vErr *batch.ValidationError
		require.ErrorAs(t, err, &vErr)

		close(svc.release)
		waitBatch(t, first)

		assert.True(t, first.Succeeded())
		assert.Equal(t, rejected, ws.Drafts())
	})

	t.Run("edited form survives an earlier success", func(t *testing.T) {
		svc := &scriptedService{release: make(chan struct{})}
		ws := session.NewWorkspace()
		orch := newOrchestrator(svc, &recordingEvents{}, nil)

		first, err := orch.Submit(context.Background(), ws, []shortener.Draft{{LongURL: "https://a.com"}})
		require.NoError(t, err)

		edited := []shortener.Draft{{LongURL: "https://typing.com"}}
		ws.SetDrafts(edited)

		close(svc.release)
		waitBatch(t, first)

		assert.True(t, first.Succeeded())
		assert.Equal(t, edited, ws.Drafts())
	})
}

func TestOrchestrator_PanicBecomesBatchError(t *testing.T) {
	svc := &scriptedService{responses: map[string]scriptedResponse{
		"https://bad.com": {panic: true},
	}}
	ws := session.NewWorkspace()
	orch := newOrchestrator(svc, &recordingEvents{}, nil)

	b, err := orch.Submit(context.Background(), ws, []shortener.Draft{
		{LongURL: "https://ok.com"},
		{LongURL: "https://bad.com"},
	})
	require.NoError(t, err)
	waitBatch(t, b)

	require.ErrorIs(t, b.Err(), batch.ErrBatchFailed)
	assert.False(t, b.Succeeded())

	entries := b.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, shortener.StatusSuccess, entries[0].Status())
	assert.Equal(t, shortener.StatusError, entries[1].Status())
	assert.Equal(t, batch.FailureMessage, entries[1].Failure())

	for _, e := range ws.Entries() {
		assert.True(t, e.IsTerminal())
	}
}

func TestOrchestrator_Batch(t *testing.T) {
	t.Run("looks up submitted batches", func(t *testing.T) {
		orch := newOrchestrator(&scriptedService{}, &recordingEvents{}, nil)

		b, err := orch.Submit(context.Background(), session.NewWorkspace(), []shortener.Draft{{LongURL: "https://a.com"}})
		require.NoError(t, err)

		got, err := orch.Batch(b.ID)

		require.NoError(t, err)
		assert.Same(t, b, got)
		require.NoError(t, orch.Shutdown())
	})

	t.Run("returns not found for unknown ids", func(t *testing.T) {
		orch := newOrchestrator(&scriptedService{}, &recordingEvents{}, nil)

		_, err := orch.Batch("missing")

		assert.ErrorIs(t, err, batch.ErrNotFound)
	})

	t.Run("forgets the oldest batches beyond history", func(t *testing.T) {
		orch := batch.NewOrchestrator(&scriptedService{}, &recordingEvents{}, zap.NewNop(), batch.WithHistory(1))
		ws := session.NewWorkspace()

		first, err := orch.Submit(context.Background(), ws, []shortener.Draft{{LongURL: "https://a.com"}})
		require.NoError(t, err)
		second, err := orch.Submit(context.Background(), ws, []shortener.Draft{{LongURL: "https://b.com"}})
		require.NoError(t, err)

		_, err = orch.Batch(first.ID)
		require.ErrorIs(t, err, batch.ErrNotFound)

		_, err = orch.Batch(second.ID)
		require.NoError(t, err)
		require.NoError(t, orch.Shutdown())
	})
}
