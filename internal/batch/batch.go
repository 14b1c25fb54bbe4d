package batch

import (
	"context"
	"slices"
	"sync"

	"github.com/serroba/shortener-demo-go/internal/shortener"
)

// Batch tracks one submission from its pending placeholders to its terminal entries.
type Batch struct {
	ID        string
	SessionID string

	pending []shortener.Entry
	done    chan struct{}

	mu      sync.RWMutex
	settled []shortener.Entry
	err     error
}

func newBatch(id, sessionID string, pending []shortener.Entry) *Batch {
	return &Batch{
		ID:        id,
		SessionID: sessionID,
		pending:   pending,
		done:      make(chan struct{}),
	}
}

// Pending returns the placeholders created at submission, in submission order.
func (b *Batch) Pending() []shortener.Entry {
	return slices.Clone(b.pending)
}

// Done is closed once every entry of the batch has settled.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Settled reports whether the batch has been reconciled.
func (b *Batch) Settled() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the batch settles or ctx is done.
func (b *Batch) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries returns the terminal entries in submission order once settled,
// and the pending placeholders before that.
func (b *Batch) Entries() []shortener.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.settled == nil {
		return slices.Clone(b.pending)
	}

	return slices.Clone(b.settled)
}

// Err returns ErrBatchFailed when reconciliation itself broke down.
func (b *Batch) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.err
}

// Succeeded reports whether the batch settled with every entry successful.
func (b *Batch) Succeeded() bool {
	if !b.Settled() {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.err != nil {
		return false
	}

	for _, e := range b.settled {
		if e.Status() != shortener.StatusSuccess {
			return false
		}
	}

	return true
}

func (b *Batch) settle(entries []shortener.Entry, err error) {
	b.mu.Lock()
	b.settled = entries
	b.err = err
	b.mu.Unlock()

	close(b.done)
}
