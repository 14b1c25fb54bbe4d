// Package session holds the volatile per-session state shared by the API and the
// batch orchestrator: the tracked entries and the current input drafts.
package session

import (
	"slices"
	"sync"

	"github.com/serroba/shortener-demo-go/internal/shortener"
)

// Workspace is the state of one session. Every mutation replaces a whole list
// under the lock, so concurrent batches reconcile independently.
type Workspace struct {
	mu      sync.Mutex
	entries []shortener.Entry
	drafts  []shortener.Draft
	// version increments whenever drafts change.
	version uint64
}

// NewWorkspace creates an empty workspace with one blank draft.
func NewWorkspace() *Workspace {
	return &Workspace{
		drafts: []shortener.Draft{{}},
	}
}

// Prepend inserts entries ahead of the existing ones, preserving their order.
func (w *Workspace) Prepend(entries ...shortener.Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]shortener.Entry, 0, len(entries)+len(w.entries))
	next = append(next, entries...)
	next = append(next, w.entries...)
	w.entries = next
}

// Replace swaps entries whose id is a key of replacements for the mapped value.
// Entries not named are kept as they are. It returns the number replaced.
func (w *Workspace) Replace(replacements map[string]shortener.Entry) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]shortener.Entry, len(w.entries))
	replaced := 0

	for i, e := range w.entries {
		if r, ok := replacements[e.ID]; ok {
			next[i] = r
			replaced++

			continue
		}

		next[i] = e
	}

	w.entries = next

	return replaced
}

// Entries returns a copy of the tracked entries, newest first.
func (w *Workspace) Entries() []shortener.Entry {
	w.mu.Lock()
	out := slices.Clone(w.entries)
	w.mu.Unlock()

	SortNewestFirst(out)

	return out
}

// Entry looks up a tracked entry by id.
func (w *Workspace) Entry(id string) (shortener.Entry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.entries {
		if e.ID == id {
			return e, true
		}
	}

	return shortener.Entry{}, false
}

// Drafts returns a copy of the current input drafts.
func (w *Workspace) Drafts() []shortener.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.drafts)
}

// SetDrafts replaces the input drafts. An empty list becomes one blank draft.
// It returns the version identifying this state of the form.
func (w *Workspace) SetDrafts(drafts []shortener.Draft) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.setDrafts(drafts)
}

// ResetDrafts clears the form back to a single blank draft.
func (w *Workspace) ResetDrafts() {
	w.SetDrafts(nil)
}

// ResetDraftsIf clears the form only while it is still at version, so a
// settling batch never discards drafts written after it was submitted.
func (w *Workspace) ResetDraftsIf(version uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.version != version {
		return false
	}

	w.setDrafts(nil)

	return true
}

func (w *Workspace) setDrafts(drafts []shortener.Draft) uint64 {
	if len(drafts) == 0 {
		w.drafts = []shortener.Draft{{}}
	} else {
		w.drafts = slices.Clone(drafts)
	}

	w.version++

	return w.version
}

// SortNewestFirst orders entries by creation time, newest first. Ties keep their order.
func SortNewestFirst(entries []shortener.Entry) {
	slices.SortStableFunc(entries, func(a, b shortener.Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
