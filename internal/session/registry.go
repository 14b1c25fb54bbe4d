package session

import (
	"context"
	"sync"
)

// Registry maps session ids to their workspaces.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace for id, creating it on first use.
func (r *Registry) Get(id string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[id]
	if !ok {
		ws = NewWorkspace()
		r.workspaces[id] = ws
	}

	return ws
}

// Lookup returns the workspace for id without creating it.
func (r *Registry) Lookup(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[id]

	return ws, ok
}

// Len returns the number of known sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.workspaces)
}

type sessionIDKey struct{}

// HeaderName carries the session id on requests and responses.
const HeaderName = "X-Session-ID"

// ContextWithID stores the session id in ctx.
func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// IDFromContext returns the session id stored in ctx, or "".
func IDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return v
	}

	return ""
}
