package middleware

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/shortener-demo-go/internal/session"
)

const maxSessionIDLength = 64

// Session selects the caller's workspace from the X-Session-ID header, issuing a
// new id when the header is missing or unusable. The id is echoed on the response.
func Session(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := strings.TrimSpace(ctx.Header(session.HeaderName))
		if id == "" || len(id) > maxSessionIDLength {
			id = uuid.NewString()
		}

		ctx.SetHeader(session.HeaderName, id)
		ctx = huma.WithContext(ctx, session.ContextWithID(ctx.Context(), id))

		next(ctx)
	}
}
