// Package recovery turns handler panics into a logged 500 response.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/hlog"

	"github.com/sandilya-stack/coach-server/internal/api/respond"
)

// Middleware recovers panics from downstream handlers. http.ErrAbortHandler is re-raised so
// net/http can abort the connection quietly.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ev := hlog.FromRequest(r).Error().
				Str("panic", fmt.Sprint(rec)).
				Str("route", r.Method+" "+r.URL.Path).
				Bytes("stack", debug.Stack())
			if id, ok := hlog.IDFromRequest(r); ok {
				ev = ev.Str("request_id", id.String())
			}
			ev.Msg("handler panicked")
			respond.WriteInternalError(w, "")
		}()
		next.ServeHTTP(w, r)
	})
}
