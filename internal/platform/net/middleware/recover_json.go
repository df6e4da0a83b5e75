package middleware

import (
	"errors"
	stdhttp "net/http"
	"runtime/debug"

	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/logger"
	phttp "brickdump/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into the standard 500 error envelope.
// http.ErrAbortHandler is re-raised so the server can abort the connection
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, stdhttp.ErrAbortHandler) {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			phttp.RespondError(w, r, perr.PanicErrf("internal error while serving %s", r.URL.Path))
		}()
		next.ServeHTTP(w, r)
	})
}
