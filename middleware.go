package extcore

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Middleware is the standard middleware signature compatible with the entire
// Go middleware ecosystem.
type Middleware func(next http.Handler) http.Handler

// PoweredByHeader is the value of the X-Powered-By header set by servers.
const PoweredByHeader = "Extcore Server"

// PoweredBy returns middleware that sets the X-Powered-By response header.
func PoweredBy(value string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Powered-By", value)
			next.ServeHTTP(w, r)
		})
	}
}

// Recovery returns middleware that recovers from panics and responds with 500.
// Endpoints and controllers already turn panics into errors for the router's
// error chain; this is for plain handlers mounted directly. The panic is
// logged through logger, resolved per request so a swapped router logger is
// honoured; nil logs through slog.Default().
func Recovery(logger func() *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					LoggerFrom(r.Context(), logger()).Error("panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// chain wraps h so that mw[0] is outermost.
func chain(h http.Handler, mw []Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// panicError converts a recovered value into an error.
func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}
