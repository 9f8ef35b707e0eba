package extcore

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorMiddleware handles an error produced while serving a request. It
// either writes a response, passes the error on with next, or both.
type ErrorMiddleware func(w http.ResponseWriter, r *http.Request, err error, next func(error))

// HandleClientError writes *ClientError and *ValidationErrors values with
// their own status. Anything else is passed to next.
func HandleClientError() ErrorMiddleware {
	return func(w http.ResponseWriter, _ *http.Request, err error, next func(error)) {
		var ve *ValidationErrors
		if errors.As(err, &ve) {
			writeJSON(w, ve.StatusCode(), map[string][]string{"validationErrors": ve.Messages})
			return
		}

		var ce *ClientError
		if errors.As(err, &ce) {
			writeJSON(w, ce.Status, ce.Body())
			return
		}

		next(err)
	}
}

// HandleServerError writes a 500 response. In production the body is the
// generic status text; otherwise it exposes the error message. The error is
// still passed to next so later middleware can observe it.
func HandleServerError(production func() bool) ErrorMiddleware {
	return func(w http.ResponseWriter, _ *http.Request, err error, next func(error)) {
		if production != nil && production() {
			writeJSON(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		next(err)
	}
}

// handleError runs err through the router's error chain.
func (r *Router) handleError(w http.ResponseWriter, req *http.Request, err error) {
	r.mu.Lock()
	chain := make([]ErrorMiddleware, len(r.errorChain))
	copy(chain, r.errorChain)
	r.mu.Unlock()

	tw := &writeTracker{ResponseWriter: w}

	var dispatch func(i int, err error)
	dispatch = func(i int, err error) {
		if i >= len(chain) {
			r.unhandledError(tw, req, err)
			return
		}
		chain[i](tw, req, err, func(next error) {
			dispatch(i+1, next)
		})
	}
	dispatch(0, err)
}

// unhandledError is the end of the error chain. If nothing answered the
// request, the status text of ErrorStatus(err) is written; the error is
// always logged.
func (r *Router) unhandledError(w *writeTracker, req *http.Request, err error) {
	LoggerFrom(req.Context(), r.Logger()).LogAttrs(req.Context(), slog.LevelError, "request failed",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", ErrorStatus(err)),
		slog.String("err", err.Error()),
	)

	if w.written {
		return
	}
	status := ErrorStatus(err)
	http.Error(w, http.StatusText(status), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(v)
}

// writeTracker records whether a response has been started.
type writeTracker struct {
	http.ResponseWriter
	written bool
}

func (t *writeTracker) WriteHeader(code int) {
	t.written = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *writeTracker) Write(b []byte) (int, error) {
	t.written = true
	return t.ResponseWriter.Write(b)
}

func (t *writeTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
