package extcore

import "net/http"

// DefaultUploadLimit caps request bodies, uploads included, at 50 MiB.
const DefaultUploadLimit int64 = 50 << 20

// BodyLimit returns middleware that limits the maximum request body size.
// Reading past maxBytes fails; endpoints report that as 413.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
