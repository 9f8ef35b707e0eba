package extcore

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressConfig configures the Compress middleware.
type CompressConfig struct {
	Level   int      // gzip level (1-9, default: 5)
	MinSize int      // minimum first write to compress (default: 1024)
	Types   []string // content type substrings to compress (default: json, text/, yaml)
}

// Compress returns middleware that gzip-compresses responses.
func Compress(cfg ...CompressConfig) Middleware {
	c := CompressConfig{
		Level:   5,
		MinSize: 1024,
		Types:   []string{"json", "text/", "yaml", "javascript"},
	}
	if len(cfg) > 0 {
		if cfg[0].Level > 0 {
			c.Level = cfg[0].Level
		}
		if cfg[0].MinSize > 0 {
			c.MinSize = cfg[0].MinSize
		}
		if len(cfg[0].Types) > 0 {
			c.Types = cfg[0].Types
		}
	}

	pool := &sync.Pool{
		New: func() any {
			gz, _ := gzip.NewWriterLevel(io.Discard, c.Level) //nolint:errcheck // level is pre-validated
			return gz
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Accept-Encoding")
			gw := &gzipResponseWriter{ResponseWriter: w, pool: pool, cfg: &c}
			defer gw.close()
			next.ServeHTTP(gw, r)
		})
	}
}

// gzipResponseWriter decides on the first write whether to compress. The
// status code is held back until then so Content-Length can be dropped.
type gzipResponseWriter struct {
	http.ResponseWriter
	pool *sync.Pool
	cfg  *CompressConfig

	gz          *gzip.Writer
	status      int
	decided     bool
	wroteHeader bool
}

func (g *gzipResponseWriter) WriteHeader(code int) {
	if g.status == 0 {
		g.status = code
	}
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if !g.decided {
		g.decided = true
		if g.shouldCompress(g.Header().Get("Content-Type"), len(b)) {
			g.gz = g.pool.Get().(*gzip.Writer) //nolint:errcheck,forcetypeassert // pool.New always returns *gzip.Writer
			g.gz.Reset(g.ResponseWriter)
			g.Header().Set("Content-Encoding", "gzip")
			g.Header().Del("Content-Length")
		}
		g.flushHeader()
	}

	if g.gz != nil {
		return g.gz.Write(b)
	}
	return g.ResponseWriter.Write(b)
}

func (g *gzipResponseWriter) flushHeader() {
	if g.wroteHeader {
		return
	}
	g.wroteHeader = true
	if g.status == 0 {
		g.status = http.StatusOK
	}
	g.ResponseWriter.WriteHeader(g.status)
}

func (g *gzipResponseWriter) close() {
	if g.gz != nil {
		//nolint:errcheck,gosec // best-effort flush
		g.gz.Close()
		g.pool.Put(g.gz)
		g.gz = nil
		return
	}
	if g.status != 0 {
		g.flushHeader()
	}
}

func (g *gzipResponseWriter) shouldCompress(contentType string, size int) bool {
	if size < g.cfg.MinSize {
		return false
	}
	if strings.Contains(contentType, "event-stream") {
		return false
	}
	if g.Header().Get("Content-Encoding") != "" {
		return false
	}
	for _, t := range g.cfg.Types {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}
