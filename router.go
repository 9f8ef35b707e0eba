package extcore

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Router is the central type that holds routes, middleware, the error
// chain and the codec configuration. It implements http.Handler.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware
	errorChain []ErrorMiddleware
	routes     []RouteInfo

	logger     atomic.Pointer[slog.Logger]
	validator  Validator
	production bool

	encoders []Encoder
	decoders []Decoder
	codecs   *codecRegistry

	mu sync.Mutex
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method  string
	Pattern string
	Tags    []string
	Summary string
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the router logger. Default: slog.Default().
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger.Store(l)
	}
}

// WithValidator sets a global request validator, run after each
// endpoint's own validation.
func WithValidator(v Validator) RouterOption {
	return func(r *Router) {
		r.validator = v
	}
}

// WithProduction hides server error messages from responses.
func WithProduction(production bool) RouterOption {
	return func(r *Router) {
		r.production = production
	}
}

// WithEncoder registers an additional response encoder.
func WithEncoder(enc Encoder) RouterOption {
	return func(r *Router) {
		r.encoders = append(r.encoders, enc)
	}
}

// WithDecoder registers an additional request body decoder.
func WithDecoder(dec Decoder) RouterOption {
	return func(r *Router) {
		r.decoders = append(r.decoders, dec)
	}
}

// New creates a new Router with the given options.
func New(opts ...RouterOption) *Router {
	r := &Router{
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.codecs = newCodecRegistry(r.encoders, r.decoders)
	return r
}

// Use adds middleware to the router. Middleware runs in the order added,
// around every route.
func (r *Router) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// UseError appends error middleware to the error chain.
func (r *Router) UseError(emw ...ErrorMiddleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorChain = append(r.errorChain, emw...)
}

// Logger returns the current router logger.
func (r *Router) Logger() *slog.Logger {
	if l := r.logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger replaces the router logger. Safe for concurrent use.
func (r *Router) SetLogger(l *slog.Logger) {
	r.logger.Store(l)
}

// Production reports whether the router hides server error details.
func (r *Router) Production() bool {
	return r.production
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []RouteInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RouteInfo, len(r.routes))
	copy(out, r.routes)
	return out
}

// Handle registers a plain handler for a ServeMux pattern. Handle does not
// appear in Routes.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	mw := r.middleware
	r.mu.Unlock()

	chain(r.mux, mw).ServeHTTP(w, req)
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return r.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (r *Router) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// addRoute registers h with the mux and records ri. Global middleware is
// applied in ServeHTTP, not here.
func (r *Router) addRoute(ri RouteInfo, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mux.Handle(ri.Method+" "+ri.Pattern, h)
	r.routes = append(r.routes, ri)
}
