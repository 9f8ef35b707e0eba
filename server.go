package extcore

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerConfig configures NewServer.
type ServerConfig struct {
	// RootPath is the project root. <RootPath>/.env is loaded and a relative
	// DocsPath is resolved against it.
	RootPath string

	// Port to listen on. Zero falls back to PORT, then DefaultPort.
	Port int
	// Addr overrides the listen address built from Port.
	Addr string

	Endpoints []Endpoint
	Routes    []RouteConfig
	Hooks     HooksBuilderFunc

	// SwaggerDoc is served at /api-docs. When nil and DocsPath is set, the
	// document is assembled from the generator output in DocsPath.
	SwaggerDoc any
	DocsPath   string
	APIInfo    APIInfo

	// Logger overrides LOG_LEVEL and LOG_FORMAT.
	Logger *LoggerOptions

	CORS        *CORSConfig
	UploadLimit int64 // default: DefaultUploadLimit
	Compress    *CompressConfig
	RateLimit   *RateLimitConfig
	Timeout     time.Duration

	// Metrics, when set, instruments every request and serves the registry
	// at /metrics.
	Metrics *prometheus.Registry

	RouterOptions []RouterOption
}

// Server is a configured router plus what is needed to run it.
type Server struct {
	router  *Router
	hooks   *HookBuilder
	metrics *Metrics
	env     EnvConfig
	addr    string
}

type serverStatus struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// NewServer builds a server. Configuration happens in a fixed order:
// environment, BeforeMiddlewares hooks, base middleware, BeforeRoutes
// hooks, routes, AfterRoutes hooks, the API doc, error handlers and
// AfterErrorMiddlewares hooks.
func NewServer(cfg ServerConfig) (*Server, error) {
	env, err := LoadEnvConfig(cfg.RootPath)
	if err != nil {
		return nil, err
	}

	logOpts := LoggerOptions{Level: env.LogLevel, Format: env.LogFormat}
	if cfg.Logger != nil {
		logOpts = *cfg.Logger
	}

	opts := append([]RouterOption{
		WithLogger(NewLogger(logOpts)),
		WithProduction(env.Production),
	}, cfg.RouterOptions...)
	rt := New(opts...)

	s := &Server{
		router: rt,
		hooks:  NewHookBuilder(),
		env:    env,
		addr:   cfg.Addr,
	}
	if s.addr == "" {
		port := cfg.Port
		if port == 0 {
			port = env.Port
		}
		s.addr = ":" + strconv.Itoa(port)
	}

	if cfg.Hooks != nil {
		cfg.Hooks(s.hooks)
	}
	s.hooks.Trigger(BeforeMiddlewares, rt)

	if err := s.useBaseMiddleware(cfg); err != nil {
		return nil, err
	}

	s.hooks.Trigger(BeforeRoutes, rt)

	rt.Register(statusEndpoint)
	rt.Register(cfg.Endpoints...)
	rt.Mount(cfg.Routes...)

	s.hooks.Trigger(AfterRoutes, rt)

	doc := cfg.SwaggerDoc
	if doc == nil && cfg.DocsPath != "" {
		dir := cfg.DocsPath
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.RootPath, dir)
		}
		if doc, err = LoadAPIDoc(dir, cfg.APIInfo); err != nil {
			return nil, fmt.Errorf("load api doc: %w", err)
		}
	}
	if doc != nil {
		rt.ServeAPIDoc(APIDocPath, doc)
	}

	if s.metrics != nil {
		rt.Handle("GET /metrics", s.metrics.Handler())
	}

	rt.UseError(HandleClientError(), HandleServerError(rt.Production))
	s.hooks.Trigger(AfterErrorMiddlewares, rt)

	return s, nil
}

var statusEndpoint = NewEndpoint(EndpointConfig[serverStatus, Void, Void, Void]{
	Path: "/",
	Handler: func(_ context.Context, req *Request[Void, Void, Void], hc *HandlerContext[serverStatus]) (*HandlerResponse[serverStatus], error) {
		return hc.OK(serverStatus{Message: "Server running", RequestID: req.RequestID}), nil
	},
})

func (s *Server) useBaseMiddleware(cfg ServerConfig) error {
	rt := s.router

	rt.Use(RequestID(), Logger(rt.Logger), Recovery(rt.Logger))

	if cfg.Metrics != nil {
		m, err := NewMetrics(cfg.Metrics)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		s.metrics = m
		rt.Use(m.Middleware())
	}

	var cors []CORSConfig
	if cfg.CORS != nil {
		cors = append(cors, *cfg.CORS)
	}
	rt.Use(CORS(cors...))

	if cfg.RateLimit != nil {
		rt.Use(RateLimit(*cfg.RateLimit))
	}
	if cfg.Timeout > 0 {
		rt.Use(Timeout(cfg.Timeout))
	}

	limit := cfg.UploadLimit
	if limit == 0 {
		limit = DefaultUploadLimit
	}

	var compress []CompressConfig
	if cfg.Compress != nil {
		compress = append(compress, *cfg.Compress)
	}

	rt.Use(BodyLimit(limit), Compress(compress...), PoweredBy(PoweredByHeader))
	return nil
}

// Instance returns the configured router.
func (s *Server) Instance() *Router { return s.router }

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the request metrics, or nil when disabled.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Env returns the environment the server was configured with.
func (s *Server) Env() EnvConfig { return s.env }

// SetLogger replaces the server logger.
func (s *Server) SetLogger(opts LoggerOptions) {
	s.router.SetLogger(NewLogger(opts))
}

// SetLoggerFunc replaces the server logger with the options returned by fn.
func (s *Server) SetLoggerFunc(fn func() LoggerOptions) {
	s.SetLogger(fn())
}

// Start listens and serves until ctx is cancelled. callback is called with
// the bound port once the listener is open; by default the port is logged.
func (s *Server) Start(ctx context.Context, callback func(port int)) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	port := 0
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}

	if callback == nil {
		s.router.Logger().LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Listening on port %d...", port))
	} else {
		callback(port)
	}

	return s.router.Serve(ctx, ln)
}
