// Command sample runs an extcore server with the endpoints of the handlers
// package, a route tree, lifecycle hooks and request metrics.
//
// Run:
//
//	go run ./cmd/sample
//
// Regenerate the API documents and the endpoint registry:
//
//	go run ./cmd/extcore docs --handlers cmd/sample/handlers --out cmd/sample/docs
//	go run ./cmd/extcore registry --handlers cmd/sample/handlers --package handlers \
//		--import-path github.com/bjaus/extcore/cmd/sample/handlers --out cmd/sample/handlers/registry_gen.go
//
// Then explore:
//
//	GET    http://localhost:3003/                 server status
//	GET    http://localhost:3003/users            list users
//	POST   http://localhost:3003/users            create user
//	GET    http://localhost:3003/users/{id}       get user
//	DELETE http://localhost:3003/users/{id}       delete user
//	GET    http://localhost:3003/ops/health       health check (route tree)
//	GET    http://localhost:3003/ops/version      build version (route tree)
//	GET    http://localhost:3003/api-docs         API documentation
//	GET    http://localhost:3003/metrics          Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/extcore"
	"github.com/bjaus/extcore/cmd/sample/handlers"
)

var version = "dev"

func main() {
	root := flag.String("root", ".", "project root holding .env")
	docs := flag.String("docs", "", "directory with generated API documents")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv, err := newServer(*root, *docs)
	if err != nil {
		slog.Error("configure server", "err", err)
		os.Exit(1)
	}

	if err := srv.Start(ctx, nil); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newServer(root, docs string) (*extcore.Server, error) {
	return extcore.NewServer(extcore.ServerConfig{
		RootPath:  root,
		Endpoints: handlers.Endpoints(),
		Routes:    opsRoutes(),
		Hooks:     hooks,
		DocsPath:  docs,
		APIInfo:   extcore.APIInfo{Title: "Sample API", Version: version},
		Metrics:   prometheus.NewRegistry(),
		RateLimit: &extcore.RateLimitConfig{Rate: 50, Burst: 100},
		Timeout:   30 * time.Second,
	})
}

func opsRoutes() []extcore.RouteConfig {
	return []extcore.RouteConfig{{
		Path: "/ops",
		Children: []extcore.RouteConfig{
			{
				Path: "/health",
				Controller: func(w http.ResponseWriter, _ *http.Request) error {
					w.Header().Set("Content-Type", "application/json")
					_, err := w.Write([]byte(`{"status":"ok"}`))
					return err
				},
			},
			{
				Path: "/version",
				Controller: func(w http.ResponseWriter, _ *http.Request) error {
					_, err := w.Write([]byte(version))
					return err
				},
			},
		},
	}}
}

func hooks(b *extcore.HookBuilder) {
	b.BeforeRoutes(func(app *extcore.Router) error {
		app.Logger().Info("registering routes")
		return nil
	})
	b.AfterRoutes(func(app *extcore.Router) error {
		for _, rt := range app.Routes() {
			app.Logger().Debug("route", "method", rt.Method, "pattern", rt.Pattern)
		}
		return nil
	})
	b.AfterErrorMiddlewares(func(app *extcore.Router) error {
		app.UseError(func(_ http.ResponseWriter, r *http.Request, err error, next func(error)) {
			app.Logger().Warn("server error", "path", r.URL.Path, "err", err)
			next(err)
		})
		return nil
	})
}
