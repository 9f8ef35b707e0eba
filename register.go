package extcore

import (
	"net/http"
	"slices"
	"strings"
)

// Registrar is implemented by *Router and *Group.
type Registrar interface {
	Register(endpoints ...Endpoint)
	Mount(routes ...RouteConfig)
}

var (
	_ Registrar = (*Router)(nil)
	_ Registrar = (*Group)(nil)
)

// Register adds endpoints to the router. Each endpoint's own middlewares
// wrap its handler; router middleware wraps everything.
func (r *Router) Register(endpoints ...Endpoint) {
	r.register("", nil, nil, endpoints)
}

func (r *Router) register(prefix string, mw []Middleware, tags []string, endpoints []Endpoint) {
	for _, ep := range endpoints {
		doc := ep.Doc()

		h := chain(ep.Handler(r), ep.Middlewares())
		h = chain(h, mw)

		r.addRoute(RouteInfo{
			Method:  ep.Method(),
			Pattern: muxPattern(joinPath(prefix, ep.Path())),
			Tags:    append(slices.Clone(tags), doc.Tags...),
			Summary: doc.Summary,
		}, h)
	}
}

// handleController adapts a Controller, sending errors and panics to the
// error chain.
func (r *Router) handleController(c Controller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				r.handleError(w, req, panicError(rec))
			}
		}()
		if err := c(w, req); err != nil {
			r.handleError(w, req, err)
		}
	})
}

// joinPath joins a mount prefix and a route path.
func joinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == "" || path == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

// muxPattern converts a route path into a ServeMux path pattern. Paths
// match exactly, so a trailing slash gets the "{$}" anchor.
func muxPattern(path string) string {
	if strings.HasSuffix(path, "/") {
		return path + "{$}"
	}
	return path
}
