package extcore

import (
	"net/http"
	"slices"
	"strings"
)

// Controller handles a request of a route tree node. A returned error is
// passed to the router's error chain.
type Controller func(w http.ResponseWriter, r *http.Request) error

// RouteConfig is a node of a route tree. A node with a Controller answers
// Method (default GET) on its path; Children are mounted below the path and
// inherit the node's Middlewares.
type RouteConfig struct {
	Path        string
	Method      string
	Controller  Controller
	Middlewares []Middleware
	Children    []RouteConfig
}

// Mount registers route trees at the router root.
func (r *Router) Mount(routes ...RouteConfig) {
	r.mount("", nil, routes)
}

func (r *Router) mount(prefix string, mw []Middleware, routes []RouteConfig) {
	for _, rc := range routes {
		path := joinPath(prefix, rc.Path)
		inherited := append(slices.Clone(mw), rc.Middlewares...)

		if rc.Controller != nil {
			method := strings.ToUpper(rc.Method)
			if method == "" {
				method = http.MethodGet
			}
			r.addRoute(RouteInfo{Method: method, Pattern: muxPattern(path)},
				chain(r.handleController(rc.Controller), inherited))
		}

		if len(rc.Children) > 0 {
			r.mount(path, inherited, rc.Children)
		}
	}
}

// CreateRouter builds a standalone router from route trees.
func CreateRouter(routes []RouteConfig, opts ...RouterOption) *Router {
	r := New(opts...)
	r.Mount(routes...)
	return r
}
