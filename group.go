package extcore

// Group is a collection of routes under a shared prefix with shared
// middleware and tags.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	tags       []string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupTags adds default tags to all endpoints registered on the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// WithGroupMiddleware adds middleware to the group.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// Group creates a new route group with the given prefix and options.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{
		router: r,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register adds endpoints under the group prefix.
func (g *Group) Register(endpoints ...Endpoint) {
	g.router.register(g.prefix, g.middleware, g.tags, endpoints)
}

// Mount adds a route tree under the group prefix.
func (g *Group) Mount(routes ...RouteConfig) {
	g.router.mount(g.prefix, g.middleware, routes)
}
