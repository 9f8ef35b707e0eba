// Package extcore is a thin convenience layer over net/http. Endpoints are
// typed values: the response, body, URL params and query are Go type
// arguments, and the same values drive registration at runtime and
// documentation at build time (see package apidoc).
//
// An endpoint is declared as an exported package-level variable:
//
//	var GetUser = extcore.NewEndpoint(extcore.EndpointConfig[User, extcore.Void, UserParams, extcore.Void]{
//	    Path:    "/users/{id}",
//	    Summary: "Get a user",
//	    Tags:    []string{"users"},
//	    Handler: func(ctx context.Context, req *extcore.Request[extcore.Void, UserParams, extcore.Void], hc *extcore.HandlerContext[User]) (*extcore.HandlerResponse[User], error) {
//	        u, ok := users[req.Params.ID]
//	        if !ok {
//	            return nil, extcore.NotFound()
//	        }
//	        return hc.OK(u), nil
//	    },
//	})
//
// A server wires base middleware, lifecycle hooks, endpoints, nested route
// configs, the API docs and the error handlers in a fixed order:
//
//	srv := extcore.NewServer(extcore.ServerConfig{
//	    RootPath:  ".",
//	    Endpoints: []extcore.Endpoint{GetUser},
//	    Hooks: func(h *extcore.HookBuilder) {
//	        h.AfterRoutes(func(app *extcore.Router) error { ... })
//	    },
//	})
//	srv.Start(ctx, nil)
//
// Handlers return errors instead of writing them. Client errors
// (BadRequest, Unauthorized, Forbidden, NotFound) keep their status; anything
// else becomes a 500 whose body depends on the production flag.
package extcore
