package extcore

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
)

// DocProperties are the documentation fields of an endpoint. The apidoc
// generator reads the same fields statically from EndpointConfig literals.
type DocProperties struct {
	Tags              []string
	Summary           string
	Response          string
	BodyDescription   string
	ParamsDescription map[string]string
}

// EndpointConfig configures NewEndpoint.
type EndpointConfig[Returned, Body, Params, Query any] struct {
	Path        string // ServeMux pattern without method, e.g. "/users/{id}"
	Method      string // default: GET
	Middlewares []Middleware
	Handler     HandlerFunc[Returned, Body, Params, Query]

	Tags              []string
	Summary           string
	Response          string // description of the 200 response
	BodyDescription   string
	ParamsDescription map[string]string

	// Validate runs after the declarative constraint checks.
	Validate func(req *Request[Body, Params, Query]) error
}

// HTTPEndpoint is a typed route. The type arguments describe the returned
// value, the request body, the URL params and the query.
type HTTPEndpoint[Returned, Body, Params, Query any] struct {
	path        string
	method      string
	middlewares []Middleware
	handler     HandlerFunc[Returned, Body, Params, Query]
	validate    func(*Request[Body, Params, Query]) error
	doc         DocProperties
}

// Endpoint is the untyped view of an *HTTPEndpoint used for registration.
type Endpoint interface {
	Path() string
	Method() string
	Middlewares() []Middleware
	Doc() DocProperties
	Handler(rt *Router) http.Handler
}

// NewEndpoint builds an endpoint from cfg.
func NewEndpoint[Returned, Body, Params, Query any](cfg EndpointConfig[Returned, Body, Params, Query]) *HTTPEndpoint[Returned, Body, Params, Query] {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	doc := DocProperties{
		Tags:              cfg.Tags,
		Summary:           cfg.Summary,
		Response:          cfg.Response,
		BodyDescription:   cfg.BodyDescription,
		ParamsDescription: cfg.ParamsDescription,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if doc.ParamsDescription == nil {
		doc.ParamsDescription = map[string]string{}
	}

	return &HTTPEndpoint[Returned, Body, Params, Query]{
		path:        cfg.Path,
		method:      method,
		middlewares: cfg.Middlewares,
		handler:     cfg.Handler,
		validate:    cfg.Validate,
		doc:         doc,
	}
}

func (e *HTTPEndpoint[Returned, Body, Params, Query]) Path() string              { return e.path }
func (e *HTTPEndpoint[Returned, Body, Params, Query]) Method() string            { return e.method }
func (e *HTTPEndpoint[Returned, Body, Params, Query]) Middlewares() []Middleware { return e.middlewares }
func (e *HTTPEndpoint[Returned, Body, Params, Query]) Doc() DocProperties        { return e.doc }

// Types returns the reflected type arguments of the endpoint in the order
// returned, body, params, query.
func (e *HTTPEndpoint[Returned, Body, Params, Query]) Types() (returned, body, params, query reflect.Type) {
	return reflect.TypeFor[Returned](), reflect.TypeFor[Body](), reflect.TypeFor[Params](), reflect.TypeFor[Query]()
}

// Handler adapts the endpoint to an http.Handler bound to rt. Decoding,
// validation and handler errors (and panics) are passed to rt's error chain.
func (e *HTTPEndpoint[Returned, Body, Params, Query]) Handler(rt *Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				rt.handleError(w, r, panicError(rec))
			}
		}()

		pattern := r.Pattern
		if pattern == "" {
			pattern = e.path
		}

		req, err := decodeRequest[Body, Params, Query](r, pattern, rt.codecs)
		if err != nil {
			var sc StatusCoder
			if !errors.As(err, &sc) {
				err = BadRequest(err.Error())
			}
			rt.handleError(w, r, err)
			return
		}

		if err := validateRequest(req, e.validate, rt.validator); err != nil {
			rt.handleError(w, r, err)
			return
		}

		logger := LoggerFrom(r.Context(), rt.Logger())
		if req.RequestID != "" {
			logger = logger.With("request_id", req.RequestID)
		}
		hc := &HandlerContext[Returned]{Logger: logger, RequestID: req.RequestID}

		resp, err := e.handler(ContextWithLogger(r.Context(), logger), req, hc)
		if err != nil {
			rt.handleError(w, r, err)
			return
		}

		writeResponse(w, r, resp, rt.codecs)
	})
}
