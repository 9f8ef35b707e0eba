package extcore

import (
	"context"
	"log/slog"
)

// Void is used as a type argument when an endpoint has no body, params,
// query or returned value.
type Void struct{}

// HandlerFunc is the typed handler signature of an endpoint. Handlers never
// write to the http.ResponseWriter themselves; they return a response (or
// an error for the router's error chain).
type HandlerFunc[Returned, Body, Params, Query any] func(ctx context.Context, req *Request[Body, Params, Query], hc *HandlerContext[Returned]) (*HandlerResponse[Returned], error)

// HandlerContext carries per-request helpers into a handler.
type HandlerContext[Returned any] struct {
	// Logger is scoped to the request and carries its request_id.
	Logger    *slog.Logger
	RequestID string
}

// SendResponse builds a response from cfg, applying the defaults.
func (hc *HandlerContext[Returned]) SendResponse(cfg ResponseConfig[Returned]) *HandlerResponse[Returned] {
	return NewHandlerResponse(cfg)
}

// OK is shorthand for a 200 response with body.
func (hc *HandlerContext[Returned]) OK(body Returned) *HandlerResponse[Returned] {
	return NewHandlerResponse(ResponseConfig[Returned]{Body: body})
}
