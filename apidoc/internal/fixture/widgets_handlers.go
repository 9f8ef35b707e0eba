package fixture

import (
	"context"
	"errors"
	"net/http"

	"github.com/bjaus/extcore"
)

type Color string

const (
	ColorRed  Color = "red"
	ColorBlue Color = "blue"
)

type Widget struct {
	Base
	Name     string            `json:"name" doc:"Display name" minLength:"1"`
	Color    Color             `json:"color"`
	Parts    []Part            `json:"parts,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
	Spare    *Part             `json:"spare"`
	Internal string            `json:"-"`

	revision int
}

// List is one page of results.
type List[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}

type WidgetList = List[Widget]

type WidgetParams struct {
	ID      string `path:"id" doc:"Widget ID"`
	Version int    `path:"version"`
	Tenant  string `header:"X-Tenant" required:"true"`
}

type SearchQuery struct {
	Color   Color  `query:"color"`
	Limit   int    `query:"limit" default:"20" maximum:"100"`
	Term    string `query:"q" required:"true"`
	Trace   string `header:"X-Trace" doc:"Trace id"`
	Session string `cookie:"session"`
}

type CreateWidgetBody struct {
	Name  string `json:"name" minLength:"1" maxLength:"40"`
	Shape string `json:"shape,omitempty" enum:"round,square"`
}

// Unused is never referenced by an endpoint.
type Unused struct {
	Note string `json:"note"`
}

const widgetsPath = "/widgets"

var errNotImplemented = errors.New("not implemented")

func notImplemented[R, B, P, Q any](context.Context, *extcore.Request[B, P, Q], *extcore.HandlerContext[R]) (*extcore.HandlerResponse[R], error) {
	return nil, errNotImplemented
}

var ListWidgets = extcore.NewEndpoint(extcore.EndpointConfig[WidgetList, extcore.Void, extcore.Void, SearchQuery]{
	Path:     widgetsPath,
	Tags:     []string{"widgets"},
	Summary:  "List widgets",
	Response: "A page of widgets",
	ParamsDescription: map[string]string{
		"q": "Search term",
	},
	Handler: notImplemented[WidgetList, extcore.Void, extcore.Void, SearchQuery],
})

var GetWidget = extcore.NewEndpoint(extcore.EndpointConfig[Widget, extcore.Void, WidgetParams, extcore.Void]{
	Path:     "/widgets/{id}/versions/{version}",
	Tags:     []string{"widgets"},
	Summary:  "Get a widget version",
	Response: "The widget",
	Handler: func(_ context.Context, req *extcore.Request[extcore.Void, WidgetParams, extcore.Void], hc *extcore.HandlerContext[Widget]) (*extcore.HandlerResponse[Widget], error) {
		return hc.OK(Widget{Base: Base{ID: req.Params.ID}, revision: req.Params.Version}), nil
	},
})

var createConfig = extcore.EndpointConfig[Widget, CreateWidgetBody, extcore.Void, extcore.Void]{
	Path:            widgetsPath,
	Method:          http.MethodPost,
	Tags:            []string{"widgets"},
	Summary:         "Create a widget",
	Response:        "The created widget",
	BodyDescription: "Widget to create",
	Handler:         notImplemented[Widget, CreateWidgetBody, extcore.Void, extcore.Void],
}

var CreateWidget = extcore.NewEndpoint(createConfig)

var GetFile = extcore.NewEndpoint(extcore.EndpointConfig[extcore.Void, extcore.Void, extcore.RequestParams, extcore.Void]{
	Path:    "/files/{bucket}/{key...}",
	Summary: "Download a file",
	Handler: notImplemented[extcore.Void, extcore.Void, extcore.RequestParams, extcore.Void],
})

// Dynamic builds its config at run time, so it cannot be documented.
var Dynamic = extcore.NewEndpoint(dynamicConfig())

func dynamicConfig() extcore.EndpointConfig[string, extcore.Void, extcore.Void, extcore.Void] {
	return extcore.EndpointConfig[string, extcore.Void, extcore.Void, extcore.Void]{
		Path:    "/dynamic",
		Handler: notImplemented[string, extcore.Void, extcore.Void, extcore.Void],
	}
}

var deleteWidget = extcore.NewEndpoint(extcore.EndpointConfig[extcore.Void, extcore.Void, WidgetParams, extcore.Void]{
	Path:    "/widgets/{id}",
	Method:  http.MethodDelete,
	Handler: notImplemented[extcore.Void, extcore.Void, WidgetParams, extcore.Void],
})
