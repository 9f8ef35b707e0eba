package broken

import (
	"context"

	"github.com/bjaus/extcore"
)

var Healthy = extcore.NewEndpoint(extcore.EndpointConfig[string, extcore.Void, extcore.Void, extcore.Void]{
	Path: "/healthy",
	Handler: func(_ context.Context, _ *extcore.Request[extcore.Void, extcore.Void, extcore.Void], hc *extcore.HandlerContext[string]) (*extcore.HandlerResponse[string], error) {
		return hc.OK("ok"), nil
	},
})

var Broken = extcore.NewEndpoint(extcore.EndpointConfig[string, extcore.Void, extcore.Void, extcore.Void]{
	Path:    "/broken",
	Handler: missingHandler,
})
