package extcore_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/extcore"
)

func TestGroup_Register(t *testing.T) {
	t.Parallel()

	r := extcore.New()
	v1 := r.Group("/v1", extcore.WithGroupTags("v1"), extcore.WithGroupMiddleware(headerMiddleware("X-Group", "v1")))
	v1.Register(pingEndpoint("/ping", "health"), pingEndpoint("/"))

	tests := map[string]struct {
		path   string
		status int
		group  string
	}{
		"prefixed": {
			path:   "/v1/ping",
			status: http.StatusOK,
			group:  "v1",
		},
		"group root": {
			path:   "/v1",
			status: http.StatusOK,
			group:  "v1",
		},
		"without prefix": {
			path:   "/ping",
			status: http.StatusNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, r, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.group, rec.Header().Get("X-Group"))
		})
	}

	routes := r.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/v1/ping", routes[0].Pattern)
	assert.Equal(t, []string{"v1", "health"}, routes[0].Tags)
	assert.Equal(t, "/v1", routes[1].Pattern)
	assert.Equal(t, []string{"v1"}, routes[1].Tags)
}

func TestGroup_path_params_in_prefix(t *testing.T) {
	t.Parallel()

	type memberParams struct {
		Org  string `path:"org"`
		User string `path:"user"`
	}

	r := extcore.New()
	r.Group("/orgs/{org}").Register(extcore.NewEndpoint(extcore.EndpointConfig[memberParams, extcore.Void, memberParams, extcore.Void]{
		Path: "/members/{user}",
		Handler: func(_ context.Context, req *extcore.Request[extcore.Void, memberParams, extcore.Void], hc *extcore.HandlerContext[memberParams]) (*extcore.HandlerResponse[memberParams], error) {
			return hc.OK(req.Params), nil
		},
	}))

	rec := serve(t, r, http.MethodGet, "/orgs/acme/members/ada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Org":"acme","User":"ada"}`, rec.Body.String())
}

func TestGroup_Mount(t *testing.T) {
	t.Parallel()

	r := extcore.New()
	g := r.Group("/admin", extcore.WithGroupMiddleware(headerMiddleware("X-Admin", "1")))
	g.Mount(extcore.RouteConfig{
		Path: "/stats",
		Controller: func(w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			return nil
		},
	})

	rec := serve(t, r, http.MethodGet, "/admin/stats", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Admin"))
}

func TestRegistrar(t *testing.T) {
	t.Parallel()

	register := func(reg extcore.Registrar) {
		reg.Register(pingEndpoint("/ping"))
	}

	r := extcore.New()
	register(r)
	register(r.Group("/nested"))

	assert.Equal(t, http.StatusOK, serve(t, r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, serve(t, r, http.MethodGet, "/nested/ping", "").Code)
}
