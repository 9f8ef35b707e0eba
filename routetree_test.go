package extcore_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/extcore"
)

func text(body string) extcore.Controller {
	return func(w http.ResponseWriter, _ *http.Request) error {
		_, err := io.WriteString(w, body)
		return err
	}
}

func TestCreateRouter(t *testing.T) {
	t.Parallel()

	r := extcore.CreateRouter([]extcore.RouteConfig{
		{
			Path:        "/shop",
			Middlewares: []extcore.Middleware{headerMiddleware("X-Level", "shop")},
			Controller:  text("shop index"),
			Children: []extcore.RouteConfig{
				{
					Path:       "/items",
					Controller: text("items"),
				},
				{
					Path:        "/cart",
					Method:      "post",
					Middlewares: []extcore.Middleware{headerMiddleware("X-Level", "cart")},
					Controller:  text("cart updated"),
				},
				{
					Path: "admin",
					Children: []extcore.RouteConfig{
						{Path: "/users/{id}", Controller: func(w http.ResponseWriter, r *http.Request) error {
							_, err := io.WriteString(w, "user "+r.PathValue("id"))
							return err
						}},
					},
				},
			},
		},
		{
			Path: "/broken",
			Controller: func(http.ResponseWriter, *http.Request) error {
				return extcore.NotFound("gone")
			},
		},
		{
			Path: "/panics",
			Controller: func(http.ResponseWriter, *http.Request) error {
				panic(errors.New("controller bug"))
			},
		},
	}, extcore.WithLogger(slog.New(slog.DiscardHandler)))
	r.UseError(extcore.HandleClientError(), extcore.HandleServerError(nil))

	tests := map[string]struct {
		method string
		path   string
		status int
		body   string
		levels []string
	}{
		"parent controller": {
			method: http.MethodGet,
			path:   "/shop",
			status: http.StatusOK,
			body:   "shop index",
			levels: []string{"shop"},
		},
		"child inherits middleware": {
			method: http.MethodGet,
			path:   "/shop/items",
			status: http.StatusOK,
			body:   "items",
			levels: []string{"shop"},
		},
		"child adds middleware": {
			method: http.MethodPost,
			path:   "/shop/cart",
			status: http.StatusOK,
			body:   "cart updated",
			levels: []string{"shop", "cart"},
		},
		"grandchild without leading slash parent": {
			method: http.MethodGet,
			path:   "/shop/admin/users/7",
			status: http.StatusOK,
			body:   "user 7",
			levels: []string{"shop"},
		},
		"node without controller": {
			method: http.MethodGet,
			path:   "/shop/admin",
			status: http.StatusNotFound,
		},
		"method mismatch": {
			method: http.MethodGet,
			path:   "/shop/cart",
			status: http.StatusMethodNotAllowed,
		},
		"controller error": {
			method: http.MethodGet,
			path:   "/broken",
			status: http.StatusNotFound,
			body:   "\"gone\"\n",
		},
		"controller panic": {
			method: http.MethodGet,
			path:   "/panics",
			status: http.StatusInternalServerError,
			body:   "{\"error\":\"panic: controller bug\"}\n",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(t, r, tc.method, tc.path, "")
			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
			if tc.levels != nil {
				assert.Equal(t, tc.levels, rec.Header().Values("X-Level"))
			}
		})
	}

	var patterns []string
	for _, ri := range r.Routes() {
		patterns = append(patterns, ri.Method+" "+ri.Pattern)
	}
	assert.Equal(t, []string{
		"GET /shop",
		"GET /shop/items",
		"POST /shop/cart",
		"GET /shop/admin/users/{id}",
		"GET /broken",
		"GET /panics",
	}, patterns)
}
