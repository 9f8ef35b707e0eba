package extcore_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/extcore"
)

func failingRouter(err error, opts ...extcore.RouterOption) *extcore.Router {
	r := extcore.New(opts...)
	r.Mount(extcore.RouteConfig{
		Path: "/fail",
		Controller: func(http.ResponseWriter, *http.Request) error {
			return err
		},
	})
	return r
}

func TestErrorHandlers(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err        error
		production bool
		status     int
		body       string
	}{
		"client error message": {
			err:    extcore.NotFound("user not found"),
			status: http.StatusNotFound,
			body:   `"user not found"`,
		},
		"client error structured": {
			err:    extcore.BadRequest(map[string]any{"field": "email", "reason": "taken"}),
			status: http.StatusBadRequest,
			body:   `{"field":"email","reason":"taken"}`,
		},
		"wrapped client error": {
			err:    errors.Join(errors.New("lookup"), extcore.Forbidden()),
			status: http.StatusForbidden,
			body:   `"Forbidden"`,
		},
		"validation errors": {
			err:    &extcore.ValidationErrors{Messages: []string{"name is a required field"}},
			status: http.StatusUnprocessableEntity,
			body:   `{"validationErrors":["name is a required field"]}`,
		},
		"server error in development": {
			err:    errors.New("database unreachable"),
			status: http.StatusInternalServerError,
			body:   `{"error":"database unreachable"}`,
		},
		"server error in production": {
			err:        errors.New("database unreachable"),
			production: true,
			status:     http.StatusInternalServerError,
			body:       `"Internal Server Error"`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := failingRouter(tc.err,
				extcore.WithProduction(tc.production),
				extcore.WithLogger(slog.New(slog.DiscardHandler)),
			)
			r.UseError(extcore.HandleClientError(), extcore.HandleServerError(r.Production))

			rec := serve(t, r, http.MethodGet, "/fail", "")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestErrorChain_order_and_next(t *testing.T) {
	t.Parallel()

	var calls []string
	var buf bytes.Buffer

	r := failingRouter(errors.New("boom"), extcore.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	r.UseError(
		func(_ http.ResponseWriter, _ *http.Request, err error, next func(error)) {
			calls = append(calls, "observe")
			next(err)
		},
		func(_ http.ResponseWriter, _ *http.Request, err error, next func(error)) {
			calls = append(calls, "translate")
			next(extcore.Unauthorized(err))
		},
		extcore.HandleClientError(),
		func(http.ResponseWriter, *http.Request, error, func(error)) {
			calls = append(calls, "unreachable")
		},
	)

	rec := serve(t, r, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `"boom"`, rec.Body.String())
	assert.Equal(t, []string{"observe", "translate"}, calls)
	assert.Empty(t, buf.String())
}

func TestErrorChain_unhandled(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		status int
	}{
		"server error": {
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
		"client error without handlers": {
			err:    extcore.NotFound(),
			status: http.StatusNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := failingRouter(tc.err, extcore.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

			rec := serve(t, r, http.MethodGet, "/fail", "")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, http.StatusText(tc.status)+"\n", rec.Body.String())
			assert.Contains(t, buf.String(), "request failed")
			assert.Contains(t, buf.String(), "path=/fail")
		})
	}
}

func TestHandleServerError_passes_error_on(t *testing.T) {
	t.Parallel()

	var seen error
	r := failingRouter(errors.New("boom"), extcore.WithLogger(slog.New(slog.DiscardHandler)))
	r.UseError(
		extcore.HandleServerError(nil),
		func(_ http.ResponseWriter, _ *http.Request, err error, next func(error)) {
			seen = err
			next(err)
		},
	)

	rec := serve(t, r, http.MethodGet, "/fail", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
	require.Error(t, seen)
	assert.Equal(t, "boom", seen.Error())
}
