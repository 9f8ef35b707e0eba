package extcore_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/extcore"
)

type signupBody struct {
	Email    string `json:"email" required:"true"`
	Password string `json:"password"`
}

func (b signupBody) Validate() error {
	if strings.Contains(b.Password, b.Email) && b.Email != "" {
		ve := &extcore.ValidationErrors{}
		ve.Add("password must not contain the email")
		return ve
	}
	return nil
}

func TestNewEndpoint_defaults(t *testing.T) {
	t.Parallel()

	ep := extcore.NewEndpoint(extcore.EndpointConfig[widget, signupBody, itemParams, extcore.Void]{
		Path:   "/signup",
		Method: "patch",
	})

	assert.Equal(t, "/signup", ep.Path())
	assert.Equal(t, http.MethodPatch, ep.Method())
	assert.Equal(t, extcore.DocProperties{Tags: []string{}, ParamsDescription: map[string]string{}}, ep.Doc())

	returned, body, params, query := ep.Types()
	assert.Equal(t, reflect.TypeFor[widget](), returned)
	assert.Equal(t, reflect.TypeFor[signupBody](), body)
	assert.Equal(t, reflect.TypeFor[itemParams](), params)
	assert.Equal(t, reflect.TypeFor[extcore.Void](), query)

	get := extcore.NewEndpoint(extcore.EndpointConfig[widget, extcore.Void, extcore.Void, extcore.Void]{
		Path:    "/w",
		Tags:    []string{"widgets"},
		Summary: "Get widget",
	})
	assert.Equal(t, http.MethodGet, get.Method())
	assert.Equal(t, []string{"widgets"}, get.Doc().Tags)
	assert.Equal(t, "Get widget", get.Doc().Summary)
}

func TestEndpoint_validation_stages(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body     string
		custom   func(*extcore.Request[signupBody, extcore.Void, extcore.Void]) error
		global   extcore.Validator
		status   int
		messages []string
	}{
		"valid": {
			body:   `{"email":"a@b.c","password":"secret"}`,
			status: http.StatusCreated,
		},
		"self validation": {
			body:     `{"email":"ada","password":"ada123"}`,
			status:   http.StatusUnprocessableEntity,
			messages: []string{"password must not contain the email"},
		},
		"violations merged in order": {
			body: `{"password":"x"}`,
			custom: func(*extcore.Request[signupBody, extcore.Void, extcore.Void]) error {
				return &extcore.ValidationErrors{Messages: []string{"password must be at least 8 characters"}}
			},
			global: extcore.ValidatorFunc(func(any) error {
				return &extcore.ValidationErrors{Messages: []string{"signups are closed"}}
			}),
			status: http.StatusUnprocessableEntity,
			messages: []string{
				"email is a required field",
				"password must be at least 8 characters",
				"signups are closed",
			},
		},
		"custom client error": {
			body: `{"email":"a@example.invalid"}`,
			custom: func(req *extcore.Request[signupBody, extcore.Void, extcore.Void]) error {
				if strings.HasSuffix(req.Body.Email, ".invalid") {
					return extcore.BadRequest("email domain is not deliverable")
				}
				return nil
			},
			status: http.StatusBadRequest,
		},
		"global sees the typed request": {
			body: `{"email":"a@b.c"}`,
			global: extcore.ValidatorFunc(func(req any) error {
				if _, ok := req.(*extcore.Request[signupBody, extcore.Void, extcore.Void]); !ok {
					return errors.New("unexpected request type")
				}
				return nil
			}),
			status: http.StatusCreated,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var opts []extcore.RouterOption
			if tc.global != nil {
				opts = append(opts, extcore.WithValidator(tc.global))
			}
			r := extcore.New(opts...)
			r.UseError(extcore.HandleClientError())
			r.Register(extcore.NewEndpoint(extcore.EndpointConfig[extcore.Void, signupBody, extcore.Void, extcore.Void]{
				Path:     "/signup",
				Method:   http.MethodPost,
				Validate: tc.custom,
				Handler: func(_ context.Context, _ *extcore.Request[signupBody, extcore.Void, extcore.Void], hc *extcore.HandlerContext[extcore.Void]) (*extcore.HandlerResponse[extcore.Void], error) {
					return hc.SendResponse(extcore.ResponseConfig[extcore.Void]{Status: http.StatusCreated}), nil
				},
			}))

			rec := serve(t, r, http.MethodPost, "/signup", tc.body, "Content-Type", "application/json")
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			if tc.messages != nil {
				var got struct {
					ValidationErrors []string `json:"validationErrors"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tc.messages, got.ValidationErrors)
			}
		})
	}
}

func TestEndpoint_handler_failures(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		handler func() (*extcore.HandlerResponse[widget], error)
		status  int
		body    string
	}{
		"client error": {
			handler: func() (*extcore.HandlerResponse[widget], error) {
				return nil, extcore.NotFound("no such widget")
			},
			status: http.StatusNotFound,
			body:   `"no such widget"`,
		},
		"server error": {
			handler: func() (*extcore.HandlerResponse[widget], error) {
				return nil, errors.New("disk full")
			},
			status: http.StatusInternalServerError,
			body:   `{"error":"disk full"}`,
		},
		"panic": {
			handler: func() (*extcore.HandlerResponse[widget], error) {
				panic("nil map")
			},
			status: http.StatusInternalServerError,
			body:   `{"error":"panic: nil map"}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := extcore.New(extcore.WithLogger(slog.New(slog.DiscardHandler)))
			r.UseError(extcore.HandleClientError(), extcore.HandleServerError(r.Production))
			r.Register(extcore.NewEndpoint(extcore.EndpointConfig[widget, extcore.Void, extcore.Void, extcore.Void]{
				Path: "/widget",
				Handler: func(context.Context, *extcore.Request[extcore.Void, extcore.Void, extcore.Void], *extcore.HandlerContext[widget]) (*extcore.HandlerResponse[widget], error) {
					return tc.handler()
				},
			}))

			rec := serve(t, r, http.MethodGet, "/widget", "")
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestHandlerContext_logger_carries_request_id(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := extcore.New(extcore.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	r.Use(extcore.RequestID(extcore.RequestIDConfig{Generator: func() string { return "abc-123" }}))
	r.Register(extcore.NewEndpoint(extcore.EndpointConfig[extcore.Void, extcore.Void, extcore.Void, extcore.Void]{
		Path: "/log",
		Handler: func(ctx context.Context, _ *extcore.Request[extcore.Void, extcore.Void, extcore.Void], hc *extcore.HandlerContext[extcore.Void]) (*extcore.HandlerResponse[extcore.Void], error) {
			assert.Equal(t, "abc-123", hc.RequestID)
			hc.Logger.Info("from handler")
			extcore.LoggerFrom(ctx, nil).Info("from context")
			return nil, nil
		},
	}))

	rec := serve(t, r, http.MethodGet, "/log", "")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "abc-123", entry["request_id"])
	}
}
