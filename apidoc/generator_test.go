package apidoc

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fixturePackage = "github.com/bjaus/extcore/apidoc/internal/fixture"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureGenerator(t *testing.T, cfg GeneratorConfig) *DocGenerator {
	t.Helper()
	cfg.ProjectRoot = ".."
	cfg.HandlerPath = "apidoc/internal/fixture"
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	g, err := NewDocGenerator(cfg)
	require.NoError(t, err)
	return g
}

func TestNewDocGenerator(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	tests := map[string]struct {
		cfg     GeneratorConfig
		want    GeneratorConfig
		wantErr bool
	}{
		"defaults": {
			cfg: GeneratorConfig{ProjectRoot: root},
			want: GeneratorConfig{
				ProjectRoot:     root,
				HandlerPath:     root,
				FileSuffix:      "handlers.go",
				Format:          "json",
				EndpointPackage: DefaultEndpointPackage,
			},
		},
		"relative paths": {
			cfg: GeneratorConfig{ProjectRoot: root, HandlerPath: "internal/handlers", DocPath: "docs", Format: "yaml"},
			want: GeneratorConfig{
				ProjectRoot:     root,
				HandlerPath:     filepath.Join(root, "internal/handlers"),
				DocPath:         filepath.Join(root, "docs"),
				FileSuffix:      "handlers.go",
				Format:          "yaml",
				EndpointPackage: DefaultEndpointPackage,
			},
		},
		"absolute paths": {
			cfg: GeneratorConfig{ProjectRoot: root, HandlerPath: "/srv/handlers", DocPath: "/srv/docs", FileSuffix: "routes.go"},
			want: GeneratorConfig{
				ProjectRoot:     root,
				HandlerPath:     "/srv/handlers",
				DocPath:         "/srv/docs",
				FileSuffix:      "routes.go",
				Format:          "json",
				EndpointPackage: DefaultEndpointPackage,
			},
		},
		"unknown format": {
			cfg:     GeneratorConfig{ProjectRoot: root, Format: "xml"},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g, err := NewDocGenerator(tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, g.cfg.Logger)

			got := g.cfg
			got.Logger = nil
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindHandlerFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{
		"a_handlers.go",
		"other.go",
		"x_handlers_test.go",
		"sub/b_handlers.go",
		"testdata/c_handlers.go",
		".hidden/d_handlers.go",
		"vendor/e_handlers.go",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("package x\n"), 0o600))
	}

	files, err := findHandlerFiles(root, "handlers.go")
	require.NoError(t, err)
	assert.Equal(t, []HandlerFile{
		{Name: "a_handlers.go", Dir: root},
		{Name: "b_handlers.go", Dir: filepath.Join(root, "sub")},
	}, files)

	_, err = findHandlerFiles(filepath.Join(root, "missing"), "handlers.go")
	assert.Error(t, err)
}

func TestDocGenerator_Analyze(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	g := fixtureGenerator(t, GeneratorConfig{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	res, err := g.Analyze(t.Context())
	require.NoError(t, err)

	dir, err := filepath.Abs("internal/fixture")
	require.NoError(t, err)
	file := HandlerFile{Name: "widgets_handlers.go", Dir: dir}

	t.Run("handlers", func(t *testing.T) {
		want := []Handler{
			{
				File: file, Package: fixturePackage, PkgName: "fixture", Variable: "ListWidgets",
				Path: "/widgets", Method: "get", Tags: []string{"widgets"},
				Summary: "List widgets", Response: "A page of widgets",
				ParamsDescription: map[string]string{"q": "Search term"},
			},
			{
				File: file, Package: fixturePackage, PkgName: "fixture", Variable: "GetWidget",
				Path: "/widgets/{id}/versions/{version}", Method: "get", Tags: []string{"widgets"},
				Summary: "Get a widget version", Response: "The widget",
			},
			{
				File: file, Package: fixturePackage, PkgName: "fixture", Variable: "CreateWidget",
				Path: "/widgets", Method: "post", Tags: []string{"widgets"},
				Summary: "Create a widget", Response: "The created widget", BodyDescription: "Widget to create",
			},
			{
				File: file, Package: fixturePackage, PkgName: "fixture", Variable: "GetFile",
				Path: "/files/{bucket}/{key...}", Method: "get", Tags: []string{},
				Summary: "Download a file",
			},
		}
		opts := cmp.Options{
			cmpopts.IgnoreFields(Handler{}, "UUID"),
			cmpopts.IgnoreUnexported(Handler{}),
		}
		if diff := cmp.Diff(want, res.Handlers, opts); diff != "" {
			t.Errorf("handlers mismatch (-want +got):\n%s", diff)
		}
		for _, h := range res.Handlers {
			assert.NotEmpty(t, h.UUID)
		}
	})

	t.Run("logs", func(t *testing.T) {
		assert.Contains(t, logs.String(), "unable to read endpoint config")
		assert.Contains(t, logs.String(), "variable=Dynamic")
		assert.NotContains(t, logs.String(), "unable to load handler source")
	})

	t.Run("paths", func(t *testing.T) {
		require.ElementsMatch(t, []string{"/widgets", "/widgets/{id}/versions/{version}", "/files/{bucket}/{key}"}, mapKeys(res.Paths))
		assert.ElementsMatch(t, []string{"get", "post"}, mapKeys(res.Paths["/widgets"]))

		list := res.Paths["/widgets"]["get"]
		wantParams := []Parameter{
			{Name: "color", In: "query", Schema: refTo("Color")},
			{Name: "limit", In: "query", Schema: &Schema{Type: "integer", Default: "20", Maximum: floatPtr(100)}},
			{Name: "q", In: "query", Required: true, Description: "Search term", Schema: &Schema{Type: "string"}},
			{Name: "X-Trace", In: "header", Schema: &Schema{Type: "string", Description: "Trace id"}},
			{Name: "session", In: "cookie", Schema: &Schema{Type: "string"}},
		}
		if diff := cmp.Diff(wantParams, list.Parameters, ignoreOrder); diff != "" {
			t.Errorf("list parameters mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, []string{"widgets"}, list.Tags)
		assert.Nil(t, list.RequestBody)

		page := res.Definitions.resolve(list.Responses["200"].Content[jsonMediaType].Schema)
		require.NotNil(t, page)
		assert.Equal(t, "object", page.Type)
		require.Contains(t, page.Properties, "items")
		assert.Equal(t, refTo("Widget"), page.Properties["items"].Items)
		assert.Equal(t, []string{"items"}, page.Required)

		create := res.Paths["/widgets"]["post"]
		wantCreate := &Operation{
			Tags:     []string{"widgets"},
			Summary:  "Create a widget",
			Consumes: []string{jsonMediaType},
			RequestBody: &RequestBody{
				Description: "Widget to create",
				Content:     map[string]MediaType{jsonMediaType: {Schema: refTo("CreateWidgetBody")}},
			},
			Responses: map[string]Response{"200": {
				Description: "The created widget",
				Content:     map[string]MediaType{jsonMediaType: {Schema: refTo("Widget")}},
			}},
		}
		if diff := cmp.Diff(wantCreate, create, ignoreOrder); diff != "" {
			t.Errorf("create operation mismatch (-want +got):\n%s", diff)
		}

		get := res.Paths["/widgets/{id}/versions/{version}"]["get"]
		wantGet := []Parameter{
			{Name: "id", In: "path", Type: "string", Required: true, Description: "Widget ID"},
			{Name: "version", In: "path", Type: "integer", Required: true},
			{Name: "X-Tenant", In: "header", Required: true, Schema: &Schema{Type: "string"}},
		}
		if diff := cmp.Diff(wantGet, get.Parameters, ignoreOrder); diff != "" {
			t.Errorf("get parameters mismatch (-want +got):\n%s", diff)
		}

		download := res.Paths["/files/{bucket}/{key}"]["get"]
		assert.Equal(t, []string{}, download.Tags)
		assert.Len(t, download.Parameters, 2)
		assert.Nil(t, download.Responses)
	})

	t.Run("definitions", func(t *testing.T) {
		defs := res.Definitions
		for _, name := range []string{"Widget", "Color", "Part", "Priority", "CreateWidgetBody"} {
			assert.Contains(t, defs, name)
		}
		for _, name := range []string{"Unused", "WidgetParams", "SearchQuery", "Base", "List"} {
			assert.NotContains(t, defs, name)
		}

		want := Definitions{
			"Widget": {
				Type:                 "object",
				AdditionalProperties: false,
				Properties: map[string]*Schema{
					"id":        {Type: "string"},
					"createdAt": {Type: "string", Format: "date-time"},
					"name":      {Type: "string", Description: "Display name", MinLength: intPtr(1)},
					"color":     refTo("Color"),
					"parts":     {Type: "array", Items: refTo("Part")},
					"labels":    {Type: "object", AdditionalProperties: &Schema{Type: "string"}},
					"spare":     refTo("Part"),
				},
				Required: []string{"id", "createdAt", "name", "color"},
			},
			"Color":    {Type: "string", Enum: []any{"red", "blue"}},
			"Priority": {Type: "integer", Enum: []any{int64(0), int64(1)}},
			"Part": {
				Type:                 "object",
				AdditionalProperties: false,
				Properties: map[string]*Schema{
					"sku":      {Type: "string"},
					"priority": refTo("Priority"),
				},
				Required: []string{"sku", "priority"},
			},
			"CreateWidgetBody": {
				Type:                 "object",
				AdditionalProperties: false,
				Properties: map[string]*Schema{
					"name":  {Type: "string", MinLength: intPtr(1), MaxLength: intPtr(40)},
					"shape": {Type: "string", Enum: []any{"round", "square"}},
				},
				Required: []string{"name"},
			},
		}
		for name, schema := range want {
			if diff := cmp.Diff(schema, defs[name], ignoreOrder); diff != "" {
				t.Errorf("definition %s mismatch (-want +got):\n%s", name, diff)
			}
		}
		assert.Equal(t, []string{"id", "createdAt", "name", "color", "parts", "labels", "spare"}, defs["Widget"].PropertyNames())
	})
}

func TestDocGenerator_Generate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		"json": {format: "json", unmarshal: json.Unmarshal},
		"yaml": {format: "yaml", unmarshal: yaml.Unmarshal},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(t.TempDir(), "docs")
			require.NoError(t, os.MkdirAll(out, 0o755))
			stale := filepath.Join(out, "stale.json")
			require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o600))

			g := fixtureGenerator(t, GeneratorConfig{DocPath: out, Format: tc.format})
			res, err := g.Generate(t.Context())
			require.NoError(t, err)
			assert.Len(t, res.Handlers, 4)
			assert.NoFileExists(t, stale)

			var paths map[string]any
			b, err := os.ReadFile(filepath.Join(out, "paths."+tc.format))
			require.NoError(t, err)
			require.NoError(t, tc.unmarshal(b, &paths))
			assert.ElementsMatch(t, []string{"/widgets", "/widgets/{id}/versions/{version}", "/files/{bucket}/{key}"}, mapKeys(paths))

			var defs map[string]any
			b, err = os.ReadFile(filepath.Join(out, "definitions."+tc.format))
			require.NoError(t, err)
			require.NoError(t, tc.unmarshal(b, &defs))
			assert.Contains(t, defs, "Widget")
			assert.NotContains(t, defs, "Unused")

			widget, ok := defs["Widget"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, false, widget["additionalProperties"])
		})
	}
}

func TestDocGenerator_Generate_without_output(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	g, err := NewDocGenerator(GeneratorConfig{ProjectRoot: root, Logger: quietLogger()})
	require.NoError(t, err)

	res, err := g.Generate(t.Context())
	require.NoError(t, err)
	assert.Empty(t, res.Handlers)
	assert.Empty(t, res.Paths)
	assert.Empty(t, res.Definitions)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDocGenerator_Analyze_load_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		strict bool
	}{
		"lenient": {},
		"strict":  {strict: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer
			g, err := NewDocGenerator(GeneratorConfig{
				ProjectRoot: "..",
				HandlerPath: "apidoc/testdata/broken",
				Strict:      tc.strict,
				Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
			})
			require.NoError(t, err)

			res, err := g.Analyze(t.Context())
			if tc.strict {
				require.ErrorContains(t, err, "undefined: missingHandler")
				assert.Nil(t, res)
				assert.NotContains(t, logs.String(), "unable to load handler source")
				return
			}

			require.NoError(t, err)
			assert.Contains(t, logs.String(), "unable to load handler source")
			assert.Contains(t, logs.String(), "undefined: missingHandler")
			assert.Contains(t, res.Paths, "/healthy")
		})
	}
}
