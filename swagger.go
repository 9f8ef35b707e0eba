package extcore

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// APIDocPath is where servers publish the swagger document and its UI.
const APIDocPath = "/api-docs"

// APIInfo is the info block of an API document.
type APIInfo struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// APIDoc is a swagger document assembled from the generator output.
type APIDoc struct {
	Swagger     string         `json:"swagger" yaml:"swagger"`
	Info        APIInfo        `json:"info" yaml:"info"`
	BasePath    string         `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	Paths       map[string]any `json:"paths" yaml:"paths"`
	Definitions map[string]any `json:"definitions" yaml:"definitions"`
}

// LoadAPIDoc reads paths and definitions written by the apidoc generator
// from dir. Both JSON and YAML output are accepted.
func LoadAPIDoc(dir string, info APIInfo) (*APIDoc, error) {
	doc := &APIDoc{Swagger: "2.0", Info: info}

	var err error
	if doc.Paths, err = readDocFile(dir, "paths"); err != nil {
		return nil, err
	}
	if doc.Definitions, err = readDocFile(dir, "definitions"); err != nil {
		return nil, err
	}
	return doc, nil
}

func readDocFile(dir, name string) (map[string]any, error) {
	for _, ext := range []string{".json", ".yaml"} {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		out := map[string]any{}
		if ext == ".json" {
			err = json.Unmarshal(data, &out)
		} else {
			err = yaml.Unmarshal(data, &out)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("no %s.json or %s.yaml in %s", name, name, dir)
}

// DocsOption configures the docs UI.
type DocsOption func(*docsConfig)

type docsConfig struct {
	title   string
	specURL string
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.title = title
	}
}

// ServeAPIDoc publishes doc under path: the UI at path, the document at
// path/swagger.json and path/swagger.yaml.
func (r *Router) ServeAPIDoc(path string, doc any, opts ...DocsOption) {
	path = strings.TrimSuffix(path, "/")
	cfg := &docsConfig{
		title:   "API documentation",
		specURL: path + "/swagger.json",
	}
	if d, ok := doc.(*APIDoc); ok && d.Info.Title != "" {
		cfg.title = d.Info.Title
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tmpl := template.Must(template.New("docs").Parse(docsHTML))

	r.Handle("GET "+path, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort template render
		tmpl.Execute(w, cfg)
	}))
	r.Handle("GET "+path+"/swagger.json", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, doc)
	}))
	r.Handle("GET "+path+"/swagger.yaml", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		//nolint:errcheck,gosec // best-effort after WriteHeader
		yamlCodec{}.Encode(w, doc)
	}))
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "{{.SpecURL}}", dom_id: "#swagger-ui" });
  </script>
</body>
</html>`

// Title returns the docs config title (used in the template).
func (c *docsConfig) Title() string { return c.title }

// SpecURL returns the docs config spec URL (used in the template).
func (c *docsConfig) SpecURL() string { return c.specURL }
