package apidoc

import (
	"cmp"
	"slices"
	"strings"
)

// Paths maps formatted paths to their operations, keyed by lower case
// method.
type Paths map[string]PathItem

// PathItem maps lower case methods to operations.
type PathItem map[string]*Operation

// Operation documents one endpoint.
type Operation struct {
	Tags        []string            `json:"tags" yaml:"tags"`
	Summary     string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Consumes    []string            `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// Parameter is a path or query parameter.
type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Type        string  `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string  `json:"format,omitempty" yaml:"format,omitempty"`
	Enum        []any   `json:"enum,omitempty" yaml:"enum,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// RequestBody documents the request payload.
type RequestBody struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content" yaml:"content"`
}

// Response documents a response status.
type Response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// MediaType holds the schema of one content type.
type MediaType struct {
	Schema *Schema `json:"schema" yaml:"schema"`
}

const jsonMediaType = "application/json"

// handlerSchemas are the schemas of an endpoint's type arguments. A nil
// schema means the argument is Void.
type handlerSchemas struct {
	Returned    *Schema
	RequestBody *Schema
	URLParams   *Schema
	QueryParams *Schema
}

// groupBy groups items by key, keeping first-seen key order.
func groupBy[T any](items []T, key func(T) string) (keys []string, groups map[string][]T) {
	groups = map[string][]T{}
	for _, item := range items {
		k := key(item)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], item)
	}
	return keys, groups
}

// buildPaths groups handlers by path and documents each of them.
func buildPaths(handlers []Handler, schemas map[string]handlerSchemas, defs Definitions) Paths {
	paths := Paths{}
	keys, groups := groupBy(handlers, func(h Handler) string { return h.Path })
	for _, path := range keys {
		formatted := formatPath(path)
		item := paths[formatted]
		if item == nil {
			item = PathItem{}
			paths[formatted] = item
		}
		for _, h := range groups[path] {
			item[h.Method] = buildOperation(h, schemas[h.UUID], defs)
		}
	}
	return paths
}

func buildOperation(h Handler, s handlerSchemas, defs Definitions) *Operation {
	op := &Operation{
		Tags:    h.Tags,
		Summary: h.Summary,
	}
	if op.Tags == nil {
		op.Tags = []string{}
	}
	if slices.Contains([]string{"post", "put", "patch"}, h.Method) {
		op.Consumes = []string{jsonMediaType}
	}

	op.Parameters = slices.Concat(
		pathParameters(h, s.URLParams, defs),
		boundParameters(h, s.URLParams, defs, ""),
		boundParameters(h, s.QueryParams, defs, "query"),
	)

	if body := s.RequestBody; body != nil && (body.Ref != "" || len(body.Properties) > 0) {
		op.RequestBody = &RequestBody{
			Description: h.BodyDescription,
			Content:     map[string]MediaType{jsonMediaType: {Schema: body}},
		}
	}

	if s.Returned != nil {
		op.Responses = map[string]Response{
			"200": {
				Description: h.Response,
				Content:     map[string]MediaType{jsonMediaType: {Schema: s.Returned}},
			},
		}
	}
	return op
}

// pathParameters documents the wildcards of the handler path in order.
// Type, format, enum and description come from the matching Params
// property when there is one; ParamsDescription wins over the doc tag.
func pathParameters(h Handler, params *Schema, defs Definitions) []Parameter {
	resolved := defs.resolve(params)

	var out []Parameter
	for _, name := range pathParamNames(h.Path) {
		p := Parameter{
			Name:        name,
			In:          "path",
			Type:        "string",
			Required:    true,
			Description: h.ParamsDescription[name],
		}
		if resolved != nil {
			if prop := resolved.Properties[name]; prop != nil {
				target := defs.resolve(prop)
				if target.Type != "" {
					p.Type = target.Type
				}
				p.Format = target.Format
				p.Enum = target.Enum
				if p.Description == "" {
					p.Description = cmp.Or(prop.Description, target.Description)
				}
			}
		}
		out = append(out, p)
	}
	return out
}

// boundParameters documents the properties of a Params or Query schema
// that bind from the query string, headers or cookies. Untagged Query
// properties bind from the query string; untagged Params properties are
// path wildcards and are left to pathParameters.
func boundParameters(h Handler, s *Schema, defs Definitions, fallback string) []Parameter {
	resolved := defs.resolve(s)
	if resolved == nil {
		return nil
	}

	var out []Parameter
	for _, name := range resolved.PropertyNames() {
		prop := resolved.Properties[name]
		in := cmp.Or(prop.in, fallback)
		if in == "" || in == "path" {
			continue
		}
		out = append(out, Parameter{
			Name:        name,
			In:          in,
			Required:    slices.Contains(resolved.Required, name),
			Description: h.ParamsDescription[name],
			Schema:      prop,
		})
	}
	return out
}

// formatPath turns a route path into a documented path: "{name...}" loses
// its ellipsis, ":name" becomes "{name}" and "{$}" is dropped.
func formatPath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		switch {
		case seg == "{$}":
			segments[i] = ""
		case strings.HasPrefix(seg, ":"):
			segments[i] = "{" + seg[1:] + "}"
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "...}"):
			segments[i] = strings.TrimSuffix(seg, "...}") + "}"
		}
	}
	return strings.Join(segments, "/")
}

// pathParamNames lists the wildcard names of a route path in order.
func pathParamNames(path string) []string {
	var names []string
	for seg := range strings.SplitSeq(formatPath(path), "/") {
		if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			names = append(names, seg[1:len(seg)-1])
		}
	}
	return names
}

// referencedDefinitions returns the definitions reachable through $ref from
// the path documents.
func referencedDefinitions(paths Paths, defs Definitions) Definitions {
	pending := map[string]bool{}
	for _, item := range paths {
		for _, op := range item {
			for _, p := range op.Parameters {
				collectRefs(p.Schema, pending)
			}
			if op.RequestBody != nil {
				for _, mt := range op.RequestBody.Content {
					collectRefs(mt.Schema, pending)
				}
			}
			for _, resp := range op.Responses {
				for _, mt := range resp.Content {
					collectRefs(mt.Schema, pending)
				}
			}
		}
	}

	out := Definitions{}
	for len(pending) > 0 {
		next := map[string]bool{}
		for name := range pending {
			def, ok := defs[name]
			if !ok {
				continue
			}
			if _, done := out[name]; done {
				continue
			}
			out[name] = def
			collectRefs(def, next)
		}
		pending = next
	}
	return out
}

// flattenTypeArguments replaces definitions that are a bare $ref to a
// generic instance ("Page[User]") with the instance's schema.
func flattenTypeArguments(defs Definitions) {
	for name, def := range defs {
		if !def.isBareRef() {
			continue
		}
		target := refName(def.Ref)
		if !strings.Contains(target, "[") {
			continue
		}
		if resolved, ok := defs[target]; ok {
			defs[name] = resolved
		}
	}
}
