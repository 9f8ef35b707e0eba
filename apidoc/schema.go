package apidoc

import (
	"net/url"
	"slices"
	"strings"
)

const definitionsPrefix = "#/definitions/"

// Schema is the JSON Schema subset written to the API documents.
type Schema struct {
	Ref                  string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type                 string             `json:"type,omitempty" yaml:"type,omitempty"`
	Format               string             `json:"format,omitempty" yaml:"format,omitempty"`
	Description          string             `json:"description,omitempty" yaml:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"` // false or *Schema
	Enum                 []any              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default              any                `json:"default,omitempty" yaml:"default,omitempty"`
	MinLength            *int               `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern              string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinItems             *int               `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`

	// order holds property names in declaration order.
	order []string
	// in is the request part a Params or Query field binds from: path,
	// query, header or cookie.
	in string
}

// Definitions maps definition names to their schemas.
type Definitions map[string]*Schema

// refTo returns a schema referencing the named definition.
func refTo(name string) *Schema {
	return &Schema{Ref: definitionsPrefix + url.PathEscape(name)}
}

// refName returns the definition name a $ref points to, or "".
func refName(ref string) string {
	encoded, ok := strings.CutPrefix(ref, definitionsPrefix)
	if !ok {
		return ""
	}
	name, err := url.PathUnescape(encoded)
	if err != nil {
		return encoded
	}
	return name
}

// isBareRef reports whether s is nothing but a $ref.
func (s *Schema) isBareRef() bool {
	if s == nil || s.Ref == "" {
		return false
	}
	bare := *s
	bare.Ref = ""
	return bare.Type == "" && bare.Description == "" && len(bare.Properties) == 0 &&
		bare.Items == nil && bare.AdditionalProperties == nil && len(bare.Enum) == 0
}

// PropertyNames returns the property names in declaration order. Names
// added without order information follow, sorted.
func (s *Schema) PropertyNames() []string {
	names := slices.Clone(s.order)
	var rest []string
	for name := range s.Properties {
		if !slices.Contains(names, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

func (s *Schema) setProperty(name string, prop *Schema, required bool) {
	if s.Properties == nil {
		s.Properties = make(map[string]*Schema)
	}
	if _, ok := s.Properties[name]; !ok {
		s.order = append(s.order, name)
	}
	s.Properties[name] = prop
	if required && !slices.Contains(s.Required, name) {
		s.Required = append(s.Required, name)
	}
}

// resolve follows $ref chains through defs. Unknown refs and cycles stop
// at the last schema reached.
func (d Definitions) resolve(s *Schema) *Schema {
	seen := map[string]bool{}
	for s != nil && s.Ref != "" {
		name := refName(s.Ref)
		target, ok := d[name]
		if !ok || seen[name] {
			return s
		}
		seen[name] = true
		s = target
	}
	return s
}

// collectRefs appends every definition name referenced in s.
func collectRefs(s *Schema, out map[string]bool) {
	if s == nil {
		return
	}
	if name := refName(s.Ref); name != "" {
		out[name] = true
	}
	for _, p := range s.Properties {
		collectRefs(p, out)
	}
	collectRefs(s.Items, out)
	if ap, ok := s.AdditionalProperties.(*Schema); ok {
		collectRefs(ap, out)
	}
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
