package extcore

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// constraintRule checks one struct tag against a field value.
type constraintRule struct {
	tag   string
	kinds func(reflect.Kind) bool
	check func(tag string, fv reflect.Value, path string, out *ValidationErrors)
}

var constraintRules = []constraintRule{
	{tag: "minLength", kinds: isStringKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		if n, err := strconv.Atoi(tag); err == nil && utf8.RuneCountInString(fv.String()) < n {
			out.Add("%s must be at least %d characters", path, n)
		}
	}},
	{tag: "maxLength", kinds: isStringKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		if n, err := strconv.Atoi(tag); err == nil && utf8.RuneCountInString(fv.String()) > n {
			out.Add("%s must be at most %d characters", path, n)
		}
	}},
	{tag: "pattern", kinds: isStringKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		if re, err := compilePattern(tag); err == nil && fv.String() != "" && !re.MatchString(fv.String()) {
			out.Add("%s must match the following: %q", path, tag)
		}
	}},
	{tag: "enum", kinds: isStringKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		allowed := strings.Split(tag, ",")
		if fv.String() != "" && !slices.Contains(allowed, fv.String()) {
			out.Add("%s must be one of the following values: %s", path, strings.Join(allowed, ", "))
		}
	}},
	{tag: "minimum", kinds: isNumericKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		if lower, err := strconv.ParseFloat(tag, 64); err == nil && toFloat64(fv) < lower {
			out.Add("%s must be greater than or equal to %s", path, tag)
		}
	}},
	{tag: "maximum", kinds: isNumericKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		if upper, err := strconv.ParseFloat(tag, 64); err == nil && toFloat64(fv) > upper {
			out.Add("%s must be less than or equal to %s", path, tag)
		}
	}},
	{tag: "minItems", kinds: isListKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		if n, err := strconv.Atoi(tag); err == nil && fv.Len() < n {
			out.Add("%s field must have at least %d items", path, n)
		}
	}},
	{tag: "maxItems", kinds: isListKind, check: func(tag string, fv reflect.Value, path string, out *ValidationErrors) {
		if n, err := strconv.Atoi(tag); err == nil && fv.Len() > n {
			out.Add("%s field must have less than or equal to %d items", path, n)
		}
	}},
}

var patternCache sync.Map // string -> *regexp.Regexp

func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(p); ok {
		return re.(*regexp.Regexp), nil //nolint:forcetypeassert // only *regexp.Regexp is stored
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, err
	}
	patternCache.Store(p, re)
	return re, nil
}

// checkConstraints walks v and records every constraint-tag violation.
// Nested structs, pointers to structs and slices of structs are visited;
// paths use json names ("items[0].name").
func checkConstraints(v any, prefix string, out *ValidationErrors) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	walkStruct(rv, prefix, out)
}

func walkStruct(rv reflect.Value, prefix string, out *ValidationErrors) {
	t := rv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonFieldName(f)
		if name == "-" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		fv := rv.Field(i)

		if f.Tag.Get("required") == "true" && fv.IsZero() {
			out.Add("%s is a required field", path)
			continue
		}

		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				break
			}
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Pointer {
			continue
		}

		for _, rule := range constraintRules {
			if tag := f.Tag.Get(rule.tag); tag != "" && rule.kinds(fv.Kind()) {
				rule.check(tag, fv, path, out)
			}
		}

		walkNested(fv, path, out)
	}
}

func walkNested(fv reflect.Value, path string, out *ValidationErrors) {
	//exhaustive:ignore
	switch fv.Kind() {
	case reflect.Struct:
		if fv.Type() == reflect.TypeFor[time.Time]() || fv.Type() == reflect.TypeFor[FileUpload]() {
			return
		}
		walkStruct(fv, path, out)
	case reflect.Slice, reflect.Array:
		for i := range fv.Len() {
			elem := fv.Index(i)
			for elem.Kind() == reflect.Pointer && !elem.IsNil() {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct {
				walkNested(elem, fmt.Sprintf("%s[%d]", path, i), out)
			}
		}
	}
}

func isStringKind(k reflect.Kind) bool { return k == reflect.String }

func isListKind(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

func isNumericKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default: // float32, float64
		return v.Float()
	}
}
