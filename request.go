package extcore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// RequestParams is the untyped URL parameter dictionary. Use it as the
// Params type argument to receive every wildcard of the route pattern.
type RequestParams = map[string]string

// RequestQuery is the untyped query dictionary (first value of each key).
type RequestQuery = map[string]string

// Request is the decoded form of an incoming request handed to endpoint
// handlers.
type Request[Body, Params, Query any] struct {
	Body      Body
	Params    Params
	Query     Query
	RequestID string
	Raw       *http.Request
}

// Context returns the request context.
func (r *Request[Body, Params, Query]) Context() context.Context {
	return r.Raw.Context()
}

// Header returns a request header value.
func (r *Request[Body, Params, Query]) Header(name string) string {
	return r.Raw.Header.Get(name)
}

// File returns the first upload for a multipart field. It returns
// http.ErrMissingFile when the field has no file.
func (r *Request[Body, Params, Query]) File(name string) (*FileUpload, error) {
	files, err := r.Files(name)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, http.ErrMissingFile
	}
	return &files[0], nil
}

// Files returns every upload for a multipart field.
func (r *Request[Body, Params, Query]) Files(name string) ([]FileUpload, error) {
	if !isMultipart(r.Raw) {
		return nil, nil
	}
	return formFiles(r.Raw, name)
}

type paramSource int

const (
	fromPath paramSource = iota
	fromQuery
)

// decodeRequest builds a Request from r. pattern is the route pattern the
// request matched, used to enumerate path wildcards.
func decodeRequest[Body, Params, Query any](r *http.Request, pattern string, codecs *codecRegistry) (*Request[Body, Params, Query], error) {
	req := &Request[Body, Params, Query]{
		RequestID: GetRequestID(r),
		Raw:       r,
	}

	if err := bindParams(reflect.ValueOf(&req.Params).Elem(), r, pattern, fromPath); err != nil {
		return nil, err
	}
	if err := bindParams(reflect.ValueOf(&req.Query).Elem(), r, pattern, fromQuery); err != nil {
		return nil, err
	}

	if reflect.TypeFor[Body]() == reflect.TypeFor[Void]() {
		return req, nil
	}
	if err := decodeBody(r, reflect.ValueOf(&req.Body).Elem(), codecs); err != nil {
		return nil, err
	}
	return req, nil
}

// bindParams fills a Params or Query value. Dictionaries receive every
// pattern wildcard (path) or every query key; structs bind tagged fields,
// with untagged fields falling back to src under their json name.
func bindParams(v reflect.Value, r *http.Request, pattern string, src paramSource) error {
	t := v.Type()
	if t == reflect.TypeFor[Void]() {
		return nil
	}

	if isStringMap(t) {
		m := reflect.MakeMap(t)
		if src == fromPath {
			for _, name := range patternParams(pattern) {
				m.SetMapIndex(reflect.ValueOf(name).Convert(t.Key()), reflect.ValueOf(r.PathValue(name)).Convert(t.Elem()))
			}
		} else {
			for key, vals := range r.URL.Query() {
				if len(vals) > 0 {
					m.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), reflect.ValueOf(vals[0]).Convert(t.Elem()))
				}
			}
		}
		v.Set(m)
		return nil
	}

	if t.Kind() != reflect.Struct {
		return nil
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		field := v.Field(i)

		tag, name, opts := fieldSource(f, src)
		if name == "" || name == "-" {
			continue
		}

		var vals []string
		var sentinel error
		switch tag {
		case "path":
			sentinel = ErrBindPath
			if val := r.PathValue(name); val != "" {
				vals = []string{val}
			}
		case "query":
			sentinel = ErrBindQuery
			vals = r.URL.Query()[name]
			if tagContains(opts, "comma") && len(vals) == 1 {
				vals = strings.Split(vals[0], ",")
			}
		case "header":
			sentinel = ErrBindHeader
			vals = r.Header.Values(name)
		case "cookie":
			sentinel = ErrBindCookie
			if c, err := r.Cookie(name); err == nil {
				vals = []string{c.Value}
			}
		}

		if len(vals) == 0 {
			if def := f.Tag.Get("default"); def != "" {
				vals = []string{def}
			}
		}
		if len(vals) == 0 {
			continue
		}

		if err := setFieldValues(field, vals); err != nil {
			return fmt.Errorf("%w: %s: %w", sentinel, name, err)
		}
	}

	return nil
}

// fieldSource reports which request part binds f, under which name.
func fieldSource(f reflect.StructField, fallback paramSource) (tag, name, opts string) {
	for _, tag := range paramTags {
		if raw := f.Tag.Get(tag); raw != "" {
			name, opts := tagOptions(raw)
			return tag, name, opts
		}
	}
	if fallback == fromPath {
		return "path", jsonFieldName(f), ""
	}
	return "query", jsonFieldName(f), ""
}

// decodeBody decodes the request body into v according to Content-Type.
func decodeBody(r *http.Request, v reflect.Value, codecs *codecRegistry) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}

	ct := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(ct) //nolint:errcheck // empty on error

	switch mediaType {
	case "multipart/form-data":
		if err := parseMultipart(r); err != nil {
			return bodyError(err)
		}
		return bindForm(v, r.MultipartForm.Value, r)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return bodyError(fmt.Errorf("%w: %w", ErrBindForm, err))
		}
		return bindForm(v, r.PostForm, nil)
	}

	dec, ok := codecs.decoderFor(ct)
	if !ok {
		return NewClientError(http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported content type %q", ct))
	}
	if err := dec.Decode(r.Body, v.Addr().Interface()); err != nil {
		return bodyError(fmt.Errorf("%w: %w", ErrBindBody, err))
	}
	return nil
}

// bodyError maps decode failures to client errors.
func bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return NewClientError(http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
	}
	return BadRequest(err.Error())
}

// bindForm binds form values (and multipart files when r is set) into v.
func bindForm(v reflect.Value, values url.Values, r *http.Request) error {
	t := v.Type()

	if t.Kind() == reflect.Map && t.Key().Kind() == reflect.String {
		m := reflect.MakeMap(t)
		for key, vals := range values {
			if len(vals) == 0 {
				continue
			}
			val := reflect.ValueOf(vals[0])
			if !val.Type().AssignableTo(t.Elem()) {
				if !val.Type().ConvertibleTo(t.Elem()) {
					continue
				}
				val = val.Convert(t.Elem())
			}
			m.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), val)
		}
		v.Set(m)
		return nil
	}

	if t.Kind() != reflect.Struct {
		return BadRequest(fmt.Sprintf("cannot bind form body into %s", t))
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || isParamField(f) {
			continue
		}
		name := formFieldName(f)
		if name == "-" {
			continue
		}
		field := v.Field(i)

		switch f.Type {
		case reflect.TypeFor[FileUpload](), reflect.TypeFor[[]FileUpload](), reflect.TypeFor[*FileUpload]():
			if r == nil {
				continue
			}
			files, err := formFiles(r, name)
			if err != nil {
				return BadRequest(err.Error())
			}
			if len(files) == 0 {
				continue
			}
			switch f.Type {
			case reflect.TypeFor[FileUpload]():
				field.Set(reflect.ValueOf(files[0]))
			case reflect.TypeFor[*FileUpload]():
				field.Set(reflect.ValueOf(&files[0]))
			default:
				field.Set(reflect.ValueOf(files))
			}
			continue
		}

		vals := values[name]
		if len(vals) == 0 {
			continue
		}
		if err := setFieldValues(field, vals); err != nil {
			return BadRequest(fmt.Errorf("%w: %s: %w", ErrBindForm, name, err).Error())
		}
	}
	return nil
}

// setFieldValues sets field from one or more raw string values. Slices take
// every value; scalars take the first.
func setFieldValues(field reflect.Value, vals []string) error {
	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() != reflect.Uint8 {
		s := reflect.MakeSlice(field.Type(), len(vals), len(vals))
		for i, val := range vals {
			if err := setFieldValue(s.Index(i), val); err != nil {
				return err
			}
		}
		field.Set(s)
		return nil
	}
	return setFieldValue(field, vals[0])
}

// setFieldValue sets a reflect.Value from a string, supporting common types.
func setFieldValue(field reflect.Value, value string) error {
	switch field.Type() {
	case reflect.TypeFor[time.Duration]():
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	case reflect.TypeFor[time.Time]():
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(ts))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.Pointer:
		p := reflect.New(field.Type().Elem())
		if err := setFieldValue(p.Elem(), value); err != nil {
			return err
		}
		field.Set(p)
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")) //nolint:errcheck // empty on error
	return mediaType == "multipart/form-data"
}
