package extcore_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/extcore"
)

func TestPatternParams(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pattern string
		expect  []string
	}{
		"static":     {pattern: "/users"},
		"single":     {pattern: "/users/{id}", expect: []string{"id"}},
		"multiple":   {pattern: "/orgs/{org}/users/{id}", expect: []string{"org", "id"}},
		"remainder":  {pattern: "/files/{path...}", expect: []string{"path"}},
		"exact":      {pattern: "/users/{$}"},
		"with host":  {pattern: "example.com/items/{id}", expect: []string{"id"}},
		"not a wild": {pattern: "/a{b}/c", expect: nil},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, extcore.PatternParams(tc.pattern))
		})
	}
}

func TestTagOptions(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tag      string
		name     string
		opts     string
		contains string
		expect   bool
	}{
		"name only":      {tag: "id", name: "id", contains: "omitempty"},
		"with options":   {tag: "tags,comma,omitempty", name: "tags", opts: "comma,omitempty", contains: "omitempty", expect: true},
		"options only":   {tag: ",omitempty", opts: "omitempty", contains: "omitempty", expect: true},
		"prefix overlap": {tag: "x,omitemptyish", name: "x", opts: "omitemptyish", contains: "omitempty"},
		"empty":          {contains: "comma"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			n, opts := extcore.TagOptions(tc.tag)
			assert.Equal(t, tc.name, n)
			assert.Equal(t, tc.opts, opts)
			assert.Equal(t, tc.expect, extcore.TagContains(opts, tc.contains))
		})
	}
}

func TestFieldNames(t *testing.T) {
	t.Parallel()

	typ := reflect.TypeOf(struct {
		Caption string `form:"caption" json:"title"`
		Title   string `json:"heading,omitempty"`
		Plain   string
		ID      string `path:"id"`
		Token   string `header:"X-Token"`
	}{})

	tests := map[string]struct {
		field string
		form  string
		param bool
	}{
		"form tag wins": {field: "Caption", form: "caption"},
		"json name":     {field: "Title", form: "heading"},
		"field name":    {field: "Plain", form: "Plain"},
		"path param":    {field: "ID", form: "ID", param: true},
		"header param":  {field: "Token", form: "Token", param: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f, ok := typ.FieldByName(tc.field)
			assert.True(t, ok)
			assert.Equal(t, tc.form, extcore.FormFieldName(f))
			assert.Equal(t, tc.param, extcore.IsParamField(f))
		})
	}
}

func TestIsStringMap(t *testing.T) {
	t.Parallel()

	type labels map[string]string

	assert.True(t, extcore.IsStringMap(reflect.TypeOf(map[string]string{})))
	assert.True(t, extcore.IsStringMap(reflect.TypeOf(labels{})))
	assert.True(t, extcore.IsStringMap(reflect.TypeOf(extcore.RequestParams{})))
	assert.False(t, extcore.IsStringMap(reflect.TypeOf(map[string]int{})))
	assert.False(t, extcore.IsStringMap(reflect.TypeOf([]string{})))
}
