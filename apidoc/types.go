package apidoc

import (
	"go/constant"
	"go/types"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// schemaBuilder turns go/types types into schemas, registering a
// definition for every named type it meets.
type schemaBuilder struct {
	defs        Definitions
	origins     map[string]types.Type
	aliases     map[*types.TypeName]bool
	endpointPkg string
	logger      *slog.Logger
}

func newSchemaBuilder(endpointPkg string, logger *slog.Logger) *schemaBuilder {
	return &schemaBuilder{
		defs:        Definitions{},
		origins:     map[string]types.Type{},
		aliases:     map[*types.TypeName]bool{},
		endpointPkg: endpointPkg,
		logger:      logger,
	}
}

// define adds the definition of a type declared in a handler file. An alias
// becomes a definition holding the schema of its right-hand side, which for
// named types is a bare $ref.
func (b *schemaBuilder) define(obj *types.TypeName) {
	if obj.IsAlias() {
		rhs := types.Unalias(obj.Type())
		if a, ok := obj.Type().(*types.Alias); ok {
			rhs = a.Rhs()
		}
		if s := b.schemaFor(rhs); s != nil {
			b.defs[obj.Name()] = s
			b.origins[obj.Name()] = obj.Type()
			b.aliases[obj] = true
		}
		return
	}

	named, ok := obj.Type().(*types.Named)
	if !ok || named.TypeParams().Len() > 0 {
		return
	}
	b.schemaFor(named)
}

// schemaFor returns the schema of t. Named types yield a $ref; nil means t
// has no schema (Void).
func (b *schemaBuilder) schemaFor(t types.Type) *Schema {
	switch t := t.(type) {
	case *types.Alias:
		if b.aliases[t.Obj()] {
			return refTo(t.Obj().Name())
		}
		return b.schemaFor(types.Unalias(t))
	case *types.Pointer:
		return b.schemaFor(t.Elem())
	case *types.Named:
		return b.namedSchema(t)
	case *types.Basic:
		return basicSchema(t)
	case *types.Slice:
		if basic, ok := t.Elem().(*types.Basic); ok && basic.Kind() == types.Byte {
			return &Schema{Type: "string", Format: "byte"}
		}
		return &Schema{Type: "array", Items: b.itemSchema(t.Elem())}
	case *types.Array:
		return &Schema{Type: "array", Items: b.itemSchema(t.Elem())}
	case *types.Map:
		return &Schema{Type: "object", AdditionalProperties: b.itemSchema(t.Elem())}
	case *types.Struct:
		return b.structSchema(t)
	default:
		// interfaces, type parameters, channels and funcs accept anything
		return &Schema{}
	}
}

func (b *schemaBuilder) itemSchema(t types.Type) *Schema {
	if s := b.schemaFor(t); s != nil {
		return s
	}
	return &Schema{}
}

func (b *schemaBuilder) namedSchema(t *types.Named) *Schema {
	obj := t.Obj()
	if obj.Pkg() == nil { // error
		return &Schema{Type: "string"}
	}

	switch obj.Pkg().Path() + "." + obj.Name() {
	case "time.Time":
		return &Schema{Type: "string", Format: "date-time"}
	case "time.Duration":
		return &Schema{Type: "string", Format: "duration"}
	case "encoding/json.RawMessage":
		return &Schema{}
	case b.endpointPkg + ".Void":
		return nil
	case b.endpointPkg + ".FileUpload":
		return &Schema{Type: "string", Format: "binary"}
	}

	if implementsTextMarshaler(t) {
		return &Schema{Type: "string"}
	}

	name := typeName(t)
	if prev, ok := b.origins[name]; ok {
		if !types.Identical(prev, t) {
			b.logger.Warn("definition name used by more than one type",
				slog.String("name", name),
				slog.String("kept", prev.String()),
				slog.String("skipped", t.String()),
			)
		}
		return refTo(name)
	}

	s := &Schema{}
	b.defs[name] = s
	b.origins[name] = t

	switch u := t.Underlying().(type) {
	case *types.Struct:
		*s = *b.structSchema(u)
	case *types.Basic:
		*s = *basicSchema(u)
		s.Enum = enumValues(t)
	default:
		*s = *b.itemSchema(u)
	}
	return refTo(name)
}

func (b *schemaBuilder) structSchema(st *types.Struct) *Schema {
	s := &Schema{Type: "object", AdditionalProperties: false}
	b.addFields(s, st)
	return s
}

// addFields adds the fields of st to s the way encoding/json sees them:
// untagged embedded structs are promoted.
func (b *schemaBuilder) addFields(s *Schema, st *types.Struct) {
	for i := range st.NumFields() {
		f := st.Field(i)
		tag := reflect.StructTag(st.Tag(i))
		jsonName, opts, _ := strings.Cut(tag.Get("json"), ",")
		if jsonName == "-" && opts == "" {
			continue
		}

		if f.Embedded() && jsonName == "" {
			if inner, ok := derefType(f.Type()).Underlying().(*types.Struct); ok {
				b.addFields(s, inner)
				continue
			}
		}
		if !f.Exported() {
			continue
		}

		name, in := paramName(tag)
		isParam := in != ""
		if !isParam {
			name = jsonName
		}
		if name == "" {
			name = f.Name()
		}

		prop := b.schemaFor(f.Type())
		if prop == nil {
			continue
		}
		applyTags(prop, tag)
		prop.in = in

		required := tag.Get("required") == "true" || tag.Get("path") != ""
		if !isParam {
			_, isPointer := f.Type().(*types.Pointer)
			optional := isPointer || hasOption(opts, "omitempty") || hasOption(opts, "omitzero")
			required = required || !optional
		}
		s.setProperty(name, prop, required)
	}
}

// paramName returns the request parameter name bound by a path, query,
// header or cookie tag, and the tag that bound it. The location is empty
// for body fields.
func paramName(tag reflect.StructTag) (name, in string) {
	for _, key := range []string{"path", "query", "header", "cookie"} {
		if raw := tag.Get(key); raw != "" {
			name, _, _ = strings.Cut(raw, ",")
			return name, key
		}
	}
	return "", ""
}

// applyTags copies documentation and constraint tags onto a property.
// A $ref only takes the description.
func applyTags(s *Schema, tag reflect.StructTag) {
	if doc := tag.Get("doc"); doc != "" {
		s.Description = doc
	}
	if s.Ref != "" {
		return
	}

	ints := map[string]**int{
		"minLength": &s.MinLength,
		"maxLength": &s.MaxLength,
		"minItems":  &s.MinItems,
		"maxItems":  &s.MaxItems,
	}
	for key, dst := range ints {
		if n, err := strconv.Atoi(tag.Get(key)); err == nil {
			*dst = intPtr(n)
		}
	}

	floats := map[string]**float64{
		"minimum": &s.Minimum,
		"maximum": &s.Maximum,
	}
	for key, dst := range floats {
		if f, err := strconv.ParseFloat(tag.Get(key), 64); err == nil {
			*dst = floatPtr(f)
		}
	}

	if p := tag.Get("pattern"); p != "" {
		s.Pattern = p
	}
	if enum := tag.Get("enum"); enum != "" {
		s.Enum = nil
		for v := range strings.SplitSeq(enum, ",") {
			s.Enum = append(s.Enum, v)
		}
	}
	if def := tag.Get("default"); def != "" {
		s.Default = def
	}
}

func basicSchema(t *types.Basic) *Schema {
	info := t.Info()
	switch {
	case info&types.IsBoolean != 0:
		return &Schema{Type: "boolean"}
	case info&types.IsInteger != 0:
		return &Schema{Type: "integer"}
	case info&types.IsFloat != 0:
		return &Schema{Type: "number"}
	case info&types.IsString != 0:
		return &Schema{Type: "string"}
	default:
		return &Schema{}
	}
}

// enumValues lists the constants of type t declared in its package, in
// declaration order.
func enumValues(t *types.Named) []any {
	pkg := t.Obj().Pkg()
	var consts []*types.Const
	for _, name := range pkg.Scope().Names() {
		if c, ok := pkg.Scope().Lookup(name).(*types.Const); ok && types.Identical(c.Type(), t) {
			consts = append(consts, c)
		}
	}
	if len(consts) == 0 {
		return nil
	}
	slices.SortFunc(consts, func(a, b *types.Const) int { return int(a.Pos()) - int(b.Pos()) })

	values := make([]any, 0, len(consts))
	for _, c := range consts {
		switch c.Val().Kind() {
		case constant.String:
			values = append(values, constant.StringVal(c.Val()))
		case constant.Int:
			n, _ := constant.Int64Val(c.Val())
			values = append(values, n)
		case constant.Float:
			f, _ := constant.Float64Val(c.Val())
			values = append(values, f)
		case constant.Bool:
			values = append(values, constant.BoolVal(c.Val()))
		}
	}
	return values
}

func implementsTextMarshaler(t types.Type) bool {
	ms := types.NewMethodSet(types.NewPointer(t))
	return ms.Lookup(nil, "MarshalText") != nil
}

// typeName is the definition name of a named type: its name, plus type
// arguments for generic instances ("Page[User]").
func typeName(t types.Type) string {
	return types.TypeString(t, func(*types.Package) string { return "" })
}

func derefType(t types.Type) types.Type {
	if p, ok := t.(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}

func hasOption(opts, name string) bool {
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == name {
			return true
		}
	}
	return false
}
