package apidoc

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Handler is an exported endpoint found in a handler file.
type Handler struct {
	UUID              string
	File              HandlerFile
	Package           string // import path
	PkgName           string
	Variable          string
	Path              string
	Method            string // lower case
	Tags              []string
	Summary           string
	Response          string
	BodyDescription   string
	ParamsDescription map[string]string

	// Type arguments of the endpoint: returned, body, params, query.
	typeArgs [4]types.Type
}

const (
	argReturned = iota
	argBody
	argParams
	argQuery
)

// loadExportedHandlers finds every exported package-level variable of
// type *HTTPEndpoint[...] in files and reads its configuration literal.
func loadExportedHandlers(files []sourceFile, endpointPkg string, logger *slog.Logger) []Handler {
	var handlers []Handler
	for _, f := range files {
		info := f.pkg.TypesInfo
		vars := packageVarValues(f.pkg.Syntax, info)

		for _, decl := range f.syntax.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, ident := range vs.Names {
					if !ident.IsExported() {
						continue
					}
					obj := info.Defs[ident]
					if obj == nil {
						continue
					}
					args, ok := endpointTypeArgs(obj.Type(), endpointPkg)
					if !ok {
						continue
					}

					h := Handler{
						UUID:     uuid.NewString(),
						File:     f.HandlerFile,
						Package:  f.pkg.PkgPath,
						PkgName:  f.pkg.Name,
						Variable: ident.Name,
						Method:   "get",
						Tags:     []string{},
						typeArgs: args,
					}

					var value ast.Expr
					if i < len(vs.Values) {
						value = vs.Values[i]
					}
					lit := configLiteral(value, info, vars)
					if lit == nil {
						logger.Warn("unable to read endpoint config",
							slog.String("file", f.Path()),
							slog.String("variable", ident.Name),
						)
						continue
					}
					readEndpointConfig(&h, lit, info)
					if h.Path == "" {
						logger.Warn("endpoint path is not a constant",
							slog.String("file", f.Path()),
							slog.String("variable", ident.Name),
						)
						continue
					}
					handlers = append(handlers, h)
				}
			}
		}
	}
	return handlers
}

// endpointTypeArgs reports whether t is *HTTPEndpoint[R, B, P, Q] from
// endpointPkg and returns its type arguments.
func endpointTypeArgs(t types.Type, endpointPkg string) ([4]types.Type, bool) {
	var args [4]types.Type
	ptr, ok := types.Unalias(t).(*types.Pointer)
	if !ok {
		return args, false
	}
	named, ok := types.Unalias(ptr.Elem()).(*types.Named)
	if !ok {
		return args, false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != endpointPkg || obj.Name() != "HTTPEndpoint" {
		return args, false
	}
	targs := named.TypeArgs()
	if targs.Len() != len(args) {
		return args, false
	}
	for i := range args {
		args[i] = targs.At(i)
	}
	return args, true
}

// packageVarValues maps package-level variables to their initializer.
func packageVarValues(files []*ast.File, info *types.Info) map[types.Object]ast.Expr {
	values := map[types.Object]ast.Expr{}
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok || len(vs.Values) != len(vs.Names) {
					continue
				}
				for i, ident := range vs.Names {
					if obj := info.Defs[ident]; obj != nil {
						values[obj] = vs.Values[i]
					}
				}
			}
		}
	}
	return values
}

// configLiteral finds the EndpointConfig composite literal passed to
// NewEndpoint in expr. The argument may be the literal, its address, or a
// package-level variable holding either.
func configLiteral(expr ast.Expr, info *types.Info, vars map[types.Object]ast.Expr) *ast.CompositeLit {
	call, ok := ast.Unparen(expr).(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil
	}

	arg := call.Args[0]
	for range 4 {
		switch a := ast.Unparen(arg).(type) {
		case *ast.CompositeLit:
			return a
		case *ast.UnaryExpr:
			if a.Op != token.AND {
				return nil
			}
			arg = a.X
		case *ast.Ident:
			v, ok := vars[info.Uses[a]]
			if !ok {
				return nil
			}
			arg = v
		default:
			return nil
		}
	}
	return nil
}

// readEndpointConfig copies the constant documentation fields of lit.
func readEndpointConfig(h *Handler, lit *ast.CompositeLit, info *types.Info) {
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}

		switch key.Name {
		case "Path":
			h.Path, _ = constString(kv.Value, info)
		case "Method":
			if m, ok := constString(kv.Value, info); ok && m != "" {
				h.Method = strings.ToLower(m)
			}
		case "Summary":
			h.Summary, _ = constString(kv.Value, info)
		case "Response":
			h.Response, _ = constString(kv.Value, info)
		case "BodyDescription":
			h.BodyDescription, _ = constString(kv.Value, info)
		case "Tags":
			h.Tags = constStrings(kv.Value, info)
		case "ParamsDescription":
			h.ParamsDescription = constStringMap(kv.Value, info)
		}
	}
	if h.Method == "" {
		h.Method = strings.ToLower(http.MethodGet)
	}
}

func constString(expr ast.Expr, info *types.Info) (string, bool) {
	tv, ok := info.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}
	return constant.StringVal(tv.Value), true
}

func constStrings(expr ast.Expr, info *types.Info) []string {
	out := []string{}
	lit, ok := ast.Unparen(expr).(*ast.CompositeLit)
	if !ok {
		return out
	}
	for _, elt := range lit.Elts {
		if s, ok := constString(elt, info); ok {
			out = append(out, s)
		}
	}
	return out
}

func constStringMap(expr ast.Expr, info *types.Info) map[string]string {
	out := map[string]string{}
	lit, ok := ast.Unparen(expr).(*ast.CompositeLit)
	if !ok {
		return out
	}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		k, kok := constString(kv.Key, info)
		v, vok := constString(kv.Value, info)
		if kok && vok {
			out[k] = v
		}
	}
	return out
}
