// Package apidoc generates API documentation from endpoint declarations.
//
// The generator loads the packages holding handler files (by default every
// file ending in "handlers.go"), finds the exported *extcore.HTTPEndpoint
// variables and reads their path, method and documentation fields from the
// EndpointConfig literal. The endpoint's type arguments give the returned,
// body, params and query schemas. Two documents are written: paths, keyed
// by path and method, and definitions, holding every schema referenced from
// the paths.
//
//	gen, err := apidoc.NewDocGenerator(apidoc.GeneratorConfig{
//		ProjectRoot: ".",
//		HandlerPath: "internal/handlers",
//		DocPath:     "docs/api",
//	})
//	if err != nil {
//		return err
//	}
//	res, err := gen.Generate(ctx)
//
// Nothing is executed: only constant expressions in the config literal are
// documented.
package apidoc
