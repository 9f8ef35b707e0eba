package apidoc

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"slices"
	"strconv"
)

// RegistryConfig configures WriteRegistry.
type RegistryConfig struct {
	Package         string // package clause of the generated file
	ImportPath      string // import path of the generated file's package, if it holds handlers itself
	EndpointPackage string // default: DefaultEndpointPackage
}

// WriteRegistry writes a Go source file declaring Endpoints, which returns
// every handler in discovery order. Servers pass it to ServerConfig.Endpoints.
func WriteRegistry(w io.Writer, handlers []Handler, cfg RegistryConfig) error {
	if cfg.Package == "" {
		return fmt.Errorf("registry package name is required")
	}
	if cfg.EndpointPackage == "" {
		cfg.EndpointPackage = DefaultEndpointPackage
	}

	// one import name per package, deduplicated by suffixing
	names := map[string]string{}
	used := map[string]bool{"extcore": true}
	var imports []string
	for _, h := range handlers {
		if h.Package == cfg.ImportPath {
			continue
		}
		if _, ok := names[h.Package]; ok {
			continue
		}
		name := h.PkgName
		for i := 2; used[name]; i++ {
			name = h.PkgName + strconv.Itoa(i)
		}
		used[name] = true
		names[h.Package] = name
		imports = append(imports, h.Package)
	}
	slices.Sort(imports)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by extcore registry. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", cfg.Package)
	fmt.Fprintf(&buf, "import (\n\textcore %q\n\n", cfg.EndpointPackage)
	for _, path := range imports {
		fmt.Fprintf(&buf, "\t%s %q\n", names[path], path)
	}
	fmt.Fprintf(&buf, ")\n\n")
	fmt.Fprintf(&buf, "// Endpoints returns every endpoint declared in the handler files.\n")
	fmt.Fprintf(&buf, "func Endpoints() []extcore.Endpoint {\n\treturn []extcore.Endpoint{\n")
	for _, h := range handlers {
		if name, ok := names[h.Package]; ok {
			fmt.Fprintf(&buf, "\t\t%s.%s,\n", name, h.Variable)
		} else {
			fmt.Fprintf(&buf, "\t\t%s,\n", h.Variable)
		}
	}
	fmt.Fprintf(&buf, "\t}\n}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format registry: %w", err)
	}
	_, err = w.Write(src)
	return err
}
