package apidoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultEndpointPackage is the import path of the package declaring
// HTTPEndpoint.
const DefaultEndpointPackage = "github.com/bjaus/extcore"

// GeneratorConfig configures a DocGenerator.
type GeneratorConfig struct {
	ProjectRoot string // module root; default: working directory
	HandlerPath string // scanned recursively; relative to ProjectRoot
	DocPath     string // output directory; relative to ProjectRoot; removed first
	FileSuffix  string // default: "handlers.go"
	Format      string // json (default) or yaml
	// Strict turns package load errors into a failure instead of warnings.
	Strict bool

	EndpointPackage string // default: DefaultEndpointPackage
	Logger          *slog.Logger
}

// Result is what a generation run found and wrote.
type Result struct {
	Handlers    []Handler
	Paths       Paths
	Definitions Definitions
}

// DocGenerator statically analyses handler files and writes paths and
// definitions documents.
type DocGenerator struct {
	cfg GeneratorConfig
}

// NewDocGenerator applies the defaults to cfg.
func NewDocGenerator(cfg GeneratorConfig) (*DocGenerator, error) {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg.ProjectRoot = wd
	}
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	cfg.ProjectRoot = root
	cfg.HandlerPath = resolvePath(root, cfg.HandlerPath)
	if cfg.DocPath != "" {
		cfg.DocPath = resolvePath(root, cfg.DocPath)
	}

	if cfg.FileSuffix == "" {
		cfg.FileSuffix = "handlers.go"
	}
	switch cfg.Format {
	case "":
		cfg.Format = "json"
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown format %q", cfg.Format)
	}
	if cfg.EndpointPackage == "" {
		cfg.EndpointPackage = DefaultEndpointPackage
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &DocGenerator{cfg: cfg}, nil
}

func resolvePath(root, path string) string {
	if path == "" {
		return root
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Generate runs the pipeline and writes the documents to DocPath. With an
// empty DocPath nothing is written.
func (g *DocGenerator) Generate(ctx context.Context) (*Result, error) {
	if g.cfg.DocPath != "" {
		if err := os.RemoveAll(g.cfg.DocPath); err != nil {
			return nil, fmt.Errorf("remove %s: %w", g.cfg.DocPath, err)
		}
	}

	res, err := g.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	if g.cfg.DocPath == "" {
		return res, nil
	}
	if err := os.MkdirAll(g.cfg.DocPath, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", g.cfg.DocPath, err)
	}
	if err := g.writeDoc("paths", res.Paths); err != nil {
		return nil, err
	}
	if err := g.writeDoc("definitions", res.Definitions); err != nil {
		return nil, err
	}

	g.cfg.Logger.Info("api documentation written",
		slog.String("dir", g.cfg.DocPath),
		slog.Int("handlers", len(res.Handlers)),
		slog.Int("paths", len(res.Paths)),
		slog.Int("definitions", len(res.Definitions)),
	)
	return res, nil
}

// Analyze finds the handlers and builds the documents without writing
// anything.
func (g *DocGenerator) Analyze(ctx context.Context) (*Result, error) {
	files, err := findHandlerFiles(g.cfg.HandlerPath, g.cfg.FileSuffix)
	if err != nil {
		return nil, err
	}

	sources, loadErrs, err := loadPackages(ctx, g.cfg.ProjectRoot, files)
	if err != nil {
		return nil, err
	}
	if err := reportLoadErrors(loadErrs, g.cfg.Strict, g.cfg.Logger); err != nil {
		return nil, err
	}

	handlers := loadExportedHandlers(sources, g.cfg.EndpointPackage, g.cfg.Logger)

	builder := newSchemaBuilder(g.cfg.EndpointPackage, g.cfg.Logger)
	parseTypes(builder, sources)
	schemas := correlateTypeArguments(builder, handlers)
	flattenTypeArguments(builder.defs)

	paths := buildPaths(handlers, schemas, builder.defs)
	return &Result{
		Handlers:    handlers,
		Paths:       paths,
		Definitions: referencedDefinitions(paths, builder.defs),
	}, nil
}

// parseTypes defines every exported, non-generic type declared in a
// handler file.
func parseTypes(b *schemaBuilder, sources []sourceFile) {
	for _, src := range sources {
		for _, decl := range src.syntax.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || !ts.Name.IsExported() || ts.TypeParams != nil {
					continue
				}
				if obj, ok := src.pkg.TypesInfo.Defs[ts.Name].(*types.TypeName); ok {
					b.define(obj)
				}
			}
		}
	}
}

// correlateTypeArguments builds the schemas of each handler's type
// arguments, keyed by handler UUID.
func correlateTypeArguments(b *schemaBuilder, handlers []Handler) map[string]handlerSchemas {
	out := make(map[string]handlerSchemas, len(handlers))
	for _, h := range handlers {
		out[h.UUID] = handlerSchemas{
			Returned:    b.schemaFor(h.typeArgs[argReturned]),
			RequestBody: b.schemaFor(h.typeArgs[argBody]),
			URLParams:   b.schemaFor(h.typeArgs[argParams]),
			QueryParams: b.schemaFor(h.typeArgs[argQuery]),
		}
	}
	return out
}

func (g *DocGenerator) writeDoc(name string, v any) error {
	path := filepath.Join(g.cfg.DocPath, name+"."+g.cfg.Format)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = encodeDoc(f, g.cfg.Format, v)
	return errors.Join(err, f.Close())
}

func encodeDoc(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
