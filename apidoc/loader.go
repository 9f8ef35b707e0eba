package apidoc

import (
	"context"
	"fmt"
	"go/ast"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sapcc/go-bits/errext"
	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports

// HandlerFile is a source file holding endpoint declarations.
type HandlerFile struct {
	Name string // base name
	Dir  string // absolute directory
}

// Path returns the absolute file path.
func (f HandlerFile) Path() string { return filepath.Join(f.Dir, f.Name) }

// findHandlerFiles lists the files under dir whose name ends with suffix.
// Test files are skipped. The result is in lexical order.
func findHandlerFiles(dir, suffix string) ([]HandlerFile, error) {
	var files []HandlerFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "testdata" || d.Name() == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, suffix) || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		abs, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return err
		}
		files = append(files, HandlerFile{Name: name, Dir: abs})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find handler files in %s: %w", dir, err)
	}
	return files, nil
}

// sourceFile is a parsed handler file with the package it belongs to.
type sourceFile struct {
	HandlerFile
	syntax *ast.File
	pkg    *packages.Package
}

// loadPackages type-checks the packages containing files. Package errors
// are returned as an ErrorSet; the caller decides whether they are fatal.
func loadPackages(ctx context.Context, root string, files []HandlerFile) ([]sourceFile, errext.ErrorSet, error) {
	var dirs []string
	for _, f := range files {
		if !slices.Contains(dirs, f.Dir) {
			dirs = append(dirs, f.Dir)
		}
	}
	if len(dirs) == 0 {
		return nil, nil, nil
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     root,
		Tests:   false,
	}
	pkgs, err := packages.Load(cfg, dirs...)
	if err != nil {
		return nil, nil, fmt.Errorf("load packages: %w", err)
	}

	var errs errext.ErrorSet
	byPath := map[string]sourceFile{}
	for _, pkg := range pkgs {
		for _, pkgErr := range pkg.Errors {
			errs.Addf("%s: %s", pkg.PkgPath, pkgErr.Error())
		}
		for i, syntax := range pkg.Syntax {
			if i >= len(pkg.CompiledGoFiles) {
				break
			}
			byPath[pkg.CompiledGoFiles[i]] = sourceFile{syntax: syntax, pkg: pkg}
		}
	}

	out := make([]sourceFile, 0, len(files))
	for _, f := range files {
		sf, ok := byPath[f.Path()]
		if !ok {
			errs.Addf("%s: not part of any loaded package", f.Path())
			continue
		}
		sf.HandlerFile = f
		out = append(out, sf)
	}
	return out, errs, nil
}

// reportLoadErrors logs errs, or returns them joined in strict mode.
func reportLoadErrors(errs errext.ErrorSet, strict bool, logger *slog.Logger) error {
	if errs.IsEmpty() {
		return nil
	}
	if strict {
		return errs.JoinedError("\n")
	}
	for _, err := range errs {
		logger.Warn("unable to load handler source", slog.String("err", err.Error()))
	}
	return nil
}
