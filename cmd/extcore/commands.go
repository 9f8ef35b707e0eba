package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bjaus/extcore"
	"github.com/bjaus/extcore/apidoc"
)

type generatorFlags struct {
	root     string
	handlers string
	suffix   string
	strict   bool
	logLevel string
}

func (f *generatorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", ".", "project (module) root")
	cmd.Flags().StringVar(&f.handlers, "handlers", ".", "directory scanned for handler files, relative to --root")
	cmd.Flags().StringVar(&f.suffix, "suffix", "handlers.go", "handler file name suffix")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on package load errors")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level")
}

func (f *generatorFlags) config(cmd *cobra.Command) (apidoc.GeneratorConfig, error) {
	level, err := extcore.ParseLevel(f.logLevel)
	if err != nil {
		return apidoc.GeneratorConfig{}, err
	}
	return apidoc.GeneratorConfig{
		ProjectRoot: f.root,
		HandlerPath: f.handlers,
		FileSuffix:  f.suffix,
		Strict:      f.strict,
		Logger:      slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})),
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "extcore",
		Short:        "API documentation and registry generator for extcore handlers",
		SilenceUsage: true,
	}
	root.AddCommand(newDocsCmd(), newRegistryCmd())
	return root
}

func newDocsCmd() *cobra.Command {
	var (
		flags  generatorFlags
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Write paths and definitions documents for the handler files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.config(cmd)
			if err != nil {
				return err
			}
			cfg.DocPath = out
			cfg.Format = format

			gen, err := apidoc.NewDocGenerator(cfg)
			if err != nil {
				return err
			}
			res, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "documented %d handlers on %d paths\n", len(res.Handlers), len(res.Paths))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", "docs", "output directory, relative to --root (removed first)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

func newRegistryCmd() *cobra.Command {
	var (
		flags      generatorFlags
		pkg        string
		importPath string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Write a Go file listing every endpoint of the handler files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.config(cmd)
			if err != nil {
				return err
			}
			gen, err := apidoc.NewDocGenerator(cfg)
			if err != nil {
				return err
			}
			res, err := gen.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := apidoc.WriteRegistry(&buf, res.Handlers, apidoc.RegistryConfig{
				Package:    pkg,
				ImportPath: importPath,
			}); err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if !filepath.IsAbs(out) {
				out = filepath.Join(flags.root, out)
			}
			return os.WriteFile(out, buf.Bytes(), 0o644)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&pkg, "package", "main", "package clause of the generated file")
	cmd.Flags().StringVar(&importPath, "import-path", "", "import path of the generated file's package")
	cmd.Flags().StringVar(&out, "out", "-", "output file, relative to --root; - for stdout")
	return cmd
}
