package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/morloc-lang/morloc/internal/compiler"
	"github.com/morloc-lang/morloc/internal/config"
	"github.com/morloc-lang/morloc/internal/emit"
	"github.com/morloc-lang/morloc/internal/moduleio"
)

func init() {
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewConfigCommand())
}

// NewBuildCommand wires the full middle-end pipeline: load module files,
// resolve configuration, compile, and emit the nexus/pool sources, the
// same "parse inputs into one model, then generate" shape as
// cmd/initialize.go's NewInitCommand.
func NewBuildCommand() *cobra.Command {
	var outDir string

	buildCmd := &cobra.Command{
		Use:   "build <module-files...>",
		Short: "compile morloc modules into a nexus and one pool per backend language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(configFiles...)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			modules, err := moduleio.Load(args...)
			if err != nil {
				return fmt.Errorf("loading modules: %w", err)
			}

			arts, err := compiler.Compile(cfg, modules)
			if err != nil {
				return fmt.Errorf("compiling: %w", err)
			}

			report, err := emit.New().Write(context.Background(), outDir, arts)
			if err != nil {
				return fmt.Errorf("emitting: %w", err)
			}

			slog.Info("build complete", "nexus", report.Nexus, "pools", len(report.Pools), "subcommands", report.Subcommands)
			fmt.Fprintf(c.OutOrStdout(), "wrote nexus to %s\n", report.Nexus)
			for _, p := range report.Pools {
				fmt.Fprintf(c.OutOrStdout(), "wrote %s pool to %s (%d manifolds)\n", p.Lang, p.Path, p.ManifoldCount)
			}
			return nil
		},
	}

	buildCmd.Flags().StringVarP(&outDir, "output-directory", "o", ".", "directory to write the nexus and pool files to")
	return buildCmd
}

// NewConfigCommand inspects the resolved configuration without running the
// pipeline, for operators checking what a build would actually use.
func NewConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "show the resolved build configuration",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(configFiles...)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			fmt.Fprintf(c.OutOrStdout(), "library_root: %s\n", cfg.LibraryRoot)
			fmt.Fprintf(c.OutOrStdout(), "default_lang: %s\n", cfg.DefaultLang)
			fmt.Fprintln(c.OutOrStdout(), "executors:")
			for lang, ec := range cfg.Executors {
				fmt.Fprintf(c.OutOrStdout(), "  %s: %s %v\n", lang, ec.Command, ec.Args)
			}
			return nil
		},
	}
	return configCmd
}
