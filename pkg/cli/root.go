// Package cli implements the cubemap command-line interface. It operates
// directly on model files, without a running server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cubemap/internal/domain"
	"cubemap/internal/mapper"
	"cubemap/internal/model"
	"cubemap/internal/service"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	models          string
	output          string
	schema          string
	dimensionPrefix string
	locale          string
	noSimplify      bool
}

func (o *rootOptions) mapperConfig() mapper.Config {
	return mapper.Config{
		Locale:                    o.locale,
		Schema:                    o.schema,
		DimensionPrefix:           o.dimensionPrefix,
		DisableFlatSimplification: o.noSimplify,
	}
}

// loadCubes reads cubes from the --models path, which may be a single YAML
// file or a directory of them.
func (o *rootOptions) loadCubes() ([]*domain.Cube, error) {
	if o.models == "" {
		return nil, fmt.Errorf("--models is required")
	}
	info, err := os.Stat(o.models)
	if err != nil {
		return nil, fmt.Errorf("models path: %w", err)
	}
	if info.IsDir() {
		return model.LoadDir(o.models)
	}
	return model.LoadFile(o.models)
}

func (o *rootOptions) workspace() (*service.Workspace, error) {
	cubes, err := o.loadCubes()
	if err != nil {
		return nil, err
	}
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no cubes found in %q", o.models)
	}
	return service.New(cubes, o.mapperConfig(), nil, discardLogger())
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "cubemap",
		Short:         "Cube model mapping and SQL generation",
		Long:          "Validate cube models, inspect logical-to-physical attribute mappings, and generate aggregation SQL.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.models, "models", "m", "", "Model YAML file or directory")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&opts.schema, "schema", "", "Default database schema")
	rootCmd.PersistentFlags().StringVar(&opts.dimensionPrefix, "dimension-prefix", "", "Prefix for convention-derived dimension tables")
	rootCmd.PersistentFlags().StringVar(&opts.locale, "locale", "", "Default locale for localized attributes")
	rootCmd.PersistentFlags().BoolVar(&opts.noSimplify, "no-simplify", false, "Keep dimension-qualified references for flat dimensions")

	rootCmd.AddCommand(newValidateCmd(out, opts))
	rootCmd.AddCommand(newAttributesCmd(out, opts))
	rootCmd.AddCommand(newSQLCmd(out, opts))
	rootCmd.AddCommand(newVersionCmd(out, opts))

	return rootCmd
}

func printJSON(out io.Writer, payload interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// row formatting for table output

func printRow(out io.Writer, cells ...string) {
	fmt.Fprintln(out, strings.Join(cells, "\t"))
}
