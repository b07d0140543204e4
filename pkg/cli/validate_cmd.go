package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newValidateCmd(out io.Writer, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate cube models",
		Long:  "Load the cube models and build a mapper for each cube, reporting any model errors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := opts.workspace()
			if err != nil {
				return err
			}

			infos := ws.ListCubes()
			if opts.output == "json" {
				return printJSON(out, map[string]interface{}{
					"valid": true,
					"cubes": infos,
				})
			}

			for _, info := range infos {
				fmt.Fprintf(out, "cube %q: %d measures, %d dimensions\n",
					info.Name, len(info.Measures), len(info.Dimensions))
			}
			fmt.Fprintf(out, "OK: %d cubes valid\n", len(infos))
			return nil
		},
	}
}
