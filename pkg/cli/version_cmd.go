package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newVersionCmd(out io.Writer, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output == "json" {
				return printJSON(out, map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			fmt.Fprintf(out, "cubemap %s (%s)\n", version, commit)
			return nil
		},
	}
}
