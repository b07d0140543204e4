package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newAttributesCmd(out io.Writer, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "attributes <cube>",
		Short: "List a cube's logical attributes and their physical columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.workspace()
			if err != nil {
				return err
			}

			attrs, err := ws.Attributes(args[0], opts.locale)
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return printJSON(out, map[string]interface{}{
					"cube":       args[0],
					"attributes": attrs,
				})
			}

			printRow(out, "REF", "PHYSICAL", "LOCALES")
			for _, attr := range attrs {
				printRow(out, attr.Ref, attr.Physical, strings.Join(attr.Locales, ","))
			}
			return nil
		},
	}
}
