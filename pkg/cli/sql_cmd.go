package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cubemap/internal/sqlgen"
)

func newSQLCmd(out io.Writer, opts *rootOptions) *cobra.Command {
	var (
		measures  []string
		drilldown []string
		cuts      []string
		limit     uint64
	)

	cmd := &cobra.Command{
		Use:   "sql <cube>",
		Short: "Generate aggregation SQL for a cube",
		Long:  "Plan a grouped SUM query over the cube's measures without executing it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.workspace()
			if err != nil {
				return err
			}

			req := sqlgen.AggregateRequest{
				Measures:  measures,
				Drilldown: drilldown,
				Locale:    opts.locale,
				Limit:     limit,
			}
			for _, cut := range cuts {
				ref, value, ok := strings.Cut(cut, "=")
				if !ok {
					return fmt.Errorf("cut %q must be ref=value", cut)
				}
				req.Cuts = append(req.Cuts, sqlgen.Cut{Ref: ref, Value: value})
			}

			plan, err := ws.ExplainAggregate(args[0], req)
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return printJSON(out, plan)
			}

			fmt.Fprintln(out, plan.SQL)
			for _, arg := range plan.Args {
				fmt.Fprintf(out, "-- arg: %v\n", arg)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&measures, "measure", nil, "Measure to aggregate (repeatable)")
	cmd.Flags().StringSliceVar(&drilldown, "drilldown", nil, "Attribute to group by (repeatable)")
	cmd.Flags().StringSliceVar(&cuts, "cut", nil, "Equality filter as ref=value (repeatable)")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "Row limit, 0 for none")
	return cmd
}
