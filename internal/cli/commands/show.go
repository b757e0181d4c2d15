package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datalink/pkg/grid"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	var (
		search   []string
		negate   bool
		sortBy   string
		desc     bool
		intOrder bool
		columns  []string
	)

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Render a local JSON row file as a table",
		Long: `Load a JSON array of row objects and print it in the requested
format, optionally searching and sorting first.

Examples:
  datalink show data/orders.json
  datalink show data/orders.json --search status=open --sort total --desc
  datalink show data/orders.json -o csv --columns id,total`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			tbl, err := loadTableFile(args[0])
			if err != nil {
				return err
			}

			if len(search) > 0 {
				cond, err := buildCondition(tbl, search)
				if err != nil {
					return err
				}
				tbl, err = tbl.SearchRowsAsTable(cond, negate)
				if err != nil {
					return err
				}
			}

			if sortBy != "" {
				if desc {
					err = tbl.SortRowsDescending(sortBy, intOrder)
				} else {
					err = tbl.SortRowsAscending(sortBy, intOrder)
				}
				if err != nil {
					return err
				}
			}

			if len(columns) > 0 {
				if err := projectColumns(tbl, columns); err != nil {
					return err
				}
			}

			return renderGrid(cmd.OutOrStdout(), tbl, cfg.Output)
		},
	}

	cmd.Flags().StringArrayVarP(&search, "search", "s", nil, "Keep rows matching key=value (repeatable, ANDed)")
	cmd.Flags().BoolVar(&negate, "negate", false, "Invert the search: keep non-matching rows")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort rows by this column")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort in descending order")
	cmd.Flags().BoolVar(&intOrder, "int-order", false, "Compare the sort column as integers")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Only show these columns, in order")

	return cmd
}

// projectColumns narrows the table to the named columns in order.
func projectColumns(t *grid.Table, keep []string) error {
	kept := make(map[string]bool, len(keep))
	for _, c := range keep {
		kept[c] = true
	}
	var drop []string
	for _, c := range t.Columns() {
		if !kept[c] {
			drop = append(drop, c)
		}
	}
	if len(drop) > 0 {
		if err := t.RemoveColumns(drop); err != nil {
			return err
		}
	}
	return t.SetColumnOrder(keep)
}
