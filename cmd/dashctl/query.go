package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dashboard-gateway/internal/tableview"
)

var (
	flagQueryTable string
	flagQueryRaw   bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a natural-language query (or raw SQL with --sql)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := apiClient()

		var rows []map[string]any
		if flagQueryRaw {
			result, err := client.ExecuteRawQuery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows = result.Rows
		} else {
			result, err := client.ProcessQuery(cmd.Context(), args[0], flagQueryTable)
			if err != nil {
				return err
			}
			if result.SQL != "" {
				fmt.Fprintf(os.Stderr, "SQL: %s\n", result.SQL)
			}
			rows = result.Rows
		}

		printRows(rows)
		return nil
	},
}

// printRows renders rows with the same column and cell formatting the
// dashboard uses.
func printRows(rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return
	}

	records := make([]tableview.Record, len(rows))
	for i, row := range rows {
		records[i] = tableview.Record(row)
	}
	cols := tableview.Columns(records, nil)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for i, col := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, tableview.FormatColumn(col))
	}
	fmt.Fprintln(w)
	for _, rec := range records {
		for i, col := range cols {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, tableview.FormatCell(col, rec[col]))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func init() {
	queryCmd.Flags().StringVar(&flagQueryTable, "table", "", "restrict the query to one table")
	queryCmd.Flags().BoolVar(&flagQueryRaw, "sql", false, "treat the argument as raw SQL")
	rootCmd.AddCommand(queryCmd)
}
