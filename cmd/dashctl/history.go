package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dashboard-gateway/internal/analysis"
)

var historyCmd = &cobra.Command{
	Use:   "history [analysis-id]",
	Short: "List past analyses, or show one result",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := apiClient()

		if len(args) == 1 {
			jc := analysis.NewClient(client, time.Second, 1)
			result, err := jc.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(&result)
			return nil
		}

		entries, err := client.AnalysisHistory(cmd.Context(), false)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("(no analyses)")
			return nil
		}
		for _, entry := range entries {
			request := entry.Request
			if request == "" {
				request = "(no request text)"
			}
			fmt.Printf("- %s  [%s]  %s\n", entry.ID, entry.Status, request)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
