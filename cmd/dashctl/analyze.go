package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dashboard-gateway/internal/analysis"
)

var (
	flagAnalyzeQueryIDs []string
	flagAnalyzeInterval int
	flagAnalyzeAttempts int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <request>",
	Short: "Submit an analysis request and wait for the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := analysis.NewClient(apiClient(),
			time.Duration(flagAnalyzeInterval)*time.Second, flagAnalyzeAttempts)

		job, err := client.Submit(cmd.Context(), analysis.Request{
			Prompt:   args[0],
			QueryIDs: flagAnalyzeQueryIDs,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Submitted analysis %s, waiting...\n", job.ID)

		final := client.Poll(cmd.Context(), job, func(snapshot analysis.Job) {
			if snapshot.Status == analysis.StatusPending {
				fmt.Printf("  still running (check %d)\n", snapshot.Attempts)
			}
		})

		switch final.Status {
		case analysis.StatusCompleted:
			printResult(final.Result)
			return nil
		case analysis.StatusCancelled:
			return fmt.Errorf("analysis cancelled")
		default:
			return fmt.Errorf("analysis %s: %s", final.Status, final.ErrorMessage)
		}
	},
}

func printResult(result *analysis.Result) {
	if result == nil {
		fmt.Println("(no result)")
		return
	}
	if result.Error != "" {
		fmt.Println("Error:", result.Error)
		return
	}

	printSection("Summary", result.Summary)
	printSection("Insights", result.Insights)
	printSection("Findings", result.Findings)
	printSection("Trends", result.Trends)
	printSection("Recommendations", result.Recommendations)
	printSection("Anomalies", result.Anomalies)
	printSection("Correlations", result.Correlations)
	for _, extra := range result.Extra {
		printSection(extra.Title, extra.Items)
	}
	if meta := result.Metadata; meta != nil && meta.ProcessingTime != "" {
		fmt.Printf("\nProcessed in %s\n", meta.ProcessingTime)
	}
}

func printSection(title string, items []analysis.Item) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, item := range items {
		if item.Title != "" {
			fmt.Printf("  - %s: %s\n", item.Title, item.Description)
		} else {
			fmt.Printf("  - %s\n", item.Description)
		}
	}
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&flagAnalyzeQueryIDs, "query-id", nil, "scope the analysis to saved query ids")
	analyzeCmd.Flags().IntVar(&flagAnalyzeInterval, "interval", 2, "seconds between status checks")
	analyzeCmd.Flags().IntVar(&flagAnalyzeAttempts, "attempts", 30, "maximum status checks before giving up")
	rootCmd.AddCommand(analyzeCmd)
}
