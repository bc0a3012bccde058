package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagCleanupYes bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all uploaded tables and saved data on the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagCleanupYes {
			return fmt.Errorf("cleanup removes every table and saved query; re-run with --yes to confirm")
		}
		if err := apiClient().Cleanup(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Backend data cleaned up.")
		return nil
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&flagCleanupYes, "yes", false, "confirm the cleanup")
	rootCmd.AddCommand(cleanupCmd)
}
