package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV file as a new table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if strings.ToLower(filepath.Ext(path)) != ".csv" {
			return fmt.Errorf("only .csv files are accepted")
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := apiClient().UploadFile(cmd.Context(), filepath.Base(path), f)
		if err != nil {
			return err
		}
		if result.TableName != "" {
			fmt.Printf("Uploaded as table %q (%d rows).\n", result.TableName, result.RowCount)
		} else {
			fmt.Println("Upload complete.")
		}
		return nil
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List uploaded tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := apiClient().Tables(cmd.Context())
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			fmt.Println("(no tables)")
			return nil
		}
		for _, tbl := range tables {
			fmt.Printf("- %s (%d rows)\n", tbl.Name, tbl.RowCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd, tablesCmd)
}
