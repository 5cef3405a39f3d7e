package cmd

import (
	"fmt"

	"github.com/spigell/resume-evaluator/internal/rubric"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the scoring rubric version",
	Run: func(cmd *cobra.Command, _ []string) {
		catalog := rubric.Default()
		fmt.Printf("%s version: %s (rubric %s)\n", app, version, catalog.Version())

		if details, _ := cmd.Flags().GetBool("rubric"); details {
			for _, category := range catalog.Categories() {
				fmt.Printf("  %-40s %3.0f%%\n", category.Name, category.Weight)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("rubric", false, "also print the rubric categories and their weights")
}
