package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gradecore",
	Short: "Provisional-then-detailed scoring pipeline",
	Long:  "Gradecore — two-pass grading engine for language submissions: a fast provisional score on submit, reconciled against an asynchronous detailed grade.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides GRADECORE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides GRADECORE_CONFIG env var)")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(speechCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(submissionCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
