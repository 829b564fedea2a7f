// Package cmd wires the mathsprint CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mathsprint/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathsprint",
	Short: "AI math quiz service for primary school students",
	Long:  "Mathsprint generates primary-school math word problems with an LLM,\njudges submitted answers, and serves both over a small HTTP API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHSPRINT_DB env var)")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose console logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MATHSPRINT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
