package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tale-server",
	Short: "Tale Server - interactive fairy-tale narration",
	Long: `Tale Server turns classic fairy tales into interactive stories.

It ingests tale texts into a vector store, retrieves grounding context
for each player turn, and generates narrated scenes with branching
choices through a configurable LLM backend.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
