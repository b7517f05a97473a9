package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	runConfigFile string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hunter",
	Short: "Narrative Hunter - Solana ecosystem narrative detection",
	Long: `Narrative Hunter CLI

Scores on-chain, developer, and social signals across tracked Solana
protocols, clusters the leaders into narratives, and generates build
ideas with saturation analysis for each one.

Usage:
  go run ./cmd/hunter [command]

Examples:
  go run ./cmd/hunter run
  go run ./cmd/hunter run --config hunter.yaml
  go run ./cmd/hunter schedule start
  go run ./cmd/hunter corpus build
  go run ./cmd/hunter status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&runConfigFile, "config", "", "run config YAML (defaults built in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
