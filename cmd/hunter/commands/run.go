package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full pipeline cycle",
	Long: `Runs the complete narrative pipeline once: ingest signals for the
reporting period, score and cluster candidates, label narratives with
build ideas, analyze idea saturation, and persist the report.

In demo mode (default without credentials) signals come from
fixtures/demo_signals.json and labeling uses deterministic templates.

Example:
  go run ./cmd/hunter run
  go run ./cmd/hunter run --config hunter.yaml`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("=== Narrative Hunter ===")
	fmt.Printf("Mode: %s | Run ID: %s | Config: %s\n\n",
		modeName(a), a.runCfg.Meta.RunID, a.hash[:12])

	result, err := a.orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("Report #%d complete (%s)\n", result.ReportID, result.Duration.Round(time.Millisecond))
	fmt.Printf("Period: %s to %s\n",
		result.PeriodStart.Format("2006-01-02"), result.PeriodEnd.Format("2006-01-02"))
	fmt.Printf("Candidates: %d\n\n", len(result.Candidates))

	for i, n := range result.Narratives {
		fmt.Printf("%d. %s\n", i+1, n.Title)
		fmt.Printf("   momentum %.2f | novelty %.2f | saturation %.2f | %d members\n",
			n.Momentum, n.Novelty, n.Saturation, n.ClusterSize)
		for _, idea := range n.Ideas {
			fmt.Printf("   - %s [%s]\n", idea.Idea.Title, idea.Saturation.Level)
		}
	}

	return nil
}

func modeName(a *app) string {
	if a.cfg.DemoMode {
		return "demo"
	}
	return "live"
}
