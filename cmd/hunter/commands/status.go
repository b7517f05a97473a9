package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database health and the latest report",
	Long: `Checks database connectivity and prints the most recent report's
summary: period, status, and candidate/narrative counts.

Example:
  go run ./cmd/hunter status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	health, err := a.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	fmt.Printf("Database: healthy=%v (%dms, %d conns)\n",
		health.Healthy, health.ResponseTime.Milliseconds(), health.Stats.TotalConns)

	latest, err := a.repo.LatestReport(ctx)
	if err != nil {
		return fmt.Errorf("latest report: %w", err)
	}
	if latest == nil {
		fmt.Println("No reports yet. Run: go run ./cmd/hunter run")
		return nil
	}

	fmt.Printf("\nLatest report: #%d (%s)\n", latest.ID, latest.Status)
	fmt.Printf("  Period:     %s to %s\n",
		latest.PeriodStart.Format("2006-01-02"), latest.PeriodEnd.Format("2006-01-02"))
	fmt.Printf("  Created:    %s\n", latest.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Candidates: %d\n", latest.CandidateCount)
	fmt.Printf("  Narratives: %d\n", latest.NarrativeCount)

	return nil
}
