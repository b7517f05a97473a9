package jobs

import (
	"context"
	"time"

	"github.com/hunterlabs/hunter/internal/report"
	"github.com/hunterlabs/hunter/pkg/logger"
)

// ReportPruneJob deletes reports past the retention window. The most recent
// reports are always kept so status queries never come back empty.
type ReportPruneJob struct {
	repo      *report.Repository
	retention time.Duration
	keep      int
	logger    *logger.Logger
}

// NewReportPruneJob creates a new report pruning job.
func NewReportPruneJob(repo *report.Repository, log *logger.Logger) *ReportPruneJob {
	return &ReportPruneJob{
		repo:      repo,
		retention: 180 * 24 * time.Hour,
		keep:      12,
		logger:    log,
	}
}

// Name returns the job name.
func (j *ReportPruneJob) Name() string {
	return "report_prune"
}

// Schedule returns the cron schedule (3 AM UTC on Sundays).
func (j *ReportPruneJob) Schedule() string {
	return "0 0 3 * * SUN"
}

// Run executes the prune.
func (j *ReportPruneJob) Run(ctx context.Context) error {
	removed, err := j.repo.PruneReports(ctx, j.retention, j.keep)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Old reports pruned")
	}

	return nil
}
