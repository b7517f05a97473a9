package jobs

import (
	"context"
	"fmt"

	"github.com/hunterlabs/hunter/internal/pipeline"
	"github.com/hunterlabs/hunter/pkg/logger"
)

// ReportJob runs the full narrative pipeline on the fortnight cadence.
type ReportJob struct {
	orchestrator *pipeline.Orchestrator
	logger       *logger.Logger
}

// NewReportJob creates a new fortnight report job.
func NewReportJob(orchestrator *pipeline.Orchestrator, log *logger.Logger) *ReportJob {
	return &ReportJob{
		orchestrator: orchestrator,
		logger:       log,
	}
}

// Name returns the job name.
func (j *ReportJob) Name() string {
	return "fortnight_report"
}

// Schedule returns the cron schedule (6 AM UTC on the 1st and 15th).
func (j *ReportJob) Schedule() string {
	return "0 0 6 1,15 * *"
}

// Run executes one pipeline run.
func (j *ReportJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled report run")

	result, err := j.orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"report_id":  result.ReportID,
		"narratives": len(result.Narratives),
	}).Info("Scheduled report completed")

	return nil
}
