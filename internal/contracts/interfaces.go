package contracts

import (
	"context"
	"time"
)

// SignalIngestor supplies the merged signal set for a reporting period.
// Implementations may hit live APIs or read fixtures; per-source failures
// degrade to empty results rather than failing the whole set.
type SignalIngestor interface {
	Ingest(ctx context.Context, periodStart, periodEnd time.Time) ([]MergedSignal, error)
}

// Labeler turns a cluster's member documents into a narrative label with
// build ideas, then expands ideas into action packs. The pipeline always has
// a deterministic implementation available, so labeling never requires
// network access.
type Labeler interface {
	LabelNarrative(ctx context.Context, clusterDocs []string) (NarrativeLabel, []Idea, error)
	ActionPacks(ctx context.Context, ideas []Idea, narrativeTitle string) ([]ActionPack, error)
}

// CorpusLoader provides the static project corpus and its parallel
// embedding matrix for saturation comparison.
type CorpusLoader interface {
	Load(ctx context.Context) ([]CorpusProject, [][]float64, error)
}

// ReportSink persists a pipeline run's output. Records are independent and
// serializable; the orchestrator never hands the sink core-internal pointers.
type ReportSink interface {
	CreateReport(ctx context.Context, meta ReportMeta) (int64, error)
	SaveCandidates(ctx context.Context, reportID int64, candidates []ScoredCandidate) error
	SaveNarrative(ctx context.Context, reportID int64, narrative Narrative) error
	FinishReport(ctx context.Context, reportID int64, status string) error
	LatestReport(ctx context.Context) (*ReportSummary, error)
}
