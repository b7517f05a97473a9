package contracts

import "time"

// Report statuses as persisted by the sink.
const (
	ReportProcessing = "processing"
	ReportComplete   = "complete"
	ReportFailed     = "failed"
)

// ReportMeta identifies one pipeline run's output record.
type ReportMeta struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	ConfigHash  string    `json:"config_hash"`
	Mode        string    `json:"mode"` // demo | live
}

// ReportSummary is the compact view returned by status queries.
type ReportSummary struct {
	ID             int64     `json:"id"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	Status         string    `json:"status"`
	NarrativeCount int       `json:"narrative_count"`
	CandidateCount int       `json:"candidate_count"`
	CreatedAt      time.Time `json:"created_at"`
}
