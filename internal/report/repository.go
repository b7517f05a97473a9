package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hunterlabs/hunter/internal/contracts"
)

// Repository persists pipeline runs to Postgres. It is the only place that
// reads or writes the hunter.* tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a report repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the hunter schema and tables if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure report schema: %w", err)
	}
	return nil
}

// CreateReport inserts a new report row in processing status and returns its id.
func (r *Repository) CreateReport(ctx context.Context, meta contracts.ReportMeta) (int64, error) {
	query := `
		INSERT INTO hunter.reports (period_start, period_end, config_hash, mode, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		meta.PeriodStart, meta.PeriodEnd, meta.ConfigHash, meta.Mode, contracts.ReportProcessing,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create report: %w", err)
	}

	return id, nil
}

// SaveCandidates replaces the candidate set for a report.
func (r *Repository) SaveCandidates(ctx context.Context, reportID int64, candidates []contracts.ScoredCandidate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM hunter.candidates WHERE report_id = $1", reportID)
	if err != nil {
		return fmt.Errorf("failed to delete old candidates: %w", err)
	}

	query := `
		INSERT INTO hunter.candidates (
			report_id, entity_key, entity_label, entity_kind, features,
			momentum, novelty, quality, total_score, normalized_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, c := range candidates {
		featuresJSON, err := json.Marshal(c.Features)
		if err != nil {
			return fmt.Errorf("failed to marshal features: %w", err)
		}

		_, err = tx.Exec(ctx, query,
			reportID, c.Signal.Key, c.Signal.Label, c.Signal.Kind,
			featuresJSON, c.Momentum, c.Novelty, c.Quality, c.TotalScore, c.NormalizedScore,
		)
		if err != nil {
			return fmt.Errorf("failed to insert candidate %s: %w", c.Signal.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit candidates: %w", err)
	}

	return nil
}

// SaveNarrative appends one assembled narrative to a report.
func (r *Repository) SaveNarrative(ctx context.Context, reportID int64, narrative contracts.Narrative) error {
	evidenceJSON, err := json.Marshal(narrative.Evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}
	ideasJSON, err := json.Marshal(narrative.Ideas)
	if err != nil {
		return fmt.Errorf("failed to marshal ideas: %w", err)
	}

	query := `
		INSERT INTO hunter.narratives (
			report_id, title, summary, momentum, novelty, saturation,
			cluster_size, member_keys, evidence, ideas
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		reportID, narrative.Title, narrative.Summary,
		narrative.Momentum, narrative.Novelty, narrative.Saturation,
		narrative.ClusterSize, narrative.MemberKeys, evidenceJSON, ideasJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert narrative: %w", err)
	}

	return nil
}

// FinishReport moves a report to its terminal status and stamps finished_at.
func (r *Repository) FinishReport(ctx context.Context, reportID int64, status string) error {
	query := `
		UPDATE hunter.reports
		SET status = $2, finished_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, reportID, status)
	if err != nil {
		return fmt.Errorf("failed to finish report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %d not found", reportID)
	}

	return nil
}

// LatestReport returns the most recently created report, or nil when the
// reports table is empty.
func (r *Repository) LatestReport(ctx context.Context) (*contracts.ReportSummary, error) {
	query := `
		SELECT r.id, r.period_start, r.period_end, r.status, r.created_at,
			(SELECT COUNT(*) FROM hunter.narratives n WHERE n.report_id = r.id),
			(SELECT COUNT(*) FROM hunter.candidates c WHERE c.report_id = r.id)
		FROM hunter.reports r
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT 1
	`

	var s contracts.ReportSummary
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.ID, &s.PeriodStart, &s.PeriodEnd, &s.Status, &s.CreatedAt,
		&s.NarrativeCount, &s.CandidateCount,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	return &s, nil
}

// ReportNarratives returns the narratives saved for a report, oldest first.
func (r *Repository) ReportNarratives(ctx context.Context, reportID int64) ([]contracts.Narrative, error) {
	query := `
		SELECT title, summary, momentum, novelty, saturation,
			cluster_size, member_keys, evidence, ideas
		FROM hunter.narratives
		WHERE report_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query narratives: %w", err)
	}
	defer rows.Close()

	var narratives []contracts.Narrative
	for rows.Next() {
		var n contracts.Narrative
		var evidenceJSON, ideasJSON []byte

		err := rows.Scan(
			&n.Title, &n.Summary, &n.Momentum, &n.Novelty, &n.Saturation,
			&n.ClusterSize, &n.MemberKeys, &evidenceJSON, &ideasJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan narrative: %w", err)
		}

		if err := json.Unmarshal(evidenceJSON, &n.Evidence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence: %w", err)
		}
		if err := json.Unmarshal(ideasJSON, &n.Ideas); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ideas: %w", err)
		}

		narratives = append(narratives, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read narratives: %w", err)
	}

	return narratives, nil
}

// PruneReports deletes completed reports older than the retention window,
// keeping at least keep most recent rows. Candidate and narrative rows
// cascade with their report.
func (r *Repository) PruneReports(ctx context.Context, olderThan time.Duration, keep int) (int64, error) {
	query := `
		DELETE FROM hunter.reports
		WHERE created_at < NOW() - $1::interval
		AND id NOT IN (
			SELECT id FROM hunter.reports ORDER BY created_at DESC LIMIT $2
		)
	`

	interval := fmt.Sprintf("%d hours", int(olderThan.Hours()))
	tag, err := r.pool.Exec(ctx, query, interval, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}

	return tag.RowsAffected(), nil
}
