package report

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterlabs/hunter/internal/contracts"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func sampleCandidate(key string, score float64) contracts.ScoredCandidate {
	return contracts.ScoredCandidate{
		Signal: contracts.MergedSignal{
			Key:       key,
			Label:     "Sample " + key,
			Kind:      "protocol",
			FirstSeen: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		},
		Features: map[string]float64{
			contracts.FeatureTxCount: 1.2,
			contracts.FeatureCommits: -0.4,
		},
		Momentum:        0.8,
		Novelty:         1.1,
		Quality:         0.5,
		TotalScore:      score,
		NormalizedScore: score / 2,
	}
}

func TestReportLifecycle(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))

	meta := contracts.ReportMeta{
		PeriodStart: time.Now().UTC().AddDate(0, 0, -14),
		PeriodEnd:   time.Now().UTC(),
		ConfigHash:  "deadbeef",
		Mode:        "demo",
	}

	id, err := repo.CreateReport(ctx, meta)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	candidates := []contracts.ScoredCandidate{
		sampleCandidate("alpha", 1.4),
		sampleCandidate("beta", 0.9),
	}
	require.NoError(t, repo.SaveCandidates(ctx, id, candidates))

	// Saving again replaces rather than duplicates.
	require.NoError(t, repo.SaveCandidates(ctx, id, candidates[:1]))

	narrative := contracts.Narrative{
		Title:       "Sample Narrative",
		Summary:     "Two protocols moving together.",
		Momentum:    0.7,
		Novelty:     0.5,
		Saturation:  0.3,
		ClusterSize: 2,
		MemberKeys:  []string{"alpha", "beta"},
		Evidence: []contracts.Evidence{
			{Type: "onchain", Title: "tx spike", Metrics: map[string]float64{"z_tx_count": 1.2}},
		},
		Ideas: []contracts.ScoredIdea{
			{
				Idea:       contracts.Idea{Title: "Alpha SDK", Pitch: "typed client"},
				Saturation: contracts.SaturationResult{Level: contracts.SaturationLow, Score: 0.2},
			},
		},
	}
	require.NoError(t, repo.SaveNarrative(ctx, id, narrative))

	require.NoError(t, repo.FinishReport(ctx, id, contracts.ReportComplete))

	latest, err := repo.LatestReport(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id, latest.ID)
	assert.Equal(t, contracts.ReportComplete, latest.Status)
	assert.Equal(t, 1, latest.NarrativeCount)
	assert.Equal(t, 1, latest.CandidateCount)

	saved, err := repo.ReportNarratives(ctx, id)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Sample Narrative", saved[0].Title)
	assert.Equal(t, []string{"alpha", "beta"}, saved[0].MemberKeys)
	require.Len(t, saved[0].Ideas, 1)
	assert.Equal(t, contracts.SaturationLow, saved[0].Ideas[0].Saturation.Level)
}

func TestFinishReportUnknownID(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))

	err := repo.FinishReport(ctx, -1, contracts.ReportFailed)
	assert.Error(t, err)
}
