package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/logger"
)

func TestMergeKeysByEntity(t *testing.T) {
	entities := []TrackedEntity{
		{Key: "jupiter", Label: "Jupiter", Kind: "defi", FirstSeen: time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "drift", Label: "Drift Protocol", Kind: "defi"},
	}
	l := &LiveIngestor{entities: entities, logger: logger.NewNop()}

	merged := l.merge(
		[]OnchainResult{
			{EntityKey: "jupiter", Signal: contracts.OnchainSignal{TxCount: 300, TxCountBaseline: 100}},
		},
		[]DevResult{
			{EntityKey: "drift", Signal: contracts.DevSignal{Commits: 9}},
			{EntityKey: "jupiter", Err: assert.AnError},
		},
		[]SocialResult{
			{EntityKey: "jupiter", Signal: contracts.SocialSignal{MentionsCount: 4}},
		},
	)
	require.Len(t, merged, 2)

	jup := merged[0]
	assert.Equal(t, "jupiter", jup.Key)
	assert.Equal(t, 300.0, jup.Onchain.TxCount)
	assert.Equal(t, 4.0, jup.Social.MentionsCount)
	// Failed dev result contributes zeros
	assert.Equal(t, 0.0, jup.Dev.Commits)
	assert.Equal(t, entities[0].FirstSeen, jup.FirstSeen)

	drift := merged[1]
	assert.Equal(t, 9.0, drift.Dev.Commits)
	assert.Equal(t, 0.0, drift.Onchain.TxCount)
}

func TestMergeAppliesBaselineDefaults(t *testing.T) {
	l := &LiveIngestor{
		entities: []TrackedEntity{{Key: "orca", Label: "Orca"}},
		logger:   logger.NewNop(),
	}

	merged := l.merge(nil, nil, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, defaultNewWalletShareBaseline, merged[0].Onchain.NewWalletShareBaseline)
	assert.Equal(t, defaultRetentionBaseline, merged[0].Onchain.Retention7DBaseline)
}

func TestMergeCapsSnippets(t *testing.T) {
	snippets := make([]contracts.Snippet, 15)
	for i := range snippets {
		snippets[i] = contracts.Snippet{Text: "mention"}
	}

	l := &LiveIngestor{
		entities: []TrackedEntity{{Key: "pyth", Label: "Pyth"}},
		logger:   logger.NewNop(),
	}
	merged := l.merge(nil, nil, []SocialResult{
		{EntityKey: "pyth", Signal: contracts.SocialSignal{MentionsCount: 15, Snippets: snippets}},
	})
	require.Len(t, merged, 1)
	assert.Len(t, merged[0].Social.Snippets, maxMergedSnippets)
}
