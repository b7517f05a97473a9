package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergedSignal_DecodeMissingFields(t *testing.T) {
	// Ingestion payloads routinely omit optional fields; they must decode
	// to zero values and an empty snippet slice, never error.
	raw := `{
		"key": "jup",
		"label": "Jupiter",
		"kind": "protocol",
		"first_seen": "2025-11-01T00:00:00Z",
		"onchain": {"tx_count": 120},
		"dev": {},
		"social": {"mentions_count": 4}
	}`

	var sig MergedSignal
	require.NoError(t, json.Unmarshal([]byte(raw), &sig))

	assert.Equal(t, "jup", sig.Key)
	assert.Equal(t, 120.0, sig.Onchain.TxCount)
	assert.Zero(t, sig.Onchain.TxCountBaseline)
	assert.Zero(t, sig.Dev.Commits)
	assert.Empty(t, sig.Social.Snippets)
	assert.True(t, sig.HasActivity())
}

func TestMergedSignal_HasActivity(t *testing.T) {
	tests := []struct {
		name   string
		signal MergedSignal
		want   bool
	}{
		{name: "no activity", signal: MergedSignal{}, want: false},
		{name: "onchain only", signal: MergedSignal{Onchain: OnchainSignal{TxCount: 1}}, want: true},
		{name: "dev only", signal: MergedSignal{Dev: DevSignal{Commits: 2}}, want: true},
		{name: "social only", signal: MergedSignal{Social: SocialSignal{MentionsCount: 3}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signal.HasActivity())
		})
	}
}

func TestScoredCandidate_TopFeatures(t *testing.T) {
	c := ScoredCandidate{
		Features: map[string]float64{
			FeatureTxCount:       3.2,
			FeatureUniqueWallets: -2.1,
			FeatureCommits:       0.3,
			FeatureMentionsDelta: 1.0,
		},
	}

	top := c.TopFeatures(2, 0.5)
	require.Len(t, top, 2)
	assert.Equal(t, FeatureTxCount, top[0])
	assert.Equal(t, FeatureUniqueWallets, top[1])

	// cutoff excludes weak features even when n allows more
	assert.Len(t, c.TopFeatures(10, 0.5), 3)
}
