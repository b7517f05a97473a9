package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterlabs/hunter/pkg/logger"
)

const rawFixtureJSON = `{
  "metadata": {"generated": "2026-08-01"},
  "entities": [
    {"kind": "defi", "key": "jupiter", "label": "Jupiter", "first_seen": "2022-10-01T00:00:00Z"},
    {"kind": "infra", "key": "newproto", "label": "New Proto", "first_seen": "2026-07-15T00:00:00Z"}
  ],
  "signals": {
    "onchain": [
      {"entity_key": "jupiter", "tx_count": 300, "tx_count_baseline": 100, "unique_wallets": 50, "unique_wallets_baseline": 40}
    ],
    "dev": [
      {"entity_key": "newproto", "commits": 12, "commits_baseline": 2}
    ],
    "social": [
      {"entity_key": "jupiter", "mentions_count": 5, "mentions_count_baseline": 2,
       "snippets": [{"text": "Jupiter v7 launch", "classification": "announcement"}]}
    ]
  }
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, signalsFixture), []byte(content), 0o644))
	return dir
}

func TestFixtureIngestRawLayout(t *testing.T) {
	dir := writeFixture(t, rawFixtureJSON)
	ing := NewFixtureIngestor(dir, logger.NewNop())

	signals, err := ing.Ingest(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, signals, 2)

	jup := signals[0]
	assert.Equal(t, "jupiter", jup.Key)
	assert.Equal(t, "Jupiter", jup.Label)
	assert.Equal(t, 300.0, jup.Onchain.TxCount)
	assert.Equal(t, 100.0, jup.Onchain.TxCountBaseline)
	assert.Equal(t, 5.0, jup.Social.MentionsCount)
	require.Len(t, jup.Social.Snippets, 1)
	assert.Equal(t, "announcement", jup.Social.Snippets[0].Classification)
	// No dev record for jupiter: zeros
	assert.Equal(t, 0.0, jup.Dev.Commits)

	proto := signals[1]
	assert.Equal(t, "newproto", proto.Key)
	assert.Equal(t, 12.0, proto.Dev.Commits)
	assert.Equal(t, 0.0, proto.Onchain.TxCount)
	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), proto.FirstSeen)
}

func TestFixtureIngestPreMergedLayout(t *testing.T) {
	pre := `[
	  {"key": "drift", "label": "Drift", "kind": "defi", "first_seen": "2022-11-01T00:00:00Z",
	   "onchain": {"tx_count": 42}, "dev": {}, "social": {}}
	]`
	dir := writeFixture(t, pre)
	ing := NewFixtureIngestor(dir, logger.NewNop())

	signals, err := ing.Ingest(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "drift", signals[0].Key)
	assert.Equal(t, 42.0, signals[0].Onchain.TxCount)
}

func TestFixtureIngestMissingFile(t *testing.T) {
	ing := NewFixtureIngestor(t.TempDir(), logger.NewNop())

	_, err := ing.Ingest(context.Background(), time.Time{}, time.Time{})
	require.Error(t, err)
}

func TestFixtureIngestMalformed(t *testing.T) {
	dir := writeFixture(t, `{"entities": 12}`)
	ing := NewFixtureIngestor(dir, logger.NewNop())

	_, err := ing.Ingest(context.Background(), time.Time{}, time.Time{})
	require.Error(t, err)
}
