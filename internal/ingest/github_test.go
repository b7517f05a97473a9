package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/logger"
)

func newGitHubTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/jup-ag/jupiter-core" && r.URL.RawQuery == "":
			fmt.Fprint(w, `{"stargazers_count": 1000, "forks_count": 200, "pushed_at": "2026-08-28T00:00:00Z"}`)
		case strings.HasSuffix(r.URL.Path, "/commits"):
			since := r.URL.Query().Get("since")
			if strings.HasPrefix(since, "2026-08-15") {
				// Current window: two commits, one new author
				fmt.Fprint(w, `[
				  {"sha": "a1", "commit": {"author": {"name": "Ann", "date": "2026-08-20T00:00:00Z"}}, "author": {"login": "ann"}},
				  {"sha": "a2", "commit": {"author": {"name": "Bob", "date": "2026-08-21T00:00:00Z"}}, "author": {"login": "bob"}}
				]`)
			} else {
				// Baseline window: one commit by ann
				fmt.Fprint(w, `[
				  {"sha": "b1", "commit": {"author": {"name": "Ann", "date": "2026-08-05T00:00:00Z"}}, "author": {"login": "ann"}}
				]`)
			}
		case strings.HasSuffix(r.URL.Path, "/releases"):
			fmt.Fprint(w, `[
			  {"tag_name": "v2.0", "published_at": "2026-08-20T00:00:00Z", "prerelease": false},
			  {"tag_name": "v2.0-rc1", "published_at": "2026-08-18T00:00:00Z", "prerelease": true},
			  {"tag_name": "v1.9", "published_at": "2026-08-05T00:00:00Z", "prerelease": false}
			]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestDevIngest(t *testing.T) {
	server := newGitHubTestServer(t)
	defer server.Close()

	cfg := &config.Config{GitHub: config.GitHubConfig{Token: "test-token", BaseURL: server.URL}}
	ing := NewDevIngestor(cfg, nil, logger.NewNop())

	periodStart := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	entities := []TrackedEntity{{Key: "jupiter", Label: "Jupiter", GitHub: "jup-ag/jupiter-core"}}
	results := ing.Ingest(context.Background(), entities, periodStart, periodEnd)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	sig := results[0].Signal
	assert.Equal(t, 2.0, sig.Commits)
	assert.Equal(t, 1.0, sig.CommitsBaseline)
	assert.Equal(t, 1.0, sig.NewContributors, "bob is new, ann is not")
	assert.Equal(t, 1.0, sig.Releases, "prerelease excluded")
	assert.Equal(t, 1.0, sig.ReleasesBaseline)
	assert.Equal(t, 20.0, sig.StarsDelta, "2% of 1000 stars")
	assert.Equal(t, 1000, results[0].RepoStars)
}

func TestDevIngestSkipsEntitiesWithoutRepo(t *testing.T) {
	cfg := &config.Config{GitHub: config.GitHubConfig{BaseURL: "http://127.0.0.1:1"}}
	ing := NewDevIngestor(cfg, nil, logger.NewNop())

	entities := []TrackedEntity{{Key: "norepo", Label: "No Repo"}}
	results := ing.Ingest(context.Background(), entities, time.Now().Add(-time.Hour), time.Now())
	assert.Empty(t, results)
}

func TestDevIngestRecordsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := &config.Config{GitHub: config.GitHubConfig{Token: "t", BaseURL: server.URL}}
	ing := NewDevIngestor(cfg, nil, logger.NewNop())

	entities := []TrackedEntity{{Key: "gone", Label: "Gone", GitHub: "gone/gone"}}
	results := ing.Ingest(context.Background(), entities, time.Now().Add(-time.Hour), time.Now())
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestSplitRepo(t *testing.T) {
	owner, repo, ok := splitRepo("jup-ag/jupiter-core")
	assert.True(t, ok)
	assert.Equal(t, "jup-ag", owner)
	assert.Equal(t, "jupiter-core", repo)

	_, _, ok = splitRepo("noslash")
	assert.False(t, ok)
	_, _, ok = splitRepo("/leading")
	assert.False(t, ok)
	_, _, ok = splitRepo("trailing/")
	assert.False(t, ok)
}
