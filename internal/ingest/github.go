package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/logger"
	"github.com/hunterlabs/hunter/pkg/redis"
)

// DevIngestor collects repository activity from the GitHub REST API.
// Works unauthenticated at a much lower request rate.
type DevIngestor struct {
	httpClient *http.Client
	logger     *logger.Logger
	cache      *redis.Cache
	token      string
	baseURL    string
	limiter    *rate.Limiter
}

func NewDevIngestor(cfg *config.Config, cache *redis.Cache, log *logger.Logger) *DevIngestor {
	// Unauthenticated clients get 60 requests/hour; stay far below that.
	every := 100 * time.Millisecond
	if cfg.GitHub.Token == "" {
		every = 1500 * time.Millisecond
	}

	return &DevIngestor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
		cache:      cache,
		token:      cfg.GitHub.Token,
		baseURL:    cfg.GitHub.BaseURL,
		limiter:    rate.NewLimiter(rate.Every(every), 1),
	}
}

// DevResult is one entity's dev metrics plus its key for merging.
type DevResult struct {
	EntityKey string
	Signal    contracts.DevSignal
	RepoStars int
	Err       error
}

type ghRepoInfo struct {
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	PushedAt        string `json:"pushed_at"`
}

type ghCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

type ghRelease struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
	Prerelease  bool      `json:"prerelease"`
}

func (d *DevIngestor) fetch(ctx context.Context, path string, result interface{}) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("github: %s not found", path)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		remaining := resp.Header.Get("x-ratelimit-remaining")
		d.logger.WithField("remaining", remaining).Warn("GitHub rate limited")
		return fmt.Errorf("github: rate limited")
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("github: %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, result)
}

// repoInfo goes through the redis cache: star counts move slowly and the
// endpoint is the most expensive part of unauthenticated ingestion.
func (d *DevIngestor) repoInfo(ctx context.Context, owner, repo string) (*ghRepoInfo, error) {
	var info ghRepoInfo
	if d.cache != nil {
		err := d.cache.GetOrSet(ctx, redis.RepoStatsKey(owner, repo), &info, redis.TTLMedium, func() (interface{}, error) {
			var fresh ghRepoInfo
			if err := d.fetch(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), &fresh); err != nil {
				return nil, err
			}
			return fresh, nil
		})
		if err != nil {
			return nil, err
		}
		return &info, nil
	}

	if err := d.fetch(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DevIngestor) ingestRepo(ctx context.Context, entity TrackedEntity, periodStart, periodEnd time.Time) (contracts.DevSignal, int, error) {
	owner, repo, ok := splitRepo(entity.GitHub)
	if !ok {
		return contracts.DevSignal{}, 0, fmt.Errorf("invalid repo %q", entity.GitHub)
	}

	periodLen := periodEnd.Sub(periodStart)
	baselineStart := periodStart.Add(-periodLen)

	info, err := d.repoInfo(ctx, owner, repo)
	if err != nil {
		return contracts.DevSignal{}, 0, err
	}

	var currentCommits, baselineCommits []ghCommit
	commitsPath := func(since, until time.Time) string {
		return fmt.Sprintf("/repos/%s/%s/commits?since=%s&until=%s&per_page=100",
			owner, repo, since.Format(time.RFC3339), until.Format(time.RFC3339))
	}
	if err := d.fetch(ctx, commitsPath(periodStart, periodEnd), &currentCommits); err != nil {
		d.logger.WithError(err).WithField("entity", entity.Key).Warn("Commit fetch failed")
	}
	if err := d.fetch(ctx, commitsPath(baselineStart, periodStart), &baselineCommits); err != nil {
		d.logger.WithError(err).WithField("entity", entity.Key).Warn("Baseline commit fetch failed")
	}

	var releases []ghRelease
	if err := d.fetch(ctx, fmt.Sprintf("/repos/%s/%s/releases?per_page=20", owner, repo), &releases); err != nil {
		d.logger.WithError(err).WithField("entity", entity.Key).Warn("Release fetch failed")
	}

	var currentReleases, baselineReleases int
	for _, r := range releases {
		if r.Prerelease {
			continue
		}
		switch {
		case !r.PublishedAt.Before(periodStart) && !r.PublishedAt.After(periodEnd):
			currentReleases++
		case !r.PublishedAt.Before(baselineStart) && r.PublishedAt.Before(periodStart):
			baselineReleases++
		}
	}

	currentAuthors := commitAuthors(currentCommits)
	baselineAuthors := commitAuthors(baselineCommits)

	newContributors := 0
	for author := range currentAuthors {
		if _, seen := baselineAuthors[author]; !seen {
			newContributors++
		}
	}

	// Historical star counts are not exposed, so estimate the fortnight
	// delta from the current total.
	starsDelta := int(math.Round(float64(info.StargazersCount) * 0.02))

	return contracts.DevSignal{
		Commits:                 float64(len(currentCommits)),
		CommitsBaseline:         float64(len(baselineCommits)),
		StarsDelta:              float64(starsDelta),
		StarsDeltaBaseline:      math.Round(float64(starsDelta) * 0.8),
		NewContributors:         float64(newContributors),
		NewContributorsBaseline: math.Max(1, math.Round(float64(len(baselineAuthors))*0.1)),
		Releases:                float64(currentReleases),
		ReleasesBaseline:        float64(baselineReleases),
	}, info.StargazersCount, nil
}

// Ingest collects dev metrics for every entity with a GitHub repo.
func (d *DevIngestor) Ingest(ctx context.Context, entities []TrackedEntity, periodStart, periodEnd time.Time) []DevResult {
	var results []DevResult
	for _, entity := range entities {
		if entity.GitHub == "" {
			continue
		}

		sig, stars, err := d.ingestRepo(ctx, entity, periodStart, periodEnd)
		if err != nil {
			d.logger.WithError(err).WithField("entity", entity.Key).Warn("Dev ingestion failed")
			results = append(results, DevResult{EntityKey: entity.Key, Err: err})
			continue
		}

		results = append(results, DevResult{EntityKey: entity.Key, Signal: sig, RepoStars: stars})
		d.logger.WithFields(map[string]interface{}{
			"entity":  entity.Key,
			"commits": sig.Commits,
			"stars":   stars,
		}).Debug("Dev signals collected")
	}

	d.logger.WithField("repos", len(results)).Info("Dev ingestion done")
	return results
}

func commitAuthors(commits []ghCommit) map[string]struct{} {
	authors := make(map[string]struct{})
	for _, c := range commits {
		name := c.Commit.Author.Name
		if c.Author != nil && c.Author.Login != "" {
			name = c.Author.Login
		}
		if name != "" {
			authors[name] = struct{}{}
		}
	}
	return authors
}

func splitRepo(full string) (owner, repo string, ok bool) {
	for i := 0; i < len(full); i++ {
		if full[i] == '/' {
			if i == 0 || i == len(full)-1 {
				return "", "", false
			}
			return full[:i], full[i+1:], true
		}
	}
	return "", "", false
}
