package contracts

// Feature keys produced by the scorer. Exactly these eleven appear in
// ScoredCandidate.Features.
const (
	FeatureTxCount         = "z_tx_count"
	FeatureUniqueWallets   = "z_unique_wallets"
	FeatureNewWalletShare  = "z_new_wallet_share"
	FeatureRetention       = "z_retention"
	FeatureCommits         = "z_commits"
	FeatureStarsDelta      = "z_stars_delta"
	FeatureNewContributors = "z_new_contributors"
	FeatureReleases        = "z_releases"
	FeatureMentionsDelta   = "z_mentions_delta"
	FeatureUniqueAuthors   = "z_unique_authors"
	FeatureEngagementDelta = "z_engagement_delta"
)

// ScoredCandidate is the scorer output for one MergedSignal.
//
// NormalizedScore is min-max scaled across the candidate set it was computed
// against and must be recomputed whenever that set changes.
type ScoredCandidate struct {
	Signal          MergedSignal       `json:"signal"`
	Features        map[string]float64 `json:"features"`
	Momentum        float64            `json:"momentum"`
	Novelty         float64            `json:"novelty"`
	Quality         float64            `json:"quality"`
	TotalScore      float64            `json:"total_score"`
	NormalizedScore float64            `json:"normalized_score"`
}

// TopFeatures returns up to n feature keys whose absolute value exceeds the
// cutoff, strongest first. Used for candidate documents and evidence titles.
func (c *ScoredCandidate) TopFeatures(n int, cutoff float64) []string {
	type kv struct {
		key string
		abs float64
	}
	picked := make([]kv, 0, len(c.Features))
	for k, v := range c.Features {
		abs := v
		if abs < 0 {
			abs = -abs
		}
		if abs > cutoff {
			picked = append(picked, kv{key: k, abs: abs})
		}
	}
	// insertion sort keeps this allocation-light for 11 features
	for i := 1; i < len(picked); i++ {
		for j := i; j > 0 && (picked[j].abs > picked[j-1].abs ||
			(picked[j].abs == picked[j-1].abs && picked[j].key < picked[j-1].key)); j-- {
			picked[j], picked[j-1] = picked[j-1], picked[j]
		}
	}
	if n > len(picked) {
		n = len(picked)
	}
	keys := make([]string, 0, n)
	for _, p := range picked[:n] {
		keys = append(keys, p.key)
	}
	return keys
}
