package runconfig

import (
	"fmt"
)

// ValidationError stops the run before any data is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requiredWeights are the feature keys every scoring config must assign.
var requiredWeights = []string{
	"z_tx_count",
	"z_unique_wallets",
	"z_new_wallet_share",
	"z_retention",
	"z_commits",
	"z_stars_delta",
	"z_new_contributors",
	"z_releases",
	"z_mentions",
	"z_unique_authors",
	"z_engagement_delta",
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.RunID == "" {
		return ValidationError{"meta.run_id", "required"}
	}

	if cfg.Period.Days <= 0 {
		return ValidationError{"period.days", "must be > 0"}
	}

	for _, key := range requiredWeights {
		w, ok := cfg.Scoring.Weights[key]
		if !ok {
			return ValidationError{"scoring.weights." + key, "required"}
		}
		if w < 0 {
			return ValidationError{"scoring.weights." + key, "must be >= 0"}
		}
	}
	for key := range cfg.Scoring.Weights {
		if !knownWeight(key) {
			return ValidationError{"scoring.weights." + key, "unknown feature"}
		}
	}

	if cfg.Scoring.NoveltyWindowDays <= 0 {
		return ValidationError{"scoring.novelty_window_days", "must be > 0"}
	}
	if cfg.Scoring.NoveltyMaxBonus < 1.0 {
		return ValidationError{"scoring.novelty_max_bonus", "must be >= 1.0"}
	}

	if cfg.Clustering.Threshold <= 0 || cfg.Clustering.Threshold >= 1 {
		return ValidationError{"clustering.threshold", "must be in (0, 1)"}
	}
	if cfg.Clustering.MaxClusters <= 0 {
		return ValidationError{"clustering.max_clusters", "must be > 0"}
	}

	if cfg.Saturation.TopK <= 0 {
		return ValidationError{"saturation.top_k", "must be > 0"}
	}
	if cfg.Saturation.MediumCutoff <= 0 || cfg.Saturation.HighCutoff >= 1 {
		return ValidationError{"saturation", "cutoffs must be in (0, 1)"}
	}
	if cfg.Saturation.MediumCutoff >= cfg.Saturation.HighCutoff {
		return ValidationError{"saturation", "medium_cutoff must be < high_cutoff"}
	}

	if cfg.Pipeline.TopCandidates <= 0 {
		return ValidationError{"pipeline.top_candidates", "must be > 0"}
	}
	if cfg.Pipeline.MaxNarratives <= 0 {
		return ValidationError{"pipeline.max_narratives", "must be > 0"}
	}

	return nil
}

func knownWeight(key string) bool {
	for _, k := range requiredWeights {
		if k == key {
			return true
		}
	}
	return false
}
