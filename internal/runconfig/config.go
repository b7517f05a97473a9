package runconfig

// Config captures every tunable of a pipeline run. Loaded from YAML with
// strict field checking; the canonical hash of the loaded config is stored
// with each report so runs stay reproducible.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Period     Period     `yaml:"period" json:"period"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	Clustering Clustering `yaml:"clustering" json:"clustering"`
	Saturation Saturation `yaml:"saturation" json:"saturation"`
	Pipeline   Pipeline   `yaml:"pipeline" json:"pipeline"`
}

type Meta struct {
	RunID   string `yaml:"run_id" json:"run_id"`
	Version string `yaml:"version" json:"version"`
}

// Period controls the reporting window.
type Period struct {
	Days int `yaml:"days" json:"days"`
}

// Scoring mirrors the scorer's knobs. Weights are keyed by feature name.
type Scoring struct {
	Weights           map[string]float64 `yaml:"weights" json:"weights"`
	NoveltyWindowDays int                `yaml:"novelty_window_days" json:"novelty_window_days"`
	NoveltyMaxBonus   float64            `yaml:"novelty_max_bonus" json:"novelty_max_bonus"`
}

type Clustering struct {
	Threshold   float64 `yaml:"threshold" json:"threshold"`
	MaxClusters int     `yaml:"max_clusters" json:"max_clusters"`
}

type Saturation struct {
	TopK         int     `yaml:"top_k" json:"top_k"`
	HighCutoff   float64 `yaml:"high_cutoff" json:"high_cutoff"`
	MediumCutoff float64 `yaml:"medium_cutoff" json:"medium_cutoff"`
}

type Pipeline struct {
	TopCandidates int `yaml:"top_candidates" json:"top_candidates"`
	MaxNarratives int `yaml:"max_narratives" json:"max_narratives"`
}

// Default returns the built-in run configuration used when no YAML file is
// given on the command line.
func Default() *Config {
	return &Config{
		Meta: Meta{
			RunID:   "narrative-hunter-default",
			Version: "1.0",
		},
		Period: Period{Days: 14},
		Scoring: Scoring{
			Weights: map[string]float64{
				"z_tx_count":         0.25,
				"z_unique_wallets":   0.20,
				"z_new_wallet_share": 0.15,
				"z_retention":        0.10,
				"z_commits":          0.20,
				"z_stars_delta":      0.15,
				"z_new_contributors": 0.10,
				"z_releases":         0.05,
				"z_mentions":         0.15,
				"z_unique_authors":   0.10,
				"z_engagement_delta": 0.10,
			},
			NoveltyWindowDays: 60,
			NoveltyMaxBonus:   1.3,
		},
		Clustering: Clustering{
			Threshold:   0.4,
			MaxClusters: 10,
		},
		Saturation: Saturation{
			TopK:         3,
			HighCutoff:   0.75,
			MediumCutoff: 0.45,
		},
		Pipeline: Pipeline{
			TopCandidates: 20,
			MaxNarratives: 10,
		},
	}
}
