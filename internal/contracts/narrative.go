package contracts

// ClusterResult is one narrative grouping produced by the clustering engine.
// MemberIndices index into the candidate slice the engine was given; every
// input index appears in exactly one cluster and clusters are never empty.
type ClusterResult struct {
	ClusterID     int   `json:"cluster_id"`
	MemberIndices []int `json:"member_indices"`
}

// SaturationLevel buckets a saturation score.
type SaturationLevel string

const (
	SaturationLow    SaturationLevel = "low"
	SaturationMedium SaturationLevel = "medium"
	SaturationHigh   SaturationLevel = "high"
)

// SaturationNeighbor is one nearby corpus project.
type SaturationNeighbor struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
	URL        string  `json:"url"`
}

// SaturationResult estimates competitive crowding for one idea.
type SaturationResult struct {
	Level     SaturationLevel      `json:"level"`
	Score     float64              `json:"score"`
	Neighbors []SaturationNeighbor `json:"neighbors"`
}

// CorpusProject is one entry of the static project corpus used for
// saturation comparison.
type CorpusProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
}

// NarrativeLabel is the labeling output for one cluster.
type NarrativeLabel struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	EvidenceHints []string `json:"evidenceHints"`
}

// Idea is one build suggestion generated for a narrative.
type Idea struct {
	Title      string `json:"title"`
	Pitch      string `json:"pitch"`
	TargetUser string `json:"targetUser"`
	MVPScope   string `json:"mvpScope"`
	WhyNow     string `json:"whyNow"`
	Validation string `json:"validation"`
}

// ActionPack is the generated starter-kit document set for one idea.
type ActionPack struct {
	SpecMD       string `json:"specMd"`
	TechMD       string `json:"techMd"`
	MilestonesMD string `json:"milestonesMd"`
	DepsJSON     string `json:"depsJson"`
}

// Evidence is one supporting data point attached to a narrative.
type Evidence struct {
	Type    string             `json:"type"` // onchain | dev | social
	Title   string             `json:"title"`
	URL     string             `json:"url"`
	Snippet string             `json:"snippet"`
	Metrics map[string]float64 `json:"metrics"`
}

// ScoredIdea pairs an idea with its saturation verdict and action pack.
type ScoredIdea struct {
	Idea       Idea             `json:"idea"`
	Saturation SaturationResult `json:"saturation"`
	Pivot      string           `json:"pivot,omitempty"`
	ActionPack ActionPack       `json:"action_pack"`
}

// Narrative is the fully assembled cluster record handed to the report sink.
type Narrative struct {
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Momentum    float64      `json:"momentum"`
	Novelty     float64      `json:"novelty"`
	Saturation  float64      `json:"saturation"`
	ClusterSize int          `json:"cluster_size"`
	MemberKeys  []string     `json:"member_keys"`
	Evidence    []Evidence   `json:"evidence"`
	Ideas       []ScoredIdea `json:"ideas"`
}
