package contracts

import "time"

// Snippet classifications assigned by the social ingestors.
const (
	SnippetHype         = "hype"
	SnippetPainPoint    = "pain_point"
	SnippetAnnouncement = "announcement"
	SnippetQuestion     = "question"
	SnippetDiscussion   = "discussion"
	SnippetAlpha        = "alpha"
	SnippetAnalysis     = "analysis"
)

// OnchainSignal holds paired current/baseline on-chain metrics for one entity.
// Missing fields decode as zero; the scorer treats zero as "no data".
type OnchainSignal struct {
	TxCount                float64 `json:"tx_count"`
	TxCountBaseline        float64 `json:"tx_count_baseline"`
	UniqueWallets          float64 `json:"unique_wallets"`
	UniqueWalletsBaseline  float64 `json:"unique_wallets_baseline"`
	NewWalletShare         float64 `json:"new_wallet_share"`
	NewWalletShareBaseline float64 `json:"new_wallet_share_baseline"`
	Retention7D            float64 `json:"retention_7d"`
	Retention7DBaseline    float64 `json:"retention_7d_baseline"`
}

// DevSignal holds paired current/baseline repository activity metrics.
type DevSignal struct {
	Commits                 float64 `json:"commits"`
	CommitsBaseline         float64 `json:"commits_baseline"`
	StarsDelta              float64 `json:"stars_delta"`
	StarsDeltaBaseline      float64 `json:"stars_delta_baseline"`
	NewContributors         float64 `json:"new_contributors"`
	NewContributorsBaseline float64 `json:"new_contributors_baseline"`
	Releases                float64 `json:"releases"`
	ReleasesBaseline        float64 `json:"releases_baseline"`
}

// Snippet is one social mention with an optional classification.
type Snippet struct {
	Text           string `json:"text"`
	URL            string `json:"url,omitempty"`
	Source         string `json:"source,omitempty"`
	Classification string `json:"classification,omitempty"`
}

// SocialSignal holds paired current/baseline social metrics plus raw snippets.
type SocialSignal struct {
	MentionsCount            float64   `json:"mentions_count"`
	MentionsCountBaseline    float64   `json:"mentions_count_baseline"`
	UniqueAuthors            float64   `json:"unique_authors"`
	UniqueAuthorsBaseline    float64   `json:"unique_authors_baseline"`
	EngagementScore          float64   `json:"engagement_score"`
	EngagementScoreBaseline  float64   `json:"engagement_score_baseline"`
	Snippets                 []Snippet `json:"snippets,omitempty"`
}

// MergedSignal is one entity's raw observation for a reporting period.
// Built fresh each cycle by the ingestors; immutable once handed to the scorer.
type MergedSignal struct {
	Key       string        `json:"key"`
	Label     string        `json:"label"`
	Kind      string        `json:"kind"`
	FirstSeen time.Time     `json:"first_seen"`
	Onchain   OnchainSignal `json:"onchain"`
	Dev       DevSignal     `json:"dev"`
	Social    SocialSignal  `json:"social"`
}

// HasActivity reports whether any signal family saw real activity this period.
func (s *MergedSignal) HasActivity() bool {
	return s.Onchain.TxCount > 0 || s.Dev.Commits > 0 || s.Social.MentionsCount > 0
}
