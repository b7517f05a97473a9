// Package scoring converts raw/baseline signal pairs into ranked candidates.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const (
	// zClamp bounds every deviation score to keep outliers from dominating
	// the weighted sum.
	zClamp = 5.0

	// zGrowthFromNothing is the fixed deviation assigned when the baseline
	// is zero but the current value is positive. It signals growth without
	// letting the epsilon floor blow the ratio up.
	zGrowthFromNothing = 2.0

	baselineEpsilon = 0.001

	noveltyWindowDays = 60.0
	noveltyMaxBonus   = 1.3

	walletSpikePenalty = 0.6
	hypeOnlyPenalty    = 0.7
	hypeRatioCutoff    = 0.8
)

// Weights maps feature keys to their momentum contribution. The weights are
// tuned emphases per signal family and intentionally do not sum to 1.
type Weights map[string]float64

// DefaultWeights returns the production weight table.
func DefaultWeights() Weights {
	return Weights{
		contracts.FeatureTxCount:         0.25,
		contracts.FeatureUniqueWallets:   0.20,
		contracts.FeatureNewWalletShare:  0.15,
		contracts.FeatureRetention:       0.10,
		contracts.FeatureCommits:         0.20,
		contracts.FeatureStarsDelta:      0.15,
		contracts.FeatureNewContributors: 0.10,
		contracts.FeatureReleases:        0.05,
		contracts.FeatureMentionsDelta:   0.15,
		contracts.FeatureUniqueAuthors:   0.10,
		contracts.FeatureEngagementDelta: 0.10,
	}
}

// Scorer computes momentum, novelty, and quality for merged signals.
type Scorer struct {
	weights       Weights
	weightKeys    []string
	noveltyWindow float64
	noveltyBonus  float64
	now           func() time.Time
	logger        *logger.Logger
}

// NewScorer creates a scorer with the given weight table.
func NewScorer(weights Weights, log *logger.Logger) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	keys := make([]string, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Scorer{
		weights:       weights,
		weightKeys:    keys,
		noveltyWindow: noveltyWindowDays,
		noveltyBonus:  noveltyMaxBonus,
		now:           time.Now,
		logger:        log,
	}
}

// WithNovelty overrides the recency bonus parameters.
func (s *Scorer) WithNovelty(windowDays int, maxBonus float64) *Scorer {
	if windowDays > 0 {
		s.noveltyWindow = float64(windowDays)
	}
	if maxBonus >= 1.0 {
		s.noveltyBonus = maxBonus
	}
	return s
}

// Score converts signals into candidates sorted descending by raw total
// score. NormalizedScore is min-max scaled across exactly this batch.
func (s *Scorer) Score(signals []contracts.MergedSignal) []contracts.ScoredCandidate {
	now := s.now()
	scored := make([]contracts.ScoredCandidate, 0, len(signals))

	for _, sig := range signals {
		features := extractFeatures(&sig)
		momentum := s.momentum(features)
		novelty := noveltyBonusAt(sig.FirstSeen, now, s.noveltyWindow, s.noveltyBonus)
		quality := qualityPenalty(features, sig.Social.Snippets)

		scored = append(scored, contracts.ScoredCandidate{
			Signal:     sig,
			Features:   features,
			Momentum:   momentum,
			Novelty:    novelty,
			Quality:    quality,
			TotalScore: momentum * novelty * quality,
		})
	}

	normalize(scored)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})

	if s.logger != nil && len(scored) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"candidates": len(scored),
			"top_key":    scored[0].Signal.Key,
			"top_score":  scored[0].TotalScore,
		}).Info("Scoring completed")
	}

	return scored
}

// zScore is a clamped relative deviation: (current-baseline)/max(baseline, eps).
// A zero baseline with positive current returns the growth sentinel; fully
// zero pairs return 0.
func zScore(current, baseline float64) float64 {
	if baseline == 0 {
		if current > 0 {
			return zGrowthFromNothing
		}
		return 0
	}
	z := (current - baseline) / math.Max(baseline, baselineEpsilon)
	return math.Max(-zClamp, math.Min(zClamp, z))
}

func extractFeatures(sig *contracts.MergedSignal) map[string]float64 {
	oc := sig.Onchain
	dev := sig.Dev
	soc := sig.Social
	return map[string]float64{
		contracts.FeatureTxCount:         zScore(oc.TxCount, oc.TxCountBaseline),
		contracts.FeatureUniqueWallets:   zScore(oc.UniqueWallets, oc.UniqueWalletsBaseline),
		contracts.FeatureNewWalletShare:  zScore(oc.NewWalletShare, oc.NewWalletShareBaseline),
		contracts.FeatureRetention:       zScore(oc.Retention7D, oc.Retention7DBaseline),
		contracts.FeatureCommits:         zScore(dev.Commits, dev.CommitsBaseline),
		contracts.FeatureStarsDelta:      zScore(dev.StarsDelta, dev.StarsDeltaBaseline),
		contracts.FeatureNewContributors: zScore(dev.NewContributors, dev.NewContributorsBaseline),
		contracts.FeatureReleases:        zScore(dev.Releases, dev.ReleasesBaseline),
		contracts.FeatureMentionsDelta:   zScore(soc.MentionsCount, soc.MentionsCountBaseline),
		contracts.FeatureUniqueAuthors:   zScore(soc.UniqueAuthors, soc.UniqueAuthorsBaseline),
		contracts.FeatureEngagementDelta: zScore(soc.EngagementScore, soc.EngagementScoreBaseline),
	}
}

// momentum is a weighted linear combination over the feature map. Summation
// follows the sorted weight keys so repeated evaluations are bit-identical;
// ranging over the map directly would reorder the float additions per call.
func (s *Scorer) momentum(features map[string]float64) float64 {
	score := 0.0
	for _, key := range s.weightKeys {
		score += features[key] * s.weights[key]
	}
	return score
}

// noveltyAt returns the default recency multiplier: 1.3 for a brand-new
// entity, decaying linearly to 1.0 at 60 days, flat 1.0 afterward.
func noveltyAt(firstSeen, now time.Time) float64 {
	return noveltyBonusAt(firstSeen, now, noveltyWindowDays, noveltyMaxBonus)
}

func noveltyBonusAt(firstSeen, now time.Time, windowDays, maxBonus float64) float64 {
	ageDays := now.Sub(firstSeen).Hours() / 24
	if ageDays > windowDays {
		return 1.0
	}
	bonus := maxBonus - (maxBonus-1.0)*(ageDays/windowDays)
	if bonus > maxBonus {
		return maxBonus
	}
	if bonus < 1.0 {
		return 1.0
	}
	return bonus
}

// qualityPenalty multiplies in two independent guards against low-substance
// spikes. Absent snippets simply skip the hype guard.
func qualityPenalty(features map[string]float64, snippets []contracts.Snippet) float64 {
	penalty := 1.0

	// transaction spike without matching wallet growth smells like wash
	// trading or a single bot; a clean 3x (z of exactly 2) already counts
	if features[contracts.FeatureTxCount] >= 2 && features[contracts.FeatureUniqueWallets] < 0.5 {
		penalty *= walletSpikePenalty
	}

	if len(snippets) > 0 {
		hype := 0
		for _, s := range snippets {
			if s.Classification == contracts.SnippetHype {
				hype++
			}
		}
		if float64(hype)/float64(len(snippets)) > hypeRatioCutoff {
			penalty *= hypeOnlyPenalty
		}
	}

	return penalty
}

// normalize min-max scales TotalScore into NormalizedScore with the range
// floored at 1, so a fully flat batch yields 0 for every candidate.
func normalize(scored []contracts.ScoredCandidate) {
	if len(scored) == 0 {
		return
	}
	minScore := scored[0].TotalScore
	maxScore := scored[0].TotalScore
	for _, c := range scored[1:] {
		minScore = math.Min(minScore, c.TotalScore)
		maxScore = math.Max(maxScore, c.TotalScore)
	}
	rng := math.Max(maxScore-minScore, 1)
	for i := range scored {
		scored[i].NormalizedScore = (scored[i].TotalScore - minScore) / rng
	}
}
