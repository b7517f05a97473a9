// Package saturation estimates how crowded the space around an idea already
// is, by comparing its embedding against a static corpus of shipped projects.
package saturation

import (
	"errors"
	"math"
	"sort"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/internal/embedding"
)

// DefaultTopK is the number of nearest corpus projects averaged into the
// saturation score.
const DefaultTopK = 3

// Level boundaries are exclusive: a score of exactly 0.75 is medium and a
// score of exactly 0.45 is low.
const (
	highCutoff   = 0.75
	mediumCutoff = 0.45
)

// ErrEmptyCorpus is returned when there is nothing to compare against.
// Callers substitute DefaultResult instead of calling Analyze.
var ErrEmptyCorpus = errors.New("saturation: empty project corpus")

// Analyzer compares idea embeddings against the loaded corpus. TopK and the
// level cutoffs may be adjusted after construction, before the first Analyze.
type Analyzer struct {
	TopK         int
	HighCutoff   float64
	MediumCutoff float64
	projects     []contracts.CorpusProject
	embeddings   [][]float64
}

// NewAnalyzer creates an analyzer over the given corpus. The embeddings
// slice is parallel to projects.
func NewAnalyzer(projects []contracts.CorpusProject, embeddings [][]float64) *Analyzer {
	return &Analyzer{
		TopK:         DefaultTopK,
		HighCutoff:   highCutoff,
		MediumCutoff: mediumCutoff,
		projects:     projects,
		embeddings:   embeddings,
	}
}

// Empty reports whether the analyzer has no corpus to compare against.
func (a *Analyzer) Empty() bool {
	return len(a.embeddings) == 0
}

// Analyze scores one idea embedding against the corpus. The score is the
// mean cosine similarity of the topK nearest projects (fewer if the corpus
// is smaller). An empty corpus returns ErrEmptyCorpus.
func (a *Analyzer) Analyze(ideaEmbedding []float64) (contracts.SaturationResult, error) {
	if a.Empty() {
		return contracts.SaturationResult{}, ErrEmptyCorpus
	}

	type ranked struct {
		index      int
		similarity float64
	}
	sims := make([]ranked, len(a.embeddings))
	for i, emb := range a.embeddings {
		sims[i] = ranked{index: i, similarity: embedding.Cosine(ideaEmbedding, emb)}
	}
	sort.SliceStable(sims, func(i, j int) bool {
		return sims[i].similarity > sims[j].similarity
	})

	topK := a.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > len(sims) {
		topK = len(sims)
	}
	top := sims[:topK]

	score := 0.0
	neighbors := make([]contracts.SaturationNeighbor, 0, len(top))
	for _, r := range top {
		score += r.similarity
		neighbor := contracts.SaturationNeighbor{
			Similarity: math.Round(r.similarity*100) / 100,
		}
		if r.index < len(a.projects) {
			neighbor.Name = a.projects[r.index].Name
			neighbor.URL = a.projects[r.index].URL
		}
		neighbors = append(neighbors, neighbor)
	}
	score /= float64(len(top))

	return contracts.SaturationResult{
		Level:     a.levelFor(score),
		Score:     score,
		Neighbors: neighbors,
	}, nil
}

// DefaultResult is the substitute verdict for runs with no corpus loaded.
func DefaultResult() contracts.SaturationResult {
	return contracts.SaturationResult{
		Level:     contracts.SaturationLow,
		Score:     0.2,
		Neighbors: []contracts.SaturationNeighbor{},
	}
}

func (a *Analyzer) levelFor(score float64) contracts.SaturationLevel {
	high, medium := a.HighCutoff, a.MediumCutoff
	if high <= 0 {
		high = highCutoff
	}
	if medium <= 0 {
		medium = mediumCutoff
	}
	switch {
	case score > high:
		return contracts.SaturationHigh
	case score > medium:
		return contracts.SaturationMedium
	default:
		return contracts.SaturationLow
	}
}
