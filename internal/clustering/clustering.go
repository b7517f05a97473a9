// Package clustering groups candidate embeddings into narrative clusters.
package clustering

import (
	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/internal/embedding"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const (
	// DefaultThreshold is the minimum average-linkage similarity for a merge.
	DefaultThreshold = 0.45

	// DefaultMaxClusters is the phase-1 target cluster count.
	DefaultMaxClusters = 10
)

// Engine performs agglomerative average-linkage clustering over cosine
// similarity.
//
// The merge runs in two phases. Phase 1 shrinks the active set toward
// MaxClusters by repeatedly merging the most similar pair, refusing any merge
// below Threshold even if the cap is not yet met. Phase 2 then merges every
// remaining pair at or above Threshold regardless of the cap. A batch with
// mostly dissimilar members can therefore legitimately end with more than
// MaxClusters clusters: the engine favors merge quality over the count cap.
type Engine struct {
	Threshold   float64
	MaxClusters int
	logger      *logger.Logger
}

// NewEngine creates an engine with the given parameters.
func NewEngine(threshold float64, maxClusters int, log *logger.Logger) *Engine {
	return &Engine{
		Threshold:   threshold,
		MaxClusters: maxClusters,
		logger:      log,
	}
}

// Cluster partitions the embeddings. Every input index appears in exactly
// one returned cluster; returned clusters are never empty. ClusterIDs are
// sequential in iteration order over the surviving clusters.
func (e *Engine) Cluster(embeddings [][]float64) []contracts.ClusterResult {
	n := len(embeddings)
	if n == 0 {
		return []contracts.ClusterResult{}
	}
	if n == 1 {
		return []contracts.ClusterResult{{ClusterID: 0, MemberIndices: []int{0}}}
	}

	sim := similarityMatrix(embeddings)

	clusters := make([][]int, n)
	active := make([]bool, n)
	activeCount := n
	for i := 0; i < n; i++ {
		clusters[i] = []int{i}
		active[i] = true
	}

	// Phase 1: shrink toward the cap, best merge first, threshold-guarded.
	for activeCount > 1 && activeCount > e.MaxClusters {
		bestSim := -1.0
		bestI, bestJ := -1, -1
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if s := averageLinkage(clusters[i], clusters[j], sim); s > bestSim {
					bestSim, bestI, bestJ = s, i, j
				}
			}
		}
		if bestSim < e.Threshold {
			break
		}
		clusters[bestI] = append(clusters[bestI], clusters[bestJ]...)
		clusters[bestJ] = nil
		active[bestJ] = false
		activeCount--
	}

	// Phase 2: mop up any pair still at or above threshold, cap ignored.
	for changed := true; changed && activeCount > 1; {
		changed = false
		for i := 0; i < n && !changed; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n && !changed; j++ {
				if !active[j] {
					continue
				}
				if averageLinkage(clusters[i], clusters[j], sim) >= e.Threshold {
					clusters[i] = append(clusters[i], clusters[j]...)
					clusters[j] = nil
					active[j] = false
					activeCount--
					changed = true
				}
			}
		}
	}

	results := make([]contracts.ClusterResult, 0, activeCount)
	for i := 0; i < n; i++ {
		if active[i] {
			results = append(results, contracts.ClusterResult{
				ClusterID:     len(results),
				MemberIndices: clusters[i],
			})
		}
	}

	if e.logger != nil {
		e.logger.WithFields(map[string]interface{}{
			"inputs":   n,
			"clusters": len(results),
		}).Debug("Clustering completed")
	}

	return results
}

func similarityMatrix(embeddings [][]float64) [][]float64 {
	n := len(embeddings)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := embedding.Cosine(embeddings[i], embeddings[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

// averageLinkage is the mean pairwise similarity over all member pairs of
// the two clusters.
func averageLinkage(a, b []int, sim [][]float64) float64 {
	total := 0.0
	for _, mi := range a {
		for _, mj := range b {
			total += sim[mi][mj]
		}
	}
	return total / float64(len(a)*len(b))
}
