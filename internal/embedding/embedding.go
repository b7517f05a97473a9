// Package embedding provides the deterministic text embedder shared by the
// clustering engine and the saturation analyzer.
//
// The embedder hashes character trigrams into a fixed-size vector. It is not
// a semantic model, but it is deterministic, dependency-free, and needs no
// API key, which is exactly what the offline pipeline requires: identical
// text always produces an identical vector across runs and machines.
package embedding

import (
	"math"
	"strings"
)

// Dimensions is the default embedding vector size.
const Dimensions = 384

// Embed generates an L2-normalized embedding of text with the default
// dimension count.
func Embed(text string) []float64 {
	return EmbedDims(text, Dimensions)
}

// EmbedDims generates an L2-normalized embedding with dims components.
// Text with no valid trigram (empty, single characters) yields a zero vector.
func EmbedDims(text string, dims int) []float64 {
	vec := make([]float64, dims)

	for _, word := range strings.Fields(sanitize(text)) {
		for i := 0; i+3 <= len(word); i++ {
			var hash uint32
			for c := 0; c < 3; c++ {
				hash = hash*31 + uint32(word[i+c])
			}
			vec[hash%uint32(dims)]++
		}
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		// keep the all-zero vector instead of dividing by zero
		norm = 1
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of a and b. Zero-norm vectors compare
// as 0, never NaN, so degenerate embeddings cannot poison clustering.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		na += v * v
	}
	for _, v := range b {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// sanitize lowercases and strips everything outside [a-z0-9 ], matching the
// tokenization the corpus embeddings were generated with.
func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
