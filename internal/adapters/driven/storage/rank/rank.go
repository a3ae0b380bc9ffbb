// Package rank scores stored vectors against a query vector.
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Zero vectors and mismatched lengths score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Matches returns true if md holds every key of filter with an equal value.
// Values are compared by their printed form so that numbers decoded from
// JSON match ints.
func Matches(md, filter domain.Metadata) bool {
	for k, want := range filter {
		got, ok := md[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// TopK keeps the k best hits, best first. Ties keep id order.
func TopK(hits []domain.RetrievedChunk, k int) []domain.RetrievedChunk {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
