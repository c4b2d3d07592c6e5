package runtime

import (
	"math"

	"github.com/aretw0/simflow/pkg/domain"
)

// Progress returns the overall completion percentage in [0, 100].
//
// Every active visible block weighs the same. A completed block contributes
// its full weight; otherwise its share of answered questions does.
func (r *Reducer) Progress(s *domain.FormState) int {
	var counted []*domain.Block
	for _, id := range s.ActiveBlocks {
		b, ok := r.block(s, id)
		if !ok || b.Invisible || containsBlock(counted, id) {
			continue
		}
		counted = append(counted, b)
	}
	if len(counted) == 0 {
		return 0
	}

	weight := 100 / float64(len(counted))
	var total float64
	for _, b := range counted {
		if s.IsCompleted(b.ID) {
			total += weight
			continue
		}
		if len(b.Questions) == 0 {
			continue
		}
		answered := 0
		for _, q := range b.Questions {
			if s.IsAnswered(q.ID) {
				answered++
			}
		}
		total += float64(answered) / float64(len(b.Questions)) * weight
	}

	return int(math.Max(0, math.Min(100, math.Round(total))))
}

func containsBlock(blocks []*domain.Block, id string) bool {
	for _, b := range blocks {
		if b.ID == id {
			return true
		}
	}
	return false
}
