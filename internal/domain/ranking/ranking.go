// Package ranking orders projects by blending unique-visitor traffic with
// received capital. The formula is selected by the event stage; the
// computation is pure and performs no I/O. Callers supply one candidate per
// eligible project with its metrics already aggregated.
package ranking

import (
	"sort"

	"github.com/harborloop/demoday/internal/domain/stage"
)

// Blend weights applied once the investment stage opens.
const (
	uvWeight         = 0.4
	investmentWeight = 0.6
)

// Candidate is one project's ranking input.
type Candidate struct {
	ID         int64
	UV         int64
	Investment int64
}

// Entry is one ranked candidate.
type Entry struct {
	Candidate
	Rank  int
	Score float64
}

// Rank produces a strict total order over the candidates. During the lock
// stage the order follows raw UV; from the investment stage on, the score
// blends min-max normalized UV and received capital. Equal scores are broken
// by ascending project ID, so the output never contains ties.
func Rank(candidates []Candidate, current stage.Stage) []Entry {
	entries := make([]Entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, Entry{Candidate: c})
	}
	if len(entries) == 0 {
		return entries
	}

	uvScore := normalize(entries, func(e Entry) int64 { return e.UV })
	invScore := normalize(entries, func(e Entry) int64 { return e.Investment })

	for i := range entries {
		if current.CanInvest() || current == stage.StageEnded {
			entries[i].Score = uvWeight*uvScore[i] + investmentWeight*invScore[i]
		} else {
			entries[i].Score = uvScore[i]
		}
	}

	if current == stage.StageLock {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].UV != entries[j].UV {
				return entries[i].UV > entries[j].UV
			}
			return entries[i].ID < entries[j].ID
		})
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Score != entries[j].Score {
				return entries[i].Score > entries[j].Score
			}
			return entries[i].ID < entries[j].ID
		})
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// normalize rescales a metric to [0,1] against the spread across the ranked
// set. When every value is equal the metric carries no signal and every
// project gets 0, which also avoids dividing by zero.
func normalize(entries []Entry, metric func(Entry) int64) []float64 {
	min, max := metric(entries[0]), metric(entries[0])
	for _, e := range entries[1:] {
		v := metric(e)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	scores := make([]float64, len(entries))
	if max == min {
		return scores
	}
	spread := float64(max - min)
	for i, e := range entries {
		scores[i] = float64(metric(e)-min) / spread
	}
	return scores
}
