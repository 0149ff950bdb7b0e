package report

import (
	"sort"
	"youtube-tracker/internal/domain"
)

type Ranked struct {
	Rank  int
	Name  string
	Value int64
}

// Rank orders deltas by value, largest first. Equal values keep their delta set
// order, which is roster order.
func Rank(deltas domain.DeltaSet) []Ranked {
	sorted := make(domain.DeltaSet, len(deltas))
	copy(sorted, deltas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	ranked := make([]Ranked, len(sorted))
	for i, d := range sorted {
		ranked[i] = Ranked{Rank: i + 1, Name: d.Name, Value: d.Value}
	}
	return ranked
}
