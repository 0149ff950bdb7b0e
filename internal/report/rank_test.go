package report

import (
	"testing"
	"youtube-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestRank_DescendingStableOnTies(t *testing.T) {
	t.Parallel()

	deltas := domain.DeltaSet{
		{Name: "a", Value: 5},
		{Name: "b", Value: 10},
		{Name: "c", Value: 5},
		{Name: "d", Value: -1},
		{Name: "e", Value: 10},
	}

	ranked := Rank(deltas)

	assert.Equal(t, []Ranked{
		{Rank: 1, Name: "b", Value: 10},
		{Rank: 2, Name: "e", Value: 10},
		{Rank: 3, Name: "a", Value: 5},
		{Rank: 4, Name: "c", Value: 5},
		{Rank: 5, Name: "d", Value: -1},
	}, ranked)
	assert.Equal(t, "a", deltas[0].Name, "input order is untouched")
}

func TestRank_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Rank(domain.DeltaSet{}))
	assert.Empty(t, Rank(nil))
}
