package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ao3wrapped/pkg/models"
)

func TestRankDescendingWithStableTies(t *testing.T) {
	table := map[string]uint32{
		"beta":  2,
		"alpha": 2,
		"gamma": 5,
		"delta": 1,
	}

	ranked := Rank(table)

	assert.Equal(t, []RankedEntry{
		{Key: "gamma", Count: 5},
		{Key: "alpha", Count: 2},
		{Key: "beta", Count: 2},
		{Key: "delta", Count: 1},
	}, ranked)
}

func TestRankEmptyTable(t *testing.T) {
	assert.Empty(t, Rank(map[string]uint32{}))
}

func extremesDataset() *models.Dataset {
	d := &models.Dataset{}
	d.Append(models.WorkRecord{Title: "first", Authors: []string{"alice"}, WordCount: 500, Kudos: 30, Hits: 200, Visitations: 3})
	d.Append(models.WorkRecord{Title: "second", Authors: []string{"bob"}, WordCount: 9000, Kudos: 5, Hits: 50, Visitations: 7})
	d.Append(models.WorkRecord{Title: "third", Authors: []string{"carol"}, WordCount: 500, Kudos: 30, Hits: 800, Visitations: 7})
	return d
}

func TestMaxByAndMinBy(t *testing.T) {
	d := extremesDataset()
	words := func(rec models.WorkRecord) int64 { return rec.WordCount }

	max, ok := MaxBy(d, words)
	require.True(t, ok)
	assert.Equal(t, "second", max.Title)
	assert.Equal(t, int64(9000), max.Value)

	// Ties resolve to the earliest row.
	min, ok := MinBy(d, words)
	require.True(t, ok)
	assert.Equal(t, "first", min.Title)
	assert.Equal(t, int64(500), min.Value)
}

func TestMeanBy(t *testing.T) {
	d := extremesDataset()
	mean := MeanBy(d, func(rec models.WorkRecord) int64 { return rec.WordCount })
	assert.InDelta(t, (500.0+9000.0+500.0)/3.0, mean, 0.001)
}

func TestMostVisitedKeepsFirstOfTies(t *testing.T) {
	d := extremesDataset()
	rec, ok := MostVisited(d)
	require.True(t, ok)
	assert.Equal(t, "second", rec.Title)
	assert.Equal(t, 7, rec.Visitations)
}

func TestExtremesEmptyDataset(t *testing.T) {
	d := &models.Dataset{}

	_, ok := MaxBy(d, func(rec models.WorkRecord) int64 { return rec.WordCount })
	assert.False(t, ok)

	_, ok = MinBy(d, func(rec models.WorkRecord) int64 { return rec.WordCount })
	assert.False(t, ok)

	assert.Zero(t, MeanBy(d, func(rec models.WorkRecord) int64 { return rec.WordCount }))

	_, ok = MostVisited(d)
	assert.False(t, ok)
}
