package stats

import (
	"sort"

	"ao3wrapped/pkg/models"
)

// RankedEntry is one row of a ranking: a category key and its count
type RankedEntry struct {
	Key   string
	Count uint32
}

// Rank sorts a frequency table by descending count. Ties order by key so
// repeated runs over the same table always rank identically.
func Rank(table map[string]uint32) []RankedEntry {
	entries := make([]RankedEntry, 0, len(table))
	for key, count := range table {
		entries = append(entries, RankedEntry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Extreme names the dataset row holding an extremal numeric value
type Extreme struct {
	Title   string
	Authors []string
	Value   int64
}

// MaxBy returns the first row carrying the maximum of the given field.
// The boolean is false for an empty dataset.
func MaxBy(d *models.Dataset, field func(models.WorkRecord) int64) (Extreme, bool) {
	if d.Len() == 0 {
		return Extreme{}, false
	}
	best := d.Records[0]
	for _, rec := range d.Records[1:] {
		if field(rec) > field(best) {
			best = rec
		}
	}
	return Extreme{Title: best.Title, Authors: best.Authors, Value: field(best)}, true
}

// MinBy returns the first row carrying the minimum of the given field
func MinBy(d *models.Dataset, field func(models.WorkRecord) int64) (Extreme, bool) {
	if d.Len() == 0 {
		return Extreme{}, false
	}
	best := d.Records[0]
	for _, rec := range d.Records[1:] {
		if field(rec) < field(best) {
			best = rec
		}
	}
	return Extreme{Title: best.Title, Authors: best.Authors, Value: field(best)}, true
}

// MeanBy averages the given field across the dataset, 0 when empty
func MeanBy(d *models.Dataset, field func(models.WorkRecord) int64) float64 {
	if d.Len() == 0 {
		return 0
	}
	var sum int64
	for _, rec := range d.Records {
		sum += field(rec)
	}
	return float64(sum) / float64(d.Len())
}

// MostVisited returns the first row with the highest visitation count
func MostVisited(d *models.Dataset) (models.WorkRecord, bool) {
	if d.Len() == 0 {
		return models.WorkRecord{}, false
	}
	best := d.Records[0]
	for _, rec := range d.Records[1:] {
		if rec.Visitations > best.Visitations {
			best = rec
		}
	}
	return best, true
}
