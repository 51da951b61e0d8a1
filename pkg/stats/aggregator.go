package stats

import (
	"strings"

	"ao3wrapped/pkg/models"
)

// Aggregator folds accepted WorkRecords into the per-year frequency tables
// and the tabular dataset. It is owned by the scrape controller for the
// duration of one run; nothing else mutates the two structures.
type Aggregator struct {
	tables  *models.Tables
	dataset *models.Dataset
}

// NewAggregator returns an Aggregator with empty tables and dataset
func NewAggregator() *Aggregator {
	return &Aggregator{
		tables:  models.NewTables(),
		dataset: &models.Dataset{},
	}
}

// Absorb folds one record into the tables and appends it to the dataset.
// Records arrive pre-validated from the extractor, so there is no failure
// mode. Counter updates are commutative; row order follows absorb order.
func (a *Aggregator) Absorb(rec models.WorkRecord) {
	for _, author := range rec.Authors {
		a.tables.Authors[author]++
	}
	for _, fandom := range rec.Fandoms {
		a.tables.Fandoms[fandom]++
	}
	for _, shipType := range rec.ShipTypes {
		a.tables.ShipTypes[shipType]++
	}
	a.tables.Ratings[rec.Rating]++
	a.tables.Statuses[rec.Status]++
	for _, ship := range rec.Ships {
		a.tables.Ships[ship]++
	}
	for _, character := range rec.Characters {
		a.tables.Characters[character]++
	}
	for _, tag := range rec.AdditionalTags {
		a.tables.Tags[tag]++
	}

	a.tables.WordCount += uint64(rec.WordCount)

	if rec.Title == strings.ToLower(rec.Title) {
		a.tables.TitleLowerCount++
	}

	a.dataset.Append(rec)
}

// Finalize hands out the aggregated structures. The aggregator is done
// after this; callers treat the results as immutable.
func (a *Aggregator) Finalize() (*models.Tables, *models.Dataset) {
	return a.tables, a.dataset
}
