package models

// WorkRecord is the normalized representation of one accepted reading
// history entry. List-valued fields keep document order; the csv tags name
// the columns of the works artifact.
type WorkRecord struct {
	Title          string   `csv:"title" json:"title"`
	Authors        []string `csv:"authors" json:"authors"`
	LastUpdated    string   `csv:"last_updated" json:"last_updated"`
	Fandoms        []string `csv:"fandoms" json:"fandoms"`
	Characters     []string `csv:"characters" json:"characters"`
	ShipTypes      []string `csv:"ship_types" json:"ship_types"`
	Rating         string   `csv:"rating" json:"rating"`
	Status         string   `csv:"work_status" json:"work_status"`
	Ships          []string `csv:"ships" json:"ships"`
	AdditionalTags []string `csv:"additional_tags" json:"additional_tags"`
	WordCount      int64    `csv:"word_count" json:"word_count"`
	Kudos          int64    `csv:"kudos" json:"kudos"`
	Hits           int64    `csv:"hits" json:"hits"`
	LastVisited    string   `csv:"user_last_visited" json:"user_last_visited"`
	Visitations    int      `csv:"user_visitations" json:"user_visitations"`
}

// Tables holds the per-year frequency tables. The json field names are the
// on-disk schema of the stats artifact and must not change.
type Tables struct {
	Authors         map[string]uint32 `json:"user_authors"`
	Fandoms         map[string]uint32 `json:"user_fandoms"`
	ShipTypes       map[string]uint32 `json:"user_ship_type"`
	Ratings         map[string]uint32 `json:"user_rating"`
	Statuses        map[string]uint32 `json:"user_status"`
	Ships           map[string]uint32 `json:"user_ships"`
	Characters      map[string]uint32 `json:"user_characters"`
	Tags            map[string]uint32 `json:"user_tags"`
	WordCount       uint64            `json:"user_word_count"`
	TitleLowerCount uint32            `json:"title_lower_count"`
}

// NewTables returns Tables with every map initialized
func NewTables() *Tables {
	return &Tables{
		Authors:    make(map[string]uint32),
		Fandoms:    make(map[string]uint32),
		ShipTypes:  make(map[string]uint32),
		Ratings:    make(map[string]uint32),
		Statuses:   make(map[string]uint32),
		Ships:      make(map[string]uint32),
		Characters: make(map[string]uint32),
		Tags:       make(map[string]uint32),
	}
}

// Dataset is the append-only sequence of accepted records in discovery
// order: page order first, then document order within a page.
type Dataset struct {
	Records []WorkRecord
}

// Append adds one record to the dataset
func (d *Dataset) Append(rec WorkRecord) {
	d.Records = append(d.Records, rec)
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Records)
}
