package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"ao3wrapped/pkg/errors"
	"ao3wrapped/pkg/models"
)

// worksHeader is the column layout of the works artifact. Order is part of
// the on-disk contract.
var worksHeader = []string{
	"title", "authors", "last_updated", "fandoms", "characters",
	"ship_types", "rating", "work_status", "ships", "additional_tags",
	"word_count", "kudos", "hits", "user_last_visited", "user_visitations",
}

// Manager reads and writes the yearly artifact pair
type Manager struct {
	outputDir string
}

// NewManager creates a storage manager rooted at outputDir
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// StatsPath returns the path of the yearly stats artifact
func (m *Manager) StatsPath(year string) string {
	return filepath.Join(m.outputDir, fmt.Sprintf("user_%s.json", year))
}

// WorksPath returns the path of the yearly works artifact
func (m *Manager) WorksPath(year string) string {
	return filepath.Join(m.outputDir, fmt.Sprintf("works_%s.csv", year))
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// SaveYear writes both artifacts for one year. Each file lands atomically,
// so a crash never leaves a half-written artifact behind.
func (m *Manager) SaveYear(year string, tables *models.Tables, dataset *models.Dataset) error {
	data, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := m.writeFileAtomic(m.StatsPath(year), data); err != nil {
		return err
	}

	rows, err := encodeWorks(dataset)
	if err != nil {
		return err
	}
	return m.writeFileAtomic(m.WorksPath(year), rows)
}

// LoadYear reads both artifacts back for the replay path. Either file
// missing is fatal, so the error is typed and names the absent artifact.
func (m *Manager) LoadYear(year string) (*models.Tables, *models.Dataset, error) {
	statsPath := m.StatsPath(year)
	if _, err := os.Stat(statsPath); err != nil {
		return nil, nil, &errors.Error{
			Type:    errors.ErrorTypeArtifact,
			Message: "User stats file not found",
		}
	}

	worksPath := m.WorksPath(year)
	if _, err := os.Stat(worksPath); err != nil {
		return nil, nil, &errors.Error{
			Type:    errors.ErrorTypeArtifact,
			Message: "Works file not found",
		}
	}

	data, err := os.ReadFile(statsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stats file: %w", err)
	}
	tables := models.NewTables()
	if err := json.Unmarshal(data, tables); err != nil {
		return nil, nil, fmt.Errorf("failed to decode stats file: %w", err)
	}

	f, err := os.Open(worksPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open works file: %w", err)
	}
	defer f.Close()

	dataset, err := decodeWorks(f)
	if err != nil {
		return nil, nil, err
	}

	return tables, dataset, nil
}

// writeFileAtomic writes data through a temporary file and renames it into
// place
func (m *Manager) writeFileAtomic(path string, data []byte) error {
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// encodeWorks renders the dataset as CSV with the pinned header
func encodeWorks(dataset *models.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(worksHeader); err != nil {
		return nil, fmt.Errorf("failed to write works header: %w", err)
	}
	for _, rec := range dataset.Records {
		row := []string{
			rec.Title,
			joinList(rec.Authors),
			rec.LastUpdated,
			joinList(rec.Fandoms),
			joinList(rec.Characters),
			joinList(rec.ShipTypes),
			rec.Rating,
			rec.Status,
			joinList(rec.Ships),
			joinList(rec.AdditionalTags),
			strconv.FormatInt(rec.WordCount, 10),
			strconv.FormatInt(rec.Kudos, 10),
			strconv.FormatInt(rec.Hits, 10),
			rec.LastVisited,
			strconv.Itoa(rec.Visitations),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write works row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush works rows: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeWorks parses the works artifact back into a dataset
func decodeWorks(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(worksHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read works header: %w", err)
	}
	if !slices.Equal(header, worksHeader) {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "unexpected works file header",
		}
	}

	dataset := &models.Dataset{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read works row: %w", err)
		}

		rec, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("works file line %d: %w", line, err)
		}
		dataset.Append(rec)
	}

	return dataset, nil
}

// decodeRow maps one CSV row onto a WorkRecord, column for column
func decodeRow(row []string) (models.WorkRecord, error) {
	wordCount, err := parseCount(row[10], "word_count")
	if err != nil {
		return models.WorkRecord{}, err
	}
	kudos, err := parseCount(row[11], "kudos")
	if err != nil {
		return models.WorkRecord{}, err
	}
	hits, err := parseCount(row[12], "hits")
	if err != nil {
		return models.WorkRecord{}, err
	}
	visitations, err := strconv.ParseUint(row[14], 10, 31)
	if err != nil {
		return models.WorkRecord{}, fmt.Errorf("invalid user_visitations %q: %w", row[14], err)
	}

	return models.WorkRecord{
		Title:          row[0],
		Authors:        splitList(row[1]),
		LastUpdated:    row[2],
		Fandoms:        splitList(row[3]),
		Characters:     splitList(row[4]),
		ShipTypes:      splitList(row[5]),
		Rating:         row[6],
		Status:         row[7],
		Ships:          splitList(row[8]),
		AdditionalTags: splitList(row[9]),
		WordCount:      wordCount,
		Kudos:          kudos,
		Hits:           hits,
		LastVisited:    row[13],
		Visitations:    int(visitations),
	}, nil
}

// parseCount reads a count column. Counts are non-negative by construction,
// so a minus sign marks the file as tampered with rather than merely stale.
func parseCount(cell, column string) (int64, error) {
	n, err := strconv.ParseUint(cell, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", column, cell, err)
	}
	return int64(n), nil
}

// joinList flattens a list cell; splitList reverses it. An empty cell is an
// empty list, never a list of one empty string.
func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, ",")
}
