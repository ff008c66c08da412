// ABOUTME: Export and import functionality for the daily log.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/kal/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for the daily log.
type ExportData struct {
	Version    string           `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Tool       string           `json:"tool" yaml:"tool"`
	Year       *uint            `json:"year,omitempty" yaml:"year,omitempty"`
	Records    []*models.Record `json:"records" yaml:"records"`
}

// GetAllData retrieves records for export. A nil year exports everything.
func (d *DB) GetAllData(year *uint) (*ExportData, error) {
	var records []*models.Record
	var err error

	if year != nil {
		records, err = d.QueryYear(*year)
	} else {
		records, err = d.QueryAll()
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "kal",
		Year:       year,
		Records:    records,
	}, nil
}

// ImportData appends every record of an export. All records are validated
// before the first insert so a bad file leaves the store unchanged.
func (d *DB) ImportData(data *ExportData) (int, error) {
	for i, r := range data.Records {
		if r == nil || r.Category == "" || !r.Day().Valid() {
			return 0, &Error{Op: "import", Kind: ErrInvalidRecord, Err: fmt.Errorf("record %d", i)}
		}
	}

	for i, r := range data.Records {
		if err := d.Insert(r); err != nil {
			return i, fmt.Errorf("import record: %w", err)
		}
	}
	return len(data.Records), nil
}

// ExportJSON exports records as JSON.
func (d *DB) ExportJSON(year *uint) ([]byte, error) {
	data, err := d.GetAllData(year)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports records from JSON bytes.
func (d *DB) ImportJSON(raw []byte) (int, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(&data)
}

// ExportYAML exports records as YAML, grouped by day.
func (d *DB) ExportYAML(year *uint) ([]byte, error) {
	data, err := d.GetAllData(year)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string    `yaml:"version"`
		ExportedAt string    `yaml:"exported_at"`
		Tool       string    `yaml:"tool"`
		Days       []yamlDay `yaml:"days"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Days:       make([]yamlDay, 0),
	}

	for _, group := range GroupByDay(data.Records) {
		yd := yamlDay{Day: group.Day.String()}
		for _, r := range group.Records {
			yd.Entries = append(yd.Entries, yamlEntry{
				Category: r.Category,
				Details:  r.DetailsOr(""),
			})
		}
		yamlData.Days = append(yamlData.Days, yd)
	}

	return yaml.Marshal(yamlData)
}

type yamlDay struct {
	Day     string      `yaml:"day"`
	Entries []yamlEntry `yaml:"entries"`
}

type yamlEntry struct {
	Category string `yaml:"category"`
	Details  string `yaml:"details,omitempty"`
}

// ExportMarkdown exports records as Markdown, one table per day.
func (d *DB) ExportMarkdown(year *uint) (string, error) {
	data, err := d.GetAllData(year)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# kal export - %s\n\n", data.ExportedAt.Format("2006-01-02")))

	for _, group := range GroupByDay(data.Records) {
		sb.WriteString(fmt.Sprintf("## %s\n\n", group.Day))
		sb.WriteString("| Category | Details |\n")
		sb.WriteString("|----------|---------|\n")
		for _, r := range group.Records {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", r.Category, r.DetailsOr("")))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// DayGroup holds the records of one day.
type DayGroup struct {
	Day     models.Day
	Records []*models.Record
}

// GroupByDay groups records by day, keeping the order in which each day
// first appears and the record order within it.
func GroupByDay(records []*models.Record) []DayGroup {
	var groups []DayGroup
	index := make(map[models.Day]int)

	for _, r := range records {
		day := r.Day()
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
