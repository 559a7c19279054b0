package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"study-tracker/internal/study"
)

// Exporter writes a sessions history in one file format
type Exporter interface {
	Export(m study.SessionsMap, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "csv", "":
		return &CSVExporter{}, nil
	case "xlsx", "excel":
		return &XLSXExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: csv, xlsx, json, yaml)", format)
	}
}

// Row is one session flattened for tabular formats.
type Row struct {
	Date      string    `json:"date" yaml:"date"`
	Period    string    `json:"period" yaml:"period"`
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
	Duration  int64     `json:"duration" yaml:"duration"`
	Formatted string    `json:"formatted" yaml:"formatted"`
}

// Rows flattens m ordered by date, then morning before afternoon, then
// recording order.
func Rows(m study.SessionsMap) []Row {
	var rows []Row
	for _, d := range sortedDates(m) {
		rec := m[d]
		for _, p := range study.Periods {
			for _, s := range rec.Sessions(p) {
				rows = append(rows, Row{
					Date:      d,
					Period:    string(p),
					Start:     s.Start,
					End:       s.End,
					Duration:  s.Duration,
					Formatted: study.FormatChinese(s.Duration),
				})
			}
		}
	}
	return rows
}

func sortedDates(m study.SessionsMap) []string {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
