package export

import (
	"io"

	"study-tracker/internal/study"

	"gopkg.in/yaml.v3"
)

// yamlDay is one date of the YAML document.
type yamlDay struct {
	Date      string `yaml:"date"`
	Heading   string `yaml:"heading"`
	Morning   int64  `yaml:"morning"`
	Afternoon int64  `yaml:"afternoon"`
	Total     string `yaml:"total"`
	Sessions  []Row  `yaml:"sessions"`
}

// YAMLExporter writes one document listing every day with its totals.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(m study.SessionsMap, w io.Writer) error {
	byDate := make(map[string][]Row)
	for _, r := range Rows(m) {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	days := make([]yamlDay, 0, len(m))
	for _, d := range sortedDates(m) {
		t := m[d].Totals()
		heading := d
		if day, err := study.ParseDateKey(d); err == nil {
			heading = study.FormatDateChinese(day)
		}
		sessions := byDate[d]
		if sessions == nil {
			sessions = []Row{}
		}
		days = append(days, yamlDay{
			Date:      d,
			Heading:   heading,
			Morning:   t.Morning,
			Afternoon: t.Afternoon,
			Total:     study.FormatChinese(t.Day),
			Sessions:  sessions,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"days": days}); err != nil {
		return err
	}
	return enc.Close()
}

func (e *YAMLExporter) Extension() string   { return "yaml" }
func (e *YAMLExporter) ContentType() string { return "application/x-yaml; charset=utf-8" }
