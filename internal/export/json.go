package export

import (
	"encoding/json"
	"io"

	"study-tracker/internal/study"
)

// JSONExporter writes the sessions map as pretty-printed JSON, the same
// shape the share endpoint returns.
type JSONExporter struct{}

func (e *JSONExporter) Export(m study.SessionsMap, w io.Writer) error {
	if m == nil {
		m = study.SessionsMap{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func (e *JSONExporter) Extension() string   { return "json" }
func (e *JSONExporter) ContentType() string { return "application/json; charset=utf-8" }
