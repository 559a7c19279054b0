package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"study-tracker/internal/study"
)

// CSVExporter writes one row per session, with a UTF-8 BOM so Excel opens
// the Chinese headers correctly.
type CSVExporter struct{}

func (e *CSVExporter) Export(m study.SessionsMap, w io.Writer) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"日期", "时段", "开始", "结束", "时长(秒)", "时长"}); err != nil {
		return err
	}
	for _, r := range Rows(m) {
		if err := writer.Write([]string{
			r.Date,
			study.Period(r.Period).Label(),
			r.Start.Format("15:04:05"),
			r.End.Format("15:04:05"),
			strconv.FormatInt(r.Duration, 10),
			r.Formatted,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (e *CSVExporter) Extension() string   { return "csv" }
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }
