package export

import (
	"fmt"
	"io"

	"study-tracker/internal/study"

	"github.com/xuri/excelize/v2"
)

const (
	detailSheet  = "学习明细"
	summarySheet = "每日汇总"
)

// XLSXExporter writes a detail sheet and a per-day summary sheet.
type XLSXExporter struct{}

func (e *XLSXExporter) Export(m study.SessionsMap, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", detailSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"日期", "时段", "开始", "结束", "时长(秒)", "时长"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(detailSheet, cell, h)
	}
	for idx, r := range Rows(m) {
		row := idx + 2
		f.SetCellValue(detailSheet, fmt.Sprintf("A%d", row), r.Date)
		f.SetCellValue(detailSheet, fmt.Sprintf("B%d", row), study.Period(r.Period).Label())
		f.SetCellValue(detailSheet, fmt.Sprintf("C%d", row), r.Start.Format("15:04:05"))
		f.SetCellValue(detailSheet, fmt.Sprintf("D%d", row), r.End.Format("15:04:05"))
		f.SetCellValue(detailSheet, fmt.Sprintf("E%d", row), r.Duration)
		f.SetCellValue(detailSheet, fmt.Sprintf("F%d", row), r.Formatted)
	}
	f.SetColWidth(detailSheet, "A", "A", 12)
	f.SetColWidth(detailSheet, "B", "B", 8)
	f.SetColWidth(detailSheet, "C", "D", 10)
	f.SetColWidth(detailSheet, "E", "F", 12)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	for i, h := range []string{"日期", "上午(秒)", "下午(秒)", "合计(秒)", "合计"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summarySheet, cell, h)
	}
	for idx, d := range sortedDates(m) {
		row := idx + 2
		t := m[d].Totals()
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), d)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), t.Morning)
		f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), t.Afternoon)
		f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), t.Day)
		f.SetCellValue(summarySheet, fmt.Sprintf("E%d", row), study.FormatChinese(t.Day))
	}

	return f.Write(w)
}

func (e *XLSXExporter) Extension() string { return "xlsx" }
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
