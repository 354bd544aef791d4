package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet = "Summary"
	resultsSheet = "Results"
)

// Exporter renders a check report as a two-sheet workbook.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string { return ContentType }

func (e *Exporter) Export(report *domain.CheckReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("xlsx export: nil report")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, fmt.Errorf("xlsx new sheet: %w", err)
	}

	summary := [][2]any{
		{"File", report.FileName},
		{"Total pages", report.TotalPages},
		{"Overall status", string(report.OverallStatus)},
		{"Processing time (ms)", report.ProcessingTimeMs},
		{"Checked at", report.Timestamp.UTC().Format(time.RFC3339)},
	}
	for i, kv := range summary {
		writeRow(f, summarySheet, i+1, kv[0], kv[1])
	}

	writeRow(f, resultsSheet, 1, "#", "Rule", "Status", "Confidence", "Evidence", "Reasoning")
	for i, r := range report.Results {
		writeRow(f, resultsSheet, i+2, i+1, r.Rule, string(r.Status), r.Confidence, r.Evidence, r.Reasoning)
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 40)
	_ = f.SetColWidth(resultsSheet, "A", "A", 5)
	_ = f.SetColWidth(resultsSheet, "B", "B", 48)
	_ = f.SetColWidth(resultsSheet, "C", "D", 12)
	_ = f.SetColWidth(resultsSheet, "E", "F", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
