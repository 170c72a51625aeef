package excel

import (
	"fmt"
	"log"
	"math"

	"github.com/xuri/excelize/v2"

	"crossfold/domain/cv"
)

// ReportWriter exports run results as an Excel workbook
type ReportWriter struct {
	filePath string
}

// NewReportWriter creates a writer targeting the given .xlsx path
func NewReportWriter(filePath string) *ReportWriter {
	return &ReportWriter{filePath: filePath}
}

// WriteSelectionReport writes a workbook with a summary sheet, one
// evaluation sheet per outer fold, and the held-out predictions.
func (w *ReportWriter) WriteSelectionReport(manifest *cv.RunManifest, selections []cv.Selection, tables []*cv.EvalTable, set *cv.PredictionSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummary(f, manifest, selections, set); err != nil {
		return err
	}
	for i, table := range tables {
		if err := w.writeEvalTable(f, fmt.Sprintf("Fold %d Evaluation", i+1), table); err != nil {
			return err
		}
	}
	if err := w.writePredictions(f, set); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	log.Printf("[ReportWriter] selection report written to %s", w.filePath)
	return nil
}

// WriteRankReport writes a workbook for a bi-cross-validation run: the
// summary, the global evaluation table, and the per-complexity means.
func (w *ReportWriter) WriteRankReport(manifest *cv.RunManifest, sel cv.Selection, table *cv.EvalTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Run ID", manifest.RunID.String()},
		{"Dataset Fingerprint", string(manifest.DatasetFingerprint)},
		{"Seed", manifest.Seed},
		{"Selected Rank", sel.Complexity},
		{"Mean Reconstruction Error", sel.MeanError},
	}
	if err := w.writeRows(f, sheet, rows); err != nil {
		return err
	}

	if err := w.writeEvalTable(f, "Block Evaluation", table); err != nil {
		return err
	}
	means := table.MeanByComplexity()
	meanRows := [][]interface{}{{"Complexity", "Mean Error"}}
	for c, m := range means {
		meanRows = append(meanRows, []interface{}{c, cellValue(m)})
	}
	if _, err := f.NewSheet("Means"); err != nil {
		return err
	}
	if err := w.writeRows(f, "Means", meanRows); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	log.Printf("[ReportWriter] rank report written to %s", w.filePath)
	return nil
}

func (w *ReportWriter) writeSummary(f *excelize.File, manifest *cv.RunManifest, selections []cv.Selection, set *cv.PredictionSet) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Run ID", manifest.RunID.String()},
		{"Dataset Fingerprint", string(manifest.DatasetFingerprint)},
		{"Seed", manifest.Seed},
		{"Runtime (ms)", manifest.RuntimeMs},
		{"Held-out Statistic", cellValue(set.Statistic)},
		{"Degenerate Folds", fmt.Sprintf("%v", set.DegenerateFolds)},
		{},
		{"Outer Fold", "Selected Complexity", "Mean Error"},
	}
	for i, sel := range selections {
		rows = append(rows, []interface{}{i + 1, sel.Complexity, cellValue(sel.MeanError)})
	}
	return w.writeRows(f, sheet, rows)
}

func (w *ReportWriter) writeEvalTable(f *excelize.File, sheet string, table *cv.EvalTable) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Fold"}
	for _, c := range table.Complexities {
		header = append(header, fmt.Sprintf("c=%d", c))
	}
	rows := [][]interface{}{header}
	for fold := 1; fold <= table.FoldCount; fold++ {
		row := []interface{}{fold}
		for _, c := range table.Complexities {
			row = append(row, cellValue(table.Get(fold, c)))
		}
		rows = append(rows, row)
	}
	return w.writeRows(f, sheet, rows)
}

func (w *ReportWriter) writePredictions(f *excelize.File, set *cv.PredictionSet) error {
	sheet := "Predictions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{{"Index", "Fold", "Predicted", "Actual"}}
	for _, p := range set.Predictions {
		rows = append(rows, []interface{}{p.Index, p.Fold, p.Predicted, p.Actual})
	}
	return w.writeRows(f, sheet, rows)
}

func (w *ReportWriter) writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cellValue keeps unscored entries readable in the workbook
func cellValue(v float64) interface{} {
	if math.IsNaN(v) {
		return "unscored"
	}
	return v
}
