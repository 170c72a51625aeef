package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"crossfold/domain/core"
	"crossfold/domain/dataset"
)

// DataReader loads Excel and CSV files into matrix bundles
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Load reads the file into a validated bundle. responseColumn names the
// header to split off as the supervised response; empty loads the whole
// matrix for unsupervised runs.
func (r *DataReader) Load(ctx context.Context, responseColumn string) (*dataset.MatrixBundle, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s file must have a header row and at least one data row", core.ErrInsufficientData, strings.ToUpper(r.fileType))
	}

	return r.buildBundle(rows, responseColumn)
}

// readExcelRows reads the first sheet of the workbook as strings
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[DataReader] sheet %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	startTime := time.Now()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// buildBundle coerces string rows into a dense numeric matrix, splitting
// out the response column when one is named. Every cell must parse as a
// finite number; anything else is a data shape error, not a silent drop.
func (r *DataReader) buildBundle(rows [][]string, responseColumn string) (*dataset.MatrixBundle, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	responseIdx := -1
	if responseColumn != "" {
		for i, h := range headers {
			if strings.EqualFold(h, responseColumn) {
				responseIdx = i
				break
			}
		}
		if responseIdx < 0 {
			return nil, fmt.Errorf("%w: response column %q not found in header", core.ErrConfiguration, responseColumn)
		}
	}

	var keys []core.VariableKey
	for i, h := range headers {
		if i == responseIdx {
			continue
		}
		if h == "" {
			h = fmt.Sprintf("var_%d", i)
		}
		keys = append(keys, core.VariableKey(h))
	}

	data := make([][]float64, 0, len(rows)-1)
	var response []float64
	for i, row := range rows[1:] {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("%w: data row %d has %d cells, expected %d", core.ErrRaggedMatrix, i+1, len(row), len(headers))
		}
		values := make([]float64, 0, len(keys))
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: cell [%d,%d] %q is not numeric", core.ErrNonNumeric, i+1, j, cell)
			}
			if j == responseIdx {
				response = append(response, v)
				continue
			}
			values = append(values, v)
		}
		data = append(data, values)
	}

	bundle, err := dataset.NewMatrixBundle(dataset.Matrix{Data: data, VariableKeys: keys}, response, r.filePath)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s file loaded (%d rows, %d variables, supervised=%t)",
		strings.ToUpper(r.fileType), bundle.Rows(), bundle.Cols(), bundle.IsSupervised())
	return bundle, nil
}
