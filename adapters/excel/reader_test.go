package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"crossfold/domain/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestDataReaderLoadsSupervisedCSV(t *testing.T) {
	path := writeCSV(t, "x1,x2,outcome\n1.0,2.0,3.0\n4.0,5.0,6.0\n7.0,8.0,9.0\n")

	bundle, err := NewDataReader(path).Load(context.Background(), "outcome")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if bundle.Rows() != 3 || bundle.Cols() != 2 {
		t.Fatalf("expected 3x2 matrix, got %dx%d", bundle.Rows(), bundle.Cols())
	}
	if !bundle.IsSupervised() {
		t.Fatal("expected a supervised bundle")
	}
	if bundle.Response[1] != 6.0 {
		t.Errorf("expected response[1] = 6.0, got %f", bundle.Response[1])
	}
	if bundle.Matrix.VariableKeys[0] != "x1" || bundle.Matrix.VariableKeys[1] != "x2" {
		t.Errorf("unexpected variable keys: %v", bundle.Matrix.VariableKeys)
	}
	if bundle.Fingerprint.IsEmpty() {
		t.Error("expected a dataset fingerprint")
	}
}

func TestDataReaderLoadsUnsupervisedCSV(t *testing.T) {
	path := writeCSV(t, "a,b,c\n1,2,3\n4,5,6\n")

	bundle, err := NewDataReader(path).Load(context.Background(), "")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if bundle.IsSupervised() {
		t.Fatal("expected an unsupervised bundle")
	}
	if bundle.Cols() != 3 {
		t.Errorf("expected all 3 columns in the matrix, got %d", bundle.Cols())
	}
}

func TestDataReaderRejectsBadInput(t *testing.T) {
	t.Run("missing response column", func(t *testing.T) {
		path := writeCSV(t, "a,b\n1,2\n")
		_, err := NewDataReader(path).Load(context.Background(), "outcome")
		if !core.IsConfigurationError(err) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("non-numeric cell", func(t *testing.T) {
		path := writeCSV(t, "a,b\n1,2\n3,oops\n")
		_, err := NewDataReader(path).Load(context.Background(), "")
		if !core.IsDataShapeError(err) {
			t.Errorf("expected data shape error, got %v", err)
		}
	})

	t.Run("header only", func(t *testing.T) {
		path := writeCSV(t, "a,b\n")
		_, err := NewDataReader(path).Load(context.Background(), "")
		if !core.IsInsufficientDataError(err) {
			t.Errorf("expected insufficient data error, got %v", err)
		}
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background(), "")
		if err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

func TestDataReaderLoadsWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"x1", "x2", "outcome"},
		{1.0, 2.0, 10.0},
		{3.0, 4.0, 20.0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to name cell: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("failed to write fixture row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}
	f.Close()

	bundle, err := NewDataReader(path).Load(context.Background(), "outcome")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if bundle.Rows() != 2 || bundle.Cols() != 2 {
		t.Fatalf("expected 2x2 matrix, got %dx%d", bundle.Rows(), bundle.Cols())
	}
	if bundle.Response[0] != 10.0 || bundle.Response[1] != 20.0 {
		t.Errorf("unexpected response: %v", bundle.Response)
	}
}
