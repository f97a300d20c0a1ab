package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// LoadFile reads a workbook from disk, dispatching on the file extension.
//
//   - .xlsx, .xlsm, .xltx, .xltm: every worksheet, raw cell values (dates
//     stay serial numbers)
//   - .csv: one worksheet named after the file without its extension
//   - .parquet: one worksheet; the schema's column names form row 1
func LoadFile(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return loadExcel(path)
	case ".csv":
		return loadCSV(path)
	case ".parquet":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported workbook format: %s", path)
	}
}

func loadExcel(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, errors.New("no sheets found in XLSX file")
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return NewWorkbook(sheets...), nil
}

func loadCSV(path string) (*Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1 // ragged rows are allowed
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewWorkbook(Sheet{Name: name, Rows: records}), nil
}

func loadParquet(path string) (*Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	fields := pqFile.Schema().Fields()
	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = field.Name()
	}
	grid := [][]string{header}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]any)
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		cells := make([]string, len(header))
		for i, name := range header {
			v := row[name]
			if v == nil {
				continue
			}
			text, err := cast.ToStringE(v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
			cells[i] = text
		}
		grid = append(grid, cells)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewWorkbook(Sheet{Name: name, Rows: grid}), nil
}
