package datasource

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExcelImporter reads the first sheet of an xlsx workbook, treating the first
// row as the header.
type ExcelImporter struct{}

func (ExcelImporter) Extensions() []string { return []string{".xlsx", ".xlsm"} }
func (ExcelImporter) Description() string  { return "Excel Files" }

func (ExcelImporter) Import(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("datasource: open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("datasource: %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("datasource: read %s: %w", filepath.Base(path), err)
	}
	return datasetFromRecords(rows)
}
