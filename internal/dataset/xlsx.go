package dataset

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxRows streams a worksheet. Cells are read raw so number formats
// (thousands separators, fixed decimals) never leak into parsing.
type xlsxRows struct {
	f    *excelize.File
	rows *excelize.Rows
}

func openXLSX(path, sheetName string) (*xlsxRows, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	target := sheets[0]
	if sheetName != "" {
		target = ""
		for _, s := range sheets {
			if strings.EqualFold(s, sheetName) {
				target = s
				break
			}
		}
		if target == "" {
			_ = f.Close()
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'; available sheets: %s",
				sheetName, filepath.Base(path), strings.Join(sheets, ", "))
		}
	}
	rows, err := f.Rows(target)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	return &xlsxRows{f: f, rows: rows}, nil
}

func (x *xlsxRows) Next() ([]string, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return x.rows.Columns(excelize.Options{RawCellValue: true})
}

func (x *xlsxRows) Close() error {
	_ = x.rows.Close()
	return x.f.Close()
}
