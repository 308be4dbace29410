package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"

	"github.com/KaramelBytes/agentops-cli/internal/analysis"
)

type xlsLoader struct{}

func (xlsLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xls")
}

// Load reads the first worksheet of a legacy BIFF workbook. The first
// non-empty row is the header.
func (xlsLoader) Load(name string, content []byte) (ds *analysis.Dataset, err error) {
	// the BIFF decoder panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			ds, err = nil, fmt.Errorf("open xls: corrupt workbook: %v", r)
		}
	}()
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("open xls: workbook has no sheets")
	}
	var header []string
	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		if header == nil {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	if header == nil {
		return nil, errors.New("no columns to parse from file")
	}
	return analysis.NewDataset(filepath.Base(name), header, rows), nil
}
