package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of an Office Open XML workbook. Cell kinds
// come from the workbook so that numeric and boolean cells are recognised
// even when their formatted text is not.
func readXLSX(data []byte, sampleSize int) (*grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Reason: "invalid spreadsheet", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &grid{}, nil
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Reason: "invalid spreadsheet", Err: err}
	}

	g, rowNums := fromSheetRows(rows)

	// Only the cells inference will look at are typed, while the file is open.
	kinds := make(map[[2]int]CellKind)
	for col := range g.headers {
		found := 0
		for i, row := range g.rows {
			if found == sampleSize {
				break
			}
			if strings.TrimSpace(row[col]) == "" {
				continue
			}
			found++
			cell, err := excelize.CoordinatesToCellName(col+1, rowNums[i]+1)
			if err != nil {
				continue
			}
			kinds[[2]int{i, col}] = xlsxKind(f, sheet, cell, row[col])
		}
	}
	g.kind = func(row, col int) CellKind {
		return kinds[[2]int{row, col}]
	}

	return g, nil
}

func xlsxKind(f *excelize.File, sheet, cell, value string) CellKind {
	t, err := f.GetCellType(sheet, cell)
	if err != nil {
		return KindText
	}
	switch t {
	case excelize.CellTypeBool:
		return KindBool
	case excelize.CellTypeNumber:
		return KindNumber
	case excelize.CellTypeUnset:
		// cells without a type attribute hold numbers
		if strings.TrimSpace(value) != "" {
			return KindNumber
		}
	}
	return KindText
}

// readXLS reads the first sheet of a legacy BIFF workbook. The reader
// exposes formatted text only, so every cell is text.
func readXLS(data []byte) (g *grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = &ParseError{Reason: "invalid spreadsheet", Err: fmt.Errorf("xls reader: %v", r)}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &ParseError{Reason: "invalid spreadsheet", Err: err}
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return &grid{}, nil
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}

	g, _ = fromSheetRows(rows)
	return g, nil
}

// xlsRow returns row i or nil when the sheet has no cells on it.
// WorkSheet.Row dereferences the missing entry, so blank rows panic.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
