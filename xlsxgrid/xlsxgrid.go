// Package xlsxgrid moves tablegrid grids in and out of excelize workbooks.
// Merged ranges map to cell spans. Everything happens on in-memory
// workbooks; opening and saving files is left to the caller.
package xlsxgrid

import (
	"fmt"
	"strconv"

	"github.com/vogtb/go-tablegrid"
	"github.com/xuri/excelize/v2"
)

// SheetError represents an error while reading or writing a sheet.
type SheetError struct {
	SheetName string
	Op        string // "read", "merge", "write", "style"
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("xlsxgrid: %s sheet %q: %v", e.Op, e.SheetName, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheetName, op string, err error) *SheetError {
	return &SheetError{SheetName: sheetName, Op: op, Err: err}
}

// merge is a merged range in zero-based coordinates, end inclusive.
type merge struct {
	startCol, startRow int
	endCol, endRow     int
}

// FromSheet reverse-derives raw rows from a sheet. The top-left cell of a
// merged range carries ".c*N" / ".r*N" suffixes for its row and column
// spans, every other cell of the range becomes the "." placeholder, and
// rows are padded with empty cells to a common width.
func FromSheet(f *excelize.File, sheetName string) ([][]string, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, NewSheetError(sheetName, "read", err)
	}
	merges, err := readMerges(f, sheetName)
	if err != nil {
		return nil, err
	}

	height, width := len(rows), 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for _, m := range merges {
		height = max(height, m.endRow+1)
		width = max(width, m.endCol+1)
	}

	covered := make(map[[2]int]bool)
	origins := make(map[[2]int]merge)
	for _, m := range merges {
		origins[[2]int{m.startCol, m.startRow}] = m
		for y := m.startRow; y <= m.endRow; y++ {
			for x := m.startCol; x <= m.endCol; x++ {
				if x != m.startCol || y != m.startRow {
					covered[[2]int{x, y}] = true
				}
			}
		}
	}

	out := make([][]string, height)
	for y := range height {
		line := make([]string, width)
		for x := range width {
			if covered[[2]int{x, y}] {
				line[x] = "."
				continue
			}
			text := ""
			if y < len(rows) && x < len(rows[y]) {
				text = rows[y][x]
			}
			if m, ok := origins[[2]int{x, y}]; ok {
				text += spanSuffixes(m)
			}
			line[x] = text
		}
		out[y] = line
	}
	return out, nil
}

func spanSuffixes(m merge) string {
	suffix := ""
	if n := m.endRow - m.startRow + 1; n > 1 {
		suffix += ".c*" + strconv.Itoa(n)
	}
	if n := m.endCol - m.startCol + 1; n > 1 {
		suffix += ".r*" + strconv.Itoa(n)
	}
	return suffix
}

func readMerges(f *excelize.File, sheetName string) ([]merge, error) {
	mergeCells, err := f.GetMergeCells(sheetName)
	if err != nil {
		return nil, NewSheetError(sheetName, "merge", err)
	}
	merges := make([]merge, 0, len(mergeCells))
	for _, mc := range mergeCells {
		sc, sr, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, NewSheetError(sheetName, "merge", err)
		}
		ec, er, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, NewSheetError(sheetName, "merge", err)
		}
		merges = append(merges, merge{startCol: sc - 1, startRow: sr - 1, endCol: ec - 1, endRow: er - 1})
	}
	return merges, nil
}

// ReadSheet builds a grid from a sheet with the engine and reads it. The
// grid is returned even when some cells failed; the error joins the
// per-cell failures.
func ReadSheet(e *tablegrid.Engine, f *excelize.File, sheetName string) (*tablegrid.Grid, error) {
	rows, err := FromSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	g := e.BuildFromRows(rows)
	return g, e.Read(g)
}

// Placement is where a grid cell lands on a sheet, zero-based.
type Placement struct {
	Cell *tablegrid.Cell
	Col  int
	Row  int
}

// Layout places every cell of g on a dense sheet. A cell takes the first
// column of its row not yet occupied by a cell spanning down from above or
// by its left neighbour's colspan.
func Layout(g *tablegrid.Grid) []Placement {
	occupied := make(map[[2]int]bool)
	placements := make([]Placement, 0, g.CellCount())
	for y := range g.RowCount() {
		col := 0
		for _, c := range g.Row(y) {
			for occupied[[2]int{col, y}] {
				col++
			}
			placements = append(placements, Placement{Cell: c, Col: col, Row: y})
			for dy := range c.Rowspan() {
				for dx := range c.Colspan() {
					occupied[[2]int{col + dx, y + dy}] = true
				}
			}
			col += c.Colspan()
		}
	}
	return placements
}

// ToSheet writes the displayed text of every cell of g to a sheet, creating
// the sheet when missing. Spanned cells become merged ranges and header
// cells are written bold.
func ToSheet(f *excelize.File, sheetName string, g *tablegrid.Grid) error {
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return NewSheetError(sheetName, "write", err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return NewSheetError(sheetName, "write", err)
		}
	}

	headerStyle := 0
	for _, p := range Layout(g) {
		topLeft, err := excelize.CoordinatesToCellName(p.Col+1, p.Row+1)
		if err != nil {
			return NewSheetError(sheetName, "write", err)
		}
		if err := f.SetCellStr(sheetName, topLeft, p.Cell.Text()); err != nil {
			return NewSheetError(sheetName, "write", err)
		}

		bottomRight := topLeft
		if p.Cell.Colspan() > 1 || p.Cell.Rowspan() > 1 {
			bottomRight, err = excelize.CoordinatesToCellName(p.Col+p.Cell.Colspan(), p.Row+p.Cell.Rowspan())
			if err != nil {
				return NewSheetError(sheetName, "merge", err)
			}
			if err := f.MergeCell(sheetName, topLeft, bottomRight); err != nil {
				return NewSheetError(sheetName, "merge", err)
			}
		}

		if p.Cell.Kind() != tablegrid.KindHeader {
			continue
		}
		if headerStyle == 0 {
			headerStyle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
			if err != nil {
				return NewSheetError(sheetName, "style", err)
			}
		}
		if err := f.SetCellStyle(sheetName, topLeft, bottomRight, headerStyle); err != nil {
			return NewSheetError(sheetName, "style", err)
		}
	}
	return nil
}
