package tablegrid

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// raw input markers
const (
	placeholderText = "."   // empty slot, consumes no cell
	headerMarker    = "@"   // leading marker for header cells
	colspanSuffix   = ".r*" // .r*N spans N columns
	rowspanSuffix   = ".c*" // .c*N spans N rows
)

var (
	regexColspan = regexp.MustCompile(`\.r\*(\d+)`)
	regexRowspan = regexp.MustCompile(`\.c\*(\d+)`)
)

// Stage is the interpretation state of a grid. every cell of the grid goes
// through a stage before the next stage starts.
type Stage uint8

const (
	StageRaw Stage = iota
	StageTagResolved
	StageSequenceResolved
	StageFormulaResolved
)

func (s Stage) String() string {
	switch s {
	case StageTagResolved:
		return "tag-resolved"
	case StageSequenceResolved:
		return "sequence-resolved"
	case StageFormulaResolved:
		return "formula-resolved"
	default:
		return "raw"
	}
}

// Grid is an ordered list of rows, each an ordered list of cells. rows may
// have different lengths because spanned cells take a single slot.
type Grid struct {
	rows        [][]*Cell
	stage       Stage
	commonClass string
	refs        *ReferenceGraph // references seen by the last read
}

// NewGrid creates an empty grid
func NewGrid() *Grid {
	return &Grid{rows: [][]*Cell{}, refs: NewReferenceGraph()}
}

// BuildFromRows builds a grid from raw row data. a raw cell may carry span
// suffixes (.r*N, .c*N) and a leading header marker (@); "." is an empty
// placeholder that creates no cell.
func BuildFromRows(rows [][]string) *Grid {
	return buildFromRows(rows, "")
}

func buildFromRows(rows [][]string, commonClass string) *Grid {
	g := &Grid{rows: make([][]*Cell, 0, len(rows)), commonClass: commonClass, refs: NewReferenceGraph()}
	for _, raw := range rows {
		g.rows = append(g.rows, g.newRow(raw, len(g.rows)))
	}
	return g
}

// newRow converts raw texts into cells for row y
func (g *Grid) newRow(raw []string, y int) []*Cell {
	row := make([]*Cell, 0, len(raw))
	for _, text := range raw {
		if text == placeholderText {
			continue
		}
		row = append(row, g.newRawCell(len(row), y, text))
	}
	return row
}

func (g *Grid) newRawCell(x, y int, raw string) *Cell {
	text, colspan, rowspan, kind := parseRawCell(raw)
	c := newCell(x, y, text, colspan, rowspan, kind)
	if g.commonClass != "" {
		c.SetAttribute("class", g.commonClass)
	}
	c.markOrigin()
	return c
}

// parseRawCell strips span suffixes and the header marker from raw text
func parseRawCell(raw string) (text string, colspan, rowspan int, kind CellKind) {
	colspan = spanFrom(regexColspan, raw)
	rowspan = spanFrom(regexRowspan, raw)

	text = regexColspan.ReplaceAllString(raw, "")
	text = regexRowspan.ReplaceAllString(text, "")

	kind = KindNormal
	if strings.HasPrefix(text, headerMarker) {
		kind = KindHeader
		text = text[len(headerMarker):]
	}
	return text, colspan, rowspan, kind
}

func spanFrom(re *regexp.Regexp, raw string) int {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ExportToRows is the inverse of BuildFromRows. it writes the displayed
// text of every cell, restores the header marker and span suffixes, and pads
// each row with "." up to the widest row.
func ExportToRows(g *Grid) [][]string {
	width := g.MaxRowLength()
	out := make([][]string, len(g.rows))
	for y, row := range g.rows {
		line := make([]string, 0, width)
		for _, c := range row {
			line = append(line, exportCell(c))
		}
		for len(line) < width {
			line = append(line, placeholderText)
		}
		out[y] = line
	}
	return out
}

func exportCell(c *Cell) string {
	var b strings.Builder
	if c.kind == KindHeader {
		b.WriteString(headerMarker)
	}
	b.WriteString(c.text)
	if c.rowspan > 1 {
		b.WriteString(rowspanSuffix + strconv.Itoa(c.rowspan))
	}
	if c.colspan > 1 {
		b.WriteString(colspanSuffix + strconv.Itoa(c.colspan))
	}
	return b.String()
}

// Stage returns how far the last read went
func (g *Grid) Stage() Stage { return g.stage }

// RowCount returns the number of rows
func (g *Grid) RowCount() int { return len(g.rows) }

// RowLength returns the number of cells in row y, 0 if the row is absent
func (g *Grid) RowLength(y int) int {
	if y < 0 || y >= len(g.rows) {
		return 0
	}
	return len(g.rows[y])
}

// MaxRowLength returns the number of cells of the widest row
func (g *Grid) MaxRowLength() int {
	n := 0
	for _, row := range g.rows {
		n = max(n, len(row))
	}
	return n
}

// CellCount returns the total number of cells
func (g *Grid) CellCount() int {
	n := 0
	for _, row := range g.rows {
		n += len(row)
	}
	return n
}

// DoesExist reports whether a cell exists at (x, y)
func (g *Grid) DoesExist(x, y int) bool {
	_, ok := g.Cell(x, y)
	return ok
}

// Cell returns the cell at (x, y)
func (g *Grid) Cell(x, y int) (*Cell, bool) {
	if y < 0 || y >= len(g.rows) || x < 0 || x >= len(g.rows[y]) {
		return nil, false
	}
	return g.rows[y][x], true
}

// At is Cell with an Address
func (g *Grid) At(addr Address) (*Cell, bool) {
	return g.Cell(addr.X, addr.Y)
}

// Row returns a copy of row y, nil if absent
func (g *Grid) Row(y int) []*Cell {
	if y < 0 || y >= len(g.rows) {
		return nil
	}
	out := make([]*Cell, len(g.rows[y]))
	copy(out, g.rows[y])
	return out
}

// Column returns the x-th cell of every row that has one
func (g *Grid) Column(x int) []*Cell {
	var out []*Cell
	for _, row := range g.rows {
		if x >= 0 && x < len(row) {
			out = append(out, row[x])
		}
	}
	return out
}

// Cells iterates every cell in reading order
func (g *Grid) Cells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for _, row := range g.rows {
			for _, c := range row {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Texts returns the displayed text of every cell, row by row
func (g *Grid) Texts() [][]string {
	out := make([][]string, len(g.rows))
	for y, row := range g.rows {
		out[y] = make([]string, len(row))
		for x, c := range row {
			out[y][x] = c.text
		}
	}
	return out
}

// structural edits. they report success instead of failing so a batch of
// edits can be applied best-effort.

// AddRow inserts a row of raw texts before index, or appends it when index
// is -1 or equal to the row count
func (g *Grid) AddRow(raw []string, index int) bool {
	if index == -1 {
		index = len(g.rows)
	}
	if index < 0 || index > len(g.rows) {
		return false
	}
	row := g.newRow(raw, index)
	g.rows = append(g.rows, nil)
	copy(g.rows[index+1:], g.rows[index:])
	g.rows[index] = row
	g.reindex()
	return true
}

// AddColumn adds raw texts to the existing rows, one per row, inserting
// before index or appending when index is -1 or past the row end
func (g *Grid) AddColumn(column []string, index int) bool {
	if len(column) > len(g.rows) || index < -1 {
		return false
	}
	for y, text := range column {
		if text == placeholderText {
			continue
		}
		row := g.rows[y]
		c := g.newRawCell(0, y, text)
		if index == -1 || index >= len(row) {
			g.rows[y] = append(row, c)
			continue
		}
		row = append(row, nil)
		copy(row[index+1:], row[index:])
		row[index] = c
		g.rows[y] = row
	}
	g.reindex()
	return true
}

// RemoveRow deletes row y
func (g *Grid) RemoveRow(y int) bool {
	if y < 0 || y >= len(g.rows) {
		return false
	}
	g.rows = append(g.rows[:y], g.rows[y+1:]...)
	g.reindex()
	return true
}

// RemoveColumn deletes column x. rows shorter than the widest row are
// shifted by the number of slots they lack, so the cell removed from each
// row is the one visually under column x when the missing slots sit at the
// row start (cells spanning down from above).
func (g *Grid) RemoveColumn(x int) bool {
	width := g.MaxRowLength()
	if x < 0 || x >= width {
		return false
	}
	for y, row := range g.rows {
		idx := x - (width - len(row))
		if idx < 0 || idx >= len(row) {
			continue
		}
		g.rows[y] = append(row[:idx], row[idx+1:]...)
	}
	g.reindex()
	return true
}

// RemoveCellAt deletes the cell at (x, y)
func (g *Grid) RemoveCellAt(x, y int) bool {
	if !g.DoesExist(x, y) {
		return false
	}
	row := g.rows[y]
	g.rows[y] = append(row[:x], row[x+1:]...)
	g.reindex()
	return true
}

// Clear removes every row
func (g *Grid) Clear() {
	g.rows = [][]*Cell{}
	g.stage = StageRaw
	g.references().Clear()
}

// Transpose turns the x-th cell of every row into row x. colspan and
// rowspan of each cell are swapped.
func (g *Grid) Transpose() {
	width := g.MaxRowLength()
	rows := make([][]*Cell, width)
	for _, row := range g.rows {
		for x, c := range row {
			c.colspan, c.rowspan = c.rowspan, c.colspan
			rows[x] = append(rows[x], c)
		}
	}
	g.rows = rows
	g.reindex()
}

// reindex rewrites cell addresses after a structural edit. recorded
// references point at old addresses, so they are dropped until the next read.
func (g *Grid) reindex() {
	for y, row := range g.rows {
		for x, c := range row {
			c.addr = Address{X: x, Y: y}
		}
	}
	g.references().Clear()
}

// references returns the reference graph, creating it for a zero Grid
func (g *Grid) references() *ReferenceGraph {
	if g.refs == nil {
		g.refs = NewReferenceGraph()
	}
	return g.refs
}
