package tablegrid

import (
	"iter"
	"slices"
)

// Range is a pair of addresses as written by the caller. the covered cells
// run in reading order from the smaller endpoint to the larger one, with each
// row clipped to its actual length.
type Range struct {
	From Address
	To   Address
}

func (r Range) String() string {
	return r.From.String() + ":" + r.To.String()[1:]
}

// IsReversed reports whether the endpoints were written larger first
func (r Range) IsReversed() bool {
	return r.From.Y > r.To.Y || (r.From.Y == r.To.Y && r.From.X > r.To.X)
}

// normalized returns the range with the smaller endpoint first. endpoints are
// swapped as whole pairs, never per axis.
func (r Range) normalized() Range {
	if r.IsReversed() {
		return Range{From: r.To, To: r.From}
	}
	return r
}

// Cells iterates the cells of the range in sweep order, from the smaller to
// the larger endpoint. the iteration stops at the first absent row.
func (r Range) Cells(g *Grid) iter.Seq[*Cell] {
	n := r.normalized()
	return func(yield func(*Cell) bool) {
		for y := n.From.Y; y <= n.To.Y; y++ {
			if y < 0 || y >= len(g.rows) {
				return
			}
			row := g.rows[y]
			end := len(row) - 1
			if y == n.To.Y {
				end = min(n.To.X, end)
			}
			for x := max(n.From.X, 0); x <= end; x++ {
				if !yield(row[x]) {
					return
				}
			}
		}
	}
}

// SelectMultipleCells expands a (from, to) pair into the cells it covers.
// the result always starts at the cell of the lexicographically smaller
// endpoint; when the caller wrote the larger endpoint first, the result is
// returned in reverse so it still reads from -> to. out of range x bounds are
// clipped to the row length instead of failing.
func SelectMultipleCells(from, to Address, g *Grid) []*Cell {
	r := Range{From: from, To: to}
	cells := slices.Collect(r.Cells(g))
	if r.IsReversed() {
		slices.Reverse(cells)
	}
	return cells
}

// Select is SelectMultipleCells over r
func (r Range) Select(g *Grid) []*Cell {
	return SelectMultipleCells(r.From, r.To, g)
}

// SelectRow returns the cells of row y
func SelectRow(y int, g *Grid) []*Cell {
	return g.Row(y)
}

// SelectColumn returns the x-th cell of every row that has one
func SelectColumn(x int, g *Grid) []*Cell {
	return g.Column(x)
}

// SelectSeveralRows returns rows y1..y2 inclusive. when y1 > y2 the rows and
// the cells inside each row come back in reverse order.
func SelectSeveralRows(y1, y2 int, g *Grid) [][]*Cell {
	if y1 == y2 {
		return [][]*Cell{g.Row(y1)}
	}
	return selectSeveral(y1, y2, g.Row)
}

// SelectSeveralColumns returns columns x1..x2 inclusive, with the same
// reversal rule as SelectSeveralRows
func SelectSeveralColumns(x1, x2 int, g *Grid) [][]*Cell {
	if x1 == x2 {
		return [][]*Cell{g.Column(x1)}
	}
	return selectSeveral(x1, x2, g.Column)
}

func selectSeveral(from, to int, pick func(int) []*Cell) [][]*Cell {
	reversed := from > to
	if reversed {
		from, to = to, from
	}
	out := make([][]*Cell, 0, to-from+1)
	for i := from; i <= to; i++ {
		line := pick(i)
		if reversed {
			slices.Reverse(line)
		}
		out = append(out, line)
	}
	if reversed {
		slices.Reverse(out)
	}
	return out
}
