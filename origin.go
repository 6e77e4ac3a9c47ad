package tablegrid

import "slices"

// Origin returns the raw source text the cell was built from. it is never
// rewritten by interpretation.
func (c *Cell) Origin() string { return c.origin }

// Edited reports whether the displayed text was changed outside the
// pipeline since the last read. a refresh discards such edits because it
// starts again from the origin.
func (c *Cell) Edited() bool { return c.text != c.interpreted }

// markOrigin snapshots kind, attributes and events as the state a refresh
// returns to
func (c *Cell) markOrigin() {
	c.originKind = c.kind
	c.originAttributes = slices.Clone(c.attributes)
	c.originEvents = slices.Clone(c.events)
}

// resetToOrigin drops every interpretation result. tag side effects
// (attributes, events, kind) are rolled back to the origin snapshot.
func (c *Cell) resetToOrigin() {
	c.text = c.origin
	c.interpreted = c.origin
	c.kind = c.originKind
	c.attributes = slices.Clone(c.originAttributes)
	c.events = slices.Clone(c.originEvents)
	c.err = nil
}

// Origins returns the origin text of every cell, row by row
func (g *Grid) Origins() [][]string {
	out := make([][]string, len(g.rows))
	for y, row := range g.rows {
		out[y] = make([]string, len(row))
		for x, c := range row {
			out[y][x] = c.origin
		}
	}
	return out
}

// ReplaceCell swaps the cell at (x, y) for a new one built from raw text,
// the only way to change an origin. spans and the header marker are read
// from raw as when building; interpretation switches are not carried over.
func (g *Grid) ReplaceCell(x, y int, raw string) bool {
	if !g.DoesExist(x, y) || raw == placeholderText {
		return false
	}
	g.rows[y][x] = g.newRawCell(x, y, raw)
	g.references().Clear()
	return true
}

// ResetToOrigin puts every cell back to its origin text and the grid back
// to the raw stage
func (g *Grid) ResetToOrigin() {
	for c := range g.Cells() {
		c.resetToOrigin()
	}
	g.stage = StageRaw
	g.references().Clear()
}
