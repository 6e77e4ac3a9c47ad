package tablegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func raggedGrid() *Grid {
	return BuildFromRows([][]string{
		{"a", "b", "c"},
		{"d", "e"},
		{"f", "g", "h", "i"},
	})
}

func TestSelectMultipleCells(t *testing.T) {
	g := raggedGrid()

	tests := []struct {
		name     string
		from, to Address
		want     []string
	}{
		{"single cell", Address{X: 1, Y: 0}, Address{X: 1, Y: 0}, []string{"b"}},
		{"one row", Address{X: 0, Y: 0}, Address{X: 2, Y: 0}, []string{"a", "b", "c"}},
		{"start x kept on every row", Address{X: 1, Y: 0}, Address{X: 1, Y: 2}, []string{"b", "c", "e", "g"}},
		{"last row clipped to its length", Address{X: 0, Y: 0}, Address{X: 2, Y: 1}, []string{"a", "b", "c", "d", "e"}},
		{"x beyond the row is clipped", Address{X: 0, Y: 0}, Address{X: 5, Y: 0}, []string{"a", "b", "c"}},
		{"start beyond the row", Address{X: 5, Y: 0}, Address{X: 6, Y: 0}, []string{}},
		{"stops at an absent row", Address{X: 0, Y: 1}, Address{X: 0, Y: 5}, []string{"d", "e", "f", "g", "h", "i"}},
		{"reversed", Address{X: 1, Y: 2}, Address{X: 1, Y: 0}, []string{"g", "e", "c", "b"}},
		{"reversed on one row", Address{X: 2, Y: 0}, Address{X: 0, Y: 0}, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(SelectMultipleCells(tt.from, tt.to, g))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, texts(Range{From: tt.from, To: tt.to}.Select(g)))
		})
	}
}

func TestRangeCellsStopsEarly(t *testing.T) {
	g := raggedGrid()
	var seen []string
	for c := range (Range{From: Address{X: 0, Y: 0}, To: Address{X: 3, Y: 2}}).Cells(g) {
		seen = append(seen, c.Text())
		if len(seen) == 4 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, seen)
}

func TestSelectRowsAndColumns(t *testing.T) {
	g := raggedGrid()

	assert.Equal(t, []string{"d", "e"}, texts(SelectRow(1, g)))
	assert.Empty(t, SelectRow(7, g))
	assert.Equal(t, []string{"b", "e", "g"}, texts(SelectColumn(1, g)))
	assert.Equal(t, []string{"i"}, texts(SelectColumn(3, g)))

	rows := SelectSeveralRows(0, 1, g)
	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b", "c"}, texts(rows[0]))
	assert.Equal(t, []string{"d", "e"}, texts(rows[1]))

	rows = SelectSeveralRows(1, 0, g)
	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"e", "d"}, texts(rows[0]))
	assert.Equal(t, []string{"c", "b", "a"}, texts(rows[1]))

	rows = SelectSeveralRows(2, 2, g)
	assert.Len(t, rows, 1)
	assert.Equal(t, []string{"f", "g", "h", "i"}, texts(rows[0]))

	cols := SelectSeveralColumns(0, 1, g)
	assert.Len(t, cols, 2)
	assert.Equal(t, []string{"a", "d", "f"}, texts(cols[0]))
	assert.Equal(t, []string{"b", "e", "g"}, texts(cols[1]))

	cols = SelectSeveralColumns(2, 1, g)
	assert.Len(t, cols, 2)
	assert.Equal(t, []string{"h", "c"}, texts(cols[0]))
	assert.Equal(t, []string{"g", "e", "b"}, texts(cols[1]))
}
