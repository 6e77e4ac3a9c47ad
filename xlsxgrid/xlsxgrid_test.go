package xlsxgrid

import (
	"errors"
	"testing"

	"github.com/vogtb/go-tablegrid"
	"github.com/xuri/excelize/v2"
)

func newEngine(t *testing.T) *tablegrid.Engine {
	t.Helper()
	e, err := tablegrid.NewEngine(tablegrid.Options{Quiet: true})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func assertRows(t *testing.T, got, want [][]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %q", len(got), len(want), got)
	}
	for y := range want {
		if len(got[y]) != len(want[y]) {
			t.Errorf("row %d: got %q, want %q", y, got[y], want[y])
			continue
		}
		for x := range want[y] {
			if got[y][x] != want[y][x] {
				t.Errorf("row %d col %d: got %q, want %q", y, x, got[y][x], want[y][x])
			}
		}
	}
}

func TestFromSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "Title")
	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}
	f.SetCellValue(sheet, "A2", "1")
	f.SetCellValue(sheet, "B2", "2")
	f.SetCellValue(sheet, "C2", "3")
	f.SetCellValue(sheet, "A3", "=SUM(#1-0:1-2)")

	rows, err := FromSheet(f, sheet)
	if err != nil {
		t.Fatalf("FromSheet failed: %v", err)
	}
	assertRows(t, rows, [][]string{
		{"Title.r*3", ".", "."},
		{"1", "2", "3"},
		{"=SUM(#1-0:1-2)", "", ""},
	})
}

func TestFromSheetVerticalMerge(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "Group")
	f.SetCellValue(sheet, "B1", "b")
	f.SetCellValue(sheet, "B2", "c")
	if err := f.MergeCell(sheet, "A1", "A2"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}

	rows, err := FromSheet(f, sheet)
	if err != nil {
		t.Fatalf("FromSheet failed: %v", err)
	}
	assertRows(t, rows, [][]string{
		{"Group.c*2", "b"},
		{".", "c"},
	})

	g := tablegrid.BuildFromRows(rows)
	c, ok := g.Cell(0, 1)
	if !ok || c.Text() != "c" {
		t.Errorf("Cell(0, 1) = %v, want c", c)
	}
}

func TestFromSheetMissing(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := FromSheet(f, "Nope")
	if err == nil {
		t.Fatal("expected an error for a missing sheet")
	}
	var sheetErr *SheetError
	if !errors.As(err, &sheetErr) {
		t.Fatalf("error = %T, want *SheetError", err)
	}
	if sheetErr.SheetName != "Nope" || sheetErr.Op != "read" {
		t.Errorf("SheetError = %+v", sheetErr)
	}
}

func TestReadSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "2")
	f.SetCellValue(sheet, "B1", "3")
	f.SetCellValue(sheet, "C1", "{#0-0}+{#0-1}")
	f.SetCellValue(sheet, "A2", "=AVERAGE(#0-0:0-1)")
	f.SetCellValue(sheet, "B2", "{#7-7}")

	g, err := ReadSheet(newEngine(t), f, sheet)
	if !errors.Is(err, tablegrid.ErrReference) {
		t.Fatalf("ReadSheet error = %v, want a reference error", err)
	}
	if g == nil {
		t.Fatal("ReadSheet returned no grid")
	}

	want := [][]string{{"2", "3", "5"}, {"2.5", "{#7-7}", ""}}
	assertRows(t, g.Texts(), want)
}

func TestLayout(t *testing.T) {
	g := tablegrid.BuildFromRows([][]string{
		{"a.c*2", "b.r*2", "."},
		{".", "c", "d"},
	})

	got := Layout(g)
	want := []struct {
		text     string
		col, row int
	}{
		{"a", 0, 0},
		{"b", 1, 0},
		{"c", 1, 1},
		{"d", 2, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d placements, want %d", len(got), len(want))
	}
	for i, w := range want {
		p := got[i]
		if p.Cell.Text() != w.text || p.Col != w.col || p.Row != w.row {
			t.Errorf("placement %d = (%s, col %d, row %d), want (%s, col %d, row %d)",
				i, p.Cell.Text(), p.Col, p.Row, w.text, w.col, w.row)
		}
	}
}

func TestToSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	e := newEngine(t)
	g := e.BuildFromRows([][]string{
		{"<Main>Total.r*2", "."},
		{"{1+1}", "=SUM(1,2)"},
	})
	if err := e.Read(g); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if err := ToSheet(f, "Out", g); err != nil {
		t.Fatalf("ToSheet failed: %v", err)
	}

	for cell, want := range map[string]string{"A1": "Total", "A2": "2", "B2": "3"} {
		got, err := f.GetCellValue("Out", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) failed: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	merges, err := f.GetMergeCells("Out")
	if err != nil {
		t.Fatalf("GetMergeCells failed: %v", err)
	}
	if len(merges) != 1 || merges[0].GetStartAxis() != "A1" || merges[0].GetEndAxis() != "B1" {
		t.Errorf("merges = %v, want A1:B1", merges)
	}

	styleID, err := f.GetCellStyle("Out", "A1")
	if err != nil {
		t.Fatalf("GetCellStyle failed: %v", err)
	}
	if styleID == 0 {
		t.Error("header cell has no style")
	}
	plainID, _ := f.GetCellStyle("Out", "A2")
	if plainID != 0 {
		t.Errorf("A2 style = %d, want 0", plainID)
	}

	rows, err := FromSheet(f, "Out")
	if err != nil {
		t.Fatalf("FromSheet failed: %v", err)
	}
	assertRows(t, rows, [][]string{{"Total.r*2", "."}, {"2", "3"}})
}
