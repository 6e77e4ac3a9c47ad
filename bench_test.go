package tablegrid

import (
	"fmt"
	"testing"
)

func benchEngine(b *testing.B) *Engine {
	b.Helper()
	e, err := NewEngine(Options{Quiet: true})
	if err != nil {
		b.Fatal(err)
	}
	return e
}

func BenchmarkBuildFromRows(b *testing.B) {
	rows := make([][]string, 100)
	for y := range rows {
		rows[y] = make([]string, 26)
		for x := range rows[y] {
			rows[y][x] = fmt.Sprint(y * x)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildFromRows(rows)
	}
}

func BenchmarkFragmentChain(b *testing.B) {
	e := benchEngine(b)

	rows := [][]string{{"1"}}
	for y := 1; y < 100; y++ {
		rows = append(rows, []string{fmt.Sprintf("{#%d-0}+{1}", y-1)})
	}
	g := e.BuildFromRows(rows)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.Refresh(g); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWideFanOut(b *testing.B) {
	e := benchEngine(b)

	rows := [][]string{{"100"}}
	for y := 1; y <= 500; y++ {
		rows = append(rows, []string{"{#0-0 * 2}"})
	}
	g := e.BuildFromRows(rows)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.Refresh(g); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLargeRangeSUM(b *testing.B) {
	e := benchEngine(b)

	row := make([]string, 1000)
	for x := range row {
		row[x] = fmt.Sprint(x + 1)
	}
	g := e.BuildFromRows([][]string{row, {"=SUM(#0-0:0-999)", "=AVERAGE(#0-0:0-999)"}})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.Refresh(g); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTagInterpret(b *testing.B) {
	e := benchEngine(b)
	if err := e.RegisterTag(greetTag()); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.InterpretCustomFunction("<Main><Greet(a, b, c)>")
	}
}
