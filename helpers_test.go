package tablegrid

import (
	"errors"
	"testing"
)

// GridTestCase chains the build, read and assert steps of one scenario.
// a failed step reports through t and turns the remaining steps into no-ops.
type GridTestCase struct {
	t       *testing.T
	name    string
	engine  *Engine
	grid    *Grid
	readErr error
	skipped bool
}

func NewGridTestCase(t *testing.T, name string) *GridTestCase {
	t.Helper()
	e, err := NewEngine(Options{Quiet: true})
	if err != nil {
		t.Fatalf("%s: NewEngine() failed: %v", name, err)
	}
	return &GridTestCase{t: t, name: name, engine: e}
}

func NewGridTestCaseWithOptions(t *testing.T, name string, opts Options) *GridTestCase {
	t.Helper()
	opts.Quiet = true
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("%s: NewEngine() failed: %v", name, err)
	}
	return &GridTestCase{t: t, name: name, engine: e}
}

func (tc *GridTestCase) Skip() *GridTestCase {
	tc.skipped = true
	return tc
}

func (tc *GridTestCase) Rows(rows ...[]string) *GridTestCase {
	if tc.skipped {
		return tc
	}
	tc.grid = tc.engine.BuildFromRows(rows)
	return tc
}

func (tc *GridTestCase) Read() *GridTestCase {
	if tc.skipped {
		return tc
	}
	tc.readErr = tc.engine.Read(tc.grid)
	return tc
}

func (tc *GridTestCase) ReadAndAssertNoError() *GridTestCase {
	if tc.skipped {
		return tc
	}
	tc.readErr = tc.engine.Read(tc.grid)
	if tc.readErr != nil {
		tc.t.Errorf("%s: Read() failed: %v", tc.name, tc.readErr)
	}
	return tc
}

func (tc *GridTestCase) Refresh() *GridTestCase {
	if tc.skipped {
		return tc
	}
	tc.readErr = tc.engine.Refresh(tc.grid)
	return tc
}

func (tc *GridTestCase) SetText(x, y int, text string) *GridTestCase {
	if tc.skipped {
		return tc
	}
	c, ok := tc.grid.Cell(x, y)
	if !ok {
		tc.t.Errorf("%s: no cell at (x=%d, y=%d)", tc.name, x, y)
		return tc
	}
	c.SetText(text)
	return tc
}

func (tc *GridTestCase) AssertText(x, y int, expected string) *GridTestCase {
	if tc.skipped {
		return tc
	}
	c, ok := tc.grid.Cell(x, y)
	if !ok {
		tc.t.Errorf("%s: no cell at (x=%d, y=%d)", tc.name, x, y)
		return tc
	}
	if c.Text() != expected {
		tc.t.Errorf("%s: cell %s = %q, want %q", tc.name, c.Address(), c.Text(), expected)
	}
	return tc
}

func (tc *GridTestCase) AssertCellErr(x, y int, code ErrorCode) *GridTestCase {
	if tc.skipped {
		return tc
	}
	c, ok := tc.grid.Cell(x, y)
	if !ok {
		tc.t.Errorf("%s: no cell at (x=%d, y=%d)", tc.name, x, y)
		return tc
	}
	var ge *GridError
	if !errors.As(c.Err(), &ge) {
		tc.t.Errorf("%s: cell %s error = %v, want code %v", tc.name, c.Address(), c.Err(), code)
		return tc
	}
	if ge.Code != code {
		tc.t.Errorf("%s: cell %s has error code %v, want %v", tc.name, c.Address(), ge.Code, code)
	}
	return tc
}

func (tc *GridTestCase) AssertNoCellErr(x, y int) *GridTestCase {
	if tc.skipped {
		return tc
	}
	c, ok := tc.grid.Cell(x, y)
	if !ok {
		tc.t.Errorf("%s: no cell at (x=%d, y=%d)", tc.name, x, y)
		return tc
	}
	if c.Err() != nil {
		tc.t.Errorf("%s: cell %s error = %v, want none", tc.name, c.Address(), c.Err())
	}
	return tc
}

func (tc *GridTestCase) ExpectReadError(target error) *GridTestCase {
	if tc.skipped {
		return tc
	}
	if tc.readErr == nil {
		tc.t.Errorf("%s: expected read error %v, got none", tc.name, target)
		return tc
	}
	if !errors.Is(tc.readErr, target) {
		tc.t.Errorf("%s: read error = %v, want %v", tc.name, tc.readErr, target)
	}
	return tc
}

func (tc *GridTestCase) AssertFn(fn func(g *Grid, t *testing.T)) *GridTestCase {
	if tc.skipped {
		return tc
	}
	fn(tc.grid, tc.t)
	return tc
}

func (tc *GridTestCase) End() {
}

// texts extracts displayed texts for comparisons
func texts(cells []*Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text()
	}
	return out
}
