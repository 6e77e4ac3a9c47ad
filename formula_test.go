package tablegrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormula(t *testing.T) {
	f, ok := ParseFormula("=SUM(#0-0:0-2)")
	require.True(t, ok)
	assert.Equal(t, "SUM", f.Name)
	assert.Equal(t, "(#0-0:0-2)", f.Body)

	for _, text := range []string{"SUM(1)", "=sum(1)", "= SUM(1)", " =SUM(1)", "=", ""} {
		assert.False(t, IsFormula(text), "IsFormula(%q)", text)
	}

	f, _ = ParseFormula("=MAX 4 and 10, 2.5")
	assert.Equal(t, []Primitive{4.0, 10.0, 2.0, 5.0}, f.Literals())
}

func TestInterpretFormula(t *testing.T) {
	g := BuildFromRows([][]string{
		{"1", "2", "3"},
		{"-4", "", "x"},
	})
	src := gridSource{g: g}
	rt := NewBuiltinReducerTable()

	tests := []struct {
		text string
		want Primitive
	}{
		{"=SUM(#0-0:0-2)", 6.0},
		{"=AVERAGE(#0-0:0-2)", 2.0},
		{"=SUM(#0-2:0-0)", 6.0},
		{"=MAX(#0-0:1-2)", 3.0},
		{"=MIN(#0-0:1-2)", -4.0},
		{"=SUM(#0-0, #0-2)", 4.0},
		{"=SUM(#0-0:0-1, #1-0)", -1.0},
		{"=AVERAGE(#1-0:1-2)", -4.0},
		{"=ABS(#1-0)", 4.0},
		{"=FACTORIAL(#0-2)", 6.0},
		{"=SUM(1, 2, 3)", 6.0},
		{"=MAX()", 0.0},
		{"=SUM(#1-1:1-2)", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok, err := interpretFormula(tt.text, src, rt)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpretFormulaNotApplied(t *testing.T) {
	g := BuildFromRows([][]string{{"1"}})
	rt := NewBuiltinReducerTable()

	for _, text := range []string{"plain", "=UNKNOWN(#0-0)", "=lower(1)"} {
		got, ok, err := interpretFormula(text, gridSource{g: g}, rt)
		assert.NoError(t, err)
		assert.False(t, ok, text)
		assert.Nil(t, got)
	}
}

func TestInterpretFormulaErrors(t *testing.T) {
	g := BuildFromRows([][]string{{"a", "-1"}})
	src := gridSource{g: g}
	rt := NewBuiltinReducerTable()

	_, _, err := interpretFormula("=SUM(#5-5)", src, rt)
	assert.ErrorIs(t, err, ErrReference)

	_, ok, err := interpretFormula("=AVERAGE(#0-0)", src, rt)
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrEvaluation)

	_, _, err = interpretFormula("=FACTORIAL(#0-1)", src, rt)
	assert.ErrorIs(t, err, ErrEvaluation)

	_, _, err = interpretFormula("=ABS(#0-0)", src, rt)
	var ge *GridError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, ErrorCodeEvaluation, ge.Code)
	assert.Contains(t, err.Error(), "formula ABS failed")
}

func TestCustomReducer(t *testing.T) {
	rt := NewBuiltinReducerTable()
	require.NoError(t, rt.Register("count", func(values []Primitive) (Primitive, error) {
		return float64(len(values)), nil
	}))

	g := BuildFromRows([][]string{{"a", "b", ""}, {"c"}})
	got, ok, err := interpretFormula("=COUNT(#0-0:1-0)", gridSource{g: g}, rt)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.0, got)

	// cells arrive as text, literals as numbers
	var seen []Primitive
	require.NoError(t, rt.Register("SEE", func(values []Primitive) (Primitive, error) {
		seen = values
		return nil, nil
	}))
	_, _, err = interpretFormula("=SEE(#0-1)", gridSource{g: g}, rt)
	require.NoError(t, err)
	assert.Equal(t, []Primitive{"b"}, seen)

	_, _, err = interpretFormula("=SEE(7)", gridSource{g: g}, rt)
	require.NoError(t, err)
	assert.Equal(t, []Primitive{7.0}, seen)
}
