package tablegrid

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// RandomGenerator interface provides random number generation for testing
type RandomGenerator interface {
	Float64() float64
}

// DefaultRandomGenerator uses the standard library's rand package
type DefaultRandomGenerator struct{}

func (d *DefaultRandomGenerator) Float64() float64 {
	return rand.Float64()
}

// randomIntInclusive draws an integer in [lo, hi]
func randomIntInclusive(rng RandomGenerator, lo, hi int) int {
	return int(math.Floor(rng.Float64()*float64(hi-lo+1))) + lo
}

// Reducer implements a named formula over an ordered list of values. values
// taken from cells arrive as their text; literals arrive as float64.
type Reducer func(values []Primitive) (Primitive, error)

// ReducerTable is the set of named reducers owned by one engine. names are
// case-insensitive.
type ReducerTable struct {
	reducers map[string]Reducer
}

// NewReducerTable creates an empty reducer table
func NewReducerTable() *ReducerTable {
	return &ReducerTable{reducers: make(map[string]Reducer)}
}

// NewBuiltinReducerTable creates a reducer table holding the built-ins
func NewBuiltinReducerTable() *ReducerTable {
	rt := NewReducerTable()
	for name, r := range builtinReducers() {
		rt.reducers[name] = r
	}
	return rt
}

// regexReducerName matches the formula name syntax, uppercase letters only
var regexReducerName = regexp.MustCompile(`^[A-Z]+$`)

// Register adds or replaces a reducer
func (rt *ReducerTable) Register(name string, r Reducer) error {
	upper := strings.ToUpper(name)
	if r == nil || !regexReducerName.MatchString(upper) {
		return NewGridError(ErrorCodeInvalidArgument, fmt.Sprintf("invalid reducer %q", name))
	}
	rt.reducers[upper] = r
	return nil
}

// Has reports whether a reducer is registered under name
func (rt *ReducerTable) Has(name string) bool {
	_, exists := rt.reducers[strings.ToUpper(name)]
	return exists
}

// Call invokes a reducer. ok is false when no reducer is registered under
// name, which is not an error.
func (rt *ReducerTable) Call(name string, values []Primitive) (result Primitive, ok bool, err error) {
	r, exists := rt.reducers[strings.ToUpper(name)]
	if !exists {
		return nil, false, nil
	}
	result, err = r(values)
	if err != nil {
		return nil, true, err
	}
	return result, true, nil
}

// Names returns the registered names, sorted
func (rt *ReducerTable) Names() []string {
	names := make([]string, 0, len(rt.reducers))
	for name := range rt.reducers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Count returns the number of registered reducers
func (rt *ReducerTable) Count() int {
	return len(rt.reducers)
}

// Clear removes every reducer
func (rt *ReducerTable) Clear() {
	rt.reducers = make(map[string]Reducer)
}

func builtinReducers() map[string]Reducer {
	return map[string]Reducer{
		"SUM":       SUM,
		"AVERAGE":   AVERAGE,
		"MAX":       MAX,
		"MIN":       MIN,
		"ABS":       ABS,
		"FACTORIAL": FACTORIAL,
	}
}

// numbers keeps the values that convert to a number. empty cells and text
// that is not numeric are skipped.
func numbers(values []Primitive) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if num, ok := toNumber(v); ok && !math.IsNaN(num) {
			out = append(out, num)
		}
	}
	return out
}

func SUM(values []Primitive) (Primitive, error) {
	sum := 0.0
	for _, num := range numbers(values) {
		sum += num
	}
	rounded, _ := strconv.ParseFloat(fmt.Sprintf("%.15f", sum), 64)
	return rounded, nil
}

func AVERAGE(values []Primitive) (Primitive, error) {
	nums := numbers(values)
	if len(nums) == 0 {
		return nil, NewGridError(ErrorCodeEvaluation, "AVERAGE of no numeric values")
	}
	sum := 0.0
	for _, num := range nums {
		sum += num
	}
	return sum / float64(len(nums)), nil
}

func MAX(values []Primitive) (Primitive, error) {
	nums := numbers(values)
	if len(nums) == 0 {
		return 0.0, nil
	}
	return slices.Max(nums), nil
}

func MIN(values []Primitive) (Primitive, error) {
	nums := numbers(values)
	if len(nums) == 0 {
		return 0.0, nil
	}
	return slices.Min(nums), nil
}

// ABS uses the first value only
func ABS(values []Primitive) (Primitive, error) {
	num, err := firstNumber("ABS", values)
	if err != nil {
		return nil, err
	}
	return math.Abs(num), nil
}

// FACTORIAL uses the first value only, which must be a non-negative integer
func FACTORIAL(values []Primitive) (Primitive, error) {
	num, err := firstNumber("FACTORIAL", values)
	if err != nil {
		return nil, err
	}
	if num < 0 || num != math.Trunc(num) {
		return nil, NewGridError(ErrorCodeEvaluation, "FACTORIAL requires a non-negative integer")
	}
	result := 1.0
	for i := 2.0; i <= num; i++ {
		result *= i
		if math.IsInf(result, 1) {
			break
		}
	}
	return result, nil
}

func firstNumber(name string, values []Primitive) (float64, error) {
	if len(values) == 0 {
		return 0, NewGridError(ErrorCodeEvaluation, name+" requires an argument")
	}
	num, ok := toNumber(values[0])
	if !ok {
		return 0, NewGridError(ErrorCodeEvaluation, name+" requires a numeric argument")
	}
	return num, nil
}

// toNumber converts value to number, returning ok=false if conversion fails
func toNumber(value Primitive) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, true
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return num, true
	case nil:
		return 0, true
	default:
		return 0, false
	}
}

// toString converts value to the text written back into a cell
func toString(value Primitive) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return fmt.Sprint(value)
	}
}

func isString(value Primitive) bool {
	_, ok := value.(string)
	return ok
}

// formatNumber renders a number without trailing zeros: 6, 2.5, -0.25
func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
