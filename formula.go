package tablegrid

import (
	"regexp"
	"strconv"
)

var (
	// =NAME at the very start of the cell text
	regexFormula = regexp.MustCompile(`^=([A-Z]+)`)
	regexDigits  = regexp.MustCompile(`\d+`)
)

// Formula is a recognized =NAME... cell text
type Formula struct {
	Name string
	Body string // everything after the name
}

// ParseFormula recognizes a formula. ok is false when text does not start
// with '=' followed by at least one uppercase letter.
func ParseFormula(text string) (Formula, bool) {
	m := regexFormula.FindStringSubmatchIndex(text)
	if m == nil {
		return Formula{}, false
	}
	return Formula{Name: text[m[2]:m[3]], Body: text[m[1]:]}, true
}

// IsFormula reports whether text is a formula
func IsFormula(text string) bool {
	return regexFormula.MatchString(text)
}

// Literals returns every digit run of the body as a number. used when the
// body holds no selector.
func (f Formula) Literals() []Primitive {
	runs := regexDigits.FindAllString(f.Body, -1)
	values := make([]Primitive, 0, len(runs))
	for _, run := range runs {
		n, err := strconv.ParseFloat(run, 64)
		if err != nil {
			continue
		}
		values = append(values, n)
	}
	return values
}

// gather collects the reducer arguments in source order. a range selector
// contributes the text of every covered cell, a basic selector the text of
// one cell. without selectors the digit runs are the arguments.
func (f Formula) gather(src cellSource) ([]Primitive, error) {
	matches := FindSelectors(f.Body)
	if len(matches) == 0 {
		return f.Literals(), nil
	}

	values := make([]Primitive, 0, len(matches))
	for _, m := range matches {
		if m.IsRange {
			r, err := ParseRange(m.Text)
			if err != nil {
				return nil, err
			}
			for _, c := range r.Select(src.grid()) {
				if err := src.ready(c); err != nil {
					return nil, err
				}
				values = append(values, c.Text())
			}
			continue
		}
		addr, err := ParseBasic(m.Text)
		if err != nil {
			return nil, err
		}
		c, err := src.cellAt(addr)
		if err != nil {
			return nil, err
		}
		if err := src.ready(c); err != nil {
			return nil, err
		}
		values = append(values, c.Text())
	}
	return values, nil
}

// interpretFormula evaluates text as a formula. ok is false when text is not
// a formula or names no registered reducer; neither is an error.
func interpretFormula(text string, src cellSource, rt *ReducerTable) (Primitive, bool, error) {
	f, isFormula := ParseFormula(text)
	if !isFormula || !rt.Has(f.Name) {
		return nil, false, nil
	}
	values, err := f.gather(src)
	if err != nil {
		return nil, false, err
	}
	result, ok, err := rt.Call(f.Name, values)
	if err != nil {
		return nil, ok, &GridError{Code: ErrorCodeEvaluation, Message: "formula " + f.Name + " failed", Err: err}
	}
	return result, ok, nil
}
