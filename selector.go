package tablegrid

import (
	"fmt"
	"regexp"
	"strconv"
)

// selector syntax, row first:
//
//	#<row>-<col>                    basic selector
//	#<row1>-<col1>:<row2>-<col2>    range selector
var (
	regexRangeSelector = regexp.MustCompile(`#(\d+)-(\d+):(\d+)-(\d+)`)
	regexBasicSelector = regexp.MustCompile(`#(\d+)-(\d+)`)

	// range alternative first so a range is never read as a basic selector
	// followed by ":y-x"
	regexSelectors = regexp.MustCompile(`#(\d+-\d+:\d+-\d+)|#(\d+-\d+)`)
)

// SelectorMatch is one selector occurrence found in a piece of text
type SelectorMatch struct {
	Text    string
	Start   int // byte offset of '#'
	End     int // byte offset just past the selector
	IsRange bool
}

// IsRangeSelector reports whether text contains a range selector
func IsRangeSelector(text string) bool {
	return regexRangeSelector.MatchString(text)
}

// ParseBasic reads the first basic selector in text. the first integer is
// the row (y), the second the column (x).
func ParseBasic(text string) (Address, error) {
	m := regexBasicSelector.FindStringSubmatch(text)
	if m == nil {
		return Address{}, NewGridError(ErrorCodeParse, fmt.Sprintf("no basic selector in %q", text))
	}
	y, err := atoiSelector(m[1])
	if err != nil {
		return Address{}, err
	}
	x, err := atoiSelector(m[2])
	if err != nil {
		return Address{}, err
	}
	return Address{X: x, Y: y}, nil
}

// ParseRange reads the first range selector in text, keeping the endpoints
// in the order they were written
func ParseRange(text string) (Range, error) {
	m := regexRangeSelector.FindStringSubmatch(text)
	if m == nil {
		return Range{}, NewGridError(ErrorCodeParse, fmt.Sprintf("no range selector in %q", text))
	}
	nums := make([]int, 4)
	for i := range nums {
		n, err := atoiSelector(m[i+1])
		if err != nil {
			return Range{}, err
		}
		nums[i] = n
	}
	return Range{
		From: Address{Y: nums[0], X: nums[1]},
		To:   Address{Y: nums[2], X: nums[3]},
	}, nil
}

// FindSelectors returns every selector in text in source order. matches do
// not overlap; no bounds checking happens here.
func FindSelectors(text string) []SelectorMatch {
	locs := regexSelectors.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]SelectorMatch, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, SelectorMatch{
			Text:    text[loc[0]:loc[1]],
			Start:   loc[0],
			End:     loc[1],
			IsRange: loc[2] >= 0,
		})
	}
	return matches
}

// HasSelector reports whether text contains any selector
func HasSelector(text string) bool {
	return regexSelectors.MatchString(text)
}

func atoiSelector(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		// only reachable when the digit run overflows int
		return 0, &GridError{Code: ErrorCodeParse, Message: fmt.Sprintf("invalid selector coordinate %q", s), Err: err}
	}
	return n, nil
}
