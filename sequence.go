package tablegrid

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var (
	// a template fragment, brace delimited and non-greedy
	regexFragment = regexp.MustCompile(`\{(.*?)\}`)

	// fragments joined only by arithmetic operators, e.g. {2}+{3}. tried
	// before single fragments so the chain is evaluated as one expression.
	regexFragmentChain = regexp.MustCompile(`\{[^{}]*\}(?:\s*[-+*/]\s*\{[^{}]*\})+`)

	regexEvaluable = regexp.MustCompile(regexFragmentChain.String() + `|` + regexFragment.String())

	regexBraces = regexp.MustCompile(`[{}]`)
)

// cellSource hands referenced cells to the interpreters. the engine's
// implementation resolves a referenced cell up to the running stage before
// returning it, and records the reference.
type cellSource interface {
	grid() *Grid
	// cellAt returns the cell at addr or a ReferenceError
	cellAt(addr Address) (*Cell, error)
	// ready brings c up to the running stage
	ready(c *Cell) error
}

// gridSource reads cells as they currently are
type gridSource struct {
	g *Grid
}

func (s gridSource) grid() *Grid { return s.g }

func (s gridSource) cellAt(addr Address) (*Cell, error) {
	c, ok := s.g.At(addr)
	if !ok {
		return nil, missingCellError(addr)
	}
	return c, nil
}

func (s gridSource) ready(*Cell) error { return nil }

func missingCellError(addr Address) *GridError {
	return NewGridError(ErrorCodeReference, fmt.Sprintf("the cell (x=%d, y=%d) doesn't exist", addr.X, addr.Y))
}

// sequenceInterpreter expands {...} fragments in two passes. pass 1 swaps
// every basic selector inside a fragment for the referenced cell text. pass 2
// evaluates what is left with the restricted expression grammar.
type sequenceInterpreter struct {
	reducers *ReducerTable
	logger   *slog.Logger
}

// interpret runs both passes. pass 2 only starts once pass 1 has covered the
// whole text, since a reference may sit inside an arithmetic sub-expression.
func (si *sequenceInterpreter) interpret(text string, src cellSource) (string, error) {
	if !regexFragment.MatchString(text) {
		return text, nil
	}
	substituted, err := substituteReferences(text, src)
	if err != nil {
		return text, err
	}
	return si.evaluateFragments(substituted), nil
}

// substituteReferences is pass 1. fragment braces are kept so pass 2 can
// find the fragments again.
func substituteReferences(text string, src cellSource) (string, error) {
	var firstErr error
	out := regexFragment.ReplaceAllStringFunc(text, func(fragment string) string {
		if firstErr != nil {
			return fragment
		}
		replaced, err := substituteFragment(fragment, src)
		if err != nil {
			firstErr = err
			return fragment
		}
		return replaced
	})
	if firstErr != nil {
		return text, firstErr
	}
	return out, nil
}

func substituteFragment(fragment string, src cellSource) (string, error) {
	matches := FindSelectors(fragment)
	if len(matches) == 0 {
		return fragment, nil
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if m.IsRange {
			return "", NewGridError(ErrorCodeUnsupportedSelector,
				fmt.Sprintf("cannot read the range selector %s inside a sequence", m.Text))
		}
		addr, err := ParseBasic(m.Text)
		if err != nil {
			return "", err
		}
		c, err := src.cellAt(addr)
		if err != nil {
			return "", err
		}
		if err := src.ready(c); err != nil {
			return "", err
		}
		b.WriteString(fragment[last:m.Start])
		b.WriteString(c.Text())
		last = m.End
	}
	b.WriteString(fragment[last:])
	return b.String(), nil
}

// evaluateFragments is pass 2. a fragment that does not evaluate keeps its
// inner text without braces; the failure is logged, never returned.
func (si *sequenceInterpreter) evaluateFragments(text string) string {
	return regexEvaluable.ReplaceAllStringFunc(text, func(match string) string {
		if result, err := si.evaluate(stripBraces(match)); err == nil {
			return result
		} else if !regexFragmentChain.MatchString(match) {
			si.logRecovered(match, err)
			return stripBraces(match)
		}
		// the chain as a whole failed; fall back to its fragments one by one
		return regexFragment.ReplaceAllStringFunc(match, func(fragment string) string {
			result, err := si.evaluate(stripBraces(fragment))
			if err != nil {
				si.logRecovered(fragment, err)
				return stripBraces(fragment)
			}
			return result
		})
	})
}

func (si *sequenceInterpreter) evaluate(expr string) (string, error) {
	val, err := EvaluateExpression(expr, si.reducers)
	if err != nil {
		return "", err
	}
	return toString(val), nil
}

func (si *sequenceInterpreter) logRecovered(fragment string, err error) {
	if si.logger == nil {
		return
	}
	si.logger.Info("unable to evaluate fragment, keeping its text",
		"fragment", fragment,
		"error", err,
	)
}

func stripBraces(s string) string {
	return regexBraces.ReplaceAllString(s, "")
}
