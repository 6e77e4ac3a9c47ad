package tablegrid

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Engine interprets grids: custom tags first, then template fragments,
// then formulas. an engine owns its tag and reducer registries; two engines
// never share them.
type Engine struct {
	tags        *TagTable
	reducers    *ReducerTable
	logger      *slog.Logger
	rng         RandomGenerator
	commonClass string
}

// NewEngine creates an engine from validated options
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		tags:        NewTagTable(),
		logger:      opts.logger(),
		rng:         opts.random(),
		commonClass: opts.CommonClass,
	}
	if opts.SkipBuiltinReducers {
		e.reducers = NewReducerTable()
	} else {
		e.reducers = NewBuiltinReducerTable()
	}

	if opts.ShouldIncludeDefaultTags() {
		for _, desc := range defaultTags() {
			if err := e.tags.Register(desc); err != nil {
				return nil, err
			}
		}
	}
	for _, desc := range opts.Tags {
		if err := e.tags.Register(desc); err != nil {
			return nil, err
		}
	}
	for name, r := range opts.Reducers {
		if err := e.reducers.Register(name, r); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// RegisterTag adds a custom tag after the ones already registered
func (e *Engine) RegisterTag(desc TagDescriptor) error {
	return e.tags.Register(desc)
}

// RegisterReducer adds or replaces a formula reducer
func (e *Engine) RegisterReducer(name string, r Reducer) error {
	return e.reducers.Register(name, r)
}

// Tags returns the registered tag names in registration order
func (e *Engine) Tags() []string { return e.tags.Names() }

// Reducers returns the registered reducer names, sorted
func (e *Engine) Reducers() []string { return e.reducers.Names() }

// BuildFromRows builds a grid from raw rows, applying the engine's common
// class. see the package level BuildFromRows for the raw syntax.
func (e *Engine) BuildFromRows(rows [][]string) *Grid {
	return buildFromRows(rows, e.commonClass)
}

// CellSpec describes one cell for BuildFromCells. Text is taken literally:
// no span suffix or header marker is read from it.
type CellSpec struct {
	Text        string
	Kind        CellKind
	Colspan     int // 0 means 1
	Rowspan     int // 0 means 1
	Min         int // random cells only, inclusive
	Max         int // random cells only, inclusive
	Attributes  []Attribute
	Events      []EventBinding
	NoInterpret bool
}

// randomClass is added to the class attribute of every random cell
const randomClass = "cell-random"

// BuildFromCells builds a grid from cell specs. random cells draw their
// number once, here.
func (e *Engine) BuildFromCells(specs [][]CellSpec) (*Grid, error) {
	g := &Grid{rows: make([][]*Cell, 0, len(specs)), commonClass: e.commonClass, refs: NewReferenceGraph()}
	for y, line := range specs {
		row := make([]*Cell, 0, len(line))
		for x, spec := range line {
			c, err := e.newSpecCell(x, y, spec)
			if err != nil {
				return nil, err
			}
			row = append(row, c)
		}
		g.rows = append(g.rows, row)
	}
	return g, nil
}

func (e *Engine) newSpecCell(x, y int, spec CellSpec) (*Cell, error) {
	if spec.Colspan < 0 || spec.Rowspan < 0 {
		return nil, NewGridError(ErrorCodeInvalidArgument, fmt.Sprintf("negative span at (x=%d, y=%d)", x, y))
	}
	text := spec.Text
	if spec.Kind == KindRandom {
		if spec.Min > spec.Max {
			return nil, NewGridError(ErrorCodeInvalidArgument,
				fmt.Sprintf("random cell (x=%d, y=%d): min %d is greater than max %d", x, y, spec.Min, spec.Max))
		}
		text = strconv.Itoa(randomIntInclusive(e.rng, spec.Min, spec.Max))
	}

	c := newCell(x, y, text, spec.Colspan, spec.Rowspan, spec.Kind)
	if e.commonClass != "" {
		c.SetAttribute("class", e.commonClass)
	}
	for _, attr := range spec.Attributes {
		c.SetAttribute(attr.Name, attr.Value)
	}
	for _, ev := range spec.Events {
		c.AddEvent(ev.Name, ev.Handler)
	}
	if spec.Kind == KindRandom {
		class, _ := c.Attribute("class")
		c.SetAttribute("class", strings.TrimSpace(class+" "+randomClass))
	}
	if spec.NoInterpret {
		c.DisableInterpretation()
	}
	c.markOrigin()
	return c, nil
}

// InterpretCustomFunction runs the registered tags over text
func (e *Engine) InterpretCustomFunction(text string) TagResult {
	return e.tags.Interpret(text)
}

// InterpretSequences expands the template fragments of text against the
// current text of the cells of g
func (e *Engine) InterpretSequences(text string, g *Grid) (string, error) {
	si := &sequenceInterpreter{reducers: e.reducers, logger: e.logger}
	return si.interpret(text, gridSource{g: g})
}

// InterpretFormula evaluates text as a formula against the current text of
// the cells of g. ok is false, with a nil error, when text is not a formula
// or names an unknown reducer.
func (e *Engine) InterpretFormula(text string, g *Grid) (Primitive, bool, error) {
	return interpretFormula(text, gridSource{g: g}, e.reducers)
}

// EvaluateExpression evaluates a fragment expression without braces
func (e *Engine) EvaluateExpression(expr string) (Primitive, error) {
	return EvaluateExpression(expr, e.reducers)
}

// pipeline is the ordered list of stages a read goes through
var pipeline = []Stage{StageTagResolved, StageSequenceResolved, StageFormulaResolved}

// Read interprets the current text of every cell of g. each stage sweeps
// the whole grid before the next one starts. a cell whose interpretation
// fails keeps its text, records the error (see Cell.Err) and the read goes
// on; the errors of all failed cells are returned joined.
func (e *Engine) Read(g *Grid) error {
	run := &readRun{
		e:       e,
		g:       g,
		reached: make(map[*Cell]Stage, g.CellCount()),
		stack:   newResolutionStack(),
	}

	g.references().Clear()
	for c := range g.Cells() {
		c.err = nil
	}
	g.stage = StageRaw

	for _, stage := range pipeline {
		run.target = stage
		for c := range g.Cells() {
			_ = run.resolve(c, stage) // recorded on the cell and in run.errs
		}
		g.stage = stage
		e.logger.Debug("stage resolved",
			"stage", stage.String(),
			"cells", g.CellCount(),
			"errors", len(run.errs),
		)
	}

	for c := range g.Cells() {
		c.interpreted = c.text
	}
	return errors.Join(run.errs...)
}

// Refresh reinterprets g from the origin text of every cell. edits made to
// the displayed text since the last read are lost.
func (e *Engine) Refresh(g *Grid) error {
	g.ResetToOrigin()
	return e.Read(g)
}

// readRun is the state of one Read
type readRun struct {
	e       *Engine
	g       *Grid
	reached map[*Cell]Stage // last stage applied to each cell
	stack   *resolutionStack
	target  Stage // stage of the running sweep
	errs    []error
}

// resolve applies every stage up to target to c. a cell referenced while
// resolving another one is resolved first, on demand.
func (r *readRun) resolve(c *Cell, target Stage) error {
	if c.err != nil {
		return c.err
	}
	if r.reached[c] >= target {
		return nil
	}
	if r.stack.isProcessing(c.addr) {
		return cycleError(r.stack, c.addr)
	}

	r.stack.push(c.addr)
	defer r.stack.pop()

	for s := r.reached[c] + 1; s <= target; s++ {
		if err := r.apply(c, s); err != nil {
			c.err = bindAddress(err, c.addr)
			r.reached[c] = StageFormulaResolved
			r.errs = append(r.errs, c.err)
			r.e.logger.Warn("cell interpretation failed",
				"x", c.X(),
				"y", c.Y(),
				"stage", s.String(),
				"error", c.err,
			)
			return c.err
		}
		r.reached[c] = s
	}
	return nil
}

// apply runs one stage over c
func (r *readRun) apply(c *Cell, s Stage) error {
	if !c.IsAllowedToInterpret() {
		return nil
	}

	switch s {
	case StageTagResolved:
		res := r.e.tags.Interpret(c.text)
		if !res.Matched {
			return nil
		}
		c.text = res.Content
		for _, attr := range res.Attributes {
			c.SetAttribute(attr.Name, attr.Value)
		}
		for _, ev := range res.Events {
			c.AddEvent(ev.Name, ev.Handler)
		}
		if res.Kind != nil {
			c.kind = *res.Kind
		}

	case StageSequenceResolved:
		si := &sequenceInterpreter{
			reducers: r.e.reducers,
			logger:   r.e.logger.With("x", c.X(), "y", c.Y()),
		}
		text, err := si.interpret(c.text, r)
		if err != nil {
			return err
		}
		c.text = text

	case StageFormulaResolved:
		val, ok, err := interpretFormula(c.text, r, r.e.reducers)
		if err != nil {
			return err
		}
		if !ok {
			if f, isFormula := ParseFormula(c.text); isFormula {
				r.e.logger.Debug("unknown formula, text kept", "x", c.X(), "y", c.Y(), "name", f.Name)
			}
			return nil
		}
		c.text = toString(val)
	}
	return nil
}

// readRun is the cellSource of the interpreters during a read

func (r *readRun) grid() *Grid { return r.g }

func (r *readRun) cellAt(addr Address) (*Cell, error) {
	c, ok := r.g.At(addr)
	if !ok {
		return nil, missingCellError(addr)
	}
	return c, nil
}

// ready records the reference from the cell being resolved to c, then
// brings c up to the running stage
func (r *readRun) ready(c *Cell) error {
	if from, ok := r.stack.top(); ok {
		r.g.references().AddReference(from, c.addr)
	}
	if err := r.resolve(c, r.target); err != nil {
		return dependencyError(c.addr, err)
	}
	return nil
}

// dependencyError reports that a referenced cell could not be resolved,
// keeping the code of the underlying failure
func dependencyError(addr Address, err error) error {
	code := ErrorCodeReference
	var ge *GridError
	if errors.As(err, &ge) {
		code = ge.Code
	}
	return &GridError{Code: code, Message: "referenced cell " + addr.String() + " failed", Err: err}
}

func cycleError(stack *resolutionStack, addr Address) *GridError {
	return NewGridError(ErrorCodeCycle, "reference cycle "+stack.path(addr))
}

// resolutionStack tracks the cells being resolved, innermost last
type resolutionStack struct {
	items      []Address             // cells being resolved
	processing map[Address]struct{} // set view of items
}

// newResolutionStack creates an empty stack
func newResolutionStack() *resolutionStack {
	return &resolutionStack{
		items:      make([]Address, 0),
		processing: make(map[Address]struct{}),
	}
}

// push adds a cell to the stack
func (rs *resolutionStack) push(addr Address) {
	rs.items = append(rs.items, addr)
	rs.processing[addr] = struct{}{}
}

// pop removes and returns the top cell from the stack
func (rs *resolutionStack) pop() (Address, bool) {
	if len(rs.items) == 0 {
		return Address{}, false
	}
	addr := rs.items[len(rs.items)-1]
	rs.items = rs.items[:len(rs.items)-1]
	delete(rs.processing, addr)
	return addr, true
}

// top returns the innermost cell being resolved
func (rs *resolutionStack) top() (Address, bool) {
	if len(rs.items) == 0 {
		return Address{}, false
	}
	return rs.items[len(rs.items)-1], true
}

// isProcessing checks if a cell is currently being resolved
func (rs *resolutionStack) isProcessing(addr Address) bool {
	_, exists := rs.processing[addr]
	return exists
}

// path renders the cycle closing on addr, e.g. #0-0 -> #0-1 -> #0-0
func (rs *resolutionStack) path(addr Address) string {
	start := 0
	for i, item := range rs.items {
		if item == addr {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(rs.items)-start+1)
	for _, item := range rs.items[start:] {
		parts = append(parts, item.String())
	}
	parts = append(parts, addr.String())
	return strings.Join(parts, " -> ")
}

// Precedents returns the cells addr read during the last read of g
func (g *Grid) Precedents(addr Address) []Address {
	return g.references().GetDirectPrecedents(addr)
}

// Dependents returns every cell that read addr during the last read of g,
// directly or through other cells
func (g *Grid) Dependents(addr Address) []Address {
	return g.references().GetAllDependents(addr)
}
