package tablegrid

import "strconv"

// Primitive represents values flowing through formulas and fragment
// expressions.
// types:
//   - float64: numeric values (integers are converted to float64)
//   - string: text values, including raw cell text handed to reducers
//   - nil: no value
type Primitive any

// CellKind is the closed set of cell flavours
type CellKind uint8

const (
	KindNormal CellKind = iota // plain data cell
	KindHeader                 // header cell, raw input marked with a leading '@'
	KindRandom                 // cell whose text is a random integer drawn at construction
)

func (k CellKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindRandom:
		return "random"
	default:
		return "normal"
	}
}

// Address is a zero-based (x, y) position. selector text is row first: #y-x
type Address struct {
	X int
	Y int
}

func (a Address) String() string {
	return "#" + strconv.Itoa(a.Y) + "-" + strconv.Itoa(a.X)
}

// Attribute is a name/value pair attached to a cell
type Attribute struct {
	Name  string
	Value string
}

// EventHandler is invoked when an event bound to a cell is triggered
type EventHandler func(c *Cell)

// EventBinding binds a handler to an event name
type EventBinding struct {
	Name    string
	Handler EventHandler
}

// Cell represents one cell record of a grid with its data and metadata
type Cell struct {
	addr        Address        // position inside the grid, kept current by structural edits
	origin      string         // raw source text, immutable once set
	text        string         // current (displayed) text
	interpreted string         // text produced by the last pipeline run
	colspan     int            // number of columns spanned, >= 1
	rowspan     int            // number of rows spanned, >= 1
	kind        CellKind       // normal, header or random
	attributes  []Attribute    // unique names, insertion ordered
	events      []EventBinding // bound handlers in binding order
	noInterpret bool           // skip every interpretation stage
	err         error          // fatal error from the last pipeline run

	// state captured when the origin was set, restored by a refresh
	originKind       CellKind
	originAttributes []Attribute
	originEvents     []EventBinding
}

// newCell creates a cell whose origin and current text are both text
func newCell(x, y int, text string, colspan, rowspan int, kind CellKind) *Cell {
	return &Cell{
		addr:        Address{X: x, Y: y},
		origin:      text,
		text:        text,
		interpreted: text,
		colspan:     max(colspan, 1),
		rowspan:     max(rowspan, 1),
		kind:        kind,
	}
}

func (c *Cell) Address() Address { return c.addr }
func (c *Cell) X() int           { return c.addr.X }
func (c *Cell) Y() int           { return c.addr.Y }
func (c *Cell) Colspan() int     { return c.colspan }
func (c *Cell) Rowspan() int     { return c.rowspan }
func (c *Cell) Kind() CellKind   { return c.kind }

// Text returns the current, possibly interpreted, text of the cell
func (c *Cell) Text() string { return c.text }

// Err returns the error that stopped this cell's interpretation during the
// last read, if any
func (c *Cell) Err() error { return c.err }

// SetText changes the displayed text only. the origin is left untouched, so
// a later refresh discards this edit.
func (c *Cell) SetText(text string) { c.text = text }

// ClearContent empties the displayed text
func (c *Cell) ClearContent() { c.text = "" }

// Attributes returns a copy of the cell attributes in insertion order
func (c *Cell) Attributes() []Attribute {
	out := make([]Attribute, len(c.attributes))
	copy(out, c.attributes)
	return out
}

// Attribute looks up an attribute value by name
func (c *Cell) Attribute(name string) (string, bool) {
	for _, attr := range c.attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttribute sets an attribute, replacing the value of an existing one
// with the same name
func (c *Cell) SetAttribute(name, value string) {
	for i := range c.attributes {
		if c.attributes[i].Name == name {
			c.attributes[i].Value = value
			return
		}
	}
	c.attributes = append(c.attributes, Attribute{Name: name, Value: value})
}

// RemoveAttribute deletes an attribute. returns false if it was not set.
func (c *Cell) RemoveAttribute(name string) bool {
	for i := range c.attributes {
		if c.attributes[i].Name == name {
			c.attributes = append(c.attributes[:i], c.attributes[i+1:]...)
			return true
		}
	}
	return false
}

// Events returns a copy of the bound events
func (c *Cell) Events() []EventBinding {
	out := make([]EventBinding, len(c.events))
	copy(out, c.events)
	return out
}

// AddEvent binds a handler to an event name
func (c *Cell) AddEvent(name string, handler EventHandler) {
	if handler == nil {
		return
	}
	c.events = append(c.events, EventBinding{Name: name, Handler: handler})
}

// Trigger invokes every handler bound to name and returns how many ran
func (c *Cell) Trigger(name string) int {
	n := 0
	for _, ev := range c.events {
		if ev.Name == name {
			ev.Handler(c)
			n++
		}
	}
	return n
}

// IsAllowedToInterpret reports whether the pipeline may rewrite this cell
func (c *Cell) IsAllowedToInterpret() bool { return !c.noInterpret }

// DisableInterpretation makes every stage leave this cell untouched
func (c *Cell) DisableInterpretation() { c.noInterpret = true }

// EnableInterpretation reverts DisableInterpretation
func (c *Cell) EnableInterpretation() { c.noInterpret = false }
