package tablegrid

import (
	"regexp"
	"strconv"
	"strings"
)

// TagCallback turns tag arguments into the new cell content
type TagCallback func(args []string) string

// TagDescriptor describes a custom tag, written in cell text as <Name> or
// <Name(arg1,arg2)>. names match case-insensitively.
type TagDescriptor struct {
	Name       string
	Callback   TagCallback    // optional. its output replaces the cell content
	Attributes []Attribute    // optional, added to every matching cell
	Events     []EventBinding // optional, bound on every matching cell
	Kind       *CellKind      // optional output kind override
}

// TagResult is the outcome of running every registered tag over a text
type TagResult struct {
	Content    string
	Attributes []Attribute
	Events     []EventBinding
	Kind       *CellKind // last override among the matching tags
	Matched    bool      // at least one tag matched
}

// compiledTag pairs a descriptor with its matcher
type compiledTag struct {
	desc  TagDescriptor
	regex *regexp.Regexp
}

// TagTable is the ordered set of tags owned by one engine
type TagTable struct {
	tags []compiledTag
}

// NewTagTable creates an empty tag table
func NewTagTable() *TagTable {
	return &TagTable{tags: make([]compiledTag, 0)}
}

// regexTagName restricts names so they cannot collide with the tag syntax
var regexTagName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Register appends a descriptor. later descriptors run after earlier ones.
func (tt *TagTable) Register(desc TagDescriptor) error {
	if !regexTagName.MatchString(desc.Name) {
		return NewGridError(ErrorCodeInvalidArgument, "invalid tag name "+strconv.Quote(desc.Name))
	}
	for _, ev := range desc.Events {
		if ev.Name == "" || ev.Handler == nil {
			return NewGridError(ErrorCodeInvalidArgument, "tag "+desc.Name+" has an incomplete event binding")
		}
	}
	// arguments may not contain '>' so two tags on one line stay apart
	re := regexp.MustCompile(`(?i)<` + regexp.QuoteMeta(desc.Name) + `(?:\(([^>]*)\))?>`)
	tt.tags = append(tt.tags, compiledTag{desc: desc, regex: re})
	return nil
}

// Count returns the number of registered tags
func (tt *TagTable) Count() int {
	return len(tt.tags)
}

// Names returns the registered tag names in registration order
func (tt *TagTable) Names() []string {
	names := make([]string, len(tt.tags))
	for i, t := range tt.tags {
		names[i] = t.desc.Name
	}
	return names
}

// Interpret runs every registered tag over text, in registration order.
//
// a matching tag with a callback replaces the whole content with the
// callback output, so the last tag with a callback wins. a matching tag
// without a callback only strips itself from the content. attributes and
// events accumulate from every matching tag.
func (tt *TagTable) Interpret(text string) TagResult {
	res := TagResult{Content: text}
	for _, t := range tt.tags {
		if !t.regex.MatchString(text) {
			continue
		}
		res.Matched = true
		if t.desc.Callback != nil {
			res.Content = t.desc.Callback(tagArguments(t.regex, text))
		} else {
			res.Content = t.regex.ReplaceAllString(res.Content, "")
		}
		res.Attributes = append(res.Attributes, t.desc.Attributes...)
		res.Events = append(res.Events, t.desc.Events...)
		if t.desc.Kind != nil {
			kind := *t.desc.Kind
			res.Kind = &kind
		}
	}
	return res
}

// Clear removes every tag
func (tt *TagTable) Clear() {
	tt.tags = make([]compiledTag, 0)
}

// tagArguments returns the comma separated arguments of the first
// occurrence of a tag. a tag written without parentheses has no arguments.
func tagArguments(re *regexp.Regexp, text string) []string {
	text = strings.ReplaceAll(text, ", ", ",")
	m := re.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return []string{}
	}
	raw := strings.NewReplacer("(", "", ")", "").Replace(m[1])
	args := strings.Split(raw, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return args
}

// headerKind is the override used by the default Main tag
var headerKind = KindHeader

// defaultTags are registered on every engine unless disabled. <Main> marks
// its cell as a header and removes itself from the text.
func defaultTags() []TagDescriptor {
	return []TagDescriptor{
		{Name: "Main", Kind: &headerKind},
	}
}
