package tablegrid

import (
	"fmt"
	"log/slog"
)

// Options configures an Engine. the zero value is usable; see DefaultOptions.
type Options struct {
	// Logger receives diagnostics. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Quiet discards every diagnostic, whatever Logger is.
	Quiet bool
	// Random draws the numbers of random cells.
	// If nil, a math/rand/v2 backed generator is used.
	Random RandomGenerator
	// CommonClass, when set, is given to every built cell as its "class"
	// attribute.
	CommonClass string
	// Tags are registered after the default tags, in order.
	Tags []TagDescriptor
	// Reducers are added to the built-in reducers, replacing built-ins of the
	// same name.
	Reducers map[string]Reducer
	// IncludeDefaultTags registers the Main header tag.
	// If nil, defaults to true.
	IncludeDefaultTags *bool
	// SkipBuiltinReducers starts the engine without SUM, AVERAGE, MAX, MIN,
	// ABS and FACTORIAL.
	SkipBuiltinReducers bool
}

// DefaultOptions returns the default engine options
func DefaultOptions() Options {
	return Options{
		Logger: slog.Default(),
		Random: &DefaultRandomGenerator{},
	}
}

// ShouldIncludeDefaultTags returns whether the default tags are registered
func (o Options) ShouldIncludeDefaultTags() bool {
	if o.IncludeDefaultTags != nil {
		return *o.IncludeDefaultTags
	}
	return true
}

// Validate checks tag descriptors and reducers before an engine is built
func (o Options) Validate() error {
	scratch := NewTagTable()
	for _, desc := range o.Tags {
		if err := scratch.Register(desc); err != nil {
			return err
		}
	}
	for name, r := range o.Reducers {
		if r == nil {
			return NewGridError(ErrorCodeInvalidArgument, fmt.Sprintf("reducer %q is nil", name))
		}
		if !regexReducerName.MatchString(toUpper(name)) {
			return NewGridError(ErrorCodeInvalidArgument, fmt.Sprintf("invalid reducer name %q", name))
		}
	}
	return nil
}

// logger resolves the logger to use
func (o Options) logger() *slog.Logger {
	if o.Quiet {
		return slog.New(slog.DiscardHandler)
	}
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// random resolves the generator to use
func (o Options) random() RandomGenerator {
	if o.Random != nil {
		return o.Random
	}
	return &DefaultRandomGenerator{}
}
