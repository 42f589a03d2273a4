// Package guard wraps callables so that the errors they raise, either as a
// returned error or as a panic, come back as formatted string results instead
// of propagating. Which errors are intercepted is decided by a Filter chosen
// when the guard is built; anything the filter rejects propagates unchanged.
package guard

import (
	"fmt"

	"go.uber.org/zap"
)

// MessagePrefix is prepended to the message of every intercepted error.
const MessagePrefix = "Error: "

// Func is the shape of every callable a guard can wrap. A Func raises by
// returning a non-nil error or by panicking.
type Func[R any] func(args ...any) (R, error)

// Interception describes one error converted into a string result.
type Interception struct {
	Handler   string // Name of the wrapped callable.
	Err       error  // The intercepted error.
	Message   string // The string returned to the caller.
	Recovered bool   // True when the error came from a panic.
}

// Options configures a Guard. A nil *Options, or any zero field, falls back to
// the values of DefaultOptions.
type Options struct {
	// Filter selects the errors to intercept.
	Filter Filter
	// Name overrides the name reported by handlers built from this guard.
	Name string
	// Logger receives a debug entry for each interception.
	Logger *zap.Logger
	// Observer, when set, is called synchronously for each interception.
	Observer func(Interception)
}

// DefaultOptions intercepts every error and logs nowhere.
func DefaultOptions() *Options {
	return &Options{
		Filter: Everything(),
		Logger: zap.NewNop(),
	}
}

// Guard holds an error filter and builds handlers around callables. A Guard is
// immutable once built and can wrap any number of callables.
type Guard struct {
	filter   Filter
	name     string
	logger   *zap.Logger
	observer func(Interception)
}

// New creates a Guard from the given options.
func New(options *Options) *Guard {
	defaults := DefaultOptions()
	if options == nil {
		options = defaults
	}

	g := &Guard{
		filter:   options.Filter,
		name:     options.Name,
		logger:   options.Logger,
		observer: options.Observer,
	}
	if g.filter == nil {
		g.filter = defaults.Filter
	}
	if g.logger == nil {
		g.logger = defaults.Logger
	}
	return g
}

// Catching creates a Guard that intercepts only errors accepted by one of the
// filters. With no filters it intercepts everything.
func Catching(filters ...Filter) *Guard {
	if len(filters) == 0 {
		return New(nil)
	}
	return New(&Options{Filter: Any(filters...)})
}

// Wrap wraps fn with a guard that intercepts every error.
func Wrap[R any](fn Func[R]) *Handler[R] {
	return Apply(New(nil), fn)
}

// Apply wraps fn with the guard g.
func Apply[R any](g *Guard, fn Func[R]) *Handler[R] {
	if g == nil {
		g = New(nil)
	}
	name := g.name
	if name == "" {
		name = funcName(fn)
	}
	return &Handler[R]{name: name, fn: fn, guard: g}
}

// Wrap wraps fn with this guard. Use Apply for callables with a typed result.
func (g *Guard) Wrap(fn Func[any]) *Handler[any] {
	return Apply(g, fn)
}

// intercepts reports whether err falls inside the guard's filter.
func (g *Guard) intercepts(err error) bool {
	return err != nil && g.filter(err)
}

// intercept converts err into its string result and notifies the observer.
func (g *Guard) intercept(handler string, err error, recovered bool) string {
	message := MessagePrefix + err.Error()
	g.logger.Debug("Intercepted error",
		zap.String("handler", handler),
		zap.Bool("recovered", recovered),
		zap.Error(err),
	)
	if g.observer != nil {
		g.observer(Interception{
			Handler:   handler,
			Err:       err,
			Message:   message,
			Recovered: recovered,
		})
	}
	return message
}

// panicError turns a recovered panic value into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
