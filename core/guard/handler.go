package guard

import (
	"reflect"
	"runtime"
	"strings"
)

// Handler is a guarded callable. It is called exactly like the function it
// wraps and returns either that function's value or, for an intercepted
// error, the string MessagePrefix + err.Error().
type Handler[R any] struct {
	name  string
	fn    Func[R]
	guard *Guard
}

// Call invokes the wrapped function with args.
//
// A normal return yields the function's value and a nil error. An intercepted
// error, returned or panicked, yields the formatted string and a nil error. A
// returned error outside the filter is passed back as the error; a panic
// outside the filter is re-raised with its original value.
func (h *Handler[R]) Call(args ...any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := panicError(r)
			if !h.guard.intercepts(perr) {
				panic(r)
			}
			result, err = h.guard.intercept(h.name, perr, true), nil
		}
	}()

	value, callErr := h.fn(args...)
	if callErr != nil {
		if h.guard.intercepts(callErr) {
			return h.guard.intercept(h.name, callErr, false), nil
		}
		return nil, callErr
	}
	return value, nil
}

// Func returns Call as a plain function value, for callers that hold
// callables as Func[any].
func (h *Handler[R]) Func() Func[any] {
	return h.Call
}

// Name returns the name of the wrapped function, or the name configured on
// the guard.
func (h *Handler[R]) Name() string {
	return h.name
}

// Unwrap returns the original, unguarded function.
func (h *Handler[R]) Unwrap() Func[R] {
	return h.fn
}

// funcName resolves the symbol name of fn, trimmed to its last path element.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
