package guard

import "errors"

// Filter reports whether an error belongs to the set of error kinds a guard
// intercepts. Errors it rejects propagate to the caller untouched.
type Filter func(err error) bool

// Everything intercepts every error. It is the default filter.
func Everything() Filter {
	return func(err error) bool { return err != nil }
}

// Is intercepts errors that match any of the targets according to errors.Is.
func Is(targets ...error) Filter {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// As intercepts errors whose chain contains an error of type E.
func As[E error]() Filter {
	return func(err error) bool {
		var target E
		return errors.As(err, &target)
	}
}

// Match adapts an arbitrary predicate into a Filter.
func Match(pred func(error) bool) Filter {
	return func(err error) bool {
		return err != nil && pred(err)
	}
}

// Any intercepts an error when at least one of the filters does.
func Any(filters ...Filter) Filter {
	return func(err error) bool {
		for _, f := range filters {
			if f != nil && f(err) {
				return true
			}
		}
		return false
	}
}
