package utils

// Takes an (error) return and panics if there is an error.
// Helps avoid `if err != nil` in scripts and tests.
func Must[E comparableError](err E) {
	var zero E
	if err != zero {
		panic(err)
	}
}

// Takes a (something, error) return and panics if there is an error.
func Must1[T any, E comparableError](v T, err E) T {
	var zero E
	if err != zero {
		panic(err)
	}
	return v
}

// Comparing against the zero value of the concrete type keeps a nil *SomeError
// from turning into a non-nil error interface and panicking spuriously.
type comparableError interface {
	comparable
	error
}

// Cond is a ternary for values that are cheap to compute on both branches.
func Cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
