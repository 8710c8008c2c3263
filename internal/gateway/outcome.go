package gateway

// Outcome is the result of one gateway call. Value is always usable: when
// the backend failed it holds the documented fallback and Err says why.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Degraded reports whether Value is a fallback rather than a backend answer.
func (o Outcome[T]) Degraded() bool {
	return o.Err != nil
}

func succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func degraded[T any](fallback T, err error) Outcome[T] {
	return Outcome[T]{Value: fallback, Err: err}
}
