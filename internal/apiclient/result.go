package apiclient

// Status distinguishes "no data" from "request failed".
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a recovered API call. On failure Value holds the
// operation's fallback and Err the cause.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

func Empty[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusEmpty}
}

func Failed[T any](fallback T, err error) Result[T] {
	return Result[T]{Value: fallback, Status: StatusFailed, Err: err}
}

func (r Result[T]) OK() bool     { return r.Status == StatusOK }
func (r Result[T]) Empty() bool  { return r.Status == StatusEmpty }
func (r Result[T]) Failed() bool { return r.Status == StatusFailed }
