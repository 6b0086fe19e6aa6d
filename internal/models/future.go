package models

type Result[T any] struct {
	Data T
	Err  error
}

// Future receives exactly one value once the work behind it completes.
type Future[T any] struct {
	input chan T
}

func NewFuture[T any](input chan T) *Future[T] {
	return &Future[T]{input: input}
}

func (f *Future[T]) C() chan T {
	return f.input
}
