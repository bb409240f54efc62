package completion

import (
	"github.com/wippyai/blocks/block"
)

// Shapes of the common native completion handlers. Options are passed to the
// heap constructor. A caller's OnDispose hook runs before the Future resolves
// an abandoned completion.

// Comp0 returns a Future completed by a block taking no arguments.
func Comp0(opts ...block.Option) (*Future[struct{}], *block.Retained[func(), block.Send]) {
	s := newSlot[struct{}]()
	b := block.Heap0[block.Send](func() {
		s.complete(struct{}{}, nil)
	}, withAbandon(opts, s.abandon)...)
	return &Future[struct{}]{s: s}, b
}

// Comp1 returns a Future completed by a block taking one value.
func Comp1[T any](opts ...block.Option) (*Future[T], *block.Retained[func(T), block.Send]) {
	s := newSlot[T]()
	b := block.Heap1[block.Send](func(v T) {
		s.complete(v, nil)
	}, withAbandon(opts, s.abandon)...)
	return &Future[T]{s: s}, b
}

// Err returns a Future completed by a block taking an error, which may be nil.
func Err(opts ...block.Option) (*Future[struct{}], *block.Retained[func(error), block.Send]) {
	s := newSlot[struct{}]()
	b := block.Heap1[block.Send](func(err error) {
		s.complete(struct{}{}, err)
	}, withAbandon(opts, s.abandon)...)
	return &Future[struct{}]{s: s}, b
}

// Result returns a Future completed by a block taking a value and an error.
func Result[T any](opts ...block.Option) (*Future[T], *block.Retained[func(T, error), block.Send]) {
	s := newSlot[T]()
	b := block.Heap2[block.Send](func(v T, err error) {
		s.complete(v, err)
	}, withAbandon(opts, s.abandon)...)
	return &Future[T]{s: s}, b
}

func withAbandon(opts []block.Option, abandon func()) []block.Option {
	out := make([]block.Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, block.OnDispose(abandon))
}
