package completion

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/errors"
)

type state uint8

const (
	pending state = iota
	ready
	taken
)

func (s state) String() string {
	switch s {
	case pending:
		return "pending"
	case ready:
		return "ready"
	default:
		return "taken"
	}
}

// slot is shared by a Future and its completion block.
type slot[T any] struct {
	value T
	err   error
	waker func()
	done  chan struct{}
	mu    sync.Mutex
	state state
}

func newSlot[T any]() *slot[T] {
	return &slot[T]{done: make(chan struct{})}
}

func (s *slot[T]) complete(v T, err error) {
	s.mu.Lock()
	if s.state != pending {
		st := s.state
		s.mu.Unlock()
		block.Logger().Warn("completion invoked again, ignored", zap.Stringer("state", st))
		return
	}
	s.fill(v, err)
}

// abandon completes a slot whose block was disposed without being invoked.
func (s *slot[T]) abandon() {
	s.mu.Lock()
	if s.state != pending {
		s.mu.Unlock()
		return
	}
	var zero T
	s.fill(zero, errors.New(errors.PhaseAwait, errors.KindDisposed).
		Detail("completion block released without being invoked").
		Build())
}

// fill stores the value, unlocks and wakes the waiter. s.mu must be held.
func (s *slot[T]) fill(v T, err error) {
	s.value, s.err = v, err
	s.state = ready
	waker := s.waker
	s.waker = nil
	close(s.done)
	s.mu.Unlock()

	if waker != nil {
		waker()
	}
}

// Future is the receiving side of a completion block.
type Future[T any] struct {
	s *slot[T]
}

// Poll returns the value if the block has run. Otherwise it records waker,
// replacing any earlier one, to be called once the value arrives. The value
// is handed out once; polling after that panics.
func (f *Future[T]) Poll(waker func()) (v T, err error, ok bool) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	switch f.s.state {
	case pending:
		f.s.waker = waker
		return v, nil, false
	case ready:
		v, err = f.s.value, f.s.err
		var zero T
		f.s.value, f.s.err = zero, nil
		f.s.state = taken
		return v, err, true
	default:
		panic(errors.New(errors.PhaseAwait, errors.KindContract).
			Detail("completion value already taken").
			Build())
	}
}

// Done is closed once the block has run.
func (f *Future[T]) Done() <-chan struct{} {
	return f.s.done
}

// Ready reports whether the value is waiting to be taken.
func (f *Future[T]) Ready() bool {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.state == ready
}

// Await blocks until the block runs or ctx is done, then takes the value.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.s.done:
		v, err, _ := f.Poll(nil)
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, errors.Canceled(errors.PhaseAwait, ctx.Err())
	}
}

// AwaitErr is Await for futures that only carry an error.
func (f *Future[T]) AwaitErr(ctx context.Context) error {
	_, err := f.Await(ctx)
	return err
}
