package wasmblock

import (
	"context"
	"reflect"

	"github.com/wippyai/blocks/abi"
)

// Option configures a guest literal.
type Option func(*options)

type options struct {
	onDispose func()
}

// OnDispose registers fn to run when the literal's payload is dropped.
func OnDispose(fn func()) Option {
	return func(o *options) { o.onDispose = fn }
}

func (r *Runtime) newBlock(arity int, fnType reflect.Type, fn RawFunc, opts []Option) (uint32, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	sig, err := abi.Signature(abi.Wasm32, fnType)
	if err != nil {
		return 0, err
	}
	return r.newLiteral(arity, sig, &capture{fn: fn, drop: o.onDispose})
}

// NewBlock0 creates a heap literal with one reference in r's guest memory.
func NewBlock0[R Scalar](r *Runtime, fn func() R, opts ...Option) (uint32, error) {
	raw := func(context.Context, uint32, []uint64) uint64 {
		return Lower(fn())
	}
	return r.newBlock(0, reflect.TypeFor[func() R](), raw, opts)
}

// NewBlock1 is NewBlock0 for 1 argument.
func NewBlock1[A1, R Scalar](r *Runtime, fn func(A1) R, opts ...Option) (uint32, error) {
	raw := func(_ context.Context, _ uint32, args []uint64) uint64 {
		return Lower(fn(Lift[A1](args[0])))
	}
	return r.newBlock(1, reflect.TypeFor[func(A1) R](), raw, opts)
}

// NewBlock2 is NewBlock0 for 2 arguments.
func NewBlock2[A1, A2, R Scalar](r *Runtime, fn func(A1, A2) R, opts ...Option) (uint32, error) {
	raw := func(_ context.Context, _ uint32, args []uint64) uint64 {
		return Lower(fn(Lift[A1](args[0]), Lift[A2](args[1])))
	}
	return r.newBlock(2, reflect.TypeFor[func(A1, A2) R](), raw, opts)
}

// NewBlock3 is NewBlock0 for 3 arguments.
func NewBlock3[A1, A2, A3, R Scalar](r *Runtime, fn func(A1, A2, A3) R, opts ...Option) (uint32, error) {
	raw := func(_ context.Context, _ uint32, args []uint64) uint64 {
		return Lower(fn(Lift[A1](args[0]), Lift[A2](args[1]), Lift[A3](args[2])))
	}
	return r.newBlock(3, reflect.TypeFor[func(A1, A2, A3) R](), raw, opts)
}

// NewBlock4 is NewBlock0 for 4 arguments.
func NewBlock4[A1, A2, A3, A4, R Scalar](r *Runtime, fn func(A1, A2, A3, A4) R, opts ...Option) (uint32, error) {
	raw := func(_ context.Context, _ uint32, args []uint64) uint64 {
		return Lower(fn(Lift[A1](args[0]), Lift[A2](args[1]), Lift[A3](args[2]), Lift[A4](args[3])))
	}
	return r.newBlock(4, reflect.TypeFor[func(A1, A2, A3, A4) R](), raw, opts)
}

// NewBlock5 is NewBlock0 for 5 arguments.
func NewBlock5[A1, A2, A3, A4, A5, R Scalar](r *Runtime, fn func(A1, A2, A3, A4, A5) R, opts ...Option) (uint32, error) {
	raw := func(_ context.Context, _ uint32, args []uint64) uint64 {
		return Lower(fn(Lift[A1](args[0]), Lift[A2](args[1]), Lift[A3](args[2]), Lift[A4](args[3]), Lift[A5](args[4])))
	}
	return r.newBlock(5, reflect.TypeFor[func(A1, A2, A3, A4, A5) R](), raw, opts)
}

// NewBlock6 is NewBlock0 for 6 arguments.
func NewBlock6[A1, A2, A3, A4, A5, A6, R Scalar](r *Runtime, fn func(A1, A2, A3, A4, A5, A6) R, opts ...Option) (uint32, error) {
	raw := func(_ context.Context, _ uint32, args []uint64) uint64 {
		return Lower(fn(Lift[A1](args[0]), Lift[A2](args[1]), Lift[A3](args[2]), Lift[A4](args[3]), Lift[A5](args[4]), Lift[A6](args[5])))
	}
	return r.newBlock(6, reflect.TypeFor[func(A1, A2, A3, A4, A5, A6) R](), raw, opts)
}

// Call0 invokes the literal at p through the guest and lifts the result.
func Call0[R Scalar](ctx context.Context, r *Runtime, p uint32) (R, error) {
	v, err := r.Invoke(ctx, p)
	if err != nil {
		var zero R
		return zero, err
	}
	return Lift[R](v), nil
}

func Call1[R, A1 Scalar](ctx context.Context, r *Runtime, p uint32, a1 A1) (R, error) {
	v, err := r.Invoke(ctx, p, Lower(a1))
	if err != nil {
		var zero R
		return zero, err
	}
	return Lift[R](v), nil
}

func Call2[R, A1, A2 Scalar](ctx context.Context, r *Runtime, p uint32, a1 A1, a2 A2) (R, error) {
	v, err := r.Invoke(ctx, p, Lower(a1), Lower(a2))
	if err != nil {
		var zero R
		return zero, err
	}
	return Lift[R](v), nil
}

func Call3[R, A1, A2, A3 Scalar](ctx context.Context, r *Runtime, p uint32, a1 A1, a2 A2, a3 A3) (R, error) {
	v, err := r.Invoke(ctx, p, Lower(a1), Lower(a2), Lower(a3))
	if err != nil {
		var zero R
		return zero, err
	}
	return Lift[R](v), nil
}

func Call4[R, A1, A2, A3, A4 Scalar](ctx context.Context, r *Runtime, p uint32, a1 A1, a2 A2, a3 A3, a4 A4) (R, error) {
	v, err := r.Invoke(ctx, p, Lower(a1), Lower(a2), Lower(a3), Lower(a4))
	if err != nil {
		var zero R
		return zero, err
	}
	return Lift[R](v), nil
}

func Call5[R, A1, A2, A3, A4, A5 Scalar](ctx context.Context, r *Runtime, p uint32, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) (R, error) {
	v, err := r.Invoke(ctx, p, Lower(a1), Lower(a2), Lower(a3), Lower(a4), Lower(a5))
	if err != nil {
		var zero R
		return zero, err
	}
	return Lift[R](v), nil
}

func Call6[R, A1, A2, A3, A4, A5, A6 Scalar](ctx context.Context, r *Runtime, p uint32, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) (R, error) {
	v, err := r.Invoke(ctx, p, Lower(a1), Lower(a2), Lower(a3), Lower(a4), Lower(a5), Lower(a6))
	if err != nil {
		var zero R
		return zero, err
	}
	return Lift[R](v), nil
}
