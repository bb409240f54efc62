package block

import (
	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/runtime"
)

// Option configures a heap block.
type Option func(*options)

type options struct {
	host      blocks.Host
	onDispose func()
}

// WithRuntime selects the runtime that allocates, retains and releases the
// literal. The default is runtime.Default().
func WithRuntime(h blocks.Host) Option {
	return func(o *options) { o.host = h }
}

// OnDispose registers fn to run once, when the literal is disposed. Hooks
// from several OnDispose options run in the order they were given.
func OnDispose(fn func()) Option {
	return func(o *options) {
		if fn == nil {
			return
		}
		prev := o.onDispose
		if prev == nil {
			o.onDispose = fn
			return
		}
		o.onDispose = func() {
			prev()
			fn()
		}
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.host == nil {
		o.host = runtime.Default()
	}
	return o
}
