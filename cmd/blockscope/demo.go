package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/completion"
	"github.com/wippyai/blocks/runtime"
	"github.com/wippyai/blocks/wasmblock"
)

func runDemo(ctx context.Context, w io.Writer, cfg *blocks.Config) error {
	fmt.Fprintln(w, titleStyle.Render("native"))
	if err := nativeDemo(ctx, w, cfg); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("wasm32"))
	return wasmDemo(ctx, w, cfg)
}

func nativeDemo(ctx context.Context, w io.Writer, cfg *blocks.Config) error {
	rt, err := runtime.New(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	inc := func(x int32) int32 { return x + 1 }
	lit := block.StackValue1(&inc)
	fmt.Fprintf(w, "stack  %s -> %d\n", lit.Block(), block.CallValue1(lit.Block(), int32(41)))

	calls := 0
	counter := block.HeapValue0[block.Send](func() int32 {
		calls++
		return int32(calls)
	}, block.WithRuntime(rt), block.OnDispose(func() {
		fmt.Fprintln(w, "heap   payload dropped")
	}))
	block.CallValue0(counter.Block())
	fmt.Fprintf(w, "heap   %s -> %d\n", counter.Block(), block.CallValue0(counter.Block()))

	extra := counter.Retain()
	fmt.Fprintf(w, "heap   retained, refcount %d\n", counter.Block().Refcount())
	counter.Release()
	extra.Release()

	fut, done := completion.Err(block.WithRuntime(rt))
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		block.Call1(done.Block(), error(nil))
		done.Release()
	}()
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	fmt.Fprintf(w, "future completed: err=%v\n", fut.AwaitErr(waitCtx))
	<-finished

	s := rt.Stats()
	fmt.Fprintf(w, "stats  copies=%d releases=%d disposals=%d frees=%d live=%d\n",
		s.Copies, s.Releases, s.Disposals, s.Frees, s.Live)
	return nil
}

func wasmDemo(ctx context.Context, w io.Writer, cfg *blocks.Config) error {
	rt, err := wasmblock.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	calls := 0
	p, err := wasmblock.NewBlock0(rt, func() int32 {
		calls++
		return int32(calls)
	}, wasmblock.OnDispose(func() {
		fmt.Fprintln(w, "guest  payload dropped")
	}))
	if err != nil {
		return err
	}

	for range 2 {
		v, err := wasmblock.Call0[int32](ctx, rt, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "guest  invoke_0(%#x) -> %d\n", p, v)
	}

	info, err := rt.Inspect(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "guest  %s\n", info)

	if _, err := rt.Copy(p); err != nil {
		return err
	}
	for range 2 {
		if err := rt.Release(ctx, p); err != nil {
			return err
		}
	}

	s := rt.Stats()
	fmt.Fprintf(w, "stats  invocations=%d copies=%d releases=%d disposals=%d heap=%d bytes\n",
		s.Invocations, s.Copies, s.Releases, s.Disposals, s.Heap.LiveBytes)
	return nil
}
