// Package completion adapts a single-shot heap block into an awaitable Future.
//
// Each constructor returns a Future and a Send block. Hand the block to a
// native API that takes a completion handler; when foreign code invokes it,
// the value is stored and any waiter is woken:
//
//	fut, handler := completion.Err()
//	native.Flush(handler.Leak().Ptr())
//	if err := fut.AwaitErr(ctx); err != nil {
//	    return err
//	}
//
// The slot moves Pending → Ready → Taken. The value can be taken once;
// taking it again panics. A second invocation of the block is ignored and
// logged. If the block is disposed without ever being invoked, the Future
// completes with a KindDisposed error so waiters do not hang.
//
// Cancelling Await does not retract the block; it stays installed until the
// foreign side releases it.
package completion
