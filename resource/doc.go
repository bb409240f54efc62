// Package resource provides the handle table that owns captured Go payloads.
//
// A heap block literal lives in memory the Go garbage collector does not scan,
// so it cannot hold Go pointers. Instead its payload slot stores a Handle, a
// small integer key into a table that keeps the Go closure (and its drop hook)
// reachable until the literal is disposed.
//
// # Handle Table
//
// The UnifiedTable maps integer handles to Go values:
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	h := table.Insert(resource.TypeClosure, payload)
//
//	// Retrieve value by handle
//	value, ok := table.Get(h)
//
//	// Remove runs payload.Drop() if it implements Dropper
//	value, ok = table.Remove(h)
//
// Handle 0 is never issued. Freed slots are reused, so a stale handle may
// resolve to a newer payload; a literal must not be invoked after dispose.
//
// # Type Safety
//
// Each payload carries a TypeID. GetTyped only returns values whose tag
// matches, and Typed[T] wraps a table for a single payload type:
//
//	closures := resource.NewTyped[*guestClosure](table, resource.TypeGuestClosure)
//	h := closures.Insert(c)
//	c, ok := closures.Get(h)
//
// # Observers
//
// Register observers to track payload lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("payload %d %s", e.Handle, e.Type)
//	}))
//
// # Concurrency
//
// All operations are safe for concurrent use. Lookups take a read lock;
// inserts and removals take the write lock. Drop hooks run outside the lock.
package resource
