package resource

import (
	"sync"
	"sync/atomic"
)

// UnifiedTable implements the Table interface using a Backend for storage.
type UnifiedTable struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	hasObs    atomic.Bool
	closed    atomic.Bool
}

// NewTable creates a new unified table with a LocalBackend.
func NewTable() *UnifiedTable {
	return &UnifiedTable{
		backend: NewLocalBackend(),
	}
}

// Insert adds a value and returns its handle, or 0 once the table is closed.
func (t *UnifiedTable) Insert(typeID TypeID, value any) Handle {
	if t.closed.Load() {
		return 0
	}

	handle, err := t.backend.Create(typeID, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *UnifiedTable) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *UnifiedTable) GetTyped(handle Handle, typeID TypeID) (any, bool) {
	e, ok := t.backend.lookup(handle)
	if !ok || e.typeID != typeID {
		return nil, false
	}
	return e.value, true
}

// Remove drops a payload, runs its Dropper and returns (value, true) if found.
// A second Remove of the same handle returns false.
func (t *UnifiedTable) Remove(handle Handle) (any, bool) {
	typeID, _ := t.backend.TypeID(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *UnifiedTable) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
	t.hasObs.Store(true)
}

// Unsubscribe removes an observer. ObserverFunc values cannot be compared
// and are never removed.
func (t *UnifiedTable) Unsubscribe(o Observer) {
	if _, ok := o.(ObserverFunc); ok {
		return
	}
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			break
		}
	}
	t.hasObs.Store(len(t.observers) > 0)
}

// Len returns the number of live payloads.
func (t *UnifiedTable) Len() int {
	return t.backend.Len()
}

// Clear drops all payloads.
func (t *UnifiedTable) Clear() {
	// Collect handles first to avoid holding lock during Remove
	var handles []Handle
	t.backend.Each(func(h Handle, _ TypeID, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close releases all payloads and stops accepting operations.
func (t *UnifiedTable) Close() error {
	t.closed.Store(true)
	return t.backend.Close()
}

func (t *UnifiedTable) notify(e Event) {
	if !t.hasObs.Load() {
		return
	}
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

// Typed is a TypedTable view over a Table for one payload type.
type Typed[T any] struct {
	table  Table
	typeID TypeID
}

// NewTyped returns a typed view of table for payloads tagged typeID.
func NewTyped[T any](table Table, typeID TypeID) *Typed[T] {
	return &Typed[T]{table: table, typeID: typeID}
}

// Insert adds a value and returns its handle.
func (t *Typed[T]) Insert(value T) Handle {
	return t.table.Insert(t.typeID, value)
}

// Get retrieves a value by handle.
func (t *Typed[T]) Get(handle Handle) (T, bool) {
	v, ok := t.table.GetTyped(handle, t.typeID)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Remove drops a payload and returns (value, true) if found.
func (t *Typed[T]) Remove(handle Handle) (T, bool) {
	var zero T
	if _, ok := t.table.GetTyped(handle, t.typeID); !ok {
		return zero, false
	}
	v, ok := t.table.Remove(handle)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Len returns the number of live payloads of this type.
func (t *Typed[T]) Len() int {
	n := 0
	t.Each(func(Handle, T) bool { n++; return true })
	return n
}

// Each iterates over all live payloads of this type.
func (t *Typed[T]) Each(fn func(Handle, T) bool) {
	ut, ok := t.table.(*UnifiedTable)
	if !ok {
		return
	}
	ut.backend.Each(func(h Handle, id TypeID, v any) bool {
		if id != t.typeID {
			return true
		}
		typed, ok := v.(T)
		if !ok {
			return true
		}
		return fn(h, typed)
	})
}

var _ TypedTable[int] = (*Typed[int])(nil)
