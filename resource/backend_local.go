package resource

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("payload backend closed")

// LocalBackend is an in-memory payload backend with free-list slot reuse.
type LocalBackend struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value  any
	typeID TypeID
	valid  bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typeID TypeID, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	e := entry{
		typeID: typeID,
		value:  value,
		valid:  true,
	}

	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}

	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

func (b *LocalBackend) lookup(handle Handle) (entry, bool) {
	if handle == 0 {
		return entry{}, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := handle - 1
	if idx >= Handle(len(b.entries)) {
		return entry{}, false
	}

	e := b.entries[idx]
	return e, e.valid
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, bool) {
	e, ok := b.lookup(handle)
	return e.value, ok
}

// TypeID returns the type ID for a handle.
func (b *LocalBackend) TypeID(handle Handle) (TypeID, bool) {
	e, ok := b.lookup(handle)
	return e.typeID, ok
}

// Drop removes a payload and returns (value, true) if it was live.
// The caller runs any Dropper.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := handle - 1
	if idx >= Handle(len(b.entries)) {
		return nil, false
	}

	e := &b.entries[idx]
	if !e.valid {
		return nil, false
	}

	value := e.value
	e.valid = false
	e.value = nil
	b.freeList = append(b.freeList, handle)

	return value, true
}

// Close releases all payloads, running their Droppers.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	var pending []Dropper
	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := b.entries[i].value.(Dropper); ok {
				pending = append(pending, d)
			}
			b.entries[i].valid = false
			b.entries[i].value = nil
		}
	}

	b.entries = nil
	b.freeList = nil
	b.mu.Unlock()

	// Drop hooks may call back into the table.
	for _, d := range pending {
		d.Drop()
	}
	return nil
}

// Len returns the number of live payloads.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries) - len(b.freeList)
}

// Each iterates over all live payloads.
func (b *LocalBackend) Each(fn func(Handle, TypeID, any) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(Handle(i+1), e.typeID, e.value) {
				break
			}
		}
	}
}
