package block

import (
	"reflect"
	"sync"
	"unsafe"
)

// thunkCache maps a closure type to the funcval of its invoke thunk.
// Instantiating a generic function value allocates, so constructors build
// each thunk once and reuse the pointer.
type thunkCache struct {
	m sync.Map
}

var (
	stackThunks thunkCache
	heapThunks  thunkCache
)

func (c *thunkCache) lookup(key reflect.Type) unsafe.Pointer {
	if v, ok := c.m.Load(key); ok {
		return v.(unsafe.Pointer)
	}
	return nil
}

func (c *thunkCache) store(key reflect.Type, fn unsafe.Pointer) unsafe.Pointer {
	v, _ := c.m.LoadOrStore(key, fn)
	return v.(unsafe.Pointer)
}
