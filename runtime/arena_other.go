//go:build !unix

package runtime

import "unsafe"

// heapSource backs the arena with Go memory on targets without mmap. The
// chunks are kept reachable by the arena itself.
type heapSource struct{}

func defaultSource() pageSource { return heapSource{} }

func (heapSource) Map(size int) ([]byte, error) {
	// uint64 backing gives 8-byte alignment
	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*8), nil
}

func (heapSource) Unmap([]byte) error { return nil }
