//go:build unix

package runtime

import "golang.org/x/sys/unix"

// mmapSource maps anonymous private pages.
type mmapSource struct{}

func defaultSource() pageSource { return mmapSource{} }

func (mmapSource) Map(size int) ([]byte, error) {
	page := unix.Getpagesize()
	size = (size + page - 1) &^ (page - 1)
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func (mmapSource) Unmap(b []byte) error {
	return unix.Munmap(b)
}
