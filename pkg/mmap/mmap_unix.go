//go:build linux || darwin
// +build linux darwin

// Package mmap provides anonymous memory mappings for off-heap arenas.
// Memory obtained here is not part of the Go heap, so large arenas do
// not add to the set of pages the garbage collector has to scan.
package mmap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Alloc maps size bytes of anonymous, private, read-write memory.
// The returned slice is page-aligned and must be released with Free.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid mapping size: %d", size)
	}

	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot map %d anonymous bytes: %w", size, err)
	}
	return data, nil
}

// Free returns a mapping obtained from Alloc to the operating system.
// The slice must be the exact value returned by Alloc.
func Free(b []byte) error {
	if b == nil {
		return nil
	}
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("cannot unmap %d bytes: %w", len(b), err)
	}
	return nil
}
