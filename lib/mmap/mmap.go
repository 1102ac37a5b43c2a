// Package mmap provides OS-backed anonymous memory mappings, including an
// alignment-guaranteed variant used by lib/slab to recover a slab header
// pointer from any object pointer with obj_ptr &^ (S-1).
package mmap

import "fmt"

// MustAlloc allocates size bytes of page-aligned anonymous memory and
// panics on failure. Mirrors the teacher's lib/mmap convenience API.
func MustAlloc(size int) []byte {
	b, err := Alloc(size)
	if err != nil {
		panic(fmt.Sprintf("mmap: alloc %d bytes: %v", size, err))
	}
	return b
}

// MustFree unmaps b, previously returned by Alloc/MustAlloc/AllocAligned,
// and panics on failure.
func MustFree(b []byte) {
	if err := Free(b); err != nil {
		panic(fmt.Sprintf("mmap: free: %v", err))
	}
}

// MustAllocAligned allocates size bytes aligned to align (a power of two,
// typically larger than the page size) and panics on failure.
func MustAllocAligned(size, align int) []byte {
	b, err := AllocAligned(size, align)
	if err != nil {
		panic(fmt.Sprintf("mmap: aligned alloc %d/%d: %v", size, align, err))
	}
	return b
}
