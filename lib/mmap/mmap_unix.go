//go:build linux || darwin || freebsd

package mmap

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/JMaximus76/filesync/fs/ferrors"
)

var pageSize = unix.Getpagesize()

// PageSize returns the OS page size.
func PageSize() int { return pageSize }

func roundUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}

// Alloc maps size bytes, rounded up to a whole number of pages, as an
// anonymous private region. The returned slice is page-aligned (the
// baseline guarantee every mmap gives).
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ferrors.New(ferrors.KindArg)
	}
	mapped, err := unix.Mmap(-1, 0, roundUp(size, pageSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, ferrors.WrapErrno(err, "mmap")
	}
	return mapped[:size], nil
}

// Free unmaps b. b's underlying mapping must span whole pages, which Alloc
// and AllocAligned both guarantee even though the returned slice's length
// may be shorter.
func Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	full := fullMapping(b)
	if err := unix.Munmap(full); err != nil {
		return ferrors.WrapErrno(err, "munmap")
	}
	return nil
}

// fullMapping recovers the whole-page span backing b. Alloc/AllocAligned
// only ever hand back a prefix of a page-rounded mapping, and the capacity
// of the returned slice always reaches the mapping's true end, so cap(b)
// bytes starting at b's address is exactly what was mapped.
func fullMapping(b []byte) []byte {
	return unsafe.Slice(&b[:1][0], cap(b))
}

// AllocAligned maps size bytes (rounded up to a whole number of pages)
// aligned to align, a power-of-two multiple of the page size. It uses the
// over-map-then-trim strategy: map 2*align bytes, then munmap the unwanted
// leading and trailing slivers, leaving one align-aligned region.
//
// This is the portable fallback the design notes call for in the absence of
// a MAP_ALIGNED-equivalent flag in golang.org/x/sys/unix.
func AllocAligned(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil, ferrors.New(ferrors.KindArg)
	}

	want := roundUp(size, pageSize)
	if want > align {
		return nil, ferrors.New(ferrors.KindArg)
	}

	overSize := 2 * align
	over, err := unix.Mmap(-1, 0, overSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, ferrors.WrapErrno(err, "mmap (oversized)")
	}

	base := uintptr(unsafe.Pointer(&over[0]))
	alignedBase := (base + uintptr(align) - 1) &^ (uintptr(align) - 1)
	leading := int(alignedBase - base)
	trailing := overSize - leading - align

	if leading > 0 {
		if err := unix.Munmap(over[:leading]); err != nil {
			return nil, ferrors.WrapErrno(err, "munmap (leading trim)")
		}
	}
	if trailing > 0 {
		if err := unix.Munmap(over[leading+align : leading+align+trailing]); err != nil {
			return nil, ferrors.WrapErrno(err, "munmap (trailing trim)")
		}
	}

	aligned := unsafe.Slice((*byte)(unsafe.Pointer(alignedBase)), align)
	return aligned[:want], nil
}
