//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/JMaximus76/filesync/fs/ferrors"
)

var pageSize = windows.Getpagesize()

// PageSize returns the OS page size.
func PageSize() int { return pageSize }

func roundUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}

// Alloc reserves and commits size bytes (rounded up to whole pages) via
// VirtualAlloc, the Windows analogue of an anonymous private mmap.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ferrors.New(ferrors.KindArg)
	}
	length := roundUp(size, pageSize)
	addr, err := windows.VirtualAlloc(0, uintptr(length), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, ferrors.WrapErrno(err, "VirtualAlloc")
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
	return b[:size], nil
}

// Free releases a mapping returned by Alloc/AllocAligned.
func Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&b[:1][0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return ferrors.WrapErrno(err, "VirtualFree")
	}
	return nil
}

// AllocAligned reserves 2*align bytes, picks the align-aligned sub-region,
// frees the whole reservation and re-reserves exactly at that address.
// VirtualFree of a fragment of a VirtualAlloc reservation is not legal on
// Windows (unlike munmap on POSIX), so alignment is achieved by a
// probe-then-commit dance instead of over-map-then-trim.
func AllocAligned(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil, ferrors.New(ferrors.KindArg)
	}
	want := roundUp(size, pageSize)
	if want > align {
		return nil, ferrors.New(ferrors.KindArg)
	}

	probe, err := windows.VirtualAlloc(0, uintptr(2*align), windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, ferrors.WrapErrno(err, "VirtualAlloc (probe)")
	}
	alignedAddr := (probe + uintptr(align) - 1) &^ (uintptr(align) - 1)
	if err := windows.VirtualFree(probe, 0, windows.MEM_RELEASE); err != nil {
		return nil, ferrors.WrapErrno(err, "VirtualFree (probe)")
	}

	addr, err := windows.VirtualAlloc(alignedAddr, uintptr(align), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, ferrors.WrapErrno(err, "VirtualAlloc (aligned)")
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), align)
	return b[:want], nil
}
