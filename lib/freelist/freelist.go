// Package freelist implements a single-threaded LIFO free list over a
// caller-owned contiguous region of memory holding uniformly sized slots.
// Alloc/free are O(1); there is no bounds checking — the caller guarantees
// that pointers passed to Free originated from the same region.
package freelist

import (
	"unsafe"

	"github.com/JMaximus76/filesync/fs/ferrors"
)

// minSlotSize is the smallest slot that can hold a next-pointer.
const minSlotSize = unsafe.Sizeof(uintptr(0))

// List is a LIFO free list threaded through a caller-owned byte region. Each
// free slot's first machine word is used as the "next" link; slots are
// otherwise untouched by the list itself.
type List struct {
	region   []byte
	slotSize uintptr
	head     unsafe.Pointer
}

// New threads region into a free list of slots, each exactly slotSize bytes.
// slotSize must be at least the size of a pointer and region's length must
// be an exact multiple of it; anything else fails with ferrors.KindArg.
func New(region []byte, slotSize uintptr) (*List, error) {
	if slotSize < minSlotSize {
		return nil, ferrors.New(ferrors.KindArg)
	}
	if len(region) == 0 || uintptr(len(region))%slotSize != 0 {
		return nil, ferrors.New(ferrors.KindArg)
	}

	l := &List{region: region, slotSize: slotSize}
	n := uintptr(len(region)) / slotSize

	base := unsafe.Pointer(&region[0])
	var head unsafe.Pointer
	for i := n; i > 0; i-- {
		slot := unsafe.Add(base, (i-1)*slotSize)
		*(*unsafe.Pointer)(slot) = head
		head = slot
	}
	l.head = head
	return l, nil
}

// Alloc pops the head of the free list. The second return value is false
// when the list is exhausted (the caller treats this as a "full" error, per
// the original's contract — this package itself just reports emptiness).
func (l *List) Alloc() (unsafe.Pointer, bool) {
	if l.head == nil {
		return nil, false
	}
	slot := l.head
	l.head = *(*unsafe.Pointer)(slot)
	return slot, true
}

// Free prepends ptr to the free list. ptr must have come from this list's
// region via Alloc; this is not checked.
func (l *List) Free(ptr unsafe.Pointer) {
	*(*unsafe.Pointer)(ptr) = l.head
	l.head = ptr
}

// SlotSize returns the fixed slot size this list was constructed with.
func (l *List) SlotSize() uintptr { return l.slotSize }
