package slab

import "unsafe"

// A batch is the ownership currency moved between a cache's free list and
// an allocator's slabs: a contiguous linked-list fragment threaded through
// each object's first machine word. No list is ever partially owned by two
// places at once, which is what lets the cache's fast paths run outside the
// allocator's lock.
type batch struct {
	head, tail unsafe.Pointer
	count      int
	target     int
}

func newBatch(target int) *batch {
	return &batch{target: target}
}

func nextOf(p unsafe.Pointer) unsafe.Pointer { return *(*unsafe.Pointer)(p) }
func setNext(p, next unsafe.Pointer)         { *(*unsafe.Pointer)(p) = next }

// load moves at most (target - count) nodes from *srcHead onto the tail of
// the batch, returning how many were taken. It splices by cutting the
// source list after the last node taken.
func (b *batch) load(srcHead *unsafe.Pointer) int {
	need := b.target - b.count
	if need <= 0 || *srcHead == nil {
		return 0
	}

	taken := 0
	movedHead := *srcHead
	cur := movedHead
	var last unsafe.Pointer
	for cur != nil && taken < need {
		last = cur
		cur = nextOf(cur)
		taken++
	}
	if taken == 0 {
		return 0
	}

	if b.head == nil {
		b.head = movedHead
	} else {
		setNext(b.tail, movedHead)
	}
	b.tail = last
	setNext(last, nil)
	*srcHead = cur
	b.count += taken
	return taken
}

// unload prepends the entire batch onto *dstHead and resets the batch to
// empty.
func (b *batch) unload(dstHead *unsafe.Pointer) {
	if b.head == nil {
		return
	}
	setNext(b.tail, *dstHead)
	*dstHead = b.head
	b.head, b.tail, b.count = nil, nil, 0
}

// metTarget reports whether the batch has accumulated its target count.
func (b *batch) metTarget() bool { return b.count >= b.target }
