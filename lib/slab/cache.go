package slab

import "unsafe"

// Cache is thread-local state: a back-pointer to the allocator it draws
// from, and a singly-linked free list of objects this goroutine currently
// holds. A Cache must be used by exactly one goroutine for its lifetime;
// nothing enforces that, it is a usage discipline the caller upholds.
type Cache struct {
	alloc     *Allocator
	freeHead  unsafe.Pointer
	freeCount int
}

// Alloc returns an object of the allocator's configured size and alignment.
// The fast path pops the cache's own free list; it only takes the
// allocator's lock when that list is empty.
func (c *Cache) Alloc() (unsafe.Pointer, error) {
	if c.freeHead == nil {
		if err := c.refill(); err != nil {
			return nil, err
		}
	}
	obj := c.freeHead
	c.freeHead = nextOf(obj)
	c.freeCount--
	return obj, nil
}

// Free returns obj to the cache. The fast path only pushes onto the cache's
// own free list; it takes the allocator's lock only once the list reaches
// cfg.CacheCap.
func (c *Cache) Free(obj unsafe.Pointer) {
	setNext(obj, c.freeHead)
	c.freeHead = obj
	c.freeCount++
	if c.freeCount >= c.alloc.cfg.CacheCap {
		c.drain()
	}
}

// Refresh releases everything the cache holds and acquires a fresh batch of
// size cfg.CacheAcquire.
func (c *Cache) Refresh() error {
	c.FullRelease()
	return c.refill()
}

// FullRelease drains the cache entirely back to the allocator.
func (c *Cache) FullRelease() {
	for c.freeHead != nil {
		c.drain()
	}
}

// refill is the alloc slow path (4.4.4): build a batch targeting
// cfg.CacheAcquire, add slabs as needed to cover the shortfall, load from
// active slabs under the lock, retire if appropriate, then unload into the
// cache's own free list outside the lock.
func (c *Cache) refill() error {
	a := c.alloc
	b := newBatch(a.cfg.CacheAcquire)

	a.mu.Lock()
	for !b.metTarget() {
		for s := a.active; s != nil && !b.metTarget(); s = s.next {
			if s.freeHead == nil {
				continue
			}
			n := b.load(&s.freeHead)
			if n > 0 {
				s.usedCount += n
				a.usedObjs += n
			}
		}
		if b.metTarget() {
			break
		}
		need := b.target - b.count
		slabsNeeded := (need + a.objsPerSlab - 1) / a.objsPerSlab
		for i := 0; i < slabsNeeded; i++ {
			if err := a.addSlab(); err != nil {
				a.mu.Unlock()
				return err
			}
		}
	}
	if a.readyForRetire() {
		a.retireSlabs()
	}
	a.mu.Unlock()

	acquired := b.count
	b.unload(&c.freeHead)
	c.freeCount += acquired
	return nil
}

// drain is the free slow path (4.4.4): move cfg.CacheRelease objects from
// the cache's free list into a batch, then under the lock return each to
// its owning slab's free list, destroying any retired slab that reaches
// used_count == 0 in the process.
func (c *Cache) drain() {
	a := c.alloc
	target := a.cfg.CacheRelease
	if target > c.freeCount {
		target = c.freeCount
	}
	if target == 0 {
		return
	}

	b := newBatch(target)
	b.load(&c.freeHead)
	c.freeCount -= b.count

	a.mu.Lock()
	cur := b.head
	for cur != nil {
		next := nextOf(cur)
		hdr := a.slabOf(cur)
		setNext(cur, hdr.freeHead)
		hdr.freeHead = cur
		hdr.usedCount--
		a.usedObjs--
		if hdr.retired && hdr.usedCount == 0 {
			a.unmapSlab(hdr)
		}
		cur = next
	}
	a.mu.Unlock()
}
