// Package slab implements a thread-safe slab allocator: page-aligned slabs
// are the unit of OS backing, an Allocator holds slabs and synchronizes
// through one mutex, and each goroutine owns a Cache that batches
// acquire/release traffic against the allocator so the common path never
// touches the lock.
package slab

import "github.com/JMaximus76/filesync/fs/ferrors"

// Config configures an Allocator. Zero fields fall back to the defaults
// below, mirroring the original's "defaults fill in zeros" contract.
type Config struct {
	ObjSize  uintptr
	ObjAlign uintptr

	// PagesPerSlab must be a power of two; the slab size S = PagesPerSlab *
	// page size must itself be a power of two so obj_ptr &^ (S-1) recovers
	// the slab header.
	PagesPerSlab int

	CacheCap     int
	CacheAcquire int
	CacheRelease int

	// RetireThreshold: an active slab with 0 < used_count <= RetireThreshold
	// is retired rather than kept active. Must leave N > RetireThreshold.
	RetireThreshold int

	// RetirePercent is the occupancy ratio (0,1] at or below which a
	// retirement scan runs after an alloc slow path.
	RetirePercent float64
}

const (
	DefaultPagesPerSlab    = 8
	DefaultCacheCap        = 64
	DefaultCacheAcquire    = 32
	DefaultCacheRelease    = 32
	DefaultRetireThreshold = 1
	DefaultRetirePercent   = 0.1
)

func (c Config) withDefaults() Config {
	if c.PagesPerSlab == 0 {
		c.PagesPerSlab = DefaultPagesPerSlab
	}
	if c.CacheCap == 0 {
		c.CacheCap = DefaultCacheCap
	}
	if c.CacheAcquire == 0 {
		c.CacheAcquire = DefaultCacheAcquire
	}
	if c.CacheRelease == 0 {
		c.CacheRelease = DefaultCacheRelease
	}
	if c.RetireThreshold == 0 {
		c.RetireThreshold = DefaultRetireThreshold
	}
	if c.RetirePercent == 0 {
		c.RetirePercent = DefaultRetirePercent
	}
	return c
}

func isPowerOfTwo(v int) bool { return v > 0 && v&(v-1) == 0 }

func (c Config) validate() error {
	if c.ObjSize == 0 || c.ObjAlign == 0 {
		return ferrors.New(ferrors.KindArg)
	}
	if !isPowerOfTwo(int(c.ObjAlign)) {
		return ferrors.New(ferrors.KindArg)
	}
	if !isPowerOfTwo(c.PagesPerSlab) {
		return ferrors.New(ferrors.KindArg)
	}
	if c.RetirePercent <= 0 || c.RetirePercent > 1 {
		return ferrors.New(ferrors.KindArg)
	}
	if c.CacheAcquire <= 0 || c.CacheRelease <= 0 || c.CacheCap <= 0 {
		return ferrors.New(ferrors.KindArg)
	}
	return nil
}
