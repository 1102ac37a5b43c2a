package slab

import (
	"sync"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JMaximus76/filesync/fs/ferrors"
	"github.com/JMaximus76/filesync/lib/layout"
	"github.com/JMaximus76/filesync/lib/mmap"
)

// slabHeader sits at the start of every S-byte, S-aligned mapping. Given any
// object pointer p from that slab, p &^ (S-1) recovers this header.
type slabHeader struct {
	usedCount int
	freeHead  unsafe.Pointer
	next      *slabHeader
	retired   bool
}

// Allocator owns a set of slabs and synchronizes all structural mutation
// through one mutex. Fast-path alloc/free live on Cache and only touch the
// allocator when a cache's local free list empties or overflows.
type Allocator struct {
	mu sync.Mutex

	cfg           Config
	slotOffset    uintptr
	paddedObjSize uintptr
	objsPerSlab   int
	slabBytes     int

	active      *slabHeader
	activeCount int
	usedObjs    int

	retirements      prometheus.Counter
	slabsDestroyed   prometheus.Counter
}

func roundUpU(v, align uintptr) uintptr { return (v + align - 1) &^ (align - 1) }

// New constructs an Allocator. N (objects per slab) must exceed
// cfg.RetireThreshold once defaults are applied.
func New(cfg Config) (*Allocator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var hdr slabHeader
	plan, err := layout.Compute(unsafe.Sizeof(hdr), unsafe.Alignof(hdr), []layout.Component{
		{Size: cfg.ObjSize, Align: cfg.ObjAlign, Count: 1},
	})
	if err != nil {
		return nil, err
	}

	slabBytes := cfg.PagesPerSlab * mmap.PageSize()
	paddedObjSize := roundUpU(cfg.ObjSize, cfg.ObjAlign)
	slotOffset := plan.Offsets[0]
	objsPerSlab := int((uintptr(slabBytes) - slotOffset) / paddedObjSize)

	if objsPerSlab <= cfg.RetireThreshold {
		return nil, ferrors.New(ferrors.KindArg)
	}

	a := &Allocator{
		cfg:           cfg,
		slotOffset:    slotOffset,
		paddedObjSize: paddedObjSize,
		objsPerSlab:   objsPerSlab,
		slabBytes:     slabBytes,
		retirements:   prometheus.NewCounter(prometheus.CounterOpts{Name: "slab_retirements_total", Help: "slabs unlinked from the active list"}),
		slabsDestroyed: prometheus.NewCounter(prometheus.CounterOpts{Name: "slab_destroyed_total", Help: "slab mappings unmapped"}),
	}
	return a, nil
}

// NewCache pairs a fresh thread-local Cache with this allocator.
func (a *Allocator) NewCache() *Cache {
	return &Cache{alloc: a}
}

// ExplicitRetire triggers a retirement scan regardless of current
// occupancy.
func (a *Allocator) ExplicitRetire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retireSlabs()
}

// Destroy frees every remaining active slab. The caller must guarantee the
// allocator is quiescent: no cache can still reach it, so no retired slab
// can still be outstanding either (they self-unmap in Cache.Free once their
// last held object returns).
func (a *Allocator) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	cur := a.active
	for cur != nil {
		next := cur.next
		a.unmapSlab(cur)
		cur = next
	}
	a.active = nil
	a.activeCount = 0
	a.usedObjs = 0
}

func (a *Allocator) addSlab() error {
	region, err := mmap.AllocAligned(a.slabBytes, a.slabBytes)
	if err != nil {
		return ferrors.Wrap(err, ferrors.KindSys, "mapping new slab")
	}

	hdr := (*slabHeader)(unsafe.Pointer(&region[0]))
	*hdr = slabHeader{}

	objRegion := region[a.slotOffset:]
	base := unsafe.Pointer(&objRegion[0])
	var head unsafe.Pointer
	for i := a.objsPerSlab; i > 0; i-- {
		slot := unsafe.Add(base, uintptr(i-1)*a.paddedObjSize)
		setNext(slot, head)
		head = slot
	}
	hdr.freeHead = head
	hdr.next = a.active
	a.active = hdr
	a.activeCount++
	return nil
}

func (a *Allocator) unmapSlab(hdr *slabHeader) {
	region := unsafe.Slice((*byte)(unsafe.Pointer(hdr)), a.slabBytes)
	mmap.MustFree(region)
	a.slabsDestroyed.Inc()
}

func (a *Allocator) readyForRetire() bool {
	if a.activeCount == 0 {
		return false
	}
	total := float64(a.activeCount * a.objsPerSlab)
	return float64(a.usedObjs)/total <= a.cfg.RetirePercent
}

// retireSlabs walks the active list once: an emptied slab is unmapped
// immediately, a mostly-empty one (0 < used_count <= RetireThreshold) is
// unlinked and flagged retired (freed lazily once its last object returns),
// and the rest stay active untouched.
func (a *Allocator) retireSlabs() {
	var prev *slabHeader
	cur := a.active
	for cur != nil {
		next := cur.next
		switch {
		case cur.usedCount == 0:
			a.unlink(prev, next)
			a.activeCount--
			a.unmapSlab(cur)
		case cur.usedCount <= a.cfg.RetireThreshold:
			a.unlink(prev, next)
			a.activeCount--
			cur.retired = true
			cur.next = nil
			a.retirements.Inc()
		default:
			prev = cur
		}
		cur = next
	}
}

func (a *Allocator) unlink(prev, next *slabHeader) {
	if prev == nil {
		a.active = next
	} else {
		prev.next = next
	}
}

func (a *Allocator) slabOf(obj unsafe.Pointer) *slabHeader {
	addr := uintptr(obj) &^ uintptr(a.slabBytes-1)
	return (*slabHeader)(unsafe.Pointer(addr))
}

// UsedObjects returns the current number of objects held by caches or the
// application (A1's invariant quantity).
func (a *Allocator) UsedObjects() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usedObjs
}

// ActiveSlabCount returns the number of slabs currently on the active list.
func (a *Allocator) ActiveSlabCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeCount
}

// Describe implements prometheus.Collector.
func (a *Allocator) Describe(ch chan<- *prometheus.Desc) {
	a.retirements.Describe(ch)
	a.slabsDestroyed.Describe(ch)
}

// Collect implements prometheus.Collector. Registration is always opt-in:
// nothing registers this allocator with a default registry implicitly.
func (a *Allocator) Collect(ch chan<- prometheus.Metric) {
	a.retirements.Collect(ch)
	a.slabsDestroyed.Collect(ch)

	a.mu.Lock()
	activeCount, usedObjs := a.activeCount, a.usedObjs
	a.mu.Unlock()

	ch <- prometheus.MustNewConstMetric(
		prometheus.NewDesc("slab_active_count", "slabs on the active list", nil, nil),
		prometheus.GaugeValue, float64(activeCount))
	ch <- prometheus.MustNewConstMetric(
		prometheus.NewDesc("slab_used_objects", "objects currently held by caches or the application", nil, nil),
		prometheus.GaugeValue, float64(usedObjs))
}
