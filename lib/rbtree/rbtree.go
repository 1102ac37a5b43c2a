// Package rbtree implements an intrusive red-black tree keyed by a
// caller-provided comparator, with parent-pointer-and-color packed into one
// word per node and O(1)-maintained cached smallest/largest pointers. Nodes
// are allocated from a free-list-backed arena (lib/freelist) sized at
// construction, matching the original's fixed-capacity, allocation-free-at-
// steady-state design.
package rbtree

import (
	"unsafe"

	"github.com/JMaximus76/filesync/fs/ferrors"
	"github.com/JMaximus76/filesync/lib/freelist"
)

const colorBit = uintptr(1)

// node is the intrusive tree node. parentColor packs the parent pointer in
// the high bits and the color in the low bit (1 = black, 0 = red); this
// requires nodes aligned to at least 2 bytes, trivially true since a node
// holds machine pointers.
type node[K, V any] struct {
	parentColor uintptr
	left, right unsafe.Pointer // *node[K,V], stored untyped to keep the struct itself uniform-sized for the arena
	key         K
	value       V
}

func (n *node[K, V]) parent() *node[K, V] {
	return (*node[K, V])(unsafe.Pointer(n.parentColor &^ colorBit))
}

func (n *node[K, V]) setParent(p *node[K, V]) {
	black := n.isBlack()
	n.parentColor = uintptr(unsafe.Pointer(p))
	if black {
		n.parentColor |= colorBit
	}
}

func (n *node[K, V]) isBlack() bool { return n.parentColor&colorBit != 0 }

func (n *node[K, V]) setBlack(black bool) {
	p := n.parentColor &^ colorBit
	if black {
		p |= colorBit
	}
	n.parentColor = p
}

func (n *node[K, V]) getLeft() *node[K, V]  { return (*node[K, V])(n.left) }
func (n *node[K, V]) getRight() *node[K, V] { return (*node[K, V])(n.right) }
func (n *node[K, V]) setLeft(c *node[K, V]) { n.left = unsafe.Pointer(c) }
func (n *node[K, V]) setRight(c *node[K, V]) {
	n.right = unsafe.Pointer(c)
}

// Which selects the cached extreme for CachedGet.
type Which int

const (
	Smallest Which = iota
	Largest
)

// Tree is a generic intrusive red-black tree keyed by K with values V. The
// zero value is not usable; construct with New.
type Tree[K, V any] struct {
	region         []byte
	arena          *freelist.List
	nilNode        *node[K, V]
	root           *node[K, V]
	smallest       *node[K, V]
	largest        *node[K, V]
	cmp            func(a, b K) int
	onDuplicatePut func(existing *V, incoming V)
	count          int
}

// New creates a Tree with a fixed node capacity and a three-way comparator
// (negative if a<b, zero if equal, positive if a>b). onDuplicatePut is
// called with the existing value's address and the incoming value when
// Put is given a key that already exists; pass nil to overwrite silently.
// This stands in for the original's caller-supplied attach callback: since
// Go values aren't intrusively multi-linked the way the C containers were,
// duplicate-key policy collapses to "what happens to the old value", not
// a caller-built chain of containers under one node.
func New[K, V any](capacity int, cmp func(a, b K) int, onDuplicatePut func(existing *V, incoming V)) (*Tree[K, V], error) {
	if capacity <= 0 {
		return nil, ferrors.New(ferrors.KindArg)
	}

	var zero node[K, V]
	slotSize := unsafe.Sizeof(zero)
	region := make([]byte, uintptr(capacity)*slotSize)
	arena, err := freelist.New(region, slotSize)
	if err != nil {
		return nil, err
	}

	sentinel := &node[K, V]{}
	sentinel.parentColor = uintptr(unsafe.Pointer(sentinel)) | colorBit // self-parented, black

	t := &Tree[K, V]{
		region:         region,
		arena:          arena,
		nilNode:        sentinel,
		root:           sentinel,
		smallest:       sentinel,
		largest:        sentinel,
		cmp:            cmp,
		onDuplicatePut: onDuplicatePut,
	}
	return t, nil
}

// Len returns the number of keys currently stored.
func (t *Tree[K, V]) Len() int { return t.count }

func (t *Tree[K, V]) allocNode() (*node[K, V], error) {
	p, ok := t.arena.Alloc()
	if !ok {
		return nil, ferrors.New(ferrors.KindFull)
	}
	n := (*node[K, V])(p)
	*n = node[K, V]{}
	return n, nil
}

func (t *Tree[K, V]) freeNode(n *node[K, V]) {
	t.arena.Free(unsafe.Pointer(n))
}

// Put inserts key/value, or invokes onDuplicatePut against the existing
// value if key is already present. Fails with ferrors.KindFull if the
// arena is exhausted (only possible when inserting a genuinely new key).
func (t *Tree[K, V]) Put(key K, value V) error {
	x := t.root
	var parent *node[K, V] = t.nilNode
	goLeft := false

	for x != t.nilNode {
		parent = x
		c := t.cmp(key, x.key)
		switch {
		case c == 0:
			if t.onDuplicatePut != nil {
				t.onDuplicatePut(&x.value, value)
			} else {
				x.value = value
			}
			return nil
		case c < 0:
			x = x.getLeft()
			goLeft = true
		default:
			x = x.getRight()
			goLeft = false
		}
	}

	n, err := t.allocNode()
	if err != nil {
		return err
	}
	n.key = key
	n.value = value
	n.setLeft(t.nilNode)
	n.setRight(t.nilNode)
	n.setParent(parent)
	n.setBlack(false) // new nodes are red

	if parent == t.nilNode {
		t.root = n
	} else if goLeft {
		parent.setLeft(n)
	} else {
		parent.setRight(n)
	}

	if parent == t.nilNode || (t.smallest != t.nilNode && parent == t.smallest && goLeft) {
		t.smallest = n
	}
	if parent == t.nilNode || (t.largest != t.nilNode && parent == t.largest && !goLeft) {
		t.largest = n
	}

	t.insertFixup(n)
	t.count++
	return nil
}

// Get removes and returns the value stored under key. Fails with
// ferrors.KindEmpty if the tree is empty, or ferrors.KindArg ("bad key", the
// closest taxonomy member) if key is absent.
func (t *Tree[K, V]) Get(key K) (V, error) {
	var zero V
	if t.root == t.nilNode {
		return zero, ferrors.New(ferrors.KindEmpty)
	}

	x := t.root
	for x != t.nilNode {
		c := t.cmp(key, x.key)
		switch {
		case c == 0:
			return t.remove(x), nil
		case c < 0:
			x = x.getLeft()
		default:
			x = x.getRight()
		}
	}
	return zero, ferrors.New(ferrors.KindArg)
}

// CachedGet removes and returns the smallest or largest value in the tree.
// Fails with ferrors.KindEmpty if the tree is empty.
func (t *Tree[K, V]) CachedGet(which Which) (V, error) {
	var zero V
	var n *node[K, V]
	if which == Smallest {
		n = t.smallest
	} else {
		n = t.largest
	}
	if n == t.nilNode {
		return zero, ferrors.New(ferrors.KindEmpty)
	}
	return t.remove(n), nil
}

func (t *Tree[K, V]) remove(n *node[K, V]) V {
	value := n.value

	if t.count == 1 {
		t.smallest, t.largest = t.nilNode, t.nilNode
	} else {
		if n == t.smallest {
			if n.getRight() != t.nilNode {
				t.smallest = minimum(n.getRight(), t.nilNode)
			} else {
				t.smallest = n.parent()
			}
		}
		if n == t.largest {
			if n.getLeft() != t.nilNode {
				t.largest = maximum(n.getLeft(), t.nilNode)
			} else {
				t.largest = n.parent()
			}
		}
	}

	t.deleteNode(n)
	t.freeNode(n)
	t.count--
	return value
}

func minimum[K, V any](n, nilNode *node[K, V]) *node[K, V] {
	for n.getLeft() != nilNode {
		n = n.getLeft()
	}
	return n
}

func maximum[K, V any](n, nilNode *node[K, V]) *node[K, V] {
	for n.getRight() != nilNode {
		n = n.getRight()
	}
	return n
}
