package rbtree

// CLRS-style rotations, transplant and insert/delete fix-up. n.nilNode acts
// as the shared sentinel; every "empty child" points at it instead of nil.

func (t *Tree[K, V]) rotateLeft(x *node[K, V]) {
	y := x.getRight()
	x.setRight(y.getLeft())
	if y.getLeft() != t.nilNode {
		y.getLeft().setParent(x)
	}
	y.setParent(x.parent())
	if x.parent() == t.nilNode {
		t.root = y
	} else if x == x.parent().getLeft() {
		x.parent().setLeft(y)
	} else {
		x.parent().setRight(y)
	}
	y.setLeft(x)
	x.setParent(y)
}

func (t *Tree[K, V]) rotateRight(x *node[K, V]) {
	y := x.getLeft()
	x.setLeft(y.getRight())
	if y.getRight() != t.nilNode {
		y.getRight().setParent(x)
	}
	y.setParent(x.parent())
	if x.parent() == t.nilNode {
		t.root = y
	} else if x == x.parent().getRight() {
		x.parent().setRight(y)
	} else {
		x.parent().setLeft(y)
	}
	y.setRight(x)
	x.setParent(y)
}

func (t *Tree[K, V]) transplant(u, v *node[K, V]) {
	if u.parent() == t.nilNode {
		t.root = v
	} else if u == u.parent().getLeft() {
		u.parent().setLeft(v)
	} else {
		u.parent().setRight(v)
	}
	// The sentinel stays self-parented; deleteNode tracks x's true parent
	// (xParent) explicitly rather than relying on v.parent() when v is nil.
	if v != t.nilNode {
		v.setParent(u.parent())
	}
}

func (t *Tree[K, V]) insertFixup(z *node[K, V]) {
	for !z.parent().isBlack() {
		if z.parent() == z.parent().parent().getLeft() {
			y := z.parent().parent().getRight()
			if !y.isBlack() {
				z.parent().setBlack(true)
				y.setBlack(true)
				z.parent().parent().setBlack(false)
				z = z.parent().parent()
			} else {
				if z == z.parent().getRight() {
					z = z.parent()
					t.rotateLeft(z)
				}
				z.parent().setBlack(true)
				z.parent().parent().setBlack(false)
				t.rotateRight(z.parent().parent())
			}
		} else {
			y := z.parent().parent().getLeft()
			if !y.isBlack() {
				z.parent().setBlack(true)
				y.setBlack(true)
				z.parent().parent().setBlack(false)
				z = z.parent().parent()
			} else {
				if z == z.parent().getLeft() {
					z = z.parent()
					t.rotateRight(z)
				}
				z.parent().setBlack(true)
				z.parent().parent().setBlack(false)
				t.rotateLeft(z.parent().parent())
			}
		}
	}
	t.root.setBlack(true)
}

// deleteNode performs the standard three-case RB deletion (no left child,
// no right child, or splice with the in-order successor) followed by the
// color fix-up, leaving z free for the caller to return to the arena.
func (t *Tree[K, V]) deleteNode(z *node[K, V]) {
	y := z
	yOriginalBlack := y.isBlack()
	var x *node[K, V]
	var xParent *node[K, V]

	if z.getLeft() == t.nilNode {
		x = z.getRight()
		xParent = z.parent()
		t.transplant(z, z.getRight())
	} else if z.getRight() == t.nilNode {
		x = z.getLeft()
		xParent = z.parent()
		t.transplant(z, z.getLeft())
	} else {
		y = minimum(z.getRight(), t.nilNode)
		yOriginalBlack = y.isBlack()
		x = y.getRight()
		if y.parent() == z {
			xParent = y
		} else {
			xParent = y.parent()
			t.transplant(y, y.getRight())
			y.setRight(z.getRight())
			y.getRight().setParent(y)
		}
		t.transplant(z, y)
		y.setLeft(z.getLeft())
		y.getLeft().setParent(y)
		y.setBlack(z.isBlack())
	}

	if yOriginalBlack {
		t.deleteFixup(x, xParent)
	}
}

func (t *Tree[K, V]) deleteFixup(x, xParent *node[K, V]) {
	for x != t.root && x.isBlack() {
		if x == xParent.getLeft() {
			w := xParent.getRight()
			if !w.isBlack() {
				w.setBlack(true)
				xParent.setBlack(false)
				t.rotateLeft(xParent)
				w = xParent.getRight()
			}
			if w.getLeft().isBlack() && w.getRight().isBlack() {
				w.setBlack(false)
				x = xParent
				xParent = x.parent()
			} else {
				if w.getRight().isBlack() {
					w.getLeft().setBlack(true)
					w.setBlack(false)
					t.rotateRight(w)
					w = xParent.getRight()
				}
				w.setBlack(xParent.isBlack())
				xParent.setBlack(true)
				w.getRight().setBlack(true)
				t.rotateLeft(xParent)
				x = t.root
			}
		} else {
			w := xParent.getLeft()
			if !w.isBlack() {
				w.setBlack(true)
				xParent.setBlack(false)
				t.rotateRight(xParent)
				w = xParent.getLeft()
			}
			if w.getRight().isBlack() && w.getLeft().isBlack() {
				w.setBlack(false)
				x = xParent
				xParent = x.parent()
			} else {
				if w.getLeft().isBlack() {
					w.getRight().setBlack(true)
					w.setBlack(false)
					t.rotateLeft(w)
					w = xParent.getLeft()
				}
				w.setBlack(xParent.isBlack())
				xParent.setBlack(true)
				w.getLeft().setBlack(true)
				t.rotateRight(xParent)
				x = t.root
			}
		}
	}
	x.setBlack(true)
}
