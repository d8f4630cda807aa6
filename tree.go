package bptree

import (
	"fmt"

	"bptree/internal/list"
)

// tree is the B+ tree engine: descent, insertion, deletion, and the
// balance state machine (spec.md sections 4.3-4.6). It has no public
// surface of its own — Index (index.go) is the facade callers use.
type tree[K any, V any] struct {
	cmp Comparator[K]

	root                         *node[K, V]
	leftmostLeaf, rightmostLeaf  *node[K, V]
	size                         uint64
	maxNodeSize, halfCapacity    int

	logger Logger
}

func newTree[K any, V any](cmp Comparator[K], maxNodeSize int, logger Logger) (*tree[K, V], error) {
	if maxNodeSize%2 != 0 {
		return nil, newPrecondition(ErrOddNodeSize)
	}
	if maxNodeSize < 4 {
		return nil, newPrecondition(ErrNodeSizeTooSmall)
	}
	if logger == nil {
		logger = DiscardLogger{}
	}
	return &tree[K, V]{
		cmp:          cmp,
		maxNodeSize:  maxNodeSize,
		halfCapacity: maxNodeSize / 2,
		logger:       logger,
	}, nil
}

func (t *tree[K, V]) cellCmp(a, b *cell[K, V]) int { return t.cmp(a.key, b.key) }

func (t *tree[K, V]) probe(key K) *cell[K, V] { return &cell[K, V]{key: key} }

// searchKV resolves key using mode, falling back to the neighboring leaf
// when the leaf findLeaf routes to has no match. That can happen for
// LE/LT: findLeaf descends on separators that are copies of a leaf's max
// key, so a key that falls in the gap between one leaf's max and the
// next leaf's min is routed to the right-hand leaf, whose own entries may
// all be too large — the true predecessor sits in the left sibling.
func (t *tree[K, V]) searchKV(key K, mode SearchMode) (*cell[K, V], bool) {
	leaf := t.findLeaf(key)
	if leaf == nil {
		return nil, false
	}
	if n := leaf.cells.SearchNode(t.cellCmp, t.probe(key), mode.toList()); n != nil {
		return n.Key, true
	}
	switch mode {
	case LE, LT:
		if leaf.leftSibling != nil {
			if m := leaf.leftSibling.cells.Max(); m != nil {
				return m.Key, true
			}
		}
	case GE, GT:
		if leaf.rightSibling != nil {
			if m := leaf.rightSibling.cells.Min(); m != nil {
				return m.Key, true
			}
		}
	}
	return nil, false
}

// findLeaf descends from the root to the leaf that would hold key, per
// spec.md section 4.3. Returns nil if the tree is empty.
func (t *tree[K, V]) findLeaf(key K) *node[K, V] {
	n := t.root
	if n == nil {
		return nil
	}
	for !n.isLeaf {
		match := n.cells.SearchNode(t.cellCmp, t.probe(key), list.LE)
		if match == nil {
			n = n.leftMostChild
			continue
		}
		if t.cmp(match.Key.key, key) < 0 {
			n = match.Key.rightChild
			continue
		}
		// Exact match: a separator k means "<=k goes left", so descend
		// into the previous cell's right child (or left_most_child if
		// this is the list's min).
		if prev := match.Left(); prev != nil {
			n = prev.Key.rightChild
		} else {
			n = n.leftMostChild
		}
	}
	return n
}

// insert inserts key (with an optional value) and rebalances. Spec.md
// section 4.4.
func (t *tree[K, V]) insert(key K, value V, hasValue bool) error {
	c := &cell[K, V]{key: key, value: value, hasValue: hasValue}

	if t.root == nil {
		leaf := newLeaf[K, V]()
		leaf.cells.Insert(t.cellCmp, c)
		t.root = leaf
		t.leftmostLeaf = leaf
		t.rightmostLeaf = leaf
		t.size++
		return nil
	}

	leaf := t.findLeaf(key)
	leaf.cells.Insert(t.cellCmp, c)
	if err := t.balance(leaf); err != nil {
		return err
	}
	t.size++
	return nil
}

// delete removes key and rebalances, returning the removed value (if any)
// and whether the key was present. Spec.md section 4.5.
func (t *tree[K, V]) delete(key K) (V, bool, bool, error) {
	var zero V
	leaf := t.findLeaf(key)
	if leaf == nil {
		return zero, false, false, nil
	}
	detached, found := leaf.cells.Delete(t.cellCmp, t.probe(key))
	if !found {
		return zero, false, false, nil
	}
	t.size -= uint64(1 + detached.DuplicateCount)
	if err := t.balance(leaf); err != nil {
		return zero, false, false, err
	}
	return detached.Key.value, detached.Key.hasValue, true, nil
}

// balance is the central algorithm of spec.md section 4.6, converted from
// the naturally recursive description into an explicit loop up the spine
// (spec.md section 9) to bound stack use on deep trees.
func (t *tree[K, V]) balance(n *node[K, V]) error {
	for n != nil {
		cnt := n.count()

		switch {
		case cnt > t.maxNodeSize:
			parent, err := t.split(n)
			if err != nil {
				return newInvariantBroken("failed while balancing", err)
			}
			n = parent
			continue

		case cnt >= t.halfCapacity:
			return nil

		case n.parent == nil:
			// Root: may legitimately hold fewer than half_capacity cells.
			if cnt == 0 && !n.isLeaf {
				t.collapseRoot(n)
			}
			return nil

		default:
			right, left := n.rightSibling, n.leftSibling
			switch {
			case right != nil && right.count() > t.halfCapacity:
				if err := t.distributeFromRight(n, right); err != nil {
					return newInvariantBroken("failed while balancing", err)
				}
				return nil
			case left != nil && left.count() > t.halfCapacity:
				if err := t.distributeFromLeft(n, left); err != nil {
					return newInvariantBroken("failed while balancing", err)
				}
				return nil
			case right != nil:
				parent, err := t.mergeInto(n, right)
				if err != nil {
					return newInvariantBroken("failed while balancing", err)
				}
				n = parent
				continue
			case left != nil:
				parent, err := t.mergeInto(left, n)
				if err != nil {
					return newInvariantBroken("failed while balancing", err)
				}
				n = parent
				continue
			default:
				t.logger.Error("balance: no sibling available for underflowed non-root node", "depth", depthOf(n))
				return newInvariantBroken("failed while balancing", ErrNoSibling)
			}
		}
	}
	return nil
}

func depthOf[K any, V any](n *node[K, V]) int {
	d := 0
	for n.parent != nil {
		n = n.parent
		d++
	}
	return d
}

// effectiveParentCell finds the nearest ancestor cell whose right-child
// path leads to n, walking up while n is the left-most child at each
// level (spec.md section 9). It returns the parent whose cell list owns
// that cell (needed by callers that must delete/replace it). If n is
// left-most at every ancestor it falls back to n.parent's min cell; it
// returns (nil, n.parent) only when that parent has no cells, and
// (nil, nil) when n is the root.
func (t *tree[K, V]) effectiveParentCell(n *node[K, V]) (*cell[K, V], *node[K, V]) {
	cur := n
	for cur.parent != nil {
		if cur.parentCell != nil {
			return cur.parentCell, cur.parent
		}
		cur = cur.parent
	}
	if n.parent == nil {
		return nil, nil
	}
	if min := n.parent.cells.Min(); min != nil {
		return min.Key, n.parent
	}
	return nil, n.parent
}

// split splits an overfull node after index half_capacity and promotes (or
// copies, for leaves) the separator into the parent, per spec.md section
// 4.6.1. Returns the parent so the caller can continue balancing upward.
func (t *tree[K, V]) split(n *node[K, V]) (*node[K, V], error) {
	rightList, err := n.cells.SplitAt(t.halfCapacity)
	if err != nil {
		return nil, ErrSplitRange
	}

	right := &node[K, V]{isLeaf: n.isLeaf}
	right.setCells(rightList)

	right.rightSibling = n.rightSibling
	if n.rightSibling != nil {
		n.rightSibling.leftSibling = right
	}
	n.rightSibling = right
	right.leftSibling = n

	var separatorKey K
	if n.isLeaf {
		if t.rightmostLeaf == n {
			t.rightmostLeaf = right
		}
		maxEntry := n.cells.Max()
		if maxEntry == nil {
			return nil, fmt.Errorf("split: leaf left half is empty")
		}
		separatorKey = maxEntry.Key.key // copied, not removed
	} else {
		promoted, ok := n.cells.PopMax()
		if !ok {
			return nil, fmt.Errorf("split: interior left half is empty")
		}
		right.setLeftMostChild(promoted.rightChild)
		separatorKey = promoted.key
	}

	var parent *node[K, V]
	if n.parent == nil {
		newRoot := newInterior[K, V]()
		newRoot.setLeftMostChild(n)
		t.root = newRoot
		parent = newRoot
	} else {
		parent = n.parent
	}
	right.parent = parent

	sep := &cell[K, V]{key: separatorKey, rightChild: right}
	insertedNode, _ := parent.cells.Insert(t.cellCmp, sep)
	right.parentCell = insertedNode.Key

	return parent, nil
}

// collapseRoot implements the REMOVE_ROOT case: the root has zero cells,
// so it is replaced by its (only remaining) left-most child.
func (t *tree[K, V]) collapseRoot(n *node[K, V]) {
	newRoot := n.leftMostChild
	newRoot.parent = nil
	newRoot.parentCell = nil
	t.root = newRoot
}

// mergeInto absorbs source (target's right sibling) into target, per
// spec.md section 4.6.2. Returns source's former parent so the caller can
// continue balancing upward.
func (t *tree[K, V]) mergeInto(target, source *node[K, V]) (*node[K, V], error) {
	effCell, _ := t.effectiveParentCell(source)
	if effCell == nil {
		return nil, fmt.Errorf("merge: no effective parent cell for source")
	}

	if !target.isLeaf {
		target.cells.Append(&cell[K, V]{key: effCell.key, rightChild: source.leftMostChild})
	}
	target.cells.MergeRightInto(source.cells)
	target.reinforceChildParents()

	target.rightSibling = source.rightSibling
	if source.rightSibling != nil {
		source.rightSibling.leftSibling = target
	}

	sourceParent := source.parent
	if source.parentCell == nil {
		promoted, ok := sourceParent.cells.PopMin()
		if !ok {
			return nil, fmt.Errorf("merge: source was left-most but parent has no min cell")
		}
		sourceParent.setLeftMostChild(promoted.rightChild)
		effCell.key = promoted.key
	} else {
		if _, ok := sourceParent.cells.Delete(t.cellCmp, source.parentCell); !ok {
			return nil, fmt.Errorf("merge: could not find source's parent cell to remove")
		}
	}

	if source.isLeaf && t.rightmostLeaf == source {
		t.rightmostLeaf = target
	}

	return sourceParent, nil
}

// distributeFromRight moves the prefix of n's right sibling's cells that
// lies beyond its last half_capacity cells into n, leaving the sibling
// with exactly half_capacity cells. For interior nodes the last cell of
// that prefix becomes the new separator in the parent and the old
// separator moves down into n. Spec.md section 4.6.3.
func (t *tree[K, V]) distributeFromRight(n, right *node[K, V]) error {
	effCell, _ := t.effectiveParentCell(right)
	if effCell == nil {
		return fmt.Errorf("distribute: no effective parent cell for right sibling")
	}

	count := right.count()

	if n.isLeaf {
		i := count - t.halfCapacity - 1
		donated := right.cells
		remaining, err := right.cells.SplitAt(i)
		if err != nil {
			return ErrSplitRange
		}
		right.setCells(remaining)

		n.cells.MergeRightInto(donated)
		effCell.key = n.cells.Max().Key.key
		return nil
	}

	origRightLMC := right.leftMostChild
	i := count - t.halfCapacity - 1
	donated := right.cells
	remaining, err := right.cells.SplitAt(i)
	if err != nil {
		return ErrSplitRange
	}
	right.setCells(remaining)

	boundary, ok := donated.PopMax()
	if !ok {
		return fmt.Errorf("distribute: donated slice from right sibling is empty")
	}

	n.cells.Append(&cell[K, V]{key: effCell.key, rightChild: origRightLMC})
	n.cells.MergeRightInto(donated)
	n.reinforceChildParents()

	right.setLeftMostChild(boundary.rightChild)
	effCell.key = boundary.key
	return nil
}

// distributeFromLeft moves the suffix of n's left sibling's cells that
// lies beyond its first half_capacity cells into n, leaving the sibling
// with exactly half_capacity cells. For interior nodes the first cell of
// that suffix becomes the new separator in the parent and the old
// separator moves down into n. Spec.md section 4.6.3.
func (t *tree[K, V]) distributeFromLeft(n, left *node[K, V]) error {
	effCell, _ := t.effectiveParentCell(n)
	if effCell == nil {
		return fmt.Errorf("distribute: no effective parent cell for n")
	}

	if n.isLeaf {
		i := t.halfCapacity - 1
		donated, err := left.cells.SplitAt(i)
		if err != nil {
			return ErrSplitRange
		}
		replacementKey := left.cells.Max().Key.key
		donated.MergeLeftInto(n.cells)
		effCell.key = replacementKey
		return nil
	}

	// Split leaves left.cells one cell larger than half_capacity so the
	// PopMax below can peel off exactly the boundary cell, mirroring
	// distributeFromRight's symmetric donate-then-trim shape.
	i := t.halfCapacity
	donated, err := left.cells.SplitAt(i)
	if err != nil {
		return ErrSplitRange
	}
	boundary, ok := left.cells.PopMax()
	if !ok {
		return fmt.Errorf("distribute: left sibling's kept slice is empty")
	}

	oldLMC := n.leftMostChild
	n.cells.Prepend(&cell[K, V]{key: effCell.key, rightChild: oldLMC})
	donated.MergeLeftInto(n.cells)
	n.setLeftMostChild(boundary.rightChild)
	n.reinforceChildParents()

	effCell.key = boundary.key
	return nil
}
