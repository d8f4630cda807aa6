// Package list implements the generic doubly-linked sorted sequence that
// backs every B+ tree node's cell storage.
//
// A List[T] holds values in ascending order according to a caller-supplied
// comparator passed to each operation (the list itself is comparator-free,
// so the same list type serves leaf cells and interior cells alike). Values
// that compare equal collapse into a single list node with an incremented
// duplicate count rather than occupying two slots.
package list

import "iter"

// Cmp compares two values, returning <0, 0, or >0 the way sort.Interface's
// comparators do.
type Cmp[T any] func(a, b T) int

// Mode selects the search semantic for Search/SearchNode.
type Mode int

const (
	EQ Mode = iota
	LE
	GE
	LT
	GT
)

// Node is one slot in a List, exposed so callers can walk the chain
// directly (needed for split/merge bookkeeping) without going through a
// comparator.
type Node[T any] struct {
	Key            T
	DuplicateCount int
	left, right    *Node[T]
}

// Left returns the previous node in the chain, or nil at the head.
func (n *Node[T]) Left() *Node[T] { return n.left }

// Right returns the next node in the chain, or nil at the tail.
func (n *Node[T]) Right() *Node[T] { return n.right }

// List is a doubly-linked ascending sequence of T.
type List[T any] struct {
	min, max *Node[T]
	count    int
}

// New returns an empty list.
func New[T any]() *List[T] { return &List[T]{} }

// Count returns the number of structurally distinct entries (duplicates are
// folded into their predecessor's DuplicateCount and not counted here).
func (l *List[T]) Count() int { return l.count }

// Min returns the smallest node, or nil if the list is empty.
func (l *List[T]) Min() *Node[T] { return l.min }

// Max returns the largest node, or nil if the list is empty.
func (l *List[T]) Max() *Node[T] { return l.max }

// All iterates the list in ascending order.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.min; n != nil; n = n.right {
			if !yield(n.Key) {
				return
			}
		}
	}
}

// SearchNode performs the linear scan described in spec.md section 4.1 and
// returns the matching node, or nil.
//
// The scan runs left to right and stops as soon as it has seen enough to
// answer the query: for EQ/LE/LT it stops at the first key greater than the
// probe, for GE/GT it stops at the first qualifying key.
func (l *List[T]) SearchNode(cmp Cmp[T], key T, mode Mode) *Node[T] {
	switch mode {
	case EQ:
		for n := l.min; n != nil; n = n.right {
			c := cmp(n.Key, key)
			if c == 0 {
				return n
			}
			if c > 0 {
				return nil
			}
		}
		return nil
	case LE:
		var candidate *Node[T]
		for n := l.min; n != nil; n = n.right {
			c := cmp(n.Key, key)
			if c > 0 {
				break
			}
			candidate = n
			if c == 0 {
				break
			}
		}
		return candidate
	case LT:
		var candidate *Node[T]
		for n := l.min; n != nil; n = n.right {
			if cmp(n.Key, key) >= 0 {
				break
			}
			candidate = n
		}
		return candidate
	case GE:
		for n := l.min; n != nil; n = n.right {
			if cmp(n.Key, key) >= 0 {
				return n
			}
		}
		return nil
	case GT:
		// Equal matches are explicitly skipped by continuing the scan.
		for n := l.min; n != nil; n = n.right {
			if cmp(n.Key, key) > 0 {
				return n
			}
		}
		return nil
	default:
		panic("list: unknown search mode")
	}
}

// Search is SearchNode with the node unwrapped to its key.
func (l *List[T]) Search(cmp Cmp[T], key T, mode Mode) (T, bool) {
	n := l.SearchNode(cmp, key, mode)
	if n == nil {
		var zero T
		return zero, false
	}
	return n.Key, true
}

// Insert locates the insertion point via an LE-search. A predecessor whose
// key compares equal to the new key has its duplicate count incremented and
// its stored key overwritten (latest write wins for lookup); otherwise a
// fresh node is spliced in immediately after the predecessor, or prepended
// if there is none.
//
// Returns the node that now holds key, and whether this was a structurally
// new node (false on a duplicate collision).
func (l *List[T]) Insert(cmp Cmp[T], key T) (*Node[T], bool) {
	pred := l.SearchNode(cmp, key, LE)
	if pred == nil {
		n := &Node[T]{Key: key, right: l.min}
		if l.min != nil {
			l.min.left = n
		} else {
			l.max = n
		}
		l.min = n
		l.count++
		return n, true
	}
	if cmp(pred.Key, key) == 0 {
		pred.DuplicateCount++
		pred.Key = key
		return pred, false
	}
	n := &Node[T]{Key: key, left: pred, right: pred.right}
	if pred.right != nil {
		pred.right.left = n
	} else {
		l.max = n
	}
	pred.right = n
	l.count++
	return n, true
}

// Delete removes the node whose key compares equal to key via an
// EQ-search, returning a detached copy (duplicate count included). Count
// only tracks structurally distinct nodes, so it decreases by 1 regardless
// of how many duplicates were folded into n.
func (l *List[T]) Delete(cmp Cmp[T], key T) (Node[T], bool) {
	n := l.SearchNode(cmp, key, EQ)
	if n == nil {
		var zero Node[T]
		return zero, false
	}
	l.unlink(n)
	l.count--
	detached := *n
	detached.left, detached.right = nil, nil
	return detached, true
}

func (l *List[T]) unlink(n *Node[T]) {
	if n.left != nil {
		n.left.right = n.right
	} else {
		l.min = n.right
	}
	if n.right != nil {
		n.right.left = n.left
	} else {
		l.max = n.left
	}
}

// Append adds value as the new max, without consulting a comparator. Used
// when the caller already knows, by construction, that value belongs at
// the end (e.g. re-attaching a promoted separator cell).
func (l *List[T]) Append(value T) {
	n := &Node[T]{Key: value, left: l.max}
	if l.max != nil {
		l.max.right = n
	} else {
		l.min = n
	}
	l.max = n
	l.count++
}

// Prepend adds value as the new min, without consulting a comparator.
func (l *List[T]) Prepend(value T) {
	n := &Node[T]{Key: value, right: l.min}
	if l.min != nil {
		l.min.left = n
	} else {
		l.max = n
	}
	l.min = n
	l.count++
}

// PopMax detaches and returns the current max node's key.
func (l *List[T]) PopMax() (T, bool) {
	if l.max == nil {
		var zero T
		return zero, false
	}
	n := l.max
	l.unlink(n)
	l.count--
	return n.Key, true
}

// PopMin detaches and returns the current min node's key.
func (l *List[T]) PopMin() (T, bool) {
	if l.min == nil {
		var zero T
		return zero, false
	}
	n := l.min
	l.unlink(n)
	l.count--
	return n.Key, true
}

// SplitAt cuts the list after the 0-based index i (counting structurally
// distinct nodes from min). The receiver is mutated to hold indices
// [0, i] and the returned list holds everything after. i == count-1 is
// allowed and yields an empty right half; any other i outside
// [0, count-1) is a precondition violation, as is splitting a list with
// fewer than two entries.
func (l *List[T]) SplitAt(i int) (*List[T], error) {
	if l.count < 2 {
		return nil, ErrSplitRange
	}
	if i < 0 || i > l.count-1 {
		return nil, ErrSplitRange
	}
	if i == l.count-1 {
		return New[T](), nil
	}

	cut := l.min
	for step := 0; step < i; step++ {
		cut = cut.right
	}

	right := &List[T]{min: cut.right, max: l.max, count: l.count - 1 - i}
	right.min.left = nil

	cut.right = nil
	l.max = cut
	l.count = i + 1

	return right, nil
}

// MergeRightInto appends b after a (a is the receiver); a no-op if b is
// empty.
func (a *List[T]) MergeRightInto(b *List[T]) {
	if b.count == 0 {
		return
	}
	if a.count == 0 {
		*a = *b
		return
	}
	a.max.right = b.min
	b.min.left = a.max
	a.max = b.max
	a.count += b.count
}

// MergeLeftInto prepends a before b; a no-op if a is empty. Note the
// receiver is the donor here (mirrors spec.md's merge_left_into_right(a,b)
// naming, where b is mutated to hold the merged result).
func (a *List[T]) MergeLeftInto(b *List[T]) {
	if a.count == 0 {
		return
	}
	if b.count == 0 {
		*b = *a
		return
	}
	a.max.right = b.min
	b.min.left = a.max
	b.min = a.min
	b.count += a.count
}

// RangeCollect gathers every entry in [start, end] (both bounds inclusive;
// nil means unbounded on that side). When expandDuplicates is true, a node
// with a nonzero duplicate count is emitted 1+DuplicateCount times.
func (l *List[T]) RangeCollect(cmp Cmp[T], start, end *T, expandDuplicates bool) []T {
	var first *Node[T]
	if start == nil {
		first = l.min
	} else {
		first = l.SearchNode(cmp, *start, GE)
	}

	var out []T
	for n := first; n != nil; n = n.right {
		if end != nil && cmp(n.Key, *end) > 0 {
			break
		}
		if expandDuplicates {
			for k := 0; k <= n.DuplicateCount; k++ {
				out = append(out, n.Key)
			}
		} else {
			out = append(out, n.Key)
		}
	}
	return out
}

// PredicateFind runs a linear pass emitting every entry for which
// queryCmp(key, key) == 0 — the idiom that lets a caller encode an
// arbitrary predicate as a comparator that returns zero exactly for
// matches.
func (l *List[T]) PredicateFind(queryCmp Cmp[T]) []T {
	var out []T
	for n := l.min; n != nil; n = n.right {
		if queryCmp(n.Key, n.Key) == 0 {
			out = append(out, n.Key)
		}
	}
	return out
}
