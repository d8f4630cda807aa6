package bptree

import "bptree/internal/list"

// Comparator is a total order over K, returning <0, 0, or >0 the way
// sort.Interface's Less would if it returned an int. The tree never
// assumes an ordering of its own — every operation that needs one takes a
// Comparator (or, for a tree already carrying one, reuses it), following
// the "comparator as capability" idiom: a first-class value instead of
// ambient operator overloading.
type Comparator[K any] func(a, b K) int

// SearchMode selects the semantic GetKV uses to resolve a key that isn't
// necessarily an exact match.
type SearchMode int

const (
	EQ SearchMode = iota
	LE
	GE
	LT
	GT
)

func (m SearchMode) toList() list.Mode {
	switch m {
	case LE:
		return list.LE
	case GE:
		return list.GE
	case LT:
		return list.LT
	case GT:
		return list.GT
	default:
		return list.EQ
	}
}
