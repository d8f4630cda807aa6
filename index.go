package bptree

import (
	"iter"

	"bptree/internal/list"
)

// Index is an in-memory ordered key-value index backed by a B+ tree.
// The zero value is not usable; construct one with New.
type Index[K any, V any] struct {
	t *tree[K, V]
}

// New builds an empty Index ordered by cmp. maxNodeSize bounds how many
// cells a node may hold before it splits; it must be even and at least 4.
func New[K any, V any](cmp Comparator[K], maxNodeSize int, opts ...Option[K, V]) (*Index[K, V], error) {
	o := defaultOptions[K, V]()
	for _, opt := range opts {
		opt(&o)
	}
	t, err := newTree[K, V](cmp, maxNodeSize, o.logger)
	if err != nil {
		return nil, err
	}
	return &Index[K, V]{t: t}, nil
}

// Put inserts or overwrites key with value.
func (idx *Index[K, V]) Put(key K, value V) error {
	return idx.t.insert(key, value, true)
}

// PutKeyOnly inserts key with no associated value, for callers using the
// index purely as an ordered set.
func (idx *Index[K, V]) PutKeyOnly(key K) error {
	var zero V
	return idx.t.insert(key, zero, false)
}

// Get returns the value stored under key, if any.
func (idx *Index[K, V]) Get(key K) (V, bool) {
	var zero V
	leaf := idx.t.findLeaf(key)
	if leaf == nil {
		return zero, false
	}
	n := leaf.cells.SearchNode(idx.t.cellCmp, idx.t.probe(key), list.EQ)
	if n == nil || !n.Key.hasValue {
		return zero, false
	}
	return n.Key.value, true
}

// GetKV resolves key using mode instead of requiring an exact match,
// returning the matched key alongside its value.
func (idx *Index[K, V]) GetKV(key K, mode SearchMode) (K, V, bool) {
	var zeroK K
	var zeroV V
	c, ok := idx.t.searchKV(key, mode)
	if !ok {
		return zeroK, zeroV, false
	}
	return c.key, c.value, true
}

// Delete removes key, returning its value (if it had one) and whether the
// key was present.
func (idx *Index[K, V]) Delete(key K) (V, bool, error) {
	value, _, found, err := idx.t.delete(key)
	if err != nil {
		return value, false, err
	}
	return value, found, nil
}

// Size returns the number of logical entries the index holds, counting a
// duplicate Put of an existing key once for each call.
func (idx *Index[K, V]) Size() int { return int(idx.t.size) }

// Stats reports the tree's current structural shape.
func (idx *Index[K, V]) Stats() Stats[K] { return idx.t.stats() }

// MedianKey is a convenience over Stats().MedianKey.
func (idx *Index[K, V]) MedianKey() (K, bool) {
	s := idx.t.stats()
	return s.MedianKey, s.HasMedianKey
}

// RangeKeys returns every key in [start, end] (nil bounds are unbounded),
// skipping offset matches and capping the result at limit (negative means
// unbounded).
func (idx *Index[K, V]) RangeKeys(start, end *K, offset, limit int) []K {
	cells := idx.t.rangeCells(start, end, offset, limit)
	out := make([]K, len(cells))
	for i, c := range cells {
		out[i] = c.key
	}
	return out
}

// RangeValues mirrors RangeKeys but returns values.
func (idx *Index[K, V]) RangeValues(start, end *K, offset, limit int) []V {
	cells := idx.t.rangeCells(start, end, offset, limit)
	out := make([]V, len(cells))
	for i, c := range cells {
		out[i] = c.value
	}
	return out
}

// KV is a single key/value pair, returned by RangePairs.
type KV[K any, V any] struct {
	Key   K
	Value V
}

// RangePairs mirrors RangeKeys but returns key/value pairs.
func (idx *Index[K, V]) RangePairs(start, end *K, offset, limit int) []KV[K, V] {
	cells := idx.t.rangeCells(start, end, offset, limit)
	out := make([]KV[K, V], len(cells))
	for i, c := range cells {
		out[i] = KV[K, V]{Key: c.key, Value: c.value}
	}
	return out
}

// Find scans the index in key order for every key where queryCmp(k, k) ==
// 0 (the predicate-via-comparator idiom), resuming after bookmark if given
// and stopping once limit matches are collected (negative means
// unbounded).
func (idx *Index[K, V]) Find(queryCmp Comparator[K], bookmark *K, limit int) []KV[K, V] {
	cells := idx.t.findCells(queryCmp, bookmark, limit)
	out := make([]KV[K, V], len(cells))
	for i, c := range cells {
		out[i] = KV[K, V]{Key: c.key, Value: c.value}
	}
	return out
}

// All returns a range-over-func iterator over every key/value pair in
// ascending order.
func (idx *Index[K, V]) All() iter.Seq2[K, V] {
	return idx.t.all()
}
