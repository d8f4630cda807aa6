package bptree

import "iter"

// cellBound wraps a *K bound as the **cell[K,V] RangeCollect expects
// (its list stores *cell[K,V], so a bound is a pointer to one of those).
// nil stays nil, meaning unbounded on that side.
func (t *tree[K, V]) cellBound(k *K) **cell[K, V] {
	if k == nil {
		return nil
	}
	c := t.probe(*k)
	return &c
}

// rangeCells collects every cell with key in [start, end] (nil bounds are
// unbounded), walking the leaf chain left to right starting from the leaf
// that would hold *start (or the left-most leaf, if start is nil).
// Offset skips that many matches from the front; a negative limit means
// unbounded, otherwise the result is capped at limit entries. Spec.md
// section 4.7.
func (t *tree[K, V]) rangeCells(start, end *K, offset, limit int) []*cell[K, V] {
	var leaf *node[K, V]
	if start != nil {
		leaf = t.findLeaf(*start)
	} else {
		leaf = t.leftmostLeaf
	}

	var out []*cell[K, V]
	cur := leaf
	first := true
	for cur != nil {
		if end != nil {
			if minEntry := cur.cells.Min(); minEntry != nil && t.cmp(minEntry.Key.key, *end) > 0 {
				break
			}
		}

		s := start
		if !first {
			s = nil
		}
		out = append(out, cur.cells.RangeCollect(t.cellCmp, t.cellBound(s), t.cellBound(end), false)...)

		cur = cur.rightSibling
		first = false
	}

	if offset > 0 {
		if offset >= len(out) {
			return nil
		}
		out = out[offset:]
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// findCells runs queryCmp (the predicate-via-comparator idiom: queryCmp(k,
// k) == 0 marks a match) across the leaf chain in key order, resuming
// after bookmark if given and stopping once limit matches have been
// collected (a negative limit means unbounded). Spec.md section 4.8.
func (t *tree[K, V]) findCells(queryCmp Comparator[K], bookmark *K, limit int) []*cell[K, V] {
	leaf := t.leftmostLeaf
	if bookmark != nil {
		leaf = t.findLeaf(*bookmark)
	}
	cellQueryCmp := func(a, b *cell[K, V]) int { return queryCmp(a.key, b.key) }

	var out []*cell[K, V]
	cur := leaf
	first := true
	for cur != nil {
		for _, m := range cur.cells.PredicateFind(cellQueryCmp) {
			if first && bookmark != nil && t.cmp(m.key, *bookmark) <= 0 {
				continue
			}
			out = append(out, m)
			if limit >= 0 && len(out) >= limit {
				return out
			}
		}
		cur = cur.rightSibling
		first = false
	}
	return out
}

// all walks every cell in ascending key order. It backs the Index.All
// range-over-func sugar (spec.md's streaming wrapper is out of scope, but
// Go 1.23's iter.Seq2 gives the same ergonomics for free).
func (t *tree[K, V]) all() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for leaf := t.leftmostLeaf; leaf != nil; leaf = leaf.rightSibling {
			for c := range leaf.cells.All() {
				if !yield(c.key, c.value) {
					return
				}
			}
		}
	}
}
