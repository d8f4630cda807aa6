package bptree

// Stats summarizes the current shape of a tree, computed with one walk
// from the root plus a walk along the leaf chain for the median. It exists
// for diagnostics and for the comparison benchmarks under bench/ — nothing
// in the core algorithm depends on it.
type Stats[K any] struct {
	// Size is the number of Put calls the tree has serviced, including
	// duplicate overwrites of an existing key, minus the entries removed by
	// Delete (deleting a key removes all of its duplicates).
	Size int
	// Depth is the number of edges from the root to a leaf (0 for a tree
	// with only a leaf root).
	Depth int
	LeafCount      int
	NodeCount      int
	DuplicateCount int
	// MedianKey is the floor(size/2)-th key of the full ordered multiset
	// (duplicates counted individually, per Size). HasMedianKey is false
	// only for an empty tree.
	MedianKey    K
	HasMedianKey bool
}

func (t *tree[K, V]) stats() Stats[K] {
	if t.root == nil {
		return Stats[K]{}
	}

	var leafCount, nodeCount, dup int
	depth := 0

	var walk func(n *node[K, V], d int)
	walk = func(n *node[K, V], d int) {
		nodeCount++
		if n.isLeaf {
			leafCount++
			if d > depth {
				depth = d
			}
			for ln := n.cells.Min(); ln != nil; ln = ln.Right() {
				dup += ln.DuplicateCount
			}
			return
		}
		walk(n.leftMostChild, d+1)
		for c := range n.cells.All() {
			walk(c.rightChild, d+1)
		}
	}
	walk(t.root, 0)

	median, hasMedian := t.medianKey(int(t.size))

	return Stats[K]{
		Size:           int(t.size),
		Depth:          depth,
		LeafCount:      leafCount,
		NodeCount:      nodeCount,
		DuplicateCount: dup,
		MedianKey:      median,
		HasMedianKey:   hasMedian,
	}
}

// medianKey returns the floor(size/2)-th key of the full ordered multiset,
// counting each node's duplicate overwrites as separate logical entries
// (per Size's accounting) rather than once per distinct SortedList node.
func (t *tree[K, V]) medianKey(size int) (K, bool) {
	var zero K
	if size == 0 {
		return zero, false
	}
	target := size / 2
	idx := 0
	for leaf := t.leftmostLeaf; leaf != nil; leaf = leaf.rightSibling {
		for ln := leaf.cells.Min(); ln != nil; ln = ln.Right() {
			span := 1 + ln.DuplicateCount
			if target < idx+span {
				return ln.Key.key, true
			}
			idx += span
		}
	}
	return zero, false
}
