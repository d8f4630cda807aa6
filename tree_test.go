package bptree

import (
	"cmp"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bptree/internal/fuzzseq"
	"bptree/internal/list"
)

func intCmp(a, b int) int { return cmp.Compare(a, b) }

func newTestTree(t *testing.T, maxNodeSize int) *tree[int, int] {
	t.Helper()
	tr, err := newTree[int, int](intCmp, maxNodeSize, nil)
	require.NoError(t, err)
	return tr
}

// verifyStructure walks the whole tree checking the structural invariants
// described informally as: uniform leaf depth, non-root occupancy bounds,
// correct separators, an ordered unbroken leaf chain, consistent parent
// back-pointers, and a size that matches what the leaf chain actually
// holds.
func verifyStructure(t *testing.T, tr *tree[int, int]) {
	t.Helper()

	if tr.root == nil {
		assert.Nil(t, tr.leftmostLeaf)
		assert.Nil(t, tr.rightmostLeaf)
		return
	}

	leafDepths := map[int]bool{}
	var walk func(n *node[int, int], depth int, lo, hi *int)
	walk = func(n *node[int, int], depth int, lo, hi *int) {
		if n.parent != nil {
			cnt := n.count()
			assert.GreaterOrEqualf(t, cnt, tr.halfCapacity, "node below half capacity at depth %d", depth)
			assert.LessOrEqualf(t, cnt, tr.maxNodeSize, "node above max size at depth %d", depth)
		}

		if n.parent != nil {
			if n.parentCell == nil {
				assert.Same(t, n, n.parent.leftMostChild, "parentCell nil but not left-most child")
			} else {
				assert.Same(t, n, n.parentCell.rightChild, "parentCell's rightChild doesn't point back to n")
			}
		}

		if n.isLeaf {
			leafDepths[depth] = true
			prevKey := lo
			for v := range n.cells.All() {
				if prevKey != nil {
					assert.Less(t, *prevKey, v.key, "leaf keys out of order")
				}
				if lo != nil {
					assert.Greater(t, v.key, *lo)
				}
				if hi != nil {
					assert.LessOrEqual(t, v.key, *hi)
				}
				k := v.key
				prevKey = &k
			}
			return
		}

		var children []*node[int, int]
		var bounds []*int
		children = append(children, n.leftMostChild)
		bounds = append(bounds, lo)
		for c := range n.cells.All() {
			k := c.key
			bounds = append(bounds, &k)
			children = append(children, c.rightChild)
		}
		bounds = append(bounds, hi)

		for i, child := range children {
			walk(child, depth+1, bounds[i], bounds[i+1])
		}
	}
	walk(tr.root, 0, nil, nil)

	assert.LessOrEqualf(t, len(leafDepths), 1, "leaves at non-uniform depths: %v", leafDepths)

	// Leaf chain: ascending, unbroken, matching distinct key count.
	var chainKeys []int
	for leaf := tr.leftmostLeaf; leaf != nil; leaf = leaf.rightSibling {
		for v := range leaf.cells.All() {
			chainKeys = append(chainKeys, v.key)
		}
	}
	for i := 1; i < len(chainKeys); i++ {
		assert.Less(t, chainKeys[i-1], chainKeys[i], "leaf chain not ascending")
	}

	s := tr.stats()
	assert.Equal(t, int(tr.size), len(chainKeys)+s.DuplicateCount, "size accounting mismatch")
}

func TestInsertGetDeleteBasic(t *testing.T) {
	tr := newTestTree(t, 4)

	require.NoError(t, tr.insert(5, 50, true))
	require.NoError(t, tr.insert(1, 10, true))
	require.NoError(t, tr.insert(3, 30, true))
	verifyStructure(t, tr)

	leaf := tr.findLeaf(3)
	require.NotNil(t, leaf)

	v, hasValue, found, err := tr.delete(3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, hasValue)
	assert.Equal(t, 30, v)
	verifyStructure(t, tr)

	_, _, found, err = tr.delete(999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInsertTriggersSplit(t *testing.T) {
	tr := newTestTree(t, 4)
	for i := 0; i < 50; i++ {
		require.NoError(t, tr.insert(i, i*i, true))
	}
	verifyStructure(t, tr)
	assert.Equal(t, uint64(50), tr.size)
	assert.Greater(t, tr.stats().Depth, 0)
}

func TestDuplicateInsertOverwritesAndCounts(t *testing.T) {
	tr := newTestTree(t, 4)
	require.NoError(t, tr.insert(1, 100, true))
	require.NoError(t, tr.insert(1, 200, true))
	require.NoError(t, tr.insert(1, 300, true))

	leaf := tr.findLeaf(1)
	n := leaf.cells.SearchNode(tr.cellCmp, tr.probe(1), list.EQ)
	require.NotNil(t, n)
	assert.Equal(t, 300, n.Key.value)
	assert.Equal(t, 2, n.DuplicateCount)
	assert.Equal(t, uint64(3), tr.size)

	v, _, found, err := tr.delete(1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 300, v)
	assert.Equal(t, uint64(0), tr.size)
}

func TestInsertDescendingTriggersLeftwardSplits(t *testing.T) {
	tr := newTestTree(t, 4)
	for i := 50; i >= 0; i-- {
		require.NoError(t, tr.insert(i, i, true))
	}
	verifyStructure(t, tr)
}

func TestDeleteUnwindsToEmptyTree(t *testing.T) {
	tr := newTestTree(t, 4)
	const n = 64
	for i := 0; i < n; i++ {
		require.NoError(t, tr.insert(i, i, true))
	}
	verifyStructure(t, tr)

	for i := 0; i < n; i++ {
		_, _, found, err := tr.delete(i)
		require.NoError(t, err)
		require.True(t, found)
		verifyStructure(t, tr)
	}
	assert.Equal(t, uint64(0), tr.size)
}

func TestDeleteTriggersDistributeAndMerge(t *testing.T) {
	tr := newTestTree(t, 6)
	for i := 0; i < 100; i++ {
		require.NoError(t, tr.insert(i, i, true))
	}
	verifyStructure(t, tr)

	// Delete every other key, then the rest, exercising both distribute
	// and merge paths in balance().
	for i := 0; i < 100; i += 2 {
		_, _, found, err := tr.delete(i)
		require.NoError(t, err)
		require.True(t, found)
	}
	verifyStructure(t, tr)

	for i := 1; i < 100; i += 2 {
		_, _, found, err := tr.delete(i)
		require.NoError(t, err)
		require.True(t, found)
	}
	verifyStructure(t, tr)
	assert.Equal(t, uint64(0), tr.size)
}

// TestDeleteTriggersInteriorDistributeFromLeft pins down a minimal
// reproduction of an interior node underflowing by exactly one cell and
// being repaired by distributeFromLeft, regression coverage for a bug
// where the wrong split index left the left sibling one cell short of
// half_capacity after donating.
func TestDeleteTriggersInteriorDistributeFromLeft(t *testing.T) {
	tr := newTestTree(t, 6)
	for i := 0; i < 100; i++ {
		require.NoError(t, tr.insert(i, i, true))
	}
	verifyStructure(t, tr)

	for i := 0; i <= 38; i += 2 {
		_, _, found, err := tr.delete(i)
		require.NoError(t, err)
		require.True(t, found)
	}
	verifyStructure(t, tr)

	_, _, found, err := tr.delete(40)
	require.NoError(t, err)
	require.True(t, found)
	verifyStructure(t, tr)
}

func TestFuzzRandomInsertDelete(t *testing.T) {
	const n = 300
	for _, seed := range []uint64{1, 2, 3, 42} {
		tr := newTestTree(t, 8)
		perm := fuzzseq.Shuffle(seed, n)
		model := map[int]int{}
		for _, k := range perm {
			require.NoError(t, tr.insert(k, k*7, true))
			model[k] = k * 7
		}
		verifyStructure(t, tr)

		for k, want := range model {
			v, hasValue, found, err := tr.delete(k)
			require.NoError(t, err)
			require.True(t, found)
			assert.True(t, hasValue)
			assert.Equal(t, want, v)
		}
		verifyStructure(t, tr)
		assert.Equal(t, uint64(0), tr.size)
	}
}

func TestFuzzInterleavedInsertDelete(t *testing.T) {
	tr := newTestTree(t, 6)
	model := map[int]bool{}
	const draws = 2000
	for i := 0; i < draws; i++ {
		k := fuzzseq.Intn(7, i, 40)
		if fuzzseq.Intn(11, i, 2) == 0 || !model[k] {
			require.NoError(t, tr.insert(k, k, true))
			model[k] = true
		} else {
			_, _, found, err := tr.delete(k)
			require.NoError(t, err)
			assert.True(t, found)
			delete(model, k)
		}
	}
	verifyStructure(t, tr)

	var want int
	for range model {
		want++
	}
	assert.Equal(t, uint64(want), tr.size)
}

func TestNewRejectsBadNodeSize(t *testing.T) {
	_, err := newTree[int, int](intCmp, 3, nil)
	var pv *PreconditionViolation
	assert.ErrorAs(t, err, &pv)
	assert.ErrorIs(t, err, ErrOddNodeSize)

	_, err = newTree[int, int](intCmp, 2, nil)
	assert.ErrorAs(t, err, &pv)
	assert.ErrorIs(t, err, ErrNodeSizeTooSmall)
}

func TestFindLeafEmptyTree(t *testing.T) {
	tr := newTestTree(t, 4)
	assert.Nil(t, tr.findLeaf(1))
}

func TestRandomizedAgainstReferenceMap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := newTestTree(t, 8)
	model := map[int]int{}

	for i := 0; i < 1000; i++ {
		k := rng.Intn(200)
		if rng.Intn(3) == 0 {
			v, hasValue, found, err := tr.delete(k)
			require.NoError(t, err)
			want, ok := model[k]
			assert.Equal(t, ok, found)
			if ok {
				assert.True(t, hasValue)
				assert.Equal(t, want, v)
				delete(model, k)
			}
		} else {
			val := rng.Intn(1_000_000)
			require.NoError(t, tr.insert(k, val, true))
			model[k] = val
		}
	}
	verifyStructure(t, tr)
	assert.Equal(t, uint64(len(model)), tr.size)

	for k, want := range model {
		leaf := tr.findLeaf(k)
		require.NotNil(t, leaf)
		n := leaf.cells.SearchNode(tr.cellCmp, tr.probe(k), list.EQ)
		require.NotNil(t, n)
		assert.Equal(t, want, n.Key.value)
	}
}
