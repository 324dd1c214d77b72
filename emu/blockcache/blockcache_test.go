package blockcache

/*
 * jiffy - Compiled block cache
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Check red-black shape, ordering, parent links and max. Returns black
// height.
func (c *Cache) check(t *testing.T, i int32, lo, hi uint64) int {
	t.Helper()
	if i == sentinel {
		return 1
	}
	n := c.nodes[i]
	require.GreaterOrEqual(t, uint64(n.start), lo, "order")
	require.Less(t, uint64(n.start), hi, "order")
	if n.color == red {
		require.Equal(t, black, c.nodes[n.left].color, "red node with red child")
		require.Equal(t, black, c.nodes[n.right].color, "red node with red child")
	}
	if n.left != sentinel {
		require.Equal(t, i, c.nodes[n.left].parent, "parent link")
	}
	if n.right != sentinel {
		require.Equal(t, i, c.nodes[n.right].parent, "parent link")
	}
	want := n.end
	if m := c.nodes[n.left].max; m > want {
		want = m
	}
	if m := c.nodes[n.right].max; m > want {
		want = m
	}
	require.Equal(t, want, n.max, "max at %08x", n.start)

	lh := c.check(t, n.left, lo, uint64(n.start))
	rh := c.check(t, n.right, uint64(n.start)+1, hi)
	require.Equal(t, lh, rh, "black height at %08x", n.start)
	if n.color == black {
		lh++
	}
	return lh
}

func (c *Cache) validate(t *testing.T) {
	t.Helper()
	require.Equal(t, black, c.nodes[c.root].color, "root color")
	require.Equal(t, black, c.nodes[sentinel].color, "sentinel color")
	require.Equal(t, uint64(0), c.nodes[sentinel].max, "sentinel max")
	c.check(t, c.root, 0, 1<<32)
	require.Len(t, c.AsList(), c.count)
}

// Disjoint blocks at random word aligned addresses with gaps.
func disjoint(r *rand.Rand, n int) []*Block {
	blocks := make([]*Block, 0, n)
	addr := uint32(0x80000000)
	for range n {
		addr += uint32(r.Intn(8)) * 4
		length := uint32(r.Intn(16)+1) * 4
		blocks = append(blocks, &Block{Start: addr, Len: length})
		addr += length
	}
	r.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
	return blocks
}

func TestEmpty(t *testing.T) {
	c := New()
	assert.Zero(t, c.Count())
	assert.Nil(t, c.Get(0x80000000))
	assert.Nil(t, c.Containing(0x80000000))
	assert.Empty(t, c.Overlaps(0, 0xffffffff))
	assert.Empty(t, c.AsList())
	assert.False(t, c.Remove(0x80000000))
	c.validate(t)
}

func TestInsertGet(t *testing.T) {
	c := New()
	a := &Block{Start: 0x100, Len: 8}
	b := &Block{Start: 0x200, Len: 4}
	c.Insert(a)
	c.Insert(b)
	assert.Equal(t, 2, c.Count())
	assert.Same(t, a, c.Get(0x100))
	assert.Same(t, b, c.Get(0x200))
	assert.Nil(t, c.Get(0x104))
	assert.True(t, c.Contains(0x100))
	assert.False(t, c.Contains(0x104))
	assert.Same(t, a, c.Containing(0x104))
	assert.Nil(t, c.Containing(0x108))
	c.validate(t)
}

func TestReplace(t *testing.T) {
	c := New()
	c.Insert(&Block{Start: 0x100, Len: 64})
	b := &Block{Start: 0x100, Len: 4}
	c.Insert(b)
	assert.Equal(t, 1, c.Count())
	assert.Same(t, b, c.Get(0x100))
	assert.Empty(t, c.Overlaps(0x104, 16), "max must shrink after replace")
	c.validate(t)
}

func TestInsertOrUpdate(t *testing.T) {
	c := New()
	first := &Block{Start: 0x100, Len: 4}
	c.Insert(first)
	var seen uint32
	c.InsertOrUpdate(&Block{Start: 0x100, Len: 8}, func(addr uint32, existing *Block) *Block {
		seen = addr
		return &Block{Start: addr, Len: existing.Len + 12}
	})
	assert.Equal(t, uint32(0x100), seen)
	require.NotNil(t, c.Get(0x100))
	assert.Equal(t, uint32(16), c.Get(0x100).Len)
	assert.Equal(t, []uint32{0x100}, c.Overlaps(0x10c, 4))

	called := false
	c.InsertOrUpdate(&Block{Start: 0x200, Len: 4}, func(uint32, *Block) *Block {
		called = true
		return nil
	})
	assert.False(t, called, "merge called without collision")
	assert.Equal(t, 2, c.Count())
	c.validate(t)
}

func TestInsertOrUpdateRejects(t *testing.T) {
	c := New()
	first := &Block{Start: 0x100, Len: 4}
	c.Insert(first)
	ok := c.InsertOrUpdate(&Block{Start: 0x100, Len: 8}, func(uint32, *Block) *Block {
		return nil
	})
	assert.False(t, ok, "nil merge result accepted")
	assert.Same(t, first, c.Get(0x100))

	ok = c.InsertOrUpdate(&Block{Start: 0x100, Len: 8}, func(uint32, *Block) *Block {
		return &Block{Start: 0x200, Len: 64}
	})
	assert.False(t, ok, "merge result with new start accepted")
	assert.Same(t, first, c.Get(0x100))
	assert.Nil(t, c.Get(0x200))
	assert.Empty(t, c.Overlaps(0x104, 0x200))
	assert.Equal(t, 1, c.Count())
	c.validate(t)
}

func TestTopOfAddressSpace(t *testing.T) {
	c := New()
	c.Insert(&Block{Start: 0xfffffff8, Len: 8})
	assert.NotNil(t, c.Containing(0xfffffffc))
	assert.Equal(t, []uint32{0xfffffff8}, c.Overlaps(0xfffffff0, 0x10))
	c.validate(t)
}

func TestContainment(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	blocks := disjoint(r, 200)
	c := New()
	for _, b := range blocks {
		c.Insert(b)
		c.validate(t)
	}
	require.Equal(t, len(blocks), c.Count())

	inside := map[uint32]*Block{}
	lo, hi := uint32(0xffffffff), uint32(0)
	for _, b := range blocks {
		for a := b.Start; a < b.Start+b.Len; a++ {
			inside[a] = b
		}
		lo = min(lo, b.Start)
		hi = max(hi, b.Start+b.Len)
	}
	for a := lo - 8; a < hi+8; a++ {
		want := inside[a]
		if want == nil {
			require.Nil(t, c.Containing(a), "address %08x", a)
		} else {
			require.Same(t, want, c.Containing(a), "address %08x", a)
		}
	}
}

func TestOverlaps(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	blocks := disjoint(r, 150)
	c := New()
	for _, b := range blocks {
		c.Insert(b)
	}
	for range 500 {
		addr := 0x80000000 - 16 + uint32(r.Intn(0x1800))
		size := uint32(r.Intn(64))
		var want []uint32
		for _, b := range blocks {
			if size > 0 && uint64(b.Start) < uint64(addr)+uint64(size) && b.End() > uint64(addr) {
				want = append(want, b.Start)
			}
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		got := c.Overlaps(addr, size)
		if len(want) == 0 {
			require.Empty(t, got, "query %08x+%d", addr, size)
		} else {
			require.Equal(t, want, got, "query %08x+%d", addr, size)
		}
	}
}

func TestAsListOrdered(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	c := New()
	for _, b := range disjoint(r, 64) {
		c.Insert(b)
	}
	list := c.AsList()
	require.Len(t, list, 64)
	for i := 1; i < len(list); i++ {
		require.Less(t, list[i-1].Start, list[i].Start)
	}
}

func TestRemoveAll(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		r := rand.New(rand.NewSource(seed))
		blocks := disjoint(r, 120)
		c := New()
		for _, b := range blocks {
			c.Insert(b)
		}
		r.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
		for i, b := range blocks {
			require.True(t, c.Remove(b.Start), "remove %08x", b.Start)
			require.False(t, c.Remove(b.Start), "double remove %08x", b.Start)
			require.Equal(t, len(blocks)-i-1, c.Count())
			c.validate(t)
			for _, rest := range blocks[i+1:] {
				require.Same(t, rest, c.Get(rest.Start))
			}
		}
		for _, b := range blocks {
			require.Nil(t, c.Get(b.Start))
			require.Nil(t, c.Containing(b.Start))
		}
		require.Equal(t, sentinel, c.root)
	}
}

func TestRemoveShrinksMax(t *testing.T) {
	c := New()
	c.Insert(&Block{Start: 0x100, Len: 4})
	c.Insert(&Block{Start: 0x080, Len: 0x400})
	c.Insert(&Block{Start: 0x200, Len: 4})
	require.Equal(t, []uint32{0x080, 0x200}, c.Overlaps(0x200, 4))
	require.True(t, c.Remove(0x080))
	assert.Equal(t, []uint32{0x200}, c.Overlaps(0x200, 4))
	assert.Empty(t, c.Overlaps(0x300, 4))
	c.validate(t)
}

func TestArenaReuse(t *testing.T) {
	c := New()
	for i := range 32 {
		c.Insert(&Block{Start: uint32(i) * 4, Len: 4})
	}
	size := len(c.nodes)
	for i := range 16 {
		c.Remove(uint32(i) * 4)
	}
	for i := range 16 {
		c.Insert(&Block{Start: 0x1000 + uint32(i)*4, Len: 4})
	}
	assert.Equal(t, size, len(c.nodes))
	c.validate(t)

	c.Clear()
	assert.Zero(t, c.Count())
	assert.Nil(t, c.Get(0x1000))
	c.validate(t)
}
