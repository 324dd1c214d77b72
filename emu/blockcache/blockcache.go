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
	"github.com/rcornwell/jiffy/emu/codegen"
)

// Block is one compiled run of guest code covering [Start, Start+Len).
type Block struct {
	Start uint32           // Guest address of first instruction
	Len   uint32           // Guest bytes covered
	Code  codegen.Compiled // Host form
}

// End of block, one past the last byte. Wide so the top of the address
// space does not wrap.
func (b *Block) End() uint64 {
	return uint64(b.Start) + uint64(b.Len)
}

// Check if address falls inside block.
func (b *Block) Contains(addr uint32) bool {
	return addr >= b.Start && uint64(addr) < b.End()
}

type color uint8

const (
	black color = iota // Zero value, so the sentinel is black
	red
)

// Index of the sentinel node, stands in for every nil link.
const sentinel int32 = 0

type node struct {
	start  uint32
	end    uint64 // End of this block
	max    uint64 // Largest end in subtree
	color  color
	left   int32
	right  int32
	parent int32
	block  *Block
}

// Cache maps guest address ranges to compiled blocks. It is an augmented
// red-black interval tree ordered by start address with nodes held in an
// arena and linked by index. Not safe for concurrent use.
type Cache struct {
	nodes []node  // Arena, nodes[0] is the sentinel
	free  []int32 // Released arena slots
	root  int32
	count int
}

// Create an empty cache.
func New() *Cache {
	c := &Cache{}
	c.Clear()
	return c
}

// Drop every block.
func (c *Cache) Clear() {
	c.nodes = c.nodes[:0]
	c.nodes = append(c.nodes, node{})
	c.free = c.free[:0]
	c.root = sentinel
	c.count = 0
}

// Number of blocks held.
func (c *Cache) Count() int {
	return c.count
}

func (c *Cache) alloc(b *Block) int32 {
	n := node{
		start:  b.Start,
		end:    b.End(),
		max:    b.End(),
		color:  red,
		left:   sentinel,
		right:  sentinel,
		parent: sentinel,
		block:  b,
	}
	if l := len(c.free); l > 0 {
		i := c.free[l-1]
		c.free = c.free[:l-1]
		c.nodes[i] = n
		return i
	}
	c.nodes = append(c.nodes, n)
	return int32(len(c.nodes) - 1)
}

func (c *Cache) release(i int32) {
	c.nodes[i] = node{}
	c.free = append(c.free, i)
}

// Find node with exact start.
func (c *Cache) find(addr uint32) int32 {
	i := c.root
	for i != sentinel {
		n := &c.nodes[i]
		switch {
		case addr < n.start:
			i = n.left
		case addr > n.start:
			i = n.right
		default:
			return i
		}
	}
	return sentinel
}

// Block starting exactly at addr, nil if none.
func (c *Cache) Get(addr uint32) *Block {
	return c.nodes[c.find(addr)].block
}

// Check if a block starts exactly at addr.
func (c *Cache) Contains(addr uint32) bool {
	return c.find(addr) != sentinel
}

// Block whose range holds addr. With overlapping blocks the one starting
// nearest below addr is returned.
func (c *Cache) Containing(addr uint32) *Block {
	var found *Block
	c.visit(c.root, uint64(addr), uint64(addr)+1, func(n *node) {
		found = n.block
	})
	return found
}

// Start addresses of every block intersecting [addr, addr+size),
// ascending.
func (c *Cache) Overlaps(addr uint32, size uint32) []uint32 {
	var starts []uint32
	if size == 0 {
		return starts
	}
	c.visit(c.root, uint64(addr), uint64(addr)+uint64(size), func(n *node) {
		starts = append(starts, n.start)
	})
	return starts
}

// In order walk of nodes intersecting [lo, hi). Subtrees ending at or
// before lo are skipped.
func (c *Cache) visit(i int32, lo, hi uint64, fn func(n *node)) {
	if i == sentinel {
		return
	}
	n := &c.nodes[i]
	if n.max <= lo {
		return
	}
	c.visit(n.left, lo, hi, fn)
	if uint64(n.start) >= hi {
		return
	}
	if n.end > lo {
		fn(n)
	}
	c.visit(n.right, lo, hi, fn)
}

// All blocks ascending by start.
func (c *Cache) AsList() []*Block {
	list := make([]*Block, 0, c.count)
	var walk func(i int32)
	walk = func(i int32) {
		if i == sentinel {
			return
		}
		walk(c.nodes[i].left)
		list = append(list, c.nodes[i].block)
		walk(c.nodes[i].right)
	}
	walk(c.root)
	return list
}

// Add block, replacing any block with the same start.
func (c *Cache) Insert(b *Block) {
	c.InsertOrUpdate(b, nil)
}

// Add block. If a block with the same start exists merge decides what
// is kept, a nil merge replaces it. A merge result that is nil or has a
// different start is rejected and the existing block stays. Returns
// false if the cache was left unchanged.
func (c *Cache) InsertOrUpdate(b *Block, merge func(addr uint32, existing *Block) *Block) bool {
	parent := sentinel
	i := c.root
	for i != sentinel {
		n := &c.nodes[i]
		parent = i
		switch {
		case b.Start < n.start:
			i = n.left
		case b.Start > n.start:
			i = n.right
		default:
			if merge != nil {
				b = merge(n.start, n.block)
				if b == nil || b.Start != n.start {
					return false
				}
			}
			n.block = b
			n.end = b.End()
			c.updateMax(i)
			return true
		}
	}

	z := c.alloc(b)
	c.nodes[z].parent = parent
	switch {
	case parent == sentinel:
		c.root = z
	case b.Start < c.nodes[parent].start:
		c.nodes[parent].left = z
	default:
		c.nodes[parent].right = z
	}
	c.count++

	// Grow max toward the root.
	end := c.nodes[z].end
	for p := parent; p != sentinel && c.nodes[p].max < end; p = c.nodes[p].parent {
		c.nodes[p].max = end
	}
	c.insertFixup(z)
	return true
}

// Remove block starting at addr. Returns false if none.
func (c *Cache) Remove(addr uint32) bool {
	z := c.find(addr)
	if z == sentinel {
		return false
	}

	// Two children, move predecessor up and unlink its old node.
	y := z
	if c.nodes[z].left != sentinel && c.nodes[z].right != sentinel {
		y = c.maximum(c.nodes[z].left)
		zn, yn := &c.nodes[z], &c.nodes[y]
		zn.start, zn.end, zn.block = yn.start, yn.end, yn.block
	}

	yn := c.nodes[y]
	x := yn.left
	if x == sentinel {
		x = yn.right
	}
	c.transplant(y, x)

	// Removal only shrinks max, recompute along the whole path.
	c.updateMax(yn.parent)
	if yn.color == black {
		c.deleteFixup(x)
	}
	c.nodes[sentinel] = node{}
	c.release(y)
	c.count--
	return true
}

func (c *Cache) maximum(i int32) int32 {
	for c.nodes[i].right != sentinel {
		i = c.nodes[i].right
	}
	return i
}

// Replace subtree u by subtree v. v may be the sentinel, its parent is
// set anyway for delete fix up.
func (c *Cache) transplant(u, v int32) {
	p := c.nodes[u].parent
	switch {
	case p == sentinel:
		c.root = v
	case u == c.nodes[p].left:
		c.nodes[p].left = v
	default:
		c.nodes[p].right = v
	}
	c.nodes[v].parent = p
}

// Recompute max of one node from its children.
func (c *Cache) fixMax(i int32) {
	n := &c.nodes[i]
	m := n.end
	if l := c.nodes[n.left].max; l > m {
		m = l
	}
	if r := c.nodes[n.right].max; r > m {
		m = r
	}
	n.max = m
}

// Recompute max from node up to root.
func (c *Cache) updateMax(i int32) {
	for ; i != sentinel; i = c.nodes[i].parent {
		c.fixMax(i)
	}
}

func (c *Cache) rotateLeft(x int32) {
	y := c.nodes[x].right
	c.nodes[x].right = c.nodes[y].left
	if c.nodes[y].left != sentinel {
		c.nodes[c.nodes[y].left].parent = x
	}
	c.transplant(x, y)
	c.nodes[y].left = x
	c.nodes[x].parent = y
	c.fixMax(x)
	c.fixMax(y)
}

func (c *Cache) rotateRight(x int32) {
	y := c.nodes[x].left
	c.nodes[x].left = c.nodes[y].right
	if c.nodes[y].right != sentinel {
		c.nodes[c.nodes[y].right].parent = x
	}
	c.transplant(x, y)
	c.nodes[y].right = x
	c.nodes[x].parent = y
	c.fixMax(x)
	c.fixMax(y)
}

func (c *Cache) insertFixup(z int32) {
	for c.nodes[c.nodes[z].parent].color == red {
		p := c.nodes[z].parent
		g := c.nodes[p].parent
		if p == c.nodes[g].left {
			u := c.nodes[g].right
			if c.nodes[u].color == red {
				c.nodes[p].color = black
				c.nodes[u].color = black
				c.nodes[g].color = red
				z = g
				continue
			}
			if z == c.nodes[p].right {
				z = p
				c.rotateLeft(z)
				p = c.nodes[z].parent
			}
			c.nodes[p].color = black
			c.nodes[g].color = red
			c.rotateRight(g)
		} else {
			u := c.nodes[g].left
			if c.nodes[u].color == red {
				c.nodes[p].color = black
				c.nodes[u].color = black
				c.nodes[g].color = red
				z = g
				continue
			}
			if z == c.nodes[p].left {
				z = p
				c.rotateRight(z)
				p = c.nodes[z].parent
			}
			c.nodes[p].color = black
			c.nodes[g].color = red
			c.rotateLeft(g)
		}
	}
	c.nodes[c.root].color = black
}

func (c *Cache) deleteFixup(x int32) {
	for x != c.root && c.nodes[x].color == black {
		p := c.nodes[x].parent
		if x == c.nodes[p].left {
			w := c.nodes[p].right
			if c.nodes[w].color == red {
				c.nodes[w].color = black
				c.nodes[p].color = red
				c.rotateLeft(p)
				w = c.nodes[p].right
			}
			if c.nodes[c.nodes[w].left].color == black && c.nodes[c.nodes[w].right].color == black {
				c.nodes[w].color = red
				x = p
				continue
			}
			if c.nodes[c.nodes[w].right].color == black {
				c.nodes[c.nodes[w].left].color = black
				c.nodes[w].color = red
				c.rotateRight(w)
				w = c.nodes[p].right
			}
			c.nodes[w].color = c.nodes[p].color
			c.nodes[p].color = black
			c.nodes[c.nodes[w].right].color = black
			c.rotateLeft(p)
			x = c.root
		} else {
			w := c.nodes[p].left
			if c.nodes[w].color == red {
				c.nodes[w].color = black
				c.nodes[p].color = red
				c.rotateRight(p)
				w = c.nodes[p].left
			}
			if c.nodes[c.nodes[w].left].color == black && c.nodes[c.nodes[w].right].color == black {
				c.nodes[w].color = red
				x = p
				continue
			}
			if c.nodes[c.nodes[w].left].color == black {
				c.nodes[c.nodes[w].right].color = black
				c.nodes[w].color = red
				c.rotateLeft(w)
				w = c.nodes[p].left
			}
			c.nodes[w].color = c.nodes[p].color
			c.nodes[p].color = black
			c.nodes[c.nodes[w].left].color = black
			c.rotateRight(p)
			x = c.root
		}
	}
	c.nodes[x].color = black
}
