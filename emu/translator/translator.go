package translator

/*
 * jiffy - Block translator
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
	"github.com/rcornwell/jiffy/emu/blockcache"
	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/decoder"
	"github.com/rcornwell/jiffy/emu/dispatch"
	"github.com/rcornwell/jiffy/emu/trace"
)

// Translator runs guest code by compiling blocks on first use and
// running them from the cache afterwards. Single threaded.
type Translator struct {
	cache           *blockcache.Cache
	builder         *dispatch.Builder
	observer        trace.Observer
	maxInstructions int
}

// Option configures a translator.
type Option func(t *Translator)

// Report events to observer.
func WithObserver(o trace.Observer) Option {
	return func(t *Translator) {
		t.observer = o
	}
}

// Limit instructions in one block.
func WithMaxInstructions(n int) Option {
	return func(t *Translator) {
		t.maxInstructions = n
	}
}

// Create translator with empty cache.
func New(opts ...Option) *Translator {
	t := &Translator{
		cache:           blockcache.New(),
		observer:        trace.Nop{},
		maxInstructions: dispatch.DefaultMaxInstructions,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.observer == nil {
		t.observer = trace.Nop{}
	}
	t.builder = dispatch.NewBuilder(t.observer, t.maxInstructions)
	return t
}

// Run until something closes the context.
func (t *Translator) Execute(ctx *cpu.Context) {
	ctx.SetState(cpu.Running)
	for ctx.Running() {
		t.Step(ctx)
	}
}

// Run up to n blocks, stopping early if the context closes. Returns
// number of blocks run.
func (t *Translator) ExecuteBlocks(ctx *cpu.Context, n int) int {
	if ctx.State() == cpu.Initial {
		ctx.SetState(cpu.Running)
	}
	count := 0
	for count < n && ctx.Running() {
		t.Step(ctx)
		count++
	}
	return count
}

// Run the block at PC once, compiling it first if needed.
func (t *Translator) Step(ctx *cpu.Context) {
	pc := ctx.PC
	if pc%decoder.InstructionSize != 0 {
		ctx.Cop0.BadVaddr = pc
		ctx.RaiseException(pc, false, cpu.UnalignedLoad)
		return
	}
	block := t.cache.Get(pc)
	if block == nil {
		block = t.compile(ctx, pc)
	}
	block.Code(ctx)
}

func (t *Translator) compile(ctx *cpu.Context, pc uint32) *blockcache.Block {
	t.observer.OnCacheMiss(pc)
	code, length := t.builder.Build(ctx, pc)
	block := &blockcache.Block{Start: pc, Len: length, Code: code}
	t.cache.Insert(block)
	t.observer.OnCompiled(pc, length)
	return block
}

// Drop every compiled block touching [addr, addr+size). Returns number
// of blocks dropped.
func (t *Translator) Invalidate(addr uint32, size uint32) int {
	starts := t.cache.Overlaps(addr, size)
	for _, start := range starts {
		t.cache.Remove(start)
	}
	return len(starts)
}

// Drop all compiled blocks.
func (t *Translator) Flush() {
	t.cache.Clear()
}

// Block cache, for inspection.
func (t *Translator) Cache() *blockcache.Cache {
	return t.cache
}
