package dispatch

/*
 * jiffy - MIPS block dispatch
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
	cg "github.com/rcornwell/jiffy/emu/codegen"
	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/decoder"
	"github.com/rcornwell/jiffy/emu/trace"
)

// Default limit of instructions in one block.
const DefaultMaxInstructions = 1024

// Builder translates guest code into blocks.
type Builder struct {
	observer        trace.Observer
	maxInstructions int
}

// Create block builder. A max of zero or less selects the default.
func NewBuilder(observer trace.Observer, maxInstructions int) *Builder {
	if observer == nil {
		observer = trace.Nop{}
	}
	if maxInstructions <= 0 {
		maxInstructions = DefaultMaxInstructions
	}
	return &Builder{observer: observer, maxInstructions: maxInstructions}
}

// Translate one instruction, completing any pending load it does not
// leave in its delay slot.
func (b *Builder) add(ctx *cpu.Context, e *cg.Emitter, pc uint32, delaySlot bool) Status {
	raw := ctx.FetchInstruction(pc)
	status := ContinueBlock
	if raw != 0 {
		m := Meta{Insn: decoder.Instruction(raw), PC: pc, BranchDelaySlot: delaySlot, observer: b.observer}
		status = dispatch(m, e)
	}
	if status != FillLoadDelaySlot {
		e.FinishDelayedLoad()
	}
	if e.Terminated() {
		status = TerminateBlock
	}
	return status
}

// Build block starting at start. Returns compiled code and the number
// of guest bytes it covers.
func (b *Builder) Build(ctx *cpu.Context, start uint32) (cg.Compiled, uint32) {
	e := cg.NewEmitter()
	pc := start
	status := ContinueBlock
	for n := 0; status.BlockOpen(); n++ {
		if n >= b.maxInstructions {
			e.Jump(word(pc))
			break
		}
		status = b.add(ctx, e, pc, false)
		pc += decoder.InstructionSize
	}
	if status == FillBranchDelaySlot {
		b.add(ctx, e, pc, true)
		pc += decoder.InstructionSize
	}
	return e.Finish(), pc - start
}
