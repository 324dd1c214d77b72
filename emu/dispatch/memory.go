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
)

// Effective address, base plus signed offset.
func address(m Meta, e *cg.Emitter) cg.Operand {
	return cg.Add(rs(m, e), immSE(m))
}

func load(m Meta, e *cg.Emitter, w cg.Width, signed bool) Status {
	v := e.LoadBus(m.ExceptionPC(), m.BranchDelaySlot, w, address(m, e))
	if signed {
		v = cg.SignExtend(v, cg.Word)
	} else {
		v = cg.ZeroExtend(v, cg.Word)
	}
	e.ConfigureDelayedLoad(m.Insn.Rt(), v)
	return FillLoadDelaySlot
}

func lb(m Meta, e *cg.Emitter) Status  { return load(m, e, cg.Byte, true) }
func lbu(m Meta, e *cg.Emitter) Status { return load(m, e, cg.Byte, false) }
func lh(m Meta, e *cg.Emitter) Status  { return load(m, e, cg.Half, true) }
func lhu(m Meta, e *cg.Emitter) Status { return load(m, e, cg.Half, false) }
func lw(m Meta, e *cg.Emitter) Status  { return load(m, e, cg.Word, false) }

// Split address into the aligned word and the byte shift within it.
func unaligned(m Meta, e *cg.Emitter) (aligned, shift cg.Operand) {
	addr := e.Local(address(m, e))
	aligned = cg.And(addr, word(^uint32(3)))
	shift = cg.Shl(cg.And(addr, word(3)), word(3))
	return aligned, shift
}

// Merge memory word into the high end of rt. A load to rt already in
// flight is merged with, not the old register.
func lwl(m Meta, e *cg.Emitter) Status {
	aligned, shift := unaligned(m, e)
	mem := e.LoadBus(m.ExceptionPC(), m.BranchDelaySlot, cg.Word, aligned)
	cur := e.PendingRegister(m.Insn.Rt())
	keep := cg.And(cur, cg.Ushr(word(0x00ffffff), shift))
	e.ConfigureDelayedLoad(m.Insn.Rt(), cg.Or(keep, cg.Shl(mem, cg.Sub(word(24), shift))))
	return FillLoadDelaySlot
}

// Merge memory word into the low end of rt.
func lwr(m Meta, e *cg.Emitter) Status {
	aligned, shift := unaligned(m, e)
	mem := e.LoadBus(m.ExceptionPC(), m.BranchDelaySlot, cg.Word, aligned)
	cur := e.PendingRegister(m.Insn.Rt())
	keep := cg.And(cur, cg.Not(cg.Ushr(word(0xffffffff), shift)))
	e.ConfigureDelayedLoad(m.Insn.Rt(), cg.Or(keep, cg.Ushr(mem, shift)))
	return FillLoadDelaySlot
}

func store(m Meta, e *cg.Emitter, w cg.Width) Status {
	e.StoreBus(m.ExceptionPC(), m.BranchDelaySlot, w, address(m, e), cg.Truncate(rt(m, e), w))
	return ContinueBlock
}

func sb(m Meta, e *cg.Emitter) Status { return store(m, e, cg.Byte) }
func sh(m Meta, e *cg.Emitter) Status { return store(m, e, cg.Half) }
func sw(m Meta, e *cg.Emitter) Status { return store(m, e, cg.Word) }

// Store high end of rt into the low bytes of the word.
func swl(m Meta, e *cg.Emitter) Status {
	aligned, shift := unaligned(m, e)
	mem := e.LoadBus(m.ExceptionPC(), m.BranchDelaySlot, cg.Word, aligned)
	right := cg.Sub(word(24), shift)
	keep := cg.And(mem, cg.Not(cg.Ushr(word(0xffffffff), right)))
	value := cg.Or(keep, cg.Ushr(rt(m, e), right))
	e.StoreBus(m.ExceptionPC(), m.BranchDelaySlot, cg.Word, aligned, value)
	return ContinueBlock
}

// Store low end of rt into the high bytes of the word.
func swr(m Meta, e *cg.Emitter) Status {
	aligned, shift := unaligned(m, e)
	mem := e.LoadBus(m.ExceptionPC(), m.BranchDelaySlot, cg.Word, aligned)
	keep := cg.And(mem, cg.Ushr(word(0x00ffffff), cg.Sub(word(24), shift)))
	value := cg.Or(keep, cg.Shl(rt(m, e), shift))
	e.StoreBus(m.ExceptionPC(), m.BranchDelaySlot, cg.Word, aligned, value)
	return ContinueBlock
}
