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
)

// Address of instruction after the delay slot.
func fallThrough(m Meta) uint32 {
	return m.PC + 2*decoder.InstructionSize
}

// Conditional branch relative to the delay slot.
func branch(m Meta, e *cg.Emitter, cond cg.Condition) Status {
	target := m.PC + decoder.InstructionSize + (m.Insn.ImmSE() << 2)
	e.Jump(cg.Select(cond, word(target), word(fallThrough(m))))
	return FillBranchDelaySlot
}

func beq(m Meta, e *cg.Emitter) Status {
	return branch(m, e, cg.Equal(rs(m, e), rt(m, e)))
}

func bne(m Meta, e *cg.Emitter) Status {
	return branch(m, e, cg.NotEqual(rs(m, e), rt(m, e)))
}

func blez(m Meta, e *cg.Emitter) Status {
	return branch(m, e, cg.LessOrEqualZero(rs(m, e)))
}

func bgtz(m Meta, e *cg.Emitter) Status {
	return branch(m, e, cg.GreaterThanZero(rs(m, e)))
}

// BLTZ, BGEZ, BLTZAL and BGEZAL by rt. Bit 0 selects greater or equal,
// rt of 0x10 or 0x11 links. The link is written taken or not.
func bcondz(m Meta, e *cg.Emitter) Status {
	sel := uint8(m.Insn.Rt())
	cond := cg.LessThanZero(rs(m, e))
	if sel&1 != 0 {
		cond = cg.GreaterOrEqualZero(rs(m, e))
	}
	status := branch(m, e, cond)
	if sel&0x1e == 0x10 {
		e.SetRegister(decoder.RA, word(fallThrough(m)))
	}
	return status
}

func j(m Meta, e *cg.Emitter) Status {
	next := m.PC + decoder.InstructionSize
	e.Jump(word((next & 0xf0000000) | (m.Insn.Target() << 2)))
	return FillBranchDelaySlot
}

func jal(m Meta, e *cg.Emitter) Status {
	e.SetRegister(decoder.RA, word(fallThrough(m)))
	return j(m, e)
}

func jr(m Meta, e *cg.Emitter) Status {
	e.Jump(rs(m, e))
	return FillBranchDelaySlot
}

// Target is read before the link is written, so rd may equal rs.
func jalr(m Meta, e *cg.Emitter) Status {
	e.Jump(rs(m, e))
	e.SetRegister(m.Insn.Rd(), word(fallThrough(m)))
	return FillBranchDelaySlot
}

func syscall(m Meta, e *cg.Emitter) Status {
	e.RaiseException(m.ExceptionPC(), m.BranchDelaySlot, cpu.Syscall)
	return TerminateBlock
}

func breakpoint(m Meta, e *cg.Emitter) Status {
	e.RaiseException(m.ExceptionPC(), m.BranchDelaySlot, cpu.Break)
	return TerminateBlock
}
