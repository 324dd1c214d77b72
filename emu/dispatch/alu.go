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
)

func rs(m Meta, e *cg.Emitter) cg.Operand {
	return e.Register(m.Insn.Rs())
}

func rt(m Meta, e *cg.Emitter) cg.Operand {
	return e.Register(m.Insn.Rt())
}

func word(v uint32) cg.Operand {
	return cg.Const(cg.Word, uint64(v))
}

// Sign extended immediate.
func immSE(m Meta) cg.Operand {
	return word(m.Insn.ImmSE())
}

// Zero extended immediate.
func immZE(m Meta) cg.Operand {
	return word(uint32(m.Insn.Imm()))
}

func shamt(m Meta) cg.Operand {
	return word(uint32(m.Insn.Shamt()))
}

// Signed add, result is discarded and Overflow raised if sign wraps.
func addTrap(m Meta, e *cg.Emitter, a, b cg.Operand, dst func(*cg.Emitter, cg.Operand)) {
	sum := e.Local(cg.Add(a, b))
	overflow := cg.LessThanZero(cg.And(cg.Xor(sum, a), cg.Xor(sum, b)))
	e.If(overflow, func(x *cg.Emitter) {
		x.RaiseException(m.ExceptionPC(), m.BranchDelaySlot, cpu.Overflow)
	}, func(x *cg.Emitter) {
		dst(x, sum)
	})
}

func toRd(m Meta) func(*cg.Emitter, cg.Operand) {
	return func(b *cg.Emitter, v cg.Operand) { b.SetRegister(m.Insn.Rd(), v) }
}

func toRt(m Meta) func(*cg.Emitter, cg.Operand) {
	return func(b *cg.Emitter, v cg.Operand) { b.SetRegister(m.Insn.Rt(), v) }
}

func add(m Meta, e *cg.Emitter) Status {
	addTrap(m, e, rs(m, e), rt(m, e), toRd(m))
	return ContinueBlock
}

func addi(m Meta, e *cg.Emitter) Status {
	addTrap(m, e, rs(m, e), immSE(m), toRt(m))
	return ContinueBlock
}

func sub(m Meta, e *cg.Emitter) Status {
	a, b := rs(m, e), rt(m, e)
	diff := e.Local(cg.Sub(a, b))
	overflow := cg.LessThanZero(cg.And(cg.Xor(a, b), cg.Xor(a, diff)))
	e.If(overflow, func(x *cg.Emitter) {
		x.RaiseException(m.ExceptionPC(), m.BranchDelaySlot, cpu.Overflow)
	}, func(x *cg.Emitter) {
		x.SetRegister(m.Insn.Rd(), diff)
	})
	return ContinueBlock
}

func addu(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Add(rs(m, e), rt(m, e)))
	return ContinueBlock
}

func addiu(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rt(), cg.Add(rs(m, e), immSE(m)))
	return ContinueBlock
}

func subu(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Sub(rs(m, e), rt(m, e)))
	return ContinueBlock
}

func and(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.And(rs(m, e), rt(m, e)))
	return ContinueBlock
}

func or(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Or(rs(m, e), rt(m, e)))
	return ContinueBlock
}

func xor(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Xor(rs(m, e), rt(m, e)))
	return ContinueBlock
}

func nor(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Nor(rs(m, e), rt(m, e)))
	return ContinueBlock
}

func andi(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rt(), cg.And(rs(m, e), immZE(m)))
	return ContinueBlock
}

func ori(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rt(), cg.Or(rs(m, e), immZE(m)))
	return ContinueBlock
}

func xori(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rt(), cg.Xor(rs(m, e), immZE(m)))
	return ContinueBlock
}

func lui(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rt(), word(uint32(m.Insn.Imm())<<16))
	return ContinueBlock
}

func slt(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Bool(cg.LessThan(rs(m, e), rt(m, e))))
	return ContinueBlock
}

func sltu(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Bool(cg.LessThanUnsigned(rs(m, e), rt(m, e))))
	return ContinueBlock
}

func slti(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rt(), cg.Bool(cg.LessThan(rs(m, e), immSE(m))))
	return ContinueBlock
}

// Immediate is sign extended, then compared unsigned.
func sltiu(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rt(), cg.Bool(cg.LessThanUnsigned(rs(m, e), immSE(m))))
	return ContinueBlock
}

func sll(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Shl(rt(m, e), shamt(m)))
	return ContinueBlock
}

func srl(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Ushr(rt(m, e), shamt(m)))
	return ContinueBlock
}

func sra(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Shr(rt(m, e), shamt(m)))
	return ContinueBlock
}

func sllv(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Shl(rt(m, e), rs(m, e)))
	return ContinueBlock
}

func srlv(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Ushr(rt(m, e), rs(m, e)))
	return ContinueBlock
}

func srav(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), cg.Shr(rt(m, e), rs(m, e)))
	return ContinueBlock
}

func mfhi(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), e.HI())
	return ContinueBlock
}

func mflo(m Meta, e *cg.Emitter) Status {
	e.SetRegister(m.Insn.Rd(), e.LO())
	return ContinueBlock
}

func mthi(m Meta, e *cg.Emitter) Status {
	e.SetHI(rs(m, e))
	return ContinueBlock
}

func mtlo(m Meta, e *cg.Emitter) Status {
	e.SetLO(rs(m, e))
	return ContinueBlock
}

func mult(m Meta, e *cg.Emitter) Status {
	e.SetHILO(cg.Mul(cg.SignExtend(rs(m, e), cg.Long), cg.SignExtend(rt(m, e), cg.Long)))
	return ContinueBlock
}

func multu(m Meta, e *cg.Emitter) Status {
	e.SetHILO(cg.Mul(cg.ZeroExtend(rs(m, e), cg.Long), cg.ZeroExtend(rt(m, e), cg.Long)))
	return ContinueBlock
}

// Divide by zero leaves dividend in HI, LO is 1 for a non negative
// dividend and all ones otherwise.
func div(m Meta, e *cg.Emitter) Status {
	n, d := rs(m, e), rt(m, e)
	e.If(cg.IsZero(d), func(b *cg.Emitter) {
		b.SetLO(cg.Select(cg.LessThanZero(n), word(0xffffffff), word(1)))
		b.SetHI(n)
	}, func(b *cg.Emitter) {
		b.SetLO(cg.Div(n, d))
		b.SetHI(cg.Rem(n, d))
	})
	return ContinueBlock
}

func divu(m Meta, e *cg.Emitter) Status {
	n, d := rs(m, e), rt(m, e)
	e.If(cg.IsZero(d), func(b *cg.Emitter) {
		b.SetLO(word(0xffffffff))
		b.SetHI(n)
	}, func(b *cg.Emitter) {
		b.SetLO(cg.DivU(n, d))
		b.SetHI(cg.RemU(n, d))
	})
	return ContinueBlock
}
