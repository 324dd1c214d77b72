package codegen

/*
 * jiffy - Closure code generator
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
	"golang.org/x/exp/constraints"

	"github.com/rcornwell/jiffy/emu/cpu"
)

// Width of an operand in bytes.
type Width uint8

const (
	Byte Width = 1
	Half Width = 2
	Word Width = 4
	Long Width = 8
)

func (w Width) Bits() uint64 {
	return uint64(w) * 8
}

// Mask of valid bits for width.
func (w Width) Mask() uint64 {
	if w == Long {
		return ^uint64(0)
	}
	return (uint64(1) << w.Bits()) - 1
}

// Check if address is naturally aligned for width.
func (w Width) Aligned(addr uint32) bool {
	return addr&(uint32(w)-1) == 0
}

func (w Width) index() int {
	switch w {
	case Byte:
		return 0
	case Half:
		return 1
	case Word:
		return 2
	case Long:
		return 3
	}
	panic("codegen: invalid operand width")
}

type evalFn func(ctx *cpu.Context, f *Frame) uint64

// Operand produces a value of a fixed width when the block runs. Values
// are always held zero extended in a uint64.
type Operand struct {
	width Width
	eval  evalFn
	konst bool   // Value known while compiling
	value uint64 // Constant value
}

// Constant operand.
func Const(w Width, v uint64) Operand {
	v &= w.Mask()
	return Operand{
		width: w,
		eval:  func(*cpu.Context, *Frame) uint64 { return v },
		konst: true,
		value: v,
	}
}

func (o Operand) Width() Width {
	return o.width
}

// Return constant value and whether the operand is a constant.
func (o Operand) Constant() (uint64, bool) {
	return o.value, o.konst
}

// Evaluate operand against a context.
func (o Operand) Eval(ctx *cpu.Context, f *Frame) uint64 {
	return o.eval(ctx, f)
}

type binFn func(a, b uint64) uint64

// Per width implementations, indexed by Width.index.
type opTable [4]binFn

func lift[T constraints.Integer](op func(a, b T) T) binFn {
	return func(a, b uint64) uint64 {
		return uint64(op(T(a), T(b)))
	}
}

func add[T constraints.Integer](a, b T) T { return a + b }
func sub[T constraints.Integer](a, b T) T { return a - b }
func mul[T constraints.Integer](a, b T) T { return a * b }
func and[T constraints.Integer](a, b T) T { return a & b }
func or[T constraints.Integer](a, b T) T  { return a | b }
func xor[T constraints.Integer](a, b T) T { return a ^ b }
func shl[T constraints.Integer](a, b T) T { return a << b }
func shr[T constraints.Integer](a, b T) T { return a >> b }

// Division by zero gives zero, handlers deal with the guest result.
func div[T constraints.Integer](a, b T) T {
	if b == 0 {
		return 0
	}
	return a / b
}

func rem[T constraints.Integer](a, b T) T {
	if b == 0 {
		return 0
	}
	return a % b
}

var (
	addOps  = opTable{lift(add[uint8]), lift(add[uint16]), lift(add[uint32]), lift(add[uint64])}
	subOps  = opTable{lift(sub[uint8]), lift(sub[uint16]), lift(sub[uint32]), lift(sub[uint64])}
	mulOps  = opTable{lift(mul[uint8]), lift(mul[uint16]), lift(mul[uint32]), lift(mul[uint64])}
	andOps  = opTable{lift(and[uint8]), lift(and[uint16]), lift(and[uint32]), lift(and[uint64])}
	orOps   = opTable{lift(or[uint8]), lift(or[uint16]), lift(or[uint32]), lift(or[uint64])}
	xorOps  = opTable{lift(xor[uint8]), lift(xor[uint16]), lift(xor[uint32]), lift(xor[uint64])}
	divOps  = opTable{lift(div[int8]), lift(div[int16]), lift(div[int32]), lift(div[int64])}
	divuOps = opTable{lift(div[uint8]), lift(div[uint16]), lift(div[uint32]), lift(div[uint64])}
	remOps  = opTable{lift(rem[int8]), lift(rem[int16]), lift(rem[int32]), lift(rem[int64])}
	remuOps = opTable{lift(rem[uint8]), lift(rem[uint16]), lift(rem[uint32]), lift(rem[uint64])}
	shlOps  = opTable{lift(shl[uint8]), lift(shl[uint16]), lift(shl[uint32]), lift(shl[uint64])}
	shrOps  = opTable{lift(shr[int8]), lift(shr[int16]), lift(shr[int32]), lift(shr[int64])}
	ushrOps = opTable{lift(shr[uint8]), lift(shr[uint16]), lift(shr[uint32]), lift(shr[uint64])}
)

func checkWidth(a, b Operand) {
	if a.width != b.width {
		panic("codegen: operand width mismatch")
	}
}

func binop(ops *opTable, a, b Operand) Operand {
	checkWidth(a, b)
	fn := ops[a.width.index()]
	mask := a.width.Mask()
	if a.konst && b.konst {
		return Const(a.width, fn(a.value, b.value)&mask)
	}
	ea, eb := a.eval, b.eval
	return Operand{
		width: a.width,
		eval: func(ctx *cpu.Context, f *Frame) uint64 {
			return fn(ea(ctx, f), eb(ctx, f)) & mask
		},
	}
}

// Shift count is taken modulo the operand width.
func shiftop(ops *opTable, a, b Operand) Operand {
	return binop(ops, a, And(b, Const(b.width, a.width.Bits()-1)))
}

func unop(o Operand, to Width, fn func(v uint64) uint64) Operand {
	if o.konst {
		return Const(to, fn(o.value))
	}
	eo := o.eval
	return Operand{
		width: to,
		eval: func(ctx *cpu.Context, f *Frame) uint64 {
			return fn(eo(ctx, f))
		},
	}
}

func Add(a, b Operand) Operand  { return binop(&addOps, a, b) }
func Sub(a, b Operand) Operand  { return binop(&subOps, a, b) }
func Mul(a, b Operand) Operand  { return binop(&mulOps, a, b) }
func And(a, b Operand) Operand  { return binop(&andOps, a, b) }
func Or(a, b Operand) Operand   { return binop(&orOps, a, b) }
func Xor(a, b Operand) Operand  { return binop(&xorOps, a, b) }
func Div(a, b Operand) Operand  { return binop(&divOps, a, b) }
func DivU(a, b Operand) Operand { return binop(&divuOps, a, b) }
func Rem(a, b Operand) Operand  { return binop(&remOps, a, b) }
func RemU(a, b Operand) Operand { return binop(&remuOps, a, b) }
func Shl(a, b Operand) Operand  { return shiftop(&shlOps, a, b) }
func Shr(a, b Operand) Operand  { return shiftop(&shrOps, a, b) }
func Ushr(a, b Operand) Operand { return shiftop(&ushrOps, a, b) }

func Not(a Operand) Operand {
	mask := a.width.Mask()
	return unop(a, a.width, func(v uint64) uint64 { return ^v & mask })
}

func Nor(a, b Operand) Operand {
	return Not(Or(a, b))
}

// Sign extend operand to a wider width.
func SignExtend(o Operand, to Width) Operand {
	shift := 64 - o.width.Bits()
	mask := to.Mask()
	return unop(o, to, func(v uint64) uint64 {
		return uint64(int64(v<<shift)>>shift) & mask
	})
}

// Zero extend operand to a wider width.
func ZeroExtend(o Operand, to Width) Operand {
	return unop(o, to, func(v uint64) uint64 { return v })
}

// Truncate operand to a narrower width.
func Truncate(o Operand, to Width) Operand {
	mask := to.Mask()
	return unop(o, to, func(v uint64) uint64 { return v & mask })
}

// Interpret value as signed at width.
func signed(w Width, v uint64) int64 {
	shift := 64 - w.Bits()
	return int64(v<<shift) >> shift
}
