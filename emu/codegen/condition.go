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
	"github.com/rcornwell/jiffy/emu/cpu"
)

// Condition is a boolean test evaluated when the block runs.
type Condition struct {
	eval func(ctx *cpu.Context, f *Frame) bool
}

// Evaluate condition against a context.
func (c Condition) Eval(ctx *cpu.Context, f *Frame) bool {
	return c.eval(ctx, f)
}

func compare(a, b Operand, test func(x, y uint64) bool) Condition {
	checkWidth(a, b)
	ea, eb := a.eval, b.eval
	return Condition{eval: func(ctx *cpu.Context, f *Frame) bool {
		return test(ea(ctx, f), eb(ctx, f))
	}}
}

func sign(a Operand, test func(x int64) bool) Condition {
	ea, w := a.eval, a.width
	return Condition{eval: func(ctx *cpu.Context, f *Frame) bool {
		return test(signed(w, ea(ctx, f)))
	}}
}

// True when the current mode may not touch COP0.
func Cop0Unusable() Condition {
	return Condition{eval: func(ctx *cpu.Context, _ *Frame) bool {
		return !ctx.Cop0.Status.Cop0Usable()
	}}
}

func Equal(a, b Operand) Condition {
	return compare(a, b, func(x, y uint64) bool { return x == y })
}

func NotEqual(a, b Operand) Condition {
	return compare(a, b, func(x, y uint64) bool { return x != y })
}

// Signed less than.
func LessThan(a, b Operand) Condition {
	w := a.width
	return compare(a, b, func(x, y uint64) bool { return signed(w, x) < signed(w, y) })
}

func LessThanUnsigned(a, b Operand) Condition {
	return compare(a, b, func(x, y uint64) bool { return x < y })
}

func LessThanZero(a Operand) Condition {
	return sign(a, func(x int64) bool { return x < 0 })
}

func LessOrEqualZero(a Operand) Condition {
	return sign(a, func(x int64) bool { return x <= 0 })
}

func GreaterThanZero(a Operand) Condition {
	return sign(a, func(x int64) bool { return x > 0 })
}

func GreaterOrEqualZero(a Operand) Condition {
	return sign(a, func(x int64) bool { return x >= 0 })
}

func IsZero(a Operand) Condition {
	return sign(a, func(x int64) bool { return x == 0 })
}

func NotZero(a Operand) Condition {
	return sign(a, func(x int64) bool { return x != 0 })
}

// Pick a when condition holds, otherwise b.
func Select(c Condition, a, b Operand) Operand {
	checkWidth(a, b)
	ec, ea, eb := c.eval, a.eval, b.eval
	return Operand{
		width: a.width,
		eval: func(ctx *cpu.Context, f *Frame) uint64 {
			if ec(ctx, f) {
				return ea(ctx, f)
			}
			return eb(ctx, f)
		},
	}
}

// Fold a condition into a word holding 0 or 1.
func Bool(c Condition) Operand {
	return Select(c, Const(Word, 1), Const(Word, 0))
}
