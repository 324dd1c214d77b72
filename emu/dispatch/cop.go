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

// System control coprocessor. In user mode without CU0 every COP0
// operation raises a coprocessor error instead.
func cop0(m Meta, e *cg.Emitter) Status {
	reg := uint8(m.Insn.Rd())
	var body func(x *cg.Emitter)
	status := ContinueBlock
	switch m.Insn.CopOpcode() {
	case decoder.CopMF:
		// Reads of COP0 share the load delay.
		body = func(x *cg.Emitter) {
			x.ConfigureDelayedLoad(m.Insn.Rt(), x.Cop0(reg))
		}
		status = FillLoadDelaySlot
	case decoder.CopMT:
		body = func(x *cg.Emitter) {
			x.SetCop0(reg, rt(m, x))
		}
	case decoder.CopRFE:
		if m.Insn.Function() == decoder.FunctRFE {
			body = func(x *cg.Emitter) {
				x.LeaveException()
			}
		}
	}
	if body == nil {
		return illegal(m, e)
	}
	e.If(cg.Cop0Unusable(), func(x *cg.Emitter) {
		x.RaiseException(m.ExceptionPC(), m.BranchDelaySlot, cpu.CoprocessorError)
	}, body)
	return status
}

// Coprocessors 1 and 3 are absent.
func copError(m Meta, e *cg.Emitter) Status {
	e.RaiseException(m.ExceptionPC(), m.BranchDelaySlot, cpu.CoprocessorError)
	return TerminateBlock
}

// Geometry engine, not translated.
func gte(m Meta, e *cg.Emitter) Status {
	return unimplemented(m, e)
}
