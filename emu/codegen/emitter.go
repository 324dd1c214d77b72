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
	"github.com/rcornwell/jiffy/emu/decoder"
)

// Compiled is the host form of a guest basic block.
type Compiled func(ctx *cpu.Context)

// Frame holds the local values of one compiled block. It is allocated
// once per block, so a block must not be entered while it is running.
type Frame struct {
	locals []uint64
}

// A step returns false to leave the block.
type step func(ctx *cpu.Context, f *Frame) bool

// Load waiting for its delay slot to pass.
type pendingLoad struct {
	reg  decoder.Register // Zero when nothing waits
	slot int              // Frame slot holding the loaded value
}

func (p pendingLoad) complete(ctx *cpu.Context, f *Frame) {
	if p.reg != decoder.Zero {
		ctx.Regs[p.reg] = uint32(f.locals[p.slot])
	}
}

// Emitter collects the steps of one block.
type Emitter struct {
	steps   []step
	locals  *int        // Slot counter shared with nested emitters
	pending pendingLoad // Delayed load not yet written back
	closed  bool        // Block left, further steps unreachable
}

// Create emitter for a new block.
func NewEmitter() *Emitter {
	n := 0
	return &Emitter{locals: &n}
}

func (e *Emitter) child() *Emitter {
	return &Emitter{locals: e.locals, pending: e.pending}
}

func (e *Emitter) emit(s step) {
	if !e.closed {
		e.steps = append(e.steps, s)
	}
}

func (e *Emitter) alloc() int {
	n := *e.locals
	*e.locals++
	return n
}

// Take pending load, it is completed by the step being emitted.
func (e *Emitter) takePending() pendingLoad {
	p := e.pending
	e.pending = pendingLoad{}
	return p
}

// Check if code generation reached an exit of the block.
func (e *Emitter) Terminated() bool {
	return e.closed
}

// Number of steps emitted so far.
func (e *Emitter) Len() int {
	return len(e.steps)
}

// Register that has a delayed load outstanding, Zero if none.
func (e *Emitter) Pending() decoder.Register {
	return e.pending.reg
}

// Read a general register. A pending load is not visible.
func (e *Emitter) Register(r decoder.Register) Operand {
	if r == decoder.Zero {
		return Const(Word, 0)
	}
	return Operand{
		width: Word,
		eval: func(ctx *cpu.Context, _ *Frame) uint64 {
			return uint64(ctx.Regs[r])
		},
	}
}

// Read a general register, taking the value of a pending load to it
// instead. Only LWL and LWR see through the load delay.
func (e *Emitter) PendingRegister(r decoder.Register) Operand {
	if r == decoder.Zero || e.pending.reg != r {
		return e.Register(r)
	}
	slot := e.pending.slot
	return Operand{
		width: Word,
		eval: func(_ *cpu.Context, f *Frame) uint64 {
			return f.locals[slot]
		},
	}
}

// Write a general register. The value is computed first, then any
// pending load completes, then the write lands so it wins over the load.
func (e *Emitter) SetRegister(r decoder.Register, v Operand) {
	if e.closed {
		return
	}
	ev := v.eval
	p := e.takePending()
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		val := ev(ctx, f)
		p.complete(ctx, f)
		if r != decoder.Zero {
			ctx.Regs[r] = uint32(val)
		}
		return true
	})
}

func (e *Emitter) Cop0(r uint8) Operand {
	return Operand{
		width: Word,
		eval: func(ctx *cpu.Context, _ *Frame) uint64 {
			return uint64(ctx.Cop0.Register(r))
		},
	}
}

func (e *Emitter) SetCop0(r uint8, v Operand) {
	if e.closed {
		return
	}
	ev := v.eval
	p := e.takePending()
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		val := ev(ctx, f)
		p.complete(ctx, f)
		ctx.Cop0.SetRegister(r, uint32(val))
		return true
	})
}

func (e *Emitter) HI() Operand {
	return Operand{
		width: Word,
		eval: func(ctx *cpu.Context, _ *Frame) uint64 {
			return uint64(ctx.HI)
		},
	}
}

func (e *Emitter) LO() Operand {
	return Operand{
		width: Word,
		eval: func(ctx *cpu.Context, _ *Frame) uint64 {
			return uint64(ctx.LO)
		},
	}
}

func (e *Emitter) SetHI(v Operand) {
	ev := v.eval
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		ctx.HI = uint32(ev(ctx, f))
		return true
	})
}

func (e *Emitter) SetLO(v Operand) {
	ev := v.eval
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		ctx.LO = uint32(ev(ctx, f))
		return true
	})
}

// Set both halves from one evaluation of a 64 bit value.
func (e *Emitter) SetHILO(v Operand) {
	ev := v.eval
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		r := ev(ctx, f)
		ctx.HI = uint32(r >> 32)
		ctx.LO = uint32(r)
		return true
	})
}

// Set program counter.
func (e *Emitter) Jump(target Operand) {
	et := target.eval
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		ctx.PC = uint32(et(ctx, f))
		return true
	})
}

// Evaluate operand once and keep the result in a frame slot.
func (e *Emitter) Local(v Operand) Operand {
	if v.konst || e.closed {
		return v
	}
	slot := e.alloc()
	ev := v.eval
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		f.locals[slot] = ev(ctx, f)
		return true
	})
	return Operand{
		width: v.width,
		eval: func(_ *cpu.Context, f *Frame) uint64 {
			return f.locals[slot]
		},
	}
}

// Read from the bus. An unaligned address raises an address error
// instead of touching the bus. pc is the address reported in EPC.
func (e *Emitter) LoadBus(pc uint32, delayed bool, w Width, addr Operand) Operand {
	if w == Long {
		panic("codegen: bus access wider than a word")
	}
	slot := e.alloc()
	ea := addr.eval
	p := e.pending
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		a := uint32(ea(ctx, f))
		if !w.Aligned(a) {
			p.complete(ctx, f)
			ctx.Cop0.BadVaddr = a
			ctx.RaiseException(pc, delayed, cpu.UnalignedLoad)
			return false
		}
		switch w {
		case Byte:
			f.locals[slot] = uint64(ctx.Read8(a))
		case Half:
			f.locals[slot] = uint64(ctx.Read16(a))
		default:
			f.locals[slot] = uint64(ctx.Read32(a))
		}
		return true
	})
	return Operand{
		width: w,
		eval: func(_ *cpu.Context, f *Frame) uint64 {
			return f.locals[slot]
		},
	}
}

// Write to the bus, alignment checked as for loads.
func (e *Emitter) StoreBus(pc uint32, delayed bool, w Width, addr, value Operand) {
	if w == Long {
		panic("codegen: bus access wider than a word")
	}
	ea, ev := addr.eval, value.eval
	p := e.pending
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		a := uint32(ea(ctx, f))
		if !w.Aligned(a) {
			p.complete(ctx, f)
			ctx.Cop0.BadVaddr = a
			ctx.RaiseException(pc, delayed, cpu.UnalignedStore)
			return false
		}
		v := ev(ctx, f)
		switch w {
		case Byte:
			ctx.Write8(a, uint8(v))
		case Half:
			ctx.Write16(a, uint16(v))
		default:
			ctx.Write32(a, uint32(v))
		}
		return true
	})
}

// Park a value for register r, written back after the next instruction.
// A load already waiting completes first.
func (e *Emitter) ConfigureDelayedLoad(r decoder.Register, v Operand) {
	if e.closed {
		return
	}
	ev := v.eval
	prev := e.takePending()
	slot := e.alloc()
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		val := ev(ctx, f)
		prev.complete(ctx, f)
		f.locals[slot] = val
		return true
	})
	if r != decoder.Zero {
		e.pending = pendingLoad{reg: r, slot: slot}
	}
}

// Write back any pending load now.
func (e *Emitter) FinishDelayedLoad() {
	if e.closed || e.pending.reg == decoder.Zero {
		return
	}
	p := e.takePending()
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		p.complete(ctx, f)
		return true
	})
}

func run(steps []step, ctx *cpu.Context, f *Frame) bool {
	for _, s := range steps {
		if !s(ctx, f) {
			return false
		}
	}
	return true
}

// Emit a two way branch, exactly one side runs. orElse may be nil.
func (e *Emitter) If(c Condition, then, orElse func(b *Emitter)) {
	if e.closed {
		return
	}
	te := e.child()
	then(te)
	ee := e.child()
	if orElse != nil {
		orElse(ee)
	}

	// Both sides must agree on the load left waiting.
	switch {
	case te.closed && ee.closed:
		e.closed = true
	case te.closed:
		e.pending = ee.pending
	case ee.closed:
		e.pending = te.pending
	case te.pending != ee.pending:
		te.FinishDelayedLoad()
		ee.FinishDelayedLoad()
		e.pending = pendingLoad{}
	default:
		e.pending = te.pending
	}

	ec, ts, es := c.eval, te.steps, ee.steps
	e.steps = append(e.steps, func(ctx *cpu.Context, f *Frame) bool {
		if ec(ctx, f) {
			return run(ts, ctx, f)
		}
		return run(es, ctx, f)
	})
}

// Raise a guest exception and leave the block.
func (e *Emitter) RaiseException(pc uint32, delayed bool, kind cpu.Exception) {
	if e.closed {
		return
	}
	p := e.takePending()
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		p.complete(ctx, f)
		ctx.RaiseException(pc, delayed, kind)
		return false
	})
	e.closed = true
}

// Return from exception.
func (e *Emitter) LeaveException() {
	e.emit(func(ctx *cpu.Context, _ *Frame) bool {
		ctx.LeaveException()
		return true
	})
}

// Stop execution, used for paths the translator does not implement.
// PC is left at pc so execution resumes with the untranslated
// instruction, not the start of the block.
func (e *Emitter) Unimplemented(pc uint32) {
	if e.closed {
		return
	}
	p := e.takePending()
	e.emit(func(ctx *cpu.Context, f *Frame) bool {
		p.complete(ctx, f)
		ctx.PC = pc
		ctx.Close()
		return false
	})
	e.closed = true
}

// Seal block and return the callable form.
func (e *Emitter) Finish() Compiled {
	e.FinishDelayedLoad()
	steps := e.steps
	frame := &Frame{locals: make([]uint64, *e.locals)}
	return func(ctx *cpu.Context) {
		run(steps, ctx, frame)
	}
}
