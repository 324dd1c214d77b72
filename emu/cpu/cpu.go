package cpu

/*
 * jiffy - MIPS R3000A execution context
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

// Context holds the guest processor state a compiled block works on.
// A context is driven by one goroutine at a time.
type Context struct {
	Regs  [32]uint32 // General purpose registers
	PC    uint32     // Address of next block to run
	HI    uint32     // Multiply/divide high result
	LO    uint32     // Multiply/divide low result
	Cop0  Cop0       // System control coprocessor
	state State      // Lifecycle
	bus   Bus        // Memory system
}

// Create a new context starting execution at pc.
func NewContext(bus Bus, pc uint32) *Context {
	ctx := &Context{bus: bus}
	ctx.Reset(pc)
	return ctx
}

// Return processor to reset state, starting at pc.
func (ctx *Context) Reset(pc uint32) {
	ctx.Regs = [32]uint32{}
	ctx.HI = 0
	ctx.LO = 0
	ctx.Cop0 = Cop0{Status: StatusRegister(statusBEV)}
	ctx.PC = pc
	ctx.state = Initial
}

func (ctx *Context) Bus() Bus {
	return ctx.bus
}

// Get general register, register zero always reads zero.
func (ctx *Context) Register(r uint8) uint32 {
	return ctx.Regs[r&0x1f]
}

// Set general register, writes to register zero are dropped.
func (ctx *Context) SetRegister(r uint8, value uint32) {
	r &= 0x1f
	if r != 0 {
		ctx.Regs[r] = value
	}
}

func (ctx *Context) Read8(addr uint32) uint8 {
	return ctx.bus.Read8(addr)
}

func (ctx *Context) Read16(addr uint32) uint16 {
	return ctx.bus.Read16(addr)
}

func (ctx *Context) Read32(addr uint32) uint32 {
	return ctx.bus.Read32(addr)
}

// Stores while the cache is isolated go to the cache, not memory.
func (ctx *Context) Write8(addr uint32, value uint8) {
	if !ctx.Cop0.Status.CacheIsolated() {
		ctx.bus.Write8(addr, value)
	}
}

func (ctx *Context) Write16(addr uint32, value uint16) {
	if !ctx.Cop0.Status.CacheIsolated() {
		ctx.bus.Write16(addr, value)
	}
}

func (ctx *Context) Write32(addr uint32, value uint32) {
	if !ctx.Cop0.Status.CacheIsolated() {
		ctx.bus.Write32(addr, value)
	}
}

// Fetch instruction word at address.
func (ctx *Context) FetchInstruction(addr uint32) uint32 {
	return ctx.bus.Read32(addr)
}

// Enter exception. The caller passes the address of the branch when
// the faulting instruction sits in a delay slot.
func (ctx *Context) RaiseException(pc uint32, delayed bool, kind Exception) {
	ctx.Cop0.RaiseException(pc, delayed, kind)
	ctx.PC = ctx.Cop0.Status.Vector()
}

// Return from exception, RFE only restores the mode stack.
func (ctx *Context) LeaveException() {
	ctx.Cop0.LeaveException()
}

func (ctx *Context) State() State {
	return ctx.state
}

func (ctx *Context) SetState(s State) {
	ctx.state = s
}

func (ctx *Context) Running() bool {
	return ctx.state == Running
}

// Stop execution after the current block.
func (ctx *Context) Close() {
	ctx.state = Closed
}
