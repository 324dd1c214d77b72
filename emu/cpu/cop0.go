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

// StatusRegister is COP0 register 12.
type StatusRegister uint32

const (
	statusIEc  uint32 = 1 << 0  // Current interrupt enable
	statusKUc  uint32 = 1 << 1  // Current kernel/user mode
	statusMode uint32 = 0x3f    // Three level mode stack
	statusIsC  uint32 = 1 << 16 // Isolate cache
	statusBEV  uint32 = 1 << 22 // Boot exception vectors
	statusCU0  uint32 = 1 << 28 // Coprocessor 0 usable
)

// Push mode stack, new level is kernel mode with interrupts off.
func (s StatusRegister) EnterException() StatusRegister {
	sr := uint32(s)
	return StatusRegister((sr &^ statusMode) | ((sr << 2) & statusMode))
}

// Pop mode stack.
func (s StatusRegister) LeaveException() StatusRegister {
	sr := uint32(s)
	return StatusRegister((sr &^ statusMode) | ((sr & statusMode) >> 2))
}

// Mode stack bits 0-5.
func (s StatusRegister) Mode() uint8 {
	return uint8(uint32(s) & statusMode)
}

func (s StatusRegister) InterruptsEnabled() bool {
	return uint32(s)&statusIEc != 0
}

func (s StatusRegister) UserMode() bool {
	return uint32(s)&statusKUc != 0
}

func (s StatusRegister) CacheIsolated() bool {
	return uint32(s)&statusIsC != 0
}

func (s StatusRegister) BootVectors() bool {
	return uint32(s)&statusBEV != 0
}

// Check if coprocessor n is marked usable.
func (s StatusRegister) Usable(n uint) bool {
	return uint32(s)&(statusCU0<<(n&3)) != 0
}

// COP0 is always usable in kernel mode, in user mode only with CU0.
func (s StatusRegister) Cop0Usable() bool {
	return !s.UserMode() || s.Usable(0)
}

// Address of the general exception vector.
func (s StatusRegister) Vector() uint32 {
	if s.BootVectors() {
		return romVector
	}
	return ramVector
}

// CauseRegister is COP0 register 13.
type CauseRegister uint32

const causeBD uint32 = 1 << 31 // Exception in branch delay slot

// Build a fresh Cause value for an exception.
func NewCause(delayed bool, kind Exception) CauseRegister {
	c := uint32(kind&0x1f) << 2
	if delayed {
		c |= causeBD
	}
	return CauseRegister(c)
}

func (c CauseRegister) Exception() Exception {
	return Exception((uint32(c) >> 2) & 0x1f)
}

func (c CauseRegister) BranchDelay() bool {
	return uint32(c)&causeBD != 0
}

// Cop0 is the system control coprocessor.
type Cop0 struct {
	Status   StatusRegister // Processor status
	Cause    CauseRegister  // Cause of last exception
	EPC      uint32         // Return address from exception
	BadVaddr uint32         // Last bad virtual address
}

// Read a COP0 register, unknown registers read as zero.
func (c *Cop0) Register(index uint8) uint32 {
	switch index {
	case RegBadVaddr:
		return c.BadVaddr
	case RegStatus:
		return uint32(c.Status)
	case RegCause:
		return uint32(c.Cause)
	case RegEPC:
		return c.EPC
	case RegPRId:
		return prid
	}
	return 0
}

// Write a COP0 register, read only and unknown registers ignore writes.
func (c *Cop0) SetRegister(index uint8, value uint32) {
	switch index {
	case RegStatus:
		c.Status = StatusRegister(value)
	case RegCause:
		c.Cause = CauseRegister(value)
	case RegEPC:
		c.EPC = value
	}
}

// Save state on exception entry.
func (c *Cop0) RaiseException(epc uint32, delayed bool, kind Exception) {
	c.Status = c.Status.EnterException()
	c.Cause = NewCause(delayed, kind)
	c.EPC = epc
}

// Restore mode on return from exception. Cause and EPC are untouched.
func (c *Cop0) LeaveException() {
	c.Status = c.Status.LeaveException()
}
