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

// Bus is the memory system the processor talks to. Addresses are
// virtual, address space routing belongs to the bus.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// Exception is the code stored into Cause on exception entry.
type Exception uint8

const (
	Interrupt          Exception = 0x00 // External interrupt
	UnalignedLoad      Exception = 0x04 // Address error on load or fetch
	UnalignedStore     Exception = 0x05 // Address error on store
	Syscall            Exception = 0x08 // SYSCALL instruction
	Break              Exception = 0x09 // BREAK instruction
	IllegalInstruction Exception = 0x0a // Reserved instruction
	CoprocessorError   Exception = 0x0b // Coprocessor unusable
	Overflow           Exception = 0x0c // Arithmetic overflow
)

var exceptionNames = map[Exception]string{
	Interrupt:          "interrupt",
	UnalignedLoad:      "unaligned load",
	UnalignedStore:     "unaligned store",
	Syscall:            "syscall",
	Break:              "break",
	IllegalInstruction: "illegal instruction",
	CoprocessorError:   "coprocessor error",
	Overflow:           "overflow",
}

func (e Exception) String() string {
	if n, ok := exceptionNames[e]; ok {
		return n
	}
	return "unknown exception"
}

// State is the lifecycle of an execution context.
type State uint8

const (
	Initial State = iota // Created, not yet executed
	Running              // Translator loop active
	Closed               // Execution stopped
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Running:
		return "running"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Exception vectors.
const (
	romVector uint32 = 0xbfc00180 // Status.BEV set
	ramVector uint32 = 0x80000080 // Status.BEV clear
)

// Reset vector for a PlayStation BIOS.
const ResetVector uint32 = 0xbfc00000

// COP0 register numbers.
const (
	RegBadVaddr uint8 = 8
	RegStatus   uint8 = 12
	RegCause    uint8 = 13
	RegEPC      uint8 = 14
	RegPRId     uint8 = 15
)

// Processor identification for R3000A.
const prid uint32 = 0x00000002
