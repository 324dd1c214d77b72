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
	"github.com/rcornwell/jiffy/emu/decoder"
	"github.com/rcornwell/jiffy/emu/trace"
)

// Status tells the block builder what the last instruction needs.
type Status uint8

const (
	ContinueBlock       Status = iota // Keep going
	FillLoadDelaySlot                 // Load result visible after next instruction
	FillBranchDelaySlot               // Emit one more instruction, then stop
	TerminateBlock                    // Stop now
)

// Check if more instructions may follow.
func (s Status) BlockOpen() bool {
	return s == ContinueBlock || s == FillLoadDelaySlot
}

// Check if a delay slot must be filled.
func (s Status) DelaySlot() bool {
	return s == FillLoadDelaySlot || s == FillBranchDelaySlot
}

func (s Status) String() string {
	switch s {
	case ContinueBlock:
		return "continue"
	case FillLoadDelaySlot:
		return "load delay"
	case FillBranchDelaySlot:
		return "branch delay"
	case TerminateBlock:
		return "terminate"
	}
	return "unknown"
}

// Meta describes the instruction being translated.
type Meta struct {
	Insn            decoder.Instruction // Instruction word
	PC              uint32              // Address of instruction
	BranchDelaySlot bool                // Instruction follows a branch
	observer        trace.Observer
}

// Address reported in EPC. A fault in a delay slot reports the branch.
func (m Meta) ExceptionPC() uint32 {
	if m.BranchDelaySlot {
		return m.PC - decoder.InstructionSize
	}
	return m.PC
}
