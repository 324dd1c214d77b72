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
	"github.com/rcornwell/jiffy/emu/codegen"
	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/decoder"
)

// Handler translates one instruction.
type Handler func(m Meta, e *codegen.Emitter) Status

// Handlers by primary opcode, nil entries are reserved encodings.
var handlerTable [64]Handler

// Handlers for SPECIAL by function code.
var functionTable [64]Handler

func init() {
	handlerTable = [64]Handler{
		decoder.SPECIAL: special,
		decoder.BCONDZ:  bcondz,
		decoder.J:       j,
		decoder.JAL:     jal,
		decoder.BEQ:     beq,
		decoder.BNE:     bne,
		decoder.BLEZ:    blez,
		decoder.BGTZ:    bgtz,
		decoder.ADDI:    addi,
		decoder.ADDIU:   addiu,
		decoder.SLTI:    slti,
		decoder.SLTIU:   sltiu,
		decoder.ANDI:    andi,
		decoder.ORI:     ori,
		decoder.XORI:    xori,
		decoder.LUI:     lui,
		decoder.COP0:    cop0,
		decoder.COP1:    copError,
		decoder.COP2:    gte,
		decoder.COP3:    copError,
		decoder.LB:      lb,
		decoder.LH:      lh,
		decoder.LWL:     lwl,
		decoder.LW:      lw,
		decoder.LBU:     lbu,
		decoder.LHU:     lhu,
		decoder.LWR:     lwr,
		decoder.SB:      sb,
		decoder.SH:      sh,
		decoder.SWL:     swl,
		decoder.SW:      sw,
		decoder.SWR:     swr,
		decoder.LWC0:    copError,
		decoder.LWC1:    copError,
		decoder.LWC2:    gte,
		decoder.LWC3:    copError,
		decoder.SWC0:    copError,
		decoder.SWC1:    copError,
		decoder.SWC2:    gte,
		decoder.SWC3:    copError,
	}

	functionTable = [64]Handler{
		decoder.SLL:     sll,
		decoder.SRL:     srl,
		decoder.SRA:     sra,
		decoder.SLLV:    sllv,
		decoder.SRLV:    srlv,
		decoder.SRAV:    srav,
		decoder.JR:      jr,
		decoder.JALR:    jalr,
		decoder.SYSCALL: syscall,
		decoder.BREAK:   breakpoint,
		decoder.MFHI:    mfhi,
		decoder.MTHI:    mthi,
		decoder.MFLO:    mflo,
		decoder.MTLO:    mtlo,
		decoder.MULT:    mult,
		decoder.MULTU:   multu,
		decoder.DIV:     div,
		decoder.DIVU:    divu,
		decoder.ADD:     add,
		decoder.ADDU:    addu,
		decoder.SUB:     sub,
		decoder.SUBU:    subu,
		decoder.AND:     and,
		decoder.OR:      or,
		decoder.XOR:     xor,
		decoder.NOR:     nor,
		decoder.SLT:     slt,
		decoder.SLTU:    sltu,
	}
}

// Translate one instruction through the handler tables.
func dispatch(m Meta, e *codegen.Emitter) Status {
	kind, ok := m.Insn.Kind()
	if !ok || handlerTable[kind] == nil {
		return illegal(m, e)
	}
	return handlerTable[kind](m, e)
}

func special(m Meta, e *codegen.Emitter) Status {
	funct, ok := m.Insn.FunctionKind()
	if !ok || functionTable[funct] == nil {
		return illegal(m, e)
	}
	return functionTable[funct](m, e)
}

// Reserved encoding.
func illegal(m Meta, e *codegen.Emitter) Status {
	m.observer.OnIllegal(m.PC, uint32(m.Insn))
	e.RaiseException(m.ExceptionPC(), m.BranchDelaySlot, cpu.IllegalInstruction)
	return TerminateBlock
}

// Recognised but not translated, stop the machine.
func unimplemented(m Meta, e *codegen.Emitter) Status {
	m.observer.OnUnimplemented(m.PC, uint32(m.Insn))
	e.Unimplemented(m.ExceptionPC())
	return TerminateBlock
}
