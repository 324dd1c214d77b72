package decoder

/*
 * jiffy - MIPS instruction decoder
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

// Kind identifies an instruction by primary opcode.
type Kind uint8

// Primary opcodes.
const (
	SPECIAL Kind = 0x00
	BCONDZ  Kind = 0x01
	J       Kind = 0x02
	JAL     Kind = 0x03
	BEQ     Kind = 0x04
	BNE     Kind = 0x05
	BLEZ    Kind = 0x06
	BGTZ    Kind = 0x07
	ADDI    Kind = 0x08
	ADDIU   Kind = 0x09
	SLTI    Kind = 0x0a
	SLTIU   Kind = 0x0b
	ANDI    Kind = 0x0c
	ORI     Kind = 0x0d
	XORI    Kind = 0x0e
	LUI     Kind = 0x0f
	COP0    Kind = 0x10
	COP1    Kind = 0x11
	COP2    Kind = 0x12
	COP3    Kind = 0x13
	LB      Kind = 0x20
	LH      Kind = 0x21
	LWL     Kind = 0x22
	LW      Kind = 0x23
	LBU     Kind = 0x24
	LHU     Kind = 0x25
	LWR     Kind = 0x26
	SB      Kind = 0x28
	SH      Kind = 0x29
	SWL     Kind = 0x2a
	SW      Kind = 0x2b
	SWR     Kind = 0x2e
	LWC0    Kind = 0x30
	LWC1    Kind = 0x31
	LWC2    Kind = 0x32
	LWC3    Kind = 0x33
	SWC0    Kind = 0x38
	SWC1    Kind = 0x39
	SWC2    Kind = 0x3a
	SWC3    Kind = 0x3b
)

// Function identifies a SPECIAL instruction by function code.
type Function uint8

// Function codes.
const (
	SLL     Function = 0x00
	SRL     Function = 0x02
	SRA     Function = 0x03
	SLLV    Function = 0x04
	SRLV    Function = 0x06
	SRAV    Function = 0x07
	JR      Function = 0x08
	JALR    Function = 0x09
	SYSCALL Function = 0x0c
	BREAK   Function = 0x0d
	MFHI    Function = 0x10
	MTHI    Function = 0x11
	MFLO    Function = 0x12
	MTLO    Function = 0x13
	MULT    Function = 0x18
	MULTU   Function = 0x19
	DIV     Function = 0x1a
	DIVU    Function = 0x1b
	ADD     Function = 0x20
	ADDU    Function = 0x21
	SUB     Function = 0x22
	SUBU    Function = 0x23
	AND     Function = 0x24
	OR      Function = 0x25
	XOR     Function = 0x26
	NOR     Function = 0x27
	SLT     Function = 0x2a
	SLTU    Function = 0x2b
)

// Coprocessor sub opcodes.
const (
	CopMF  = 0x00
	CopCF  = 0x02
	CopMT  = 0x04
	CopCT  = 0x06
	CopBC  = 0x08
	CopRFE = 0x10
)

// Function code of RFE when sub opcode is CopRFE.
const FunctRFE = 0x10

// Names indexed by opcode, empty string means reserved.
var kindNames = [64]string{
	0x00: "SPECIAL", 0x01: "BCONDZ", 0x02: "J", 0x03: "JAL",
	0x04: "BEQ", 0x05: "BNE", 0x06: "BLEZ", 0x07: "BGTZ",
	0x08: "ADDI", 0x09: "ADDIU", 0x0a: "SLTI", 0x0b: "SLTIU",
	0x0c: "ANDI", 0x0d: "ORI", 0x0e: "XORI", 0x0f: "LUI",
	0x10: "COP0", 0x11: "COP1", 0x12: "COP2", 0x13: "COP3",
	0x20: "LB", 0x21: "LH", 0x22: "LWL", 0x23: "LW",
	0x24: "LBU", 0x25: "LHU", 0x26: "LWR",
	0x28: "SB", 0x29: "SH", 0x2a: "SWL", 0x2b: "SW", 0x2e: "SWR",
	0x30: "LWC0", 0x31: "LWC1", 0x32: "LWC2", 0x33: "LWC3",
	0x38: "SWC0", 0x39: "SWC1", 0x3a: "SWC2", 0x3b: "SWC3",
}

// Names indexed by function code, empty string means reserved.
var functionNames = [64]string{
	0x00: "SLL", 0x02: "SRL", 0x03: "SRA",
	0x04: "SLLV", 0x06: "SRLV", 0x07: "SRAV",
	0x08: "JR", 0x09: "JALR", 0x0c: "SYSCALL", 0x0d: "BREAK",
	0x10: "MFHI", 0x11: "MTHI", 0x12: "MFLO", 0x13: "MTLO",
	0x18: "MULT", 0x19: "MULTU", 0x1a: "DIV", 0x1b: "DIVU",
	0x20: "ADD", 0x21: "ADDU", 0x22: "SUB", 0x23: "SUBU",
	0x24: "AND", 0x25: "OR", 0x26: "XOR", 0x27: "NOR",
	0x2a: "SLT", 0x2b: "SLTU",
}

// Look up primary opcode, false for reserved encodings.
func LookupKind(op uint8) (Kind, bool) {
	op &= 0x3f
	if kindNames[op] == "" {
		return 0, false
	}
	return Kind(op), true
}

// Look up function code, false for reserved encodings.
func LookupFunction(funct uint8) (Function, bool) {
	funct &= 0x3f
	if functionNames[funct] == "" {
		return 0, false
	}
	return Function(funct), true
}

func (k Kind) String() string {
	if n := kindNames[k&0x3f]; n != "" {
		return n
	}
	return "RESERVED"
}

func (f Function) String() string {
	if n := functionNames[f&0x3f]; n != "" {
		return n
	}
	return "RESERVED"
}
