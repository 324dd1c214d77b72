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

/*
   MIPS R3000A instructions come in three formats, all 32 bits wide.

   I-Type:
      +--------+------+------+------------------+
      | opcode |  rs  |  rt  |    immediate     |
      +--------+------+------+------------------+
       31    26 25  21 20  16 15               0

   J-Type:
      +--------+--------------------------------+
      | opcode |            target              |
      +--------+--------------------------------+
       31    26 25                             0

   R-Type:
      +--------+------+------+------+------+--------+
      | opcode |  rs  |  rt  |  rd  | shamt|  funct |
      +--------+------+------+------+------+--------+
       31    26 25  21 20  16 15  11 10   6 5      0

   Coprocessor instructions reuse the rs field as a sub opcode.
*/

// Size of an instruction in bytes.
const InstructionSize = 4

// Register is an index into the general purpose register file.
type Register uint8

const (
	// Hard wired zero, also the "no register" sentinel.
	Zero Register = 0
	AT   Register = 1
	V0   Register = 2
	V1   Register = 3
	A0   Register = 4
	A1   Register = 5
	A2   Register = 6
	A3   Register = 7
	T0   Register = 8
	T1   Register = 9
	T2   Register = 10
	T3   Register = 11
	SP   Register = 29
	FP   Register = 30
	RA   Register = 31 // Link register for JAL and BxxZAL
)

var regNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// Return ABI name of register.
func (r Register) String() string {
	return "$" + regNames[r&0x1f]
}

// Instruction is a raw 32 bit instruction word.
type Instruction uint32

// Primary opcode, bits 31-26.
func (i Instruction) Opcode() uint8 {
	return uint8(i >> 26)
}

// Secondary function code, bits 5-0.
func (i Instruction) Function() uint8 {
	return uint8(i & 0x3f)
}

func (i Instruction) Rs() Register {
	return Register((i >> 21) & 0x1f)
}

func (i Instruction) Rt() Register {
	return Register((i >> 16) & 0x1f)
}

func (i Instruction) Rd() Register {
	return Register((i >> 11) & 0x1f)
}

// Immediate field, not extended.
func (i Instruction) Imm() uint16 {
	return uint16(i & 0xffff)
}

// Immediate field sign extended to 32 bits.
func (i Instruction) ImmSE() uint32 {
	return uint32(int32(int16(i & 0xffff)))
}

func (i Instruction) Shamt() uint8 {
	return uint8((i >> 6) & 0x1f)
}

// Jump target, bits 25-0.
func (i Instruction) Target() uint32 {
	return uint32(i & 0x3ffffff)
}

// Coprocessor sub opcode, bits 25-21.
func (i Instruction) CopOpcode() uint8 {
	return uint8((i >> 21) & 0x1f)
}

// Kind of instruction selected by primary opcode.
func (i Instruction) Kind() (Kind, bool) {
	return LookupKind(i.Opcode())
}

// Kind of ALU operation selected by function code. Only meaningful
// for SPECIAL instructions.
func (i Instruction) FunctionKind() (Function, bool) {
	return LookupFunction(i.Function())
}

// Shape of a decoded instruction.
type Shape struct {
	Insn       Instruction
	Kind       Kind
	KindOK     bool
	Function   Function
	FunctionOK bool
}

// Decode raw word into its primary and secondary shapes. The function
// shape is resolved for every word, callers only consult it for SPECIAL.
func Decode(raw uint32) Shape {
	i := Instruction(raw)
	s := Shape{Insn: i}
	s.Kind, s.KindOK = i.Kind()
	s.Function, s.FunctionOK = i.FunctionKind()
	return s
}
