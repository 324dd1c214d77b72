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

import (
	"testing"
)

// Every opcode must either decode to itself or report reserved.
func TestKindTable(t *testing.T) {
	seen := map[string]bool{}
	count := 0
	for op := range 64 {
		k, ok := LookupKind(uint8(op))
		if !ok {
			if kindNames[op] != "" {
				t.Errorf("Opcode %02x rejected but has name %s", op, kindNames[op])
			}
			continue
		}
		count++
		if uint8(k) != uint8(op) {
			t.Errorf("Opcode not correct got: %02x expected: %02x", k, op)
		}
		if seen[k.String()] {
			t.Errorf("Opcode %02x name %s not unique", op, k.String())
		}
		seen[k.String()] = true
	}
	if count != 40 {
		t.Errorf("Opcode count not correct got: %d expected: %d", count, 40)
	}
}

func TestFunctionTable(t *testing.T) {
	seen := map[string]bool{}
	count := 0
	for funct := range 64 {
		f, ok := LookupFunction(uint8(funct))
		if !ok {
			if functionNames[funct] != "" {
				t.Errorf("Function %02x rejected but has name %s", funct, functionNames[funct])
			}
			continue
		}
		count++
		if uint8(f) != uint8(funct) {
			t.Errorf("Function not correct got: %02x expected: %02x", f, funct)
		}
		if seen[f.String()] {
			t.Errorf("Function %02x name %s not unique", funct, f.String())
		}
		seen[f.String()] = true
	}
	if count != 28 {
		t.Errorf("Function count not correct got: %d expected: %d", count, 28)
	}
}

func TestReserved(t *testing.T) {
	for _, op := range []uint8{0x14, 0x18, 0x1f, 0x27, 0x2c, 0x2f, 0x34, 0x3f} {
		if _, ok := LookupKind(op); ok {
			t.Errorf("Opcode %02x should be reserved", op)
		}
		if Kind(op).String() != "RESERVED" {
			t.Errorf("Opcode %02x name not correct got: %s", op, Kind(op).String())
		}
	}
	for _, funct := range []uint8{0x01, 0x05, 0x0a, 0x0e, 0x14, 0x1c, 0x28, 0x3f} {
		if _, ok := LookupFunction(funct); ok {
			t.Errorf("Function %02x should be reserved", funct)
		}
	}
}

func TestFields(t *testing.T) {
	// addiu $t0, $a0, -4
	i := Instruction(0x2488fffc)
	if k, ok := i.Kind(); !ok || k != ADDIU {
		t.Errorf("Kind not correct got: %s expected: %s", k, ADDIU)
	}
	if i.Rs() != A0 {
		t.Errorf("Rs not correct got: %d expected: %d", i.Rs(), A0)
	}
	if i.Rt() != T0 {
		t.Errorf("Rt not correct got: %d expected: %d", i.Rt(), T0)
	}
	if i.Imm() != 0xfffc {
		t.Errorf("Imm not correct got: %04x expected: %04x", i.Imm(), 0xfffc)
	}
	if i.ImmSE() != 0xfffffffc {
		t.Errorf("ImmSE not correct got: %08x expected: %08x", i.ImmSE(), 0xfffffffc)
	}

	// sra $t2, $t1, 7
	i = Instruction(0x000951c3)
	if f, ok := i.FunctionKind(); !ok || f != SRA {
		t.Errorf("Function not correct got: %s expected: %s", f, SRA)
	}
	if i.Rt() != T1 || i.Rd() != T2 {
		t.Errorf("Registers not correct got: %d %d expected: %d %d", i.Rt(), i.Rd(), T1, T2)
	}
	if i.Shamt() != 7 {
		t.Errorf("Shamt not correct got: %d expected: %d", i.Shamt(), 7)
	}

	// j 0x0bf00000
	i = Instruction(0x0bf00000)
	if i.Target() != 0x3f00000 {
		t.Errorf("Target not correct got: %07x expected: %07x", i.Target(), 0x3f00000)
	}

	// mtc0 $t4, $12
	i = Instruction(0x408c6000)
	if i.CopOpcode() != CopMT {
		t.Errorf("Cop opcode not correct got: %02x expected: %02x", i.CopOpcode(), CopMT)
	}
	if i.Rd() != 12 {
		t.Errorf("Cop register not correct got: %d expected: %d", i.Rd(), 12)
	}
}

func TestDecode(t *testing.T) {
	s := Decode(0x01095020) // add $t2, $t0, $t1
	if !s.KindOK || s.Kind != SPECIAL {
		t.Errorf("Kind not correct got: %s expected: %s", s.Kind, SPECIAL)
	}
	if !s.FunctionOK || s.Function != ADD {
		t.Errorf("Function not correct got: %s expected: %s", s.Function, ADD)
	}
	s = Decode(0xfc000000)
	if s.KindOK {
		t.Errorf("Reserved opcode decoded as %s", s.Kind)
	}
}

func TestRegisterName(t *testing.T) {
	if Zero.String() != "$zero" || RA.String() != "$ra" || T2.String() != "$t2" {
		t.Errorf("Register names not correct got: %s %s %s", Zero, RA, T2)
	}
}
