package disassembler

/*
 * jiffy - MIPS disassembler
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
	"fmt"

	"github.com/rcornwell/jiffy/emu/decoder"
)

const (
	tyR3     = 1 + iota // rd,rs,rt
	tyShift             // rd,rt,shamt
	tyShiftV            // rd,rt,rs
	tyJR                // rs
	tyJALR              // rd,rs
	tyMove              // rd
	tyMoveTo            // rs
	tyMulDiv            // rs,rt
	tyCode              // 20 bit code
	tyImmS              // rt,rs,signed
	tyImmU              // rt,rs,unsigned
	tyLUI               // rt,unsigned
	tyBr2               // rs,rt,target
	tyBr1               // rs,target
	tyJump              // target
	tyMem               // rt,offset(rs)
	tyCop               // coprocessor operation
	tyCopMem            // coprocessor register,offset(rs)
	tyBcond             // BLTZ/BGEZ group
)

type opcode struct {
	opName string // Opcode string.
	opType int    // Opcode type.
}

var opMap = map[decoder.Kind]opcode{
	decoder.BCONDZ: {"", tyBcond},
	decoder.J:      {"J", tyJump},
	decoder.JAL:    {"JAL", tyJump},
	decoder.BEQ:    {"BEQ", tyBr2},
	decoder.BNE:    {"BNE", tyBr2},
	decoder.BLEZ:   {"BLEZ", tyBr1},
	decoder.BGTZ:   {"BGTZ", tyBr1},
	decoder.ADDI:   {"ADDI", tyImmS},
	decoder.ADDIU:  {"ADDIU", tyImmS},
	decoder.SLTI:   {"SLTI", tyImmS},
	decoder.SLTIU:  {"SLTIU", tyImmS},
	decoder.ANDI:   {"ANDI", tyImmU},
	decoder.ORI:    {"ORI", tyImmU},
	decoder.XORI:   {"XORI", tyImmU},
	decoder.LUI:    {"LUI", tyLUI},
	decoder.COP0:   {"COP0", tyCop},
	decoder.COP1:   {"COP1", tyCop},
	decoder.COP2:   {"COP2", tyCop},
	decoder.COP3:   {"COP3", tyCop},
	decoder.LB:     {"LB", tyMem},
	decoder.LH:     {"LH", tyMem},
	decoder.LWL:    {"LWL", tyMem},
	decoder.LW:     {"LW", tyMem},
	decoder.LBU:    {"LBU", tyMem},
	decoder.LHU:    {"LHU", tyMem},
	decoder.LWR:    {"LWR", tyMem},
	decoder.SB:     {"SB", tyMem},
	decoder.SH:     {"SH", tyMem},
	decoder.SWL:    {"SWL", tyMem},
	decoder.SW:     {"SW", tyMem},
	decoder.SWR:    {"SWR", tyMem},
	decoder.LWC0:   {"LWC0", tyCopMem},
	decoder.LWC1:   {"LWC1", tyCopMem},
	decoder.LWC2:   {"LWC2", tyCopMem},
	decoder.LWC3:   {"LWC3", tyCopMem},
	decoder.SWC0:   {"SWC0", tyCopMem},
	decoder.SWC1:   {"SWC1", tyCopMem},
	decoder.SWC2:   {"SWC2", tyCopMem},
	decoder.SWC3:   {"SWC3", tyCopMem},
}

var functMap = map[decoder.Function]opcode{
	decoder.SLL:     {"SLL", tyShift},
	decoder.SRL:     {"SRL", tyShift},
	decoder.SRA:     {"SRA", tyShift},
	decoder.SLLV:    {"SLLV", tyShiftV},
	decoder.SRLV:    {"SRLV", tyShiftV},
	decoder.SRAV:    {"SRAV", tyShiftV},
	decoder.JR:      {"JR", tyJR},
	decoder.JALR:    {"JALR", tyJALR},
	decoder.SYSCALL: {"SYSCALL", tyCode},
	decoder.BREAK:   {"BREAK", tyCode},
	decoder.MFHI:    {"MFHI", tyMove},
	decoder.MTHI:    {"MTHI", tyMoveTo},
	decoder.MFLO:    {"MFLO", tyMove},
	decoder.MTLO:    {"MTLO", tyMoveTo},
	decoder.MULT:    {"MULT", tyMulDiv},
	decoder.MULTU:   {"MULTU", tyMulDiv},
	decoder.DIV:     {"DIV", tyMulDiv},
	decoder.DIVU:    {"DIVU", tyMulDiv},
	decoder.ADD:     {"ADD", tyR3},
	decoder.ADDU:    {"ADDU", tyR3},
	decoder.SUB:     {"SUB", tyR3},
	decoder.SUBU:    {"SUBU", tyR3},
	decoder.AND:     {"AND", tyR3},
	decoder.OR:      {"OR", tyR3},
	decoder.XOR:     {"XOR", tyR3},
	decoder.NOR:     {"NOR", tyR3},
	decoder.SLT:     {"SLT", tyR3},
	decoder.SLTU:    {"SLTU", tyR3},
}

// Disassemble one instruction located at pc.
func Disassemble(pc uint32, raw uint32) string {
	if raw == 0 {
		return "NOP"
	}
	insn := decoder.Instruction(raw)
	var op opcode
	ok := false
	kind, valid := insn.Kind()
	switch {
	case !valid:
	case kind == decoder.SPECIAL:
		if funct, fok := insn.FunctionKind(); fok {
			op, ok = functMap[funct]
		}
	default:
		op, ok = opMap[kind]
	}
	if !ok {
		return undefined(raw)
	}

	rs, rt, rd := insn.Rs(), insn.Rt(), insn.Rd()
	simm := int16(insn.Imm())
	branch := pc + 4 + (insn.ImmSE() << 2)
	name := op.opName
	args := ""
	switch op.opType {
	case tyR3:
		args = fmt.Sprintf("%s,%s,%s", rd, rs, rt)
	case tyShift:
		args = fmt.Sprintf("%s,%s,%d", rd, rt, insn.Shamt())
	case tyShiftV:
		args = fmt.Sprintf("%s,%s,%s", rd, rt, rs)
	case tyJR:
		args = rs.String()
	case tyJALR:
		args = fmt.Sprintf("%s,%s", rd, rs)
	case tyMove:
		args = rd.String()
	case tyMoveTo:
		args = rs.String()
	case tyMulDiv:
		args = fmt.Sprintf("%s,%s", rs, rt)
	case tyCode:
		if code := (raw >> 6) & 0xfffff; code != 0 {
			args = fmt.Sprintf("0x%x", code)
		}
	case tyImmS:
		args = fmt.Sprintf("%s,%s,%d", rt, rs, simm)
	case tyImmU:
		args = fmt.Sprintf("%s,%s,0x%x", rt, rs, insn.Imm())
	case tyLUI:
		args = fmt.Sprintf("%s,0x%x", rt, insn.Imm())
	case tyBr2:
		args = fmt.Sprintf("%s,%s,0x%08x", rs, rt, branch)
	case tyBr1:
		args = fmt.Sprintf("%s,0x%08x", rs, branch)
	case tyJump:
		target := ((pc + 4) & 0xf0000000) | (insn.Target() << 2)
		args = fmt.Sprintf("0x%08x", target)
	case tyMem:
		args = fmt.Sprintf("%s,%d(%s)", rt, simm, rs)
	case tyCopMem:
		args = fmt.Sprintf("$%d,%d(%s)", rt, simm, rs)
	case tyBcond:
		name = "BLTZ"
		if rt&1 != 0 {
			name = "BGEZ"
		}
		if rt&0x1e == 0x10 {
			name += "AL"
		}
		args = fmt.Sprintf("%s,0x%08x", rs, branch)
	case tyCop:
		name, args = coprocessor(insn, op.opName)
	}
	if args == "" {
		return name
	}
	// Make opcode align
	inst := name + "        "
	return inst[:8] + args
}

func coprocessor(insn decoder.Instruction, name string) (string, string) {
	n := name[3:]
	rt, rd := insn.Rt(), insn.Rd()
	switch insn.CopOpcode() {
	case decoder.CopMF:
		return "MFC" + n, fmt.Sprintf("%s,$%d", rt, rd)
	case decoder.CopCF:
		return "CFC" + n, fmt.Sprintf("%s,$%d", rt, rd)
	case decoder.CopMT:
		return "MTC" + n, fmt.Sprintf("%s,$%d", rt, rd)
	case decoder.CopCT:
		return "CTC" + n, fmt.Sprintf("%s,$%d", rt, rd)
	case decoder.CopRFE:
		if n == "0" && insn.Function() == decoder.FunctRFE {
			return "RFE", ""
		}
	}
	return name, fmt.Sprintf("0x%07x", uint32(insn)&0x1ffffff)
}

func undefined(raw uint32) string {
	return fmt.Sprintf("DW      0x%08x", raw)
}

// Format address, raw word and disassembly on one line.
func PrintInst(pc uint32, raw uint32) string {
	return fmt.Sprintf("%08x: %08x  %s", pc, raw, Disassemble(pc, raw))
}
