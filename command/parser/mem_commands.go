/*
 * jiffy - Memory commands.
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	core "github.com/rcornwell/jiffy/emu/core"
	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/decoder"
	disassembler "github.com/rcornwell/jiffy/emu/disassemble"
	"github.com/rcornwell/jiffy/emu/translator"
	"github.com/rcornwell/jiffy/util/hex"
)

// Most words examine will show.
const maxExamine = 4096

// Display memory with disassembly.
func examine(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Examine")
	addr, err := line.getHex()
	if err != nil {
		return false, errors.New("examine requires an address")
	}
	count := uint32(1)
	if !line.atEnd() {
		count, err = line.getNumber()
		if err != nil {
			return false, err
		}
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	if count == 0 || count > maxExamine {
		return false, fmt.Errorf("examine count must be 1 to %d", maxExamine)
	}
	addr &^= 3

	var str strings.Builder
	core.Inspect(func(ctx *cpu.Context, _ *translator.Translator) {
		for i := range count {
			pc := addr + i*4
			str.WriteString(disassembler.PrintInst(pc, ctx.Bus().Read32(pc)))
			str.WriteByte('\n')
		}
	})
	fmt.Fprint(out, str.String())
	return false, nil
}

// Store a word into memory, dropping any code compiled from it.
func deposit(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Deposit")
	addr, err := line.getHex()
	if err != nil {
		return false, errors.New("deposit requires an address")
	}
	if addr&3 != 0 {
		return false, fmt.Errorf("address %08x not word aligned", addr)
	}
	value, err := line.getHex()
	if err != nil {
		return false, errors.New("deposit requires a hex value")
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	core.Inspect(func(ctx *cpu.Context, tr *translator.Translator) {
		ctx.Bus().Write32(addr, value)
		if n := tr.Invalidate(addr, 4); n != 0 {
			slog.Debug("deposit invalidated blocks", "addr", hex.Word(addr), "count", n)
		}
	})
	return false, nil
}

// General registers, four to a line.
func showRegs(ctx *cpu.Context, _ *translator.Translator) string {
	var str strings.Builder
	for i := range ctx.Regs {
		name := decoder.Register(i).String()
		fmt.Fprintf(&str, "%-6s", name)
		hex.FormatWord(&str, ctx.Regs[i:i+1])
		if i%4 == 3 {
			str.WriteByte('\n')
		}
	}
	str.WriteString("pc    ")
	hex.FormatWord(&str, []uint32{ctx.PC})
	str.WriteString("hi    ")
	hex.FormatWord(&str, []uint32{ctx.HI})
	str.WriteString("lo    ")
	hex.FormatWord(&str, []uint32{ctx.LO})
	str.WriteString("state ")
	str.WriteString(ctx.State().String())
	str.WriteByte('\n')
	return str.String()
}

// System control registers.
func showCop0(ctx *cpu.Context, _ *translator.Translator) string {
	c := ctx.Cop0
	var str strings.Builder
	str.WriteString("sr    ")
	hex.FormatWord(&str, []uint32{uint32(c.Status)})
	str.WriteString("cause ")
	hex.FormatWord(&str, []uint32{uint32(c.Cause)})
	str.WriteString("epc   ")
	hex.FormatWord(&str, []uint32{c.EPC})
	str.WriteString("bad   ")
	hex.FormatWord(&str, []uint32{c.BadVaddr})
	str.WriteByte('\n')
	fmt.Fprintf(&str, "exception %s delay %v mode %02x ie %v user %v\n", c.Cause.Exception(),
		c.Cause.BranchDelay(), c.Status.Mode(), c.Status.InterruptsEnabled(), c.Status.UserMode())
	return str.String()
}

// Compiled blocks in address order.
func showCache(_ *cpu.Context, tr *translator.Translator) string {
	var str strings.Builder
	blocks := tr.Cache().AsList()
	fmt.Fprintf(&str, "%d blocks\n", len(blocks))
	for _, b := range blocks {
		fmt.Fprintf(&str, "%08x-%08x %d instructions\n", b.Start, b.End()-1, b.Len/decoder.InstructionSize)
	}
	return str.String()
}
