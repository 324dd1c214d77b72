package trace

/*
 * jiffy - Translator event tracing
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
	"errors"
	"log/slog"

	disassembler "github.com/rcornwell/jiffy/emu/disassemble"
	"github.com/rcornwell/jiffy/util/debug"
	"github.com/rcornwell/jiffy/util/hex"
)

// Observer is told about notable translator events.
type Observer interface {
	// Instruction recognised but has no translation.
	OnUnimplemented(pc uint32, insn uint32)
	// Encoding is reserved.
	OnIllegal(pc uint32, insn uint32)
	// No compiled block for address.
	OnCacheMiss(addr uint32)
	// Block compiled.
	OnCompiled(start uint32, length uint32)
}

// Nop ignores all events.
type Nop struct{}

func (Nop) OnUnimplemented(uint32, uint32) {}
func (Nop) OnIllegal(uint32, uint32)       {}
func (Nop) OnCacheMiss(uint32)             {}
func (Nop) OnCompiled(uint32, uint32)      {}

const (
	// Debug options.
	debugCompile = 1 << iota
	debugMiss
	debugUnimpl
	debugIllegal
)

var debugOption = map[string]int{
	"COMPILE": debugCompile,
	"MISS":    debugMiss,
	"UNIMPL":  debugUnimpl,
	"ILLEGAL": debugIllegal,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("jit debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Logger reports events to slog and the debug file.
type Logger struct{}

func (Logger) OnUnimplemented(pc uint32, insn uint32) {
	slog.Warn("unimplemented instruction", "pc", hex.Word(pc), "insn", disassembler.Disassemble(pc, insn))
	debug.DebugPCf(pc, debugMsk, debugUnimpl, "unimplemented %08x %s", insn, disassembler.Disassemble(pc, insn))
}

func (Logger) OnIllegal(pc uint32, insn uint32) {
	slog.Warn("illegal instruction", "pc", hex.Word(pc), "insn", hex.Word(insn))
	debug.DebugPCf(pc, debugMsk, debugIllegal, "illegal %08x", insn)
}

func (Logger) OnCacheMiss(addr uint32) {
	debug.DebugPCf(addr, debugMsk, debugMiss, "cache miss")
}

func (Logger) OnCompiled(start uint32, length uint32) {
	debug.DebugPCf(start, debugMsk, debugCompile, "compiled %d bytes", length)
}
