/*
 * jiffy - Command executer.
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

	"github.com/rcornwell/jiffy/config/machineconfig"
	core "github.com/rcornwell/jiffy/emu/core"
	"github.com/rcornwell/jiffy/emu/cpu"
	disassembler "github.com/rcornwell/jiffy/emu/disassemble"
	"github.com/rcornwell/jiffy/emu/translator"
)

var cmdList = []cmd{
	{Name: "quit", Min: 4, Process: quit},
	{Name: "stop", Min: 3, Process: stop},
	{Name: "continue", Min: 1, Process: cont},
	{Name: "start", Min: 3, Process: start},
	{Name: "step", Min: 2, Process: step},
	{Name: "show", Min: 2, Process: show, Complete: showComplete},
	{Name: "examine", Min: 1, Process: examine},
	{Name: "deposit", Min: 1, Process: deposit},
	{Name: "reset", Min: 3, Process: reset},
	{Name: "flush", Min: 1, Process: flush},
}

// Get optional address, defaulting to configured start.
func (line *cmdLine) getStart() (uint32, error) {
	if line.atEnd() {
		return machineconfig.Machine().PC, nil
	}
	addr, err := line.getHex()
	if err != nil {
		return 0, err
	}
	if addr&3 != 0 {
		return 0, fmt.Errorf("address %08x not word aligned", addr)
	}
	return addr, line.noMore()
}

// Report anything left on the line.
func (line *cmdLine) noMore() error {
	if !line.atEnd() {
		return errors.New("extra text on line: " + line.line[line.pos:])
	}
	return nil
}

// Handle commands that quit simulation.
func quit(_ *cmdLine, _ *core.Core) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}

// Stop the CPU.
func stop(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Stop")
	if err := line.noMore(); err != nil {
		return false, err
	}
	core.SendStop()
	printPC(core)
	return false, nil
}

// Continue CPU from where it left off.
func cont(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Continue")
	if err := line.noMore(); err != nil {
		return false, err
	}
	core.SendStart()
	return false, nil
}

// Start the CPU from reset.
func start(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Start")
	addr, err := line.getStart()
	if err != nil {
		return false, err
	}
	core.SendReset(addr)
	core.SendStart()
	return false, nil
}

// Run a number of blocks then show where CPU stopped.
func step(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Step")
	count := uint32(1)
	if !line.atEnd() {
		var err error
		count, err = line.getNumber()
		if err != nil {
			return false, err
		}
		if count == 0 {
			return false, errors.New("step count must be positive")
		}
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	core.SendStep(int(count))
	printPC(core)
	return false, nil
}

// Print next instruction to run.
func printPC(core *core.Core) {
	core.Inspect(func(ctx *cpu.Context, _ *translator.Translator) {
		fmt.Fprintln(out, disassembler.PrintInst(ctx.PC, ctx.Bus().Read32(ctx.PC)))
	})
}

// Reset CPU without starting it.
func reset(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Reset")
	addr, err := line.getStart()
	if err != nil {
		return false, err
	}
	core.SendReset(addr)
	return false, nil
}

// Drop all compiled code.
func flush(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Flush")
	if err := line.noMore(); err != nil {
		return false, err
	}
	core.SendFlush()
	return false, nil
}

var showList = map[string]func(*cpu.Context, *translator.Translator) string{
	"regs":  showRegs,
	"cop0":  showCop0,
	"cache": showCache,
}

// Process the show command.
func show(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Show")
	what := line.getWord()
	fn, ok := showList[what]
	if !ok {
		return false, errors.New("show must be regs, cop0 or cache")
	}
	if err := line.noMore(); err != nil {
		return false, err
	}
	var text string
	core.Inspect(func(ctx *cpu.Context, tr *translator.Translator) {
		text = fn(ctx, tr)
	})
	fmt.Fprint(out, text)
	return false, nil
}
