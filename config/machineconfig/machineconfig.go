package machineconfig

/*
 * jiffy - Machine configuration
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
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	config "github.com/rcornwell/jiffy/config/configparser"
	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/memory"
)

// Image to load into RAM.
type Load struct {
	Addr uint32
	File string
}

// Machine settings collected from the configuration file.
type Settings struct {
	BIOS      string // BIOS image, empty for none.
	Loads     []Load // Images loaded after the BIOS.
	PC        uint32 // Starting address.
	MaxBlock  int    // Instructions per block, 0 for default.
	AutoStart bool   // Run without waiting for console.
}

var machine = defaults()

func defaults() Settings {
	return Settings{PC: cpu.ResetVector}
}

// register options on initialize.
func init() {
	config.RegisterFile("BIOS", setBIOS)
	config.RegisterModel("LOAD", config.TypeModel, addLoad)
	config.RegisterOption("PC", setPC)
	config.RegisterOption("MAXBLOCK", setMaxBlock)
	config.RegisterSwitch("AUTOSTART", setAutoStart)
}

// Current settings.
func Machine() Settings {
	return machine
}

// Return to default settings.
func Reset() {
	machine = defaults()
}

func setBIOS(_ uint32, fileName string, _ []config.Option) error {
	if machine.BIOS != "" {
		return errors.New("BIOS already given: " + machine.BIOS)
	}
	machine.BIOS = fileName
	return nil
}

func addLoad(addr uint32, _ string, options []config.Option) error {
	load := Load{Addr: addr}
	for _, opt := range options {
		switch strings.ToUpper(opt.Name) {
		case "FILE":
			if opt.EqualOpt == "" {
				return errors.New("LOAD FILE requires a file name")
			}
			load.File = opt.EqualOpt
		default:
			return errors.New("LOAD option invalid: " + opt.Name)
		}
	}
	if load.File == "" {
		return fmt.Errorf("LOAD %08x requires FILE=", addr)
	}
	machine.Loads = append(machine.Loads, load)
	return nil
}

func setPC(addr uint32, value string, _ []config.Option) error {
	if addr == config.NoAddr {
		return errors.New("PC must be hex address: " + value)
	}
	if addr&3 != 0 {
		return fmt.Errorf("PC %08x not word aligned", addr)
	}
	machine.PC = addr
	return nil
}

func setMaxBlock(_ uint32, value string, _ []config.Option) error {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return errors.New("MAXBLOCK must be a positive number: " + value)
	}
	machine.MaxBlock = n
	return nil
}

func setAutoStart(uint32, string, []config.Option) error {
	machine.AutoStart = true
	return nil
}

// Load BIOS and images into memory.
func (s Settings) Apply(mem *memory.Memory) error {
	if s.BIOS != "" {
		if err := mem.LoadBIOS(s.BIOS); err != nil {
			return err
		}
		slog.Info("BIOS loaded", "file", s.BIOS)
	}
	for _, load := range s.Loads {
		if err := mem.LoadFile(load.Addr, load.File); err != nil {
			return fmt.Errorf("load %s: %w", load.File, err)
		}
		slog.Info("Image loaded", "file", load.File, "addr", fmt.Sprintf("%08x", load.Addr))
	}
	return nil
}
