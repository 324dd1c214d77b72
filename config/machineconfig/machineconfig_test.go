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
	"os"
	"path/filepath"
	"strings"
	"testing"

	config "github.com/rcornwell/jiffy/config/configparser"
	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/memory"
)

func TestMachineLines(t *testing.T) {
	Reset()
	defer Reset()

	cfg := "# test machine\n" +
		"BIOS scph1001.bin\n" +
		"LOAD 80010000 FILE=prog.bin\n" +
		"load 80020000 file=\"data file.bin\"\n" +
		"PC 80010000\n" +
		"MAXBLOCK 64\n" +
		"AUTOSTART\n"
	err := config.LoadConfig(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	m := Machine()
	if m.BIOS != "scph1001.bin" {
		t.Errorf("BIOS not correct got: %s", m.BIOS)
	}
	if len(m.Loads) != 2 {
		t.Fatalf("Loads not correct got: %d expected: 2", len(m.Loads))
	}
	if m.Loads[0].Addr != 0x80010000 || m.Loads[0].File != "prog.bin" {
		t.Errorf("Load not correct got: %08x %s", m.Loads[0].Addr, m.Loads[0].File)
	}
	if m.Loads[1].File != "data file.bin" {
		t.Errorf("Quoted load not correct got: %s", m.Loads[1].File)
	}
	if m.PC != 0x80010000 {
		t.Errorf("PC not correct got: %08x expected: %08x", m.PC, 0x80010000)
	}
	if m.MaxBlock != 64 {
		t.Errorf("MAXBLOCK not correct got: %d expected: %d", m.MaxBlock, 64)
	}
	if !m.AutoStart {
		t.Errorf("AUTOSTART not set")
	}
}

func TestDefaults(t *testing.T) {
	Reset()
	m := Machine()
	if m.PC != cpu.ResetVector || m.MaxBlock != 0 || m.AutoStart || m.BIOS != "" {
		t.Errorf("Defaults not correct got: %+v", m)
	}
}

func TestMachineErrors(t *testing.T) {
	tests := []string{
		"PC 80010002\n",
		"PC start\n",
		"MAXBLOCK 0\n",
		"MAXBLOCK many\n",
		"LOAD 80010000\n",
		"LOAD 80010000 NAME=x\n",
		"BIOS a.bin\nBIOS b.bin\n",
	}
	for _, test := range tests {
		Reset()
		if err := config.LoadConfig(strings.NewReader(test)); err == nil {
			t.Errorf("Config accepted: %q", test)
		}
	}
	Reset()
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "prog.bin")
	if err := os.WriteFile(prog, []byte{0x07, 0x00, 0x08, 0x24}, 0o644); err != nil {
		t.Fatal(err)
	}
	mem := memory.New()
	s := Settings{Loads: []Load{{Addr: 0x80010000, File: prog}}}
	if err := s.Apply(mem); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if r := mem.Read32(0x80010000); r != 0x24080007 {
		t.Errorf("Image not loaded got: %08x expected: %08x", r, 0x24080007)
	}

	s = Settings{BIOS: filepath.Join(dir, "missing.bin")}
	if err := s.Apply(mem); err == nil {
		t.Errorf("Missing BIOS accepted")
	}
}
