package memory

/*
 * jiffy - PlayStation memory bus
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
	"os"

	"github.com/rcornwell/jiffy/util/debug"
)

// Region is a span of physical address space, [Base, Base+Size).
type Region struct {
	Base uint32
	Size uint32
}

// Check if physical address is in region.
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Base && addr-r.Base < r.Size
}

// Offset of address from start of region.
func (r Region) Offset(addr uint32) uint32 {
	return addr - r.Base
}

var (
	RAM        = Region{0x00000000, 2 * 1024 * 1024}
	Scratchpad = Region{0x1f800000, 1024}
	GPU        = Region{0x1f801810, 8}
	BIOS       = Region{0x1fc00000, 512 * 1024}
)

// Segment masks by top three address bits. KUSEG and KSEG2 pass
// through, KSEG0 and KSEG1 fold onto physical memory.
var segmentMask = [8]uint32{
	0xffffffff, // KUSEG
	0xffffffff, // KUSEG
	0xffffffff, // KUSEG
	0xffffffff, // KUSEG
	0x7fffffff, // KSEG0
	0x1fffffff, // KSEG1
	0xffffffff, // KSEG2
	0xffffffff, // KSEG2
}

// Translate virtual address to physical.
func MaskSegment(addr uint32) uint32 {
	return addr & segmentMask[addr>>29]
}

// Power on contents of RAM.
const ramFill uint32 = 0xcacacaca

// GPU status with command, VRAM and DMA ready bits set, enough for the
// BIOS to get past its polling loops.
const gpuReady uint32 = 0x1c000000

const (
	// Debug options.
	debugUnmapped = 1 << iota
)

var debugOption = map[string]int{
	"UNMAPPED": debugUnmapped,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("memory debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Memory is the bus seen by the processor. Storage is held as words,
// narrower accesses work on byte lanes within a word.
type Memory struct {
	ram     []uint32
	bios    []uint32
	scratch []uint32
}

// Create bus with RAM at power on state and an empty BIOS.
func New() *Memory {
	m := &Memory{
		ram:     make([]uint32, RAM.Size/4),
		bios:    make([]uint32, BIOS.Size/4),
		scratch: make([]uint32, Scratchpad.Size/4),
	}
	m.Reset()
	return m
}

// Clear RAM and scratchpad, BIOS is kept.
func (m *Memory) Reset() {
	for i := range m.ram {
		m.ram[i] = ramFill
	}
	clear(m.scratch)
}

// Find backing store for address. Returns nil if unmapped.
func (m *Memory) lookup(addr uint32) ([]uint32, uint32, bool) {
	phys := MaskSegment(addr)
	switch {
	case RAM.Contains(phys):
		return m.ram, RAM.Offset(phys), true
	case BIOS.Contains(phys):
		return m.bios, BIOS.Offset(phys), false
	case Scratchpad.Contains(phys):
		return m.scratch, Scratchpad.Offset(phys), true
	}
	return nil, 0, false
}

// Read word holding address.
func (m *Memory) word(addr uint32) uint32 {
	store, off, _ := m.lookup(addr)
	if store == nil {
		if GPU.Contains(MaskSegment(addr)) && GPU.Offset(MaskSegment(addr)) == 4 {
			return gpuReady
		}
		debug.Debugf("MEMORY", debugMsk, debugUnmapped, "read %08x unmapped", addr)
		return 0
	}
	return store[off>>2]
}

// Update word holding address under mask.
func (m *Memory) setWordMask(addr, data, mask uint32) {
	store, off, writable := m.lookup(addr)
	if !writable {
		debug.Debugf("MEMORY", debugMsk, debugUnmapped, "write %08x unmapped", addr)
		return
	}
	off >>= 2
	store[off] &= ^mask
	store[off] |= data & mask
}

func (m *Memory) Read8(addr uint32) uint8 {
	return uint8(m.word(addr) >> ((addr & 3) * 8))
}

func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.word(addr) >> ((addr & 2) * 8))
}

func (m *Memory) Read32(addr uint32) uint32 {
	return m.word(addr)
}

func (m *Memory) Write8(addr uint32, value uint8) {
	shift := (addr & 3) * 8
	m.setWordMask(addr, uint32(value)<<shift, 0xff<<shift)
}

func (m *Memory) Write16(addr uint32, value uint16) {
	shift := (addr & 2) * 8
	m.setWordMask(addr, uint32(value)<<shift, 0xffff<<shift)
}

func (m *Memory) Write32(addr uint32, value uint32) {
	m.setWordMask(addr, value, 0xffffffff)
}

// Copy little endian bytes into word store starting at offset.
func fill(store []uint32, off uint32, data []byte) {
	for i, b := range data {
		a := off + uint32(i)
		shift := (a & 3) * 8
		store[a>>2] = (store[a>>2] &^ (0xff << shift)) | uint32(b)<<shift
	}
}

// Install BIOS image, which must be exactly the size of the ROM.
func (m *Memory) SetBIOS(image []byte) error {
	if uint32(len(image)) != BIOS.Size {
		return fmt.Errorf("invalid BIOS image size %d, expected %d", len(image), BIOS.Size)
	}
	fill(m.bios, 0, image)
	return nil
}

// Load BIOS image from file.
func (m *Memory) LoadBIOS(fileName string) error {
	image, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("unable to read BIOS: %w", err)
	}
	return m.SetBIOS(image)
}

// Copy data into RAM at address.
func (m *Memory) Deposit(addr uint32, data []byte) error {
	phys := MaskSegment(addr)
	if !RAM.Contains(phys) || uint64(RAM.Offset(phys))+uint64(len(data)) > uint64(RAM.Size) {
		return fmt.Errorf("load at %08x size %d outside of RAM", addr, len(data))
	}
	fill(m.ram, RAM.Offset(phys), data)
	return nil
}

// Load a raw binary file into RAM at address.
func (m *Memory) LoadFile(addr uint32, fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("unable to read file: %w", err)
	}
	return m.Deposit(addr, data)
}
