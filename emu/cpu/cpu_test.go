package cpu

/*
 * jiffy - MIPS R3000A execution context
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

type testBus struct {
	mem map[uint32]uint32
}

func newTestBus() *testBus {
	return &testBus{mem: map[uint32]uint32{}}
}

func (b *testBus) Read8(addr uint32) uint8 {
	return uint8(b.mem[addr&^3] >> ((addr & 3) * 8))
}

func (b *testBus) Read16(addr uint32) uint16 {
	return uint16(b.mem[addr&^3] >> ((addr & 2) * 8))
}

func (b *testBus) Read32(addr uint32) uint32 {
	return b.mem[addr]
}

func (b *testBus) Write8(addr uint32, value uint8) {
	shift := (addr & 3) * 8
	w := b.mem[addr&^3] &^ (0xff << shift)
	b.mem[addr&^3] = w | (uint32(value) << shift)
}

func (b *testBus) Write16(addr uint32, value uint16) {
	shift := (addr & 2) * 8
	w := b.mem[addr&^3] &^ (0xffff << shift)
	b.mem[addr&^3] = w | (uint32(value) << shift)
}

func (b *testBus) Write32(addr uint32, value uint32) {
	b.mem[addr] = value
}

// Leaving an exception restores everything but the discarded oldest level.
func TestStatusRoundTrip(t *testing.T) {
	for s := range 64 {
		for _, high := range []uint32{0, statusBEV | statusIsC, 0xffffffc0} {
			sr := StatusRegister(high | uint32(s))
			got := sr.EnterException().LeaveException()
			// Oldest pair is lost on entry, it can not come back.
			expect := StatusRegister(uint32(sr) &^ 0x30)
			if got != expect {
				t.Errorf("Status round trip not correct got: %08x expected: %08x", got, expect)
			}
			enter := sr.EnterException()
			if uint32(enter)&^statusMode != uint32(sr)&^statusMode {
				t.Errorf("Status high bits changed got: %08x expected: %08x", enter, sr)
			}
			if enter.Mode()&3 != 0 {
				t.Errorf("Status entry not kernel mode got: %02x", enter.Mode())
			}
			if uint32(enter.Mode()) != (uint32(s)<<2)&0x3f {
				t.Errorf("Status entry mode not correct got: %02x expected: %02x", enter.Mode(), (s<<2)&0x3f)
			}
		}
	}
}

// Stack values fitting in the lower two levels survive a round trip.
func TestStatusLeaveEnter(t *testing.T) {
	for s := range 16 {
		sr := StatusRegister(s)
		if got := sr.EnterException().LeaveException(); got != sr {
			t.Errorf("Status not correct got: %02x expected: %02x", got, s)
		}
	}
	for s := range 64 {
		sr := StatusRegister((s << 2) & 0x3f)
		if got := sr.LeaveException().EnterException(); got != sr {
			t.Errorf("Status not correct got: %02x expected: %02x", got, sr)
		}
	}
}

func TestCause(t *testing.T) {
	kinds := []Exception{
		Interrupt, UnalignedLoad, UnalignedStore, Syscall,
		Break, IllegalInstruction, CoprocessorError, Overflow,
	}
	for _, k := range kinds {
		for _, delayed := range []bool{false, true} {
			c := NewCause(delayed, k)
			expect := uint32(k) << 2
			if delayed {
				expect |= 0x80000000
			}
			if uint32(c) != expect {
				t.Errorf("Cause not correct got: %08x expected: %08x", c, expect)
			}
			if c.Exception() != k || c.BranchDelay() != delayed {
				t.Errorf("Cause decode not correct got: %s %v expected: %s %v",
					c.Exception(), c.BranchDelay(), k, delayed)
			}
		}
	}
}

func TestRaiseException(t *testing.T) {
	ctx := NewContext(newTestBus(), 0x80010000)

	// Reset state has boot vectors selected.
	ctx.Cop0.Status = StatusRegister(statusBEV | 0x05)
	ctx.Cop0.Cause = CauseRegister(0xffffffff)
	ctx.RaiseException(0x80010010, false, Syscall)
	if ctx.PC != 0xbfc00180 {
		t.Errorf("Vector not correct got: %08x expected: %08x", ctx.PC, 0xbfc00180)
	}
	if ctx.Cop0.EPC != 0x80010010 {
		t.Errorf("EPC not correct got: %08x expected: %08x", ctx.Cop0.EPC, 0x80010010)
	}
	if uint32(ctx.Cop0.Cause) != 0x20 {
		t.Errorf("Cause not correct got: %08x expected: %08x", ctx.Cop0.Cause, 0x20)
	}
	if uint32(ctx.Cop0.Status) != statusBEV|0x14 {
		t.Errorf("Status not correct got: %08x expected: %08x", ctx.Cop0.Status, statusBEV|0x14)
	}

	ctx.Cop0.Status = StatusRegister(0x01)
	ctx.RaiseException(0x80010020, true, Overflow)
	if ctx.PC != 0x80000080 {
		t.Errorf("Vector not correct got: %08x expected: %08x", ctx.PC, 0x80000080)
	}
	if uint32(ctx.Cop0.Cause) != 0x80000030 {
		t.Errorf("Cause not correct got: %08x expected: %08x", ctx.Cop0.Cause, 0x80000030)
	}

	ctx.LeaveException()
	if uint32(ctx.Cop0.Status) != 0x01 {
		t.Errorf("Status not correct got: %08x expected: %08x", ctx.Cop0.Status, 0x01)
	}
	if ctx.Cop0.EPC != 0x80010020 || uint32(ctx.Cop0.Cause) != 0x80000030 {
		t.Errorf("Leave modified EPC or Cause got: %08x %08x", ctx.Cop0.EPC, ctx.Cop0.Cause)
	}
}

func TestRegisterZero(t *testing.T) {
	ctx := NewContext(newTestBus(), 0)
	ctx.SetRegister(0, 0x1234)
	if ctx.Register(0) != 0 {
		t.Errorf("Register zero not correct got: %08x expected: %08x", ctx.Register(0), 0)
	}
	ctx.SetRegister(8, 0x1234)
	if ctx.Register(8) != 0x1234 {
		t.Errorf("Register not correct got: %08x expected: %08x", ctx.Register(8), 0x1234)
	}
}

func TestCop0Registers(t *testing.T) {
	var c Cop0
	c.SetRegister(RegStatus, 0x10000001)
	c.SetRegister(RegCause, 0x24)
	c.SetRegister(RegEPC, 0x80001000)
	c.SetRegister(RegPRId, 0xffffffff)
	c.SetRegister(RegBadVaddr, 0xffffffff)
	if c.Register(RegStatus) != 0x10000001 {
		t.Errorf("Status not correct got: %08x expected: %08x", c.Register(RegStatus), 0x10000001)
	}
	if c.Register(RegCause) != 0x24 {
		t.Errorf("Cause not correct got: %08x expected: %08x", c.Register(RegCause), 0x24)
	}
	if c.Register(RegEPC) != 0x80001000 {
		t.Errorf("EPC not correct got: %08x expected: %08x", c.Register(RegEPC), 0x80001000)
	}
	if c.Register(RegPRId) != 2 {
		t.Errorf("PRId not correct got: %08x expected: %08x", c.Register(RegPRId), 2)
	}
	if c.Register(RegBadVaddr) != 0 {
		t.Errorf("BadVaddr should be read only got: %08x", c.Register(RegBadVaddr))
	}
	if !c.Status.Usable(0) || c.Status.Usable(2) {
		t.Errorf("Coprocessor usable bits not correct got: %08x", c.Status)
	}
	if c.Register(3) != 0 {
		t.Errorf("Unknown register not zero got: %08x", c.Register(3))
	}
}

func TestCacheIsolation(t *testing.T) {
	bus := newTestBus()
	ctx := NewContext(bus, 0)
	ctx.Write32(0x100, 0xdeadbeef)
	ctx.Cop0.Status = StatusRegister(statusIsC)
	ctx.Write32(0x100, 0)
	ctx.Write16(0x100, 0)
	ctx.Write8(0x100, 0)
	if bus.mem[0x100] != 0xdeadbeef {
		t.Errorf("Isolated store reached memory got: %08x expected: %08x", bus.mem[0x100], 0xdeadbeef)
	}
	ctx.Cop0.Status = 0
	ctx.Write8(0x101, 0x11)
	if bus.mem[0x100] != 0xdead11ef {
		t.Errorf("Byte store not correct got: %08x expected: %08x", bus.mem[0x100], 0xdead11ef)
	}
}

func TestModeBits(t *testing.T) {
	tests := []struct {
		sr         uint32
		ie, user   bool
		cop0Usable bool
	}{
		{0x00000000, false, false, true},
		{0x00000001, true, false, true},
		{0x00000002, false, true, false},
		{0x00000003, true, true, false},
		{0x10000002, false, true, true},
		{0x0000000c, false, false, true},
	}
	for _, test := range tests {
		s := StatusRegister(test.sr)
		if s.InterruptsEnabled() != test.ie {
			t.Errorf("Interrupt enable %08x not correct got: %v expected: %v", test.sr, s.InterruptsEnabled(), test.ie)
		}
		if s.UserMode() != test.user {
			t.Errorf("User mode %08x not correct got: %v expected: %v", test.sr, s.UserMode(), test.user)
		}
		if s.Cop0Usable() != test.cop0Usable {
			t.Errorf("COP0 usable %08x not correct got: %v expected: %v", test.sr, s.Cop0Usable(), test.cop0Usable)
		}
	}
}

func TestState(t *testing.T) {
	ctx := NewContext(newTestBus(), ResetVector)
	if ctx.State() != Initial {
		t.Errorf("State not correct got: %s expected: %s", ctx.State(), Initial)
	}
	ctx.SetState(Running)
	if !ctx.Running() {
		t.Errorf("State not correct got: %s expected: %s", ctx.State(), Running)
	}
	ctx.Close()
	if ctx.State() != Closed {
		t.Errorf("State not correct got: %s expected: %s", ctx.State(), Closed)
	}
	ctx.Regs[5] = 1
	ctx.Reset(ResetVector)
	if ctx.State() != Initial || ctx.Regs[5] != 0 || ctx.PC != ResetVector {
		t.Errorf("Reset not correct got: %s %08x %08x", ctx.State(), ctx.Regs[5], ctx.PC)
	}
	if !ctx.Cop0.Status.BootVectors() {
		t.Errorf("Reset should select boot vectors got: %08x", ctx.Cop0.Status)
	}
}
