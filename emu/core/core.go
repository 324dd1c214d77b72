package core

/*
 * jiffy - Core process
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
	"log/slog"
	"sync"
	"time"

	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/master"
	"github.com/rcornwell/jiffy/emu/translator"
	"github.com/rcornwell/jiffy/util/hex"
)

// Blocks run between checks for messages.
const DefaultSlice = 1024

type Core struct {
	wg      sync.WaitGroup
	done    chan struct{} // Signal to shutdown simulator.
	running bool          // Indicate when simulator should run or not.
	steps   int           // Blocks left before stopping, 0 if free running.
	slice   int
	ctx     *cpu.Context
	tr      *translator.Translator
	Master  chan master.Packet
	Halted  chan struct{} // Signalled when guest closes the context.
}

// Create instance of CPU.
func NewCPU(master chan master.Packet, ctx *cpu.Context, tr *translator.Translator) *Core {
	return &Core{
		Master: master,
		done:   make(chan struct{}),
		Halted: make(chan struct{}, 1),
		slice:  DefaultSlice,
		ctx:    ctx,
		tr:     tr,
	}
}

// Start CPU running.
func (core *Core) Start() {
	core.wg.Add(1)
	defer core.wg.Done()
	for {
		if core.running {
			core.run()
			select {
			case <-core.done:
				return
			case packet := <-core.Master:
				core.processPacket(packet)
			default:
			}
			continue
		}

		select {
		case <-core.done:
			return
		case packet := <-core.Master:
			core.processPacket(packet)
		}
	}
}

// Run one slice of blocks.
func (core *Core) run() {
	n := core.slice
	if core.steps > 0 {
		n = min(n, core.steps)
	}
	ran := core.tr.ExecuteBlocks(core.ctx, n)
	if core.steps > 0 {
		core.steps -= ran
		if core.steps <= 0 {
			core.steps = 0
			core.running = false
		}
	}
	if !core.ctx.Running() {
		core.running = false
		core.steps = 0
		slog.Info("CPU halted", "pc", hex.Word(core.ctx.PC))
		select {
		case core.Halted <- struct{}{}:
		default:
		}
	}
}

// Stop a running server.
func (core *Core) Stop() {
	slog.Info("Shutting down CPU")
	close(core.done)
	done := make(chan struct{})
	go func() {
		core.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for CPU to finish.")
		return
	}
}

func (core *Core) send(packet master.Packet) {
	select {
	case core.Master <- packet:
	case <-core.done:
	}
}

// Start CPU.
func (core *Core) SendStart() {
	core.send(master.Packet{Msg: master.Start})
}

// Stop CPU.
func (core *Core) SendStop() {
	core.send(master.Packet{Msg: master.Stop})
}

// Run n blocks.
func (core *Core) SendStep(n int) {
	core.send(master.Packet{Msg: master.Step, Count: n})
}

// Reset CPU to start at pc.
func (core *Core) SendReset(pc uint32) {
	core.send(master.Packet{Msg: master.Reset, Addr: pc})
}

// Drop compiled code.
func (core *Core) SendFlush() {
	core.send(master.Packet{Msg: master.Flush})
}

// Run fn on the core goroutine and wait for it to finish. Returns false
// if the core has been shut down.
func (core *Core) Inspect(fn func(ctx *cpu.Context, tr *translator.Translator)) bool {
	packet := master.Packet{Msg: master.Inspect, Inspect: fn, Done: make(chan struct{})}
	select {
	case core.Master <- packet:
	case <-core.done:
		return false
	}
	select {
	case <-packet.Done:
		return true
	case <-core.done:
		return false
	}
}

// Process a packet sent to system simulation.
func (core *Core) processPacket(packet master.Packet) {
	switch packet.Msg {
	case master.Start:
		core.ctx.SetState(cpu.Running)
		core.steps = 0
		core.running = true
	case master.Stop:
		core.running = false
		core.steps = 0
	case master.Step:
		core.ctx.SetState(cpu.Running)
		core.steps = max(packet.Count, 1)
		core.running = true
	case master.Reset:
		core.ctx.Reset(packet.Addr)
		core.running = false
		core.steps = 0
	case master.Flush:
		core.tr.Flush()
	case master.Inspect:
		if packet.Inspect != nil {
			packet.Inspect(core.ctx, core.tr)
		}
	default:
		slog.Warn("unknown core message", "msg", packet.Msg)
	}
	if packet.Done != nil {
		close(packet.Done)
	}
}
