package master

/*
 * jiffy - Core messages
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
	"github.com/rcornwell/jiffy/emu/cpu"
	"github.com/rcornwell/jiffy/emu/translator"
)

// Messages to the core.
const (
	Start   = 1 + iota // Run from current PC.
	Stop               // Stop after current slice.
	Step               // Run Count blocks then stop.
	Reset              // Reset processor to PC in Addr.
	Flush              // Drop every compiled block.
	Inspect            // Call Inspect with core state.
)

// Packet is sent to the core goroutine, which owns the processor and
// translator. Inspect runs on that goroutine, Done is closed once the
// packet has been handled.
type Packet struct {
	Msg     int
	Count   int
	Addr    uint32
	Inspect func(ctx *cpu.Context, tr *translator.Translator)
	Done    chan struct{}
}
