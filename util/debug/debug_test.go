package debug

/*
 * jiffy - Debug output
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
	"bytes"
	"testing"
)

func TestDebugf(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Debugf("JIT", 0x1, 0x2, "hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("Masked message written got: %q", buf.String())
	}
	Debugf("JIT", 0x3, 0x2, "shown %d", 2)
	if buf.String() != "JIT: shown 2\n" {
		t.Errorf("Message not correct got: %q expected: %q", buf.String(), "JIT: shown 2\n")
	}
	buf.Reset()
	DebugPCf(0xbfc00000, 0x1, 0x1, "block %d", 3)
	if buf.String() != "bfc00000: block 3\n" {
		t.Errorf("Message not correct got: %q expected: %q", buf.String(), "bfc00000: block 3\n")
	}
}
