/*
 * jiffy - Command parser.
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
	"io"
	"os"
	"strings"
	"unicode"

	core "github.com/rcornwell/jiffy/emu/core"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, *core.Core) (bool, error)
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// Where command output goes.
var out io.Writer = os.Stdout

// Execute the command line given.
func ProcessCommand(commandLine string, core *core.Core) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord()
	if command == "" {
		if !line.isEOL() {
			return false, errors.New("command not found: " + strings.TrimSpace(commandLine))
		}
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].Process(&line, core)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) > len(match.Name) {
		return false
	}
	return strings.HasPrefix(match.Name, command) && len(command) >= match.Min
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	// If command empty just return.
	if command == "" {
		return []cmd{}
	}

	// Try and match one command.
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// Check for end of line after skipping space.
func (line *cmdLine) atEnd() bool {
	line.skipSpace()
	return line.isEOL()
}

// Return current character and advance to next.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Collect characters up to next space.
func (line *cmdLine) getToken() string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse a decimal number.
func (line *cmdLine) getNumber() (uint32, error) {
	pos := line.pos
	token := line.getToken()
	if token == "" {
		line.pos = pos
		return 0, errors.New("not a number")
	}

	value := uint32(0)
	for _, by := range []byte(token) {
		if !unicode.IsDigit(rune(by)) {
			line.pos = pos
			return 0, errors.New("not a number: " + token)
		}
		value = (value * 10) + uint32(by-'0')
	}
	return value, nil
}

const hexDigits = "0123456789abcdef"

// Parse hex number, with optional 0x.
func (line *cmdLine) getHex() (uint32, error) {
	pos := line.pos
	token := strings.ToLower(line.getToken())
	token = strings.TrimPrefix(token, "0x")
	if token == "" || len(token) > 8 {
		line.pos = pos
		return 0, errors.New("not a hex number")
	}

	value := uint32(0)
	for _, by := range token {
		digit := strings.IndexRune(hexDigits, by)
		if digit == -1 {
			line.pos = pos
			return 0, errors.New("not a hex number: " + token)
		}
		value = (value << 4) + uint32(digit)
	}
	return value, nil
}

// Parse a word, a letter followed by letters or digits, returned in
// lower case. Returns empty string and leaves position alone if next
// token is not a word.
func (line *cmdLine) getWord() string {
	pos := line.pos
	token := line.getToken()
	for i, by := range token {
		if !unicode.IsLetter(by) && (i == 0 || !unicode.IsDigit(by)) {
			line.pos = pos
			return ""
		}
	}
	return strings.ToLower(token)
}
