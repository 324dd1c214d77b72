/*
 * jiffy - Command reader.
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

package reader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/rcornwell/jiffy/command/parser"
	"github.com/rcornwell/jiffy/emu/core"
)

const prompt = "jiffy> "

// Read console commands until quit, ^C or end of input. History is kept
// in historyFile if it is not empty.
func ConsoleReader(core *core.Core, historyFile string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(parser.CompleteCmd)
	loadHistory(line, historyFile)
	defer saveHistory(line, historyFile)

	for {
		command, err := line.Prompt(prompt)
		if err == nil {
			if strings.TrimSpace(command) != "" {
				line.AppendHistory(command)
			}
			quit, err := parser.ProcessCommand(command, core)
			if err != nil {
				fmt.Println("Error: " + err.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return
		}
		slog.Error("error reading line: " + err.Error())
		return
	}
}

func loadHistory(line *liner.State, name string) {
	if name == "" {
		return
	}
	file, err := os.Open(name)
	if err != nil {
		return
	}
	defer file.Close()
	if _, err := line.ReadHistory(file); err != nil {
		slog.Warn("unable to read history: " + err.Error())
	}
}

func saveHistory(line *liner.State, name string) {
	if name == "" {
		return
	}
	file, err := os.Create(name)
	if err != nil {
		slog.Warn("unable to write history: " + err.Error())
		return
	}
	defer file.Close()
	if _, err := line.WriteHistory(file); err != nil {
		slog.Warn("unable to write history: " + err.Error())
	}
}
