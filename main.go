/*
 * jiffy - Main process.
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

package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	getopt "github.com/pborman/getopt/v2"
	"golang.org/x/term"

	reader "github.com/rcornwell/jiffy/command/reader"
	config "github.com/rcornwell/jiffy/config/configparser"
	"github.com/rcornwell/jiffy/config/machineconfig"
	core "github.com/rcornwell/jiffy/emu/core"
	"github.com/rcornwell/jiffy/emu/cpu"
	master "github.com/rcornwell/jiffy/emu/master"
	"github.com/rcornwell/jiffy/emu/memory"
	"github.com/rcornwell/jiffy/emu/trace"
	"github.com/rcornwell/jiffy/emu/translator"
	logger "github.com/rcornwell/jiffy/util/logger"

	_ "github.com/rcornwell/jiffy/config/debugconfig"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "jiffy.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logOut io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("Unable to create log file: " + err.Error())
			os.Exit(1)
		}
		defer file.Close()
		logOut = file
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(logOut, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("jiffy Started")
	_, err := os.Stat(*optConfig)
	if os.IsNotExist(err) {
		Logger.Error("Configuration file " + *optConfig + " can't be found")
		os.Exit(1)
	}

	err = config.LoadConfigFile(*optConfig)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	settings := machineconfig.Machine()
	mem := memory.New()
	err = settings.Apply(mem)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	ctx := cpu.NewContext(mem, settings.PC)
	tr := translator.New(
		translator.WithObserver(trace.Logger{}),
		translator.WithMaxInstructions(settings.MaxBlock),
	)
	masterChannel := make(chan master.Packet)

	// Create new routine to run CPU.
	sim := core.NewCPU(masterChannel, ctx, tr)
	go sim.Start()

	if term.IsTerminal(int(os.Stdin.Fd())) {
		if settings.AutoStart {
			sim.SendStart()
		}
		reader.ConsoleReader(sim, historyFile())
	} else {
		// No console, run until guest stops or we are interrupted.
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		sim.SendStart()
		select {
		case <-sim.Halted:
		case <-interrupt:
			Logger.Info("Interrupted")
		}
	}

	sim.Stop()
	Logger.Info("CPU stopped.")
}

// Console history kept in home directory.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".jiffy_history")
}
