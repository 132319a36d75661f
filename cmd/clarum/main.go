// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"github.com/yeetrun/clarum/pkg/clarum"
	"github.com/yeetrun/clarum/pkg/cli"
	"github.com/yeetrun/clarum/pkg/report"
	"github.com/yeetrun/clarum/pkg/tui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

const (
	exitFailure       = 1
	exitNullReference = 2
	exitIllegalInput  = 3
	exitUnknownOption = 4
	exitMissingOption = 5
)

type globalFlagsParsed struct {
	Table   string `flag:"table" help:"Option table file (default: $CLARUM_TABLE, else the nearest clarum.toml)"`
	Format  string `flag:"format" help:"Output format (text|json|yaml)"`
	Color   string `flag:"color" help:"Colorize text output (auto|always|never)"`
	Verbose bool   `flag:"verbose" help:"Log progress to stderr"`
}

func parseGlobalFlags(args []string) (globalFlagsParsed, []string, error) {
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return globalFlagsParsed{}, nil, err
	}
	return result.Flags, result.RemainingArgs, nil
}

// app carries the resolved global settings into the command handlers.
type app struct {
	flags  globalFlagsParsed
	stdout io.Writer
	stderr io.Writer
	writer report.Writer
	// getenv and getwd are replaced in tests.
	getenv func(string) string
	getwd  func() (string, error)
}

func newApp(flags globalFlagsParsed, stdout, stderr io.Writer) (*app, error) {
	format, err := report.ParseFormat(flags.Format)
	if err != nil {
		return nil, err
	}
	out, _ := stdout.(*os.File)
	colored, err := tui.ParseColorMode(flags.Color, out)
	if err != nil {
		return nil, err
	}
	return &app{
		flags:  flags,
		stdout: stdout,
		stderr: stderr,
		writer: report.Writer{Format: format, Color: colored},
		getenv: os.Getenv,
		getwd:  os.Getwd,
	}, nil
}

func (a *app) handlers() map[string]yargs.SubcommandHandler {
	return map[string]yargs.SubcommandHandler{
		cli.CommandParse:   a.handleParse,
		cli.CommandCheck:   a.handleCheck,
		cli.CommandBatch:   a.handleBatch,
		cli.CommandDemo:    a.handleDemo,
		cli.CommandVersion: a.handleVersion,
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, remaining, err := parseGlobalFlags(args)
	if err != nil {
		printCLIError(stderr, err, stderrColor("", stderr))
		return exitFailure
	}
	log.SetFlags(0)
	log.SetPrefix("clarum: ")
	if flags.Verbose {
		log.SetOutput(stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	a, err := newApp(flags, stdout, stderr)
	if err != nil {
		printCLIError(stderr, err, stderrColor("", stderr))
		return exitFailure
	}
	helpConfig := cli.HelpConfig()
	remaining = yargs.ApplyAliases(remaining, helpConfig)
	if err := yargs.RunSubcommandsWithGroups(ctx, remaining, helpConfig, globalFlagsParsed{}, a.handlers(), nil); err != nil {
		printCLIError(stderr, err, stderrColor(flags.Color, stderr))
		return exitCode(err)
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// errReported marks a failure whose details were already written as part of
// the command's report.
type errReported struct {
	err error
}

func (e *errReported) Error() string { return e.err.Error() }
func (e *errReported) Unwrap() error { return e.err }

// stderrColor resolves the --color mode against stderr. An invalid mode
// means no color.
func stderrColor(mode string, stderr io.Writer) bool {
	f, _ := stderr.(*os.File)
	colored, err := tui.ParseColorMode(mode, f)
	return err == nil && colored
}

func printCLIError(w io.Writer, err error, colored bool) {
	if err == nil {
		return
	}
	var reported *errReported
	if errors.As(err, &reported) {
		return
	}
	label := color.New(color.FgRed)
	if colored {
		label.EnableColor()
	} else {
		label.DisableColor()
	}
	fmt.Fprintln(w, label.Sprint("error:"), err)
}

// exitCode maps an error to the process exit status: each clarum error kind
// has its own code and anything else is a generic failure.
func exitCode(err error) int {
	switch clarum.KindOf(err) {
	case clarum.NullReference:
		return exitNullReference
	case clarum.IllegalInput:
		return exitIllegalInput
	case clarum.UnknownOption:
		return exitUnknownOption
	case clarum.MissingOption:
		return exitMissingOption
	}
	if err == nil {
		return 0
	}
	return exitFailure
}
