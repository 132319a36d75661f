// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shayne/yargs"
)

const (
	CommandParse   = "parse"
	CommandCheck   = "check"
	CommandBatch   = "batch"
	CommandDemo    = "demo"
	CommandVersion = "version"
)

type CommandInfo struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Hidden      bool
	Aliases     []string
}

type BatchFlags struct {
	Jobs   int
	Output string
}

type VersionFlags struct {
	JSON bool
}

type batchFlagsParsed struct {
	Jobs   int    `flag:"jobs" short:"j" help:"Parse this many vectors at once (default: number of CPUs)"`
	Output string `flag:"output" short:"o" help:"Write the report to a file (.zst is compressed)"`
}

type versionFlagsParsed struct {
	JSON bool `flag:"json"`
}

type noFlagsParsed struct{}

var commandInfos = map[string]CommandInfo{
	CommandParse: {Name: CommandParse, Description: "Parse one argument vector against the option table", Usage: "[--table=FILE] [--format=text|json|yaml] -- PROG [ARGS...]", Examples: []string{
		"clarum parse -- demo -r --jobs=4 main.go",
		"clarum parse --table=opts.yaml --format=json -- prog -vv --timeout=5s",
	}, Aliases: []string{"p"}},
	CommandCheck: {Name: CommandCheck, Description: "Validate the option table and list its options", Usage: "[--table=FILE]", Examples: []string{
		"clarum check",
		"CLARUM_TABLE=opts.toml clarum check --format=yaml",
	}},
	CommandBatch: {Name: CommandBatch, Description: "Parse one argument vector per line of a file", Usage: "INPUT [--jobs=N] [--output=FILE]", Examples: []string{
		"clarum batch vectors.txt",
		"clarum batch vectors.txt.zst --jobs=8 --format=json --output=report.json.zst",
	}},
	CommandDemo: {Name: CommandDemo, Description: "Run the built-in example program on the given arguments", Usage: "[--] [ARGS...]", Examples: []string{
		"clarum demo -r -i --filter=*.go --threads=4",
		"clarum demo --version",
	}},
	CommandVersion: {Name: CommandVersion, Description: "Show the clarum version", Usage: "[--json]"},
}

func CommandNames() []string {
	names := make([]string, 0, len(commandInfos))
	for name := range commandInfos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func CommandInfos() map[string]CommandInfo {
	return commandInfos
}

// HelpConfig returns the help metadata for the clarum command.
func HelpConfig() yargs.HelpConfig {
	subcommands := make(map[string]yargs.SubCommandInfo, len(commandInfos))
	for name, info := range commandInfos {
		subcommands[name] = toSubCommandInfo(name, info)
	}
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        "clarum",
			Description: "Match argument vectors against declarative option tables.",
			Examples: []string{
				"clarum check",
				"clarum parse -- prog -r --jobs=4 file.txt",
				"clarum batch vectors.txt --format=json",
			},
		},
		SubCommands: subcommands,
	}
}

func toSubCommandInfo(name string, info CommandInfo) yargs.SubCommandInfo {
	return yargs.SubCommandInfo{
		Name:        name,
		Description: info.Description,
		Usage:       info.Usage,
		Examples:    info.Examples,
		Hidden:      info.Hidden,
		Aliases:     info.Aliases,
	}
}

// ParseParse returns the argument vector given to the parse command: the
// arguments after "--", or the positional arguments when there is no "--".
// args starts with the command name.
func ParseParse(args []string) ([]string, error) {
	parsed, err := yargs.ParseFlags[noFlagsParsed](commandArgs(args))
	if err != nil {
		return nil, err
	}
	if len(parsed.RemainingArgs) > 0 {
		if len(parsed.Args) > 0 {
			return nil, fmt.Errorf("unexpected arguments before --: %v", parsed.Args)
		}
		return parsed.RemainingArgs, nil
	}
	if len(parsed.Args) == 0 {
		return nil, fmt.Errorf("'%s' requires an argument vector after --", CommandParse)
	}
	return parsed.Args, nil
}

func ParseCheck(args []string) error {
	parsed, err := yargs.ParseFlags[noFlagsParsed](commandArgs(args))
	if err != nil {
		return err
	}
	if n := len(parsed.Args) + len(parsed.RemainingArgs); n > 0 {
		return fmt.Errorf("'%s' takes no arguments, got %d", CommandCheck, n)
	}
	return nil
}

func ParseBatch(args []string) (BatchFlags, string, error) {
	parsed, err := yargs.ParseFlags[batchFlagsParsed](commandArgs(args))
	if err != nil {
		return BatchFlags{}, "", err
	}
	if parsed.Flags.Jobs < 0 {
		return BatchFlags{}, "", fmt.Errorf("--jobs must not be negative")
	}
	rest := append(append([]string{}, parsed.Args...), parsed.RemainingArgs...)
	if err := RequireArgsExactly(CommandBatch, rest, 1); err != nil {
		return BatchFlags{}, "", err
	}
	flags := BatchFlags{
		Jobs:   parsed.Flags.Jobs,
		Output: parsed.Flags.Output,
	}
	return flags, rest[0], nil
}

// ParseDemo returns the vector for the demo program. The command name stands
// in for the program name and a leading "--" is dropped.
func ParseDemo(args []string) []string {
	rest := commandArgs(args)
	if len(rest) > 0 && rest[0] == "--" {
		rest = rest[1:]
	}
	return append([]string{CommandDemo}, rest...)
}

func ParseVersion(args []string) (VersionFlags, error) {
	parsed, err := yargs.ParseFlags[versionFlagsParsed](commandArgs(args))
	if err != nil {
		return VersionFlags{}, err
	}
	return VersionFlags{JSON: parsed.Flags.JSON}, nil
}

// commandArgs drops the command name handed to every subcommand handler,
// which is the first argument that is not a flag.
func commandArgs(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			out := make([]string, 0, len(args)-1)
			out = append(out, args[:i]...)
			return append(out, args[i+1:]...)
		}
	}
	return args
}

func RequireArgsExactly(subcmd string, args []string, count int) error {
	if len(args) != count {
		return fmt.Errorf("'%s' requires exactly %d argument(s), got %d", subcmd, count, len(args))
	}
	return nil
}
