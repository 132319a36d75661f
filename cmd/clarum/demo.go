// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/yeetrun/clarum/pkg/clarum"
	"github.com/yeetrun/clarum/pkg/decodeutil"
)

const demoVersion = "clarum-example, ver. 0.0.0"

// runDemo is a small example program built directly on package clarum. It
// declares its options in code, parses args and prints what it found. Parse
// errors are part of the report, so the demo itself only fails on write
// errors.
func runDemo(w io.Writer, args []string) error {
	var (
		recursive bool
		idle      bool
		filter    = "*"
		jobs      uint64 = 1
	)

	printVersion := clarum.DecoderFunc(func(*clarum.Parser, *clarum.Option) error {
		_, err := fmt.Fprintln(w, demoVersion)
		return err
	})
	announceMode := clarum.DecoderFunc(func(_ *clarum.Parser, o *clarum.Option) error {
		mode := "LIVE"
		if *o.Value.(*bool) {
			mode = "IDLE"
		}
		_, err := fmt.Fprintf(w, "Mode is set to %s\n", mode)
		return err
	})

	p := clarum.Parser{Options: []clarum.Option{
		{Tag: 'v', Name: "version", Decoder: printVersion, Terminal: true},
		{Tag: 'r', Decoder: clarum.Bool, Value: &recursive},
		{Tag: 'i', Name: "idle", Decoder: decodeutil.Chain(clarum.Bool, announceMode), Value: &idle},
		{Tag: 'f', Name: "filter", Synonym: "regexp", Decoder: clarum.StringRef, Value: &filter},
		{Tag: 'j', Name: "jobs", Synonym: "threads", Decoder: clarum.Uint, Value: &jobs},
	}}
	err := p.Parse(args)

	referenced := func(i int) string {
		if p.Options[i].Matched() {
			return " [referenced]"
		}
		return ""
	}
	onOff := func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	}
	fmt.Fprintln(w, "Report:")
	fmt.Fprintf(w, "  recursive: %s%s\n", onOff(recursive), referenced(1))
	fmt.Fprintf(w, "  idle: %s%s\n", onOff(idle), referenced(2))
	fmt.Fprintf(w, "  filter: %s%s\n", filter, referenced(3))
	fmt.Fprintf(w, "  jobs: %d%s\n", jobs, referenced(4))
	if p.Stopped() {
		fmt.Fprintln(w, "  parser was stopped")
	} else {
		fmt.Fprintln(w, "  parser was not stopped")
	}
	if rest := p.Rest(); len(rest) > 0 {
		fmt.Fprintf(w, "  positional: %q\n", rest)
	}
	if err != nil {
		_, werr := fmt.Fprintf(w, "  parse failed: %v (%s)\n", err, clarum.KindOf(err))
		return werr
	}
	_, werr := fmt.Fprintln(w, "  parse succeeded")
	return werr
}
