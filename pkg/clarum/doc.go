// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clarum matches a process argument vector against a caller-declared
// table of options.
//
// Each option has an optional single character tag (short form) and an
// optional name and synonym (long form). Matching an option records its
// inline value and calls its Decoder, which writes the typed result into the
// option's Value slot.
//
// # Token Grammar
//
// Tokens start with an escape character, '-' or '/':
//   - Short form: -v, -j=4, and clusters such as -abc where every character is
//     its own option. Only the character directly before '=' gets the value.
//   - Long form: --verbose, --jobs=4, or //jobs=4.
//   - A bare "--" ends option scanning.
//
// The first token that does not start with an escape character ends option
// scanning and is reported by Parser.Next. Values are distinguishable in three
// states: absent (--opt), empty (--opt=) and non-empty (--opt=x).
//
// # Basic Usage
//
//	var (
//	    verbose bool
//	    jobs    uint64 = 1
//	    filter  = "*"
//	)
//	p := clarum.Parser{Options: []clarum.Option{
//	    {Tag: 'v', Name: "verbose", Decoder: clarum.Bool, Value: &verbose},
//	    {Tag: 'j', Name: "jobs", Synonym: "threads", Decoder: clarum.Uint, Value: &jobs},
//	    {Tag: 'f', Name: "filter", Decoder: clarum.StringRef, Value: &filter},
//	}}
//	if err := p.Parse(os.Args); err != nil {
//	    switch clarum.KindOf(err) {
//	    case clarum.UnknownOption, clarum.IllegalInput:
//	        ...
//	    }
//	}
//	files := p.Rest()
//
// # Policies
//
// A Terminal option stops scanning as soon as it is matched. Unknown options
// fail the parse with UnknownOption unless the parser is Lenient, in which
// case they are skipped; lenient tables can be combined with ParseChain.
// Required options are checked after a successful scan.
package clarum
