// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clarum

import (
	"fmt"
	"strings"
)

// Token grammar characters.
const (
	escapeDash  = '-'
	escapeSlash = '/'
	delimiter   = '='
)

func isEscape(c byte) bool {
	return c == escapeDash || c == escapeSlash
}

func isDelimiter(c byte) bool {
	return c == delimiter
}

// Decoder turns an option's raw argument into a typed value.
//
// Decode is called once per match, after the option is marked matched. The
// raw argument is available through o.Argument and the output slot is o.Value.
type Decoder interface {
	Decode(p *Parser, o *Option) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(p *Parser, o *Option) error

// Decode calls f(p, o).
func (f DecoderFunc) Decode(p *Parser, o *Option) error {
	return f(p, o)
}

// Option describes one recognized command-line option.
//
// Tag, Name, Synonym, Decoder, Terminal and Required are declared by the
// caller and never modified by the parser. Value is the output slot handed to
// the decoder. The match state is written by Parse and read with Argument and
// Matched.
type Option struct {
	// Tag is the single character short form, e.g. 'f'. Zero means none.
	Tag byte
	// Name is the long form, e.g. "filter".
	Name string
	// Synonym is an alternative long form, e.g. "regexp".
	Synonym string

	// Decoder is invoked on every match. It may be nil.
	Decoder Decoder
	// Value is the output slot written by Decoder, e.g. a *bool.
	Value any

	// Terminal stops parsing once this option is matched.
	Terminal bool
	// Required fails the parse with MissingOption if the option is never matched.
	Required bool

	state optionState
}

type optionState struct {
	argument    string
	hasArgument bool
	matched     bool
}

// Argument returns the inline value of the last match. ok is false when the
// token carried no delimiter at all; an empty value with ok true means the
// token ended in "=".
func (o *Option) Argument() (value string, ok bool) {
	return o.state.argument, o.state.hasArgument
}

// Matched reports whether the option was encountered during the last parse.
func (o *Option) Matched() bool {
	return o.state.matched
}

// String returns the option's display name, preferring the long form.
func (o *Option) String() string {
	switch {
	case o.Name != "":
		return "--" + o.Name
	case o.Synonym != "":
		return "--" + o.Synonym
	case o.Tag != 0:
		return "-" + string(o.Tag)
	}
	return "<anonymous>"
}

// Key returns the name used to identify the option in reports: the long
// name, else the synonym, else the tag.
func (o *Option) Key() string {
	switch {
	case o.Name != "":
		return o.Name
	case o.Synonym != "":
		return o.Synonym
	case o.Tag != 0:
		return string(o.Tag)
	}
	return ""
}

func (o *Option) reset() {
	o.state = optionState{}
}

func (o *Option) match(arg string, hasArg bool) {
	o.state = optionState{argument: arg, hasArgument: hasArg, matched: true}
}

func (o *Option) hasName(name string) bool {
	return (o.Name != "" && o.Name == name) || (o.Synonym != "" && o.Synonym == name)
}

// Parser holds the option table and the outcome of a parse.
//
// A Parser is not safe for concurrent use; concurrent parses need their own
// Parser and option table.
type Parser struct {
	// Options is the option table. The parser writes only the match state of
	// its entries.
	Options []Option
	// Lenient skips unknown options instead of failing with UnknownOption.
	Lenient bool

	args    []string
	next    int
	stopped bool
}

// Stopped reports whether the last parse was halted by a terminal option or
// by an unknown option under strict policy.
func (p *Parser) Stopped() bool {
	return p.stopped
}

// Next returns the first token that was not consumed as an option, typically
// the first positional argument.
func (p *Parser) Next() (string, bool) {
	if p.next <= 0 || p.next >= len(p.args) {
		return "", false
	}
	return p.args[p.next], true
}

// Rest returns the unconsumed tail of the argument vector starting at Next.
func (p *Parser) Rest() []string {
	if p.next <= 0 || p.next >= len(p.args) {
		return nil
	}
	return p.args[p.next:]
}

// Lookup returns the option whose name or synonym equals name.
func (p *Parser) Lookup(name string) *Option {
	if name == "" {
		return nil
	}
	for i := range p.Options {
		if p.Options[i].hasName(name) {
			return &p.Options[i]
		}
	}
	return nil
}

// LookupTag returns the option with the given short tag.
func (p *Parser) LookupTag(tag byte) *Option {
	if tag == 0 {
		return nil
	}
	for i := range p.Options {
		if p.Options[i].Tag == tag {
			return &p.Options[i]
		}
	}
	return nil
}

// Validate checks the option table: tags must be printable and must not be an
// escape or delimiter character, names must not contain a delimiter or start
// with an escape character, every option needs a tag or a name, and no tag or
// name may be declared twice.
func (p *Parser) Validate() error {
	if p == nil {
		return &Error{Kind: NullReference}
	}
	tags := make(map[byte]int)
	names := make(map[string]int)
	for i := range p.Options {
		o := &p.Options[i]
		if o.Tag == 0 && o.Name == "" && o.Synonym == "" {
			return errorf(IllegalInput, "option %d has neither tag nor name", i)
		}
		if o.Tag != 0 {
			if o.Tag <= ' ' || o.Tag > '~' || isEscape(o.Tag) || isDelimiter(o.Tag) {
				return errorf(IllegalInput, "option %d has invalid tag %q", i, o.Tag)
			}
			if j, ok := tags[o.Tag]; ok {
				return errorf(IllegalInput, "options %d and %d share tag %q", j, i, o.Tag)
			}
			tags[o.Tag] = i
		}
		for _, name := range []string{o.Name, o.Synonym} {
			if name == "" {
				continue
			}
			if strings.IndexByte(name, delimiter) >= 0 || isEscape(name[0]) {
				return errorf(IllegalInput, "option %d has invalid name %q", i, name)
			}
			if j, ok := names[name]; ok {
				return errorf(IllegalInput, "options %d and %d share name %q", j, i, name)
			}
			names[name] = i
		}
	}
	return nil
}

func (p *Parser) String() string {
	return fmt.Sprintf("clarum.Parser{%d options, lenient=%v}", len(p.Options), p.Lenient)
}
