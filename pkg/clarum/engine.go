// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clarum

import (
	"errors"
	"strings"
)

// Parse matches args against p.Options. args[0] is the program name and is
// skipped; a vector of length 0 or 1 succeeds without touching the table.
//
// Scanning stops at the first token that does not begin with an escape
// character ('-' or '/'), at a bare "--", at a terminal option, at an unknown
// option under strict policy, or at the first decoder error. A bare "--"
// ends option scanning like getopt does, so tokens after it are never
// matched even if they look like options. Options matched
// before a failure keep their match state. Once the scan succeeds, every
// Required option must have been matched.
func (p *Parser) Parse(args []string) error {
	if p == nil {
		return errorf(NullReference, "nil parser")
	}
	if args == nil {
		return errorf(NullReference, "nil argument vector")
	}
	p.args = args
	p.next = 0
	p.stopped = false
	for i := range p.Options {
		p.Options[i].reset()
	}
	if len(args) <= 1 {
		return nil
	}

	if err := p.scan(); err != nil {
		return err
	}
	for i := range p.Options {
		o := &p.Options[i]
		if o.Required && !o.Matched() {
			return &Error{Kind: MissingOption, Option: o.String()}
		}
	}
	return nil
}

func (p *Parser) scan() error {
	for i := 1; i < len(p.args) && !p.stopped; i++ {
		tok := p.args[i]
		if tok == "" || !isEscape(tok[0]) {
			p.next = i
			return nil
		}
		if len(tok) > 1 && isEscape(tok[1]) {
			if len(tok) == 2 {
				// Bare "--": everything after it is positional.
				p.next = i + 1
				return nil
			}
			if err := p.parseLong(tok); err != nil {
				return err
			}
			continue
		}
		if err := p.parseShort(tok); err != nil {
			return err
		}
	}
	return nil
}

// parseLong handles "--name" and "--name=value".
func (p *Parser) parseLong(tok string) error {
	body := tok[2:]
	if isEscape(body[0]) || isDelimiter(body[0]) {
		return &Error{Kind: IllegalInput, Token: tok}
	}
	name, value, hasValue := strings.Cut(body, string(delimiter))
	o := p.Lookup(name)
	if o == nil {
		return p.unknown(tok)
	}
	return p.dispatch(o, tok, tok[:2]+name, value, hasValue)
}

// parseShort handles "-x", "-x=value" and clusters such as "-abc". Each
// character is an independent option; only the character directly before the
// delimiter receives the inline value.
func (p *Parser) parseShort(tok string) error {
	body := tok[1:]
	if body == "" {
		return nil
	}
	if isDelimiter(body[0]) {
		return &Error{Kind: IllegalInput, Token: tok}
	}
	for j := 0; j < len(body) && !p.stopped; j++ {
		c := body[j]
		if isDelimiter(c) {
			break
		}
		if isEscape(c) {
			return &Error{Kind: IllegalInput, Token: tok}
		}
		var value string
		var hasValue bool
		if j+1 < len(body) && isDelimiter(body[j+1]) {
			value, hasValue = body[j+2:], true
		}
		o := p.LookupTag(c)
		if o == nil {
			if err := p.unknown(tok); err != nil {
				return err
			}
			continue
		}
		if err := p.dispatch(o, tok, tok[:1]+string(c), value, hasValue); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) unknown(tok string) error {
	if p.Lenient {
		return nil
	}
	p.stopped = true
	return &Error{Kind: UnknownOption, Token: tok}
}

func (p *Parser) dispatch(o *Option, tok, spelled, value string, hasValue bool) error {
	o.match(value, hasValue)
	if o.Terminal {
		p.stopped = true
	}
	if o.Decoder == nil {
		return nil
	}
	if err := o.Decoder.Decode(p, o); err != nil {
		return annotate(err, tok, spelled)
	}
	return nil
}

// annotate attaches the token and option spelling to a decoder error.
// Errors that are not a *Error become IllegalInput.
func annotate(err error, tok, spelled string) error {
	e, ok := err.(*Error)
	if !ok {
		var inner *Error
		if errors.As(err, &inner) {
			return err
		}
		return &Error{Kind: IllegalInput, Token: tok, Option: spelled, Err: err}
	}
	out := *e
	if out.Token == "" {
		out.Token = tok
	}
	if out.Option == "" {
		out.Option = spelled
	}
	return &out
}

// ParseChain runs each parser over the same argument vector in order, so a
// command line can be split across several option tables. Every stage except
// the last is normally Lenient. The chain ends at the first error or at the
// first stage that stops.
func ParseChain(args []string, parsers ...*Parser) error {
	for _, p := range parsers {
		if err := p.Parse(args); err != nil {
			return err
		}
		if p.Stopped() {
			return nil
		}
	}
	return nil
}
