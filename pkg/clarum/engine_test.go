// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clarum

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseArgumentCount(t *testing.T) {
	for _, args := range [][]string{{}, {"binary"}} {
		p := Parser{Options: []Option{{Tag: 'r', Required: true}}}
		if err := p.Parse(args); err != nil {
			t.Fatalf("Parse(%q) error = %v, want nil", args, err)
		}
		if p.Options[0].Matched() {
			t.Errorf("Parse(%q) matched the binary name", args)
		}
	}
}

func TestParseNullReferences(t *testing.T) {
	var nilParser *Parser
	if err := nilParser.Parse([]string{"binary"}); !errors.Is(err, ErrNullReference) {
		t.Errorf("nil parser error = %v, want ErrNullReference", err)
	}
	p := Parser{Options: []Option{{Tag: 'a'}}}
	if err := p.Parse(nil); !errors.Is(err, ErrNullReference) {
		t.Errorf("nil argv error = %v, want ErrNullReference", err)
	}
	if got := KindOf(p.Parse(nil)); got != NullReference {
		t.Errorf("KindOf = %v, want %v", got, NullReference)
	}
}

func TestParseNoOptionTokens(t *testing.T) {
	var flag bool
	p := Parser{Options: []Option{
		{Tag: 'a', Name: "all", Decoder: Bool, Value: &flag},
	}}
	args := []string{"binary", "file1", "-a", "--all"}
	if err := p.Parse(args); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if p.Options[0].Matched() {
		t.Error("option matched after positional boundary")
	}
	next, ok := p.Next()
	if !ok || next != "file1" {
		t.Errorf("Next() = %q, %v, want %q, true", next, ok, "file1")
	}
	if want := []string{"file1", "-a", "--all"}; !reflect.DeepEqual(p.Rest(), want) {
		t.Errorf("Rest() = %q, want %q", p.Rest(), want)
	}
}

func TestParseLongAndShortValues(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantInt    uint64
		wantBool   bool
		wantString string
	}{
		{
			name:       "long options",
			args:       []string{"binary", "--integer=100500", "--bool=on", "--string=foo"},
			wantInt:    100500,
			wantBool:   true,
			wantString: "foo",
		},
		{
			name:       "short options",
			args:       []string{"binary", "-i=100500", "-b=on", "-s=foo"},
			wantInt:    100500,
			wantBool:   true,
			wantString: "foo",
		},
		{
			name:       "mixed options",
			args:       []string{"binary", "-i=100500", "--bool=on", "-s=foo"},
			wantInt:    100500,
			wantBool:   true,
			wantString: "foo",
		},
		{
			name:       "slash escapes",
			args:       []string{"binary", "/i=7", "//bool=off", "/s=bar"},
			wantInt:    7,
			wantBool:   false,
			wantString: "bar",
		},
		{
			name:       "synonym",
			args:       []string{"binary", "--threads=8", "--toggle", "--str=x"},
			wantInt:    8,
			wantBool:   true,
			wantString: "x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				integer uint64
				boolean bool
				str     string
			)
			p := Parser{Options: []Option{
				{Tag: 'i', Name: "integer", Synonym: "threads", Decoder: Uint, Value: &integer},
				{Tag: 'b', Name: "bool", Synonym: "toggle", Decoder: Bool, Value: &boolean},
				{Tag: 's', Name: "string", Synonym: "str", Decoder: StringRef, Value: &str},
			}}
			if err := p.Parse(tt.args); err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			for i := range p.Options {
				if !p.Options[i].Matched() {
					t.Errorf("option %s was not reported as matched", &p.Options[i])
				}
			}
			if integer != tt.wantInt {
				t.Errorf("integer = %d, want %d", integer, tt.wantInt)
			}
			if boolean != tt.wantBool {
				t.Errorf("bool = %v, want %v", boolean, tt.wantBool)
			}
			if str != tt.wantString {
				t.Errorf("string = %q, want %q", str, tt.wantString)
			}
		})
	}
}

func TestParseIntegerByName(t *testing.T) {
	var value uint64
	p := Parser{Options: []Option{
		{Tag: 'i', Name: "integer", Decoder: Uint, Value: &value},
	}}
	if err := p.Parse([]string{"prog", "--integer=100500"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if !p.Options[0].Matched() {
		t.Error("option was not reported as matched")
	}
	if value != 100500 {
		t.Errorf("value = %d, want 100500", value)
	}
}

func TestParseCluster(t *testing.T) {
	var order []byte
	record := DecoderFunc(func(p *Parser, o *Option) error {
		order = append(order, o.Tag)
		return Bool.Decode(p, o)
	})
	var a, b, c bool
	var str string
	p := Parser{Options: []Option{
		{Tag: 'a', Decoder: record, Value: &a},
		{Tag: 'b', Decoder: record, Value: &b},
		{Tag: 'c', Decoder: record, Value: &c},
		{Name: "string", Decoder: StringRef, Value: &str},
	}}
	if err := p.Parse([]string{"binary", "-abc", "--string=foo"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if !a || !b || !c {
		t.Errorf("a, b, c = %v, %v, %v, want all true", a, b, c)
	}
	if string(order) != "abc" {
		t.Errorf("decode order = %q, want %q", order, "abc")
	}
	if str != "foo" {
		t.Errorf("string = %q, want %q", str, "foo")
	}
}

func TestParseClusterValueAttachesToLastCharacter(t *testing.T) {
	var a bool
	var b string
	p := Parser{Options: []Option{
		{Tag: 'a', Decoder: Bool, Value: &a},
		{Tag: 'b', Decoder: StringRef, Value: &b},
	}}
	if err := p.Parse([]string{"binary", "-ab=val"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if arg, ok := p.Options[0].Argument(); ok {
		t.Errorf("a argument = %q, want absent", arg)
	}
	if !a {
		t.Error("a = false, want true")
	}
	if b != "val" {
		t.Errorf("b = %q, want %q", b, "val")
	}
}

func TestParseArgumentStates(t *testing.T) {
	tests := []struct {
		token   string
		wantArg string
		wantOK  bool
	}{
		{"--opt", "", false},
		{"--opt=", "", true},
		{"--opt=value", "value", true},
		{"--opt=a=b", "a=b", true},
		{"-o", "", false},
		{"-o=", "", true},
		{"-o=x", "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p := Parser{Options: []Option{{Tag: 'o', Name: "opt"}}}
			if err := p.Parse([]string{"binary", tt.token}); err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			arg, ok := p.Options[0].Argument()
			if arg != tt.wantArg || ok != tt.wantOK {
				t.Errorf("Argument() = %q, %v, want %q, %v", arg, ok, tt.wantArg, tt.wantOK)
			}
		})
	}
}

func TestParseLongNameIsExact(t *testing.T) {
	p := Parser{Options: []Option{{Name: "integer"}}}
	err := p.Parse([]string{"binary", "--integerfoo"})
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("error = %v, want ErrUnknownOption", err)
	}
	p = Parser{Options: []Option{{Name: "integer"}}}
	err = p.Parse([]string{"binary", "--int"})
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("abbreviation error = %v, want ErrUnknownOption", err)
	}
}

func TestParseIllegalSyntax(t *testing.T) {
	for _, tok := range []string{"--=value", "-=value", "---x", "-a-b", "/=x"} {
		t.Run(tok, func(t *testing.T) {
			p := Parser{Options: []Option{{Tag: 'a', Name: "a"}, {Tag: 'b'}}}
			err := p.Parse([]string{"binary", tok})
			if !errors.Is(err, ErrIllegalInput) {
				t.Fatalf("error = %v, want ErrIllegalInput", err)
			}
			var e *Error
			if !errors.As(err, &e) || e.Token != tok {
				t.Errorf("error token = %+v, want %q", e, tok)
			}
		})
	}
}

func TestParseBareEscape(t *testing.T) {
	p := Parser{Options: []Option{{Tag: 'a'}}}
	if err := p.Parse([]string{"binary", "-", "-a"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if !p.Options[0].Matched() {
		t.Error("-a after lone escape was not matched")
	}
}

func TestParseDoubleDashEndsOptions(t *testing.T) {
	p := Parser{Options: []Option{{Tag: 'a'}, {Tag: 'b'}}}
	if err := p.Parse([]string{"binary", "-a", "--", "-b", "file"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if !p.Options[0].Matched() || p.Options[1].Matched() {
		t.Errorf("matched a=%v b=%v, want a only", p.Options[0].Matched(), p.Options[1].Matched())
	}
	if p.Stopped() {
		t.Error("Stopped() = true after \"--\", want false")
	}
	if next, ok := p.Next(); !ok || next != "-b" {
		t.Errorf("Next() = %q, %v, want %q, true", next, ok, "-b")
	}

	p = Parser{Options: []Option{{Tag: 'a'}}}
	if err := p.Parse([]string{"binary", "--"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if _, ok := p.Next(); ok {
		t.Error("Next() reported a token after trailing \"--\"")
	}
}

func TestParseLenientSkipsUnknown(t *testing.T) {
	var value uint64
	p := Parser{
		Options: []Option{{Tag: 'i', Name: "integer", Decoder: Uint, Value: &value}},
		Lenient: true,
	}
	if err := p.Parse([]string{"binary", "--sample=off", "-zi=100500"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if p.Stopped() {
		t.Error("parser was stopped")
	}
	if !p.Options[0].Matched() {
		t.Error("option was not reported as matched")
	}
	if value != 100500 {
		t.Errorf("value = %d, want 100500", value)
	}
}

func TestParseStrictStopsOnUnknown(t *testing.T) {
	var value uint64
	p := Parser{Options: []Option{{Tag: 'i', Name: "integer", Decoder: Uint, Value: &value}}}
	err := p.Parse([]string{"binary", "--sample=off", "--integer=100500"})
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("error = %v, want ErrUnknownOption", err)
	}
	var e *Error
	if errors.As(err, &e) && e.Token != "--sample=off" {
		t.Errorf("Token = %q, want %q", e.Token, "--sample=off")
	}
	if !p.Stopped() {
		t.Error("parser was not stopped")
	}
	if p.Options[0].Matched() {
		t.Error("option was reported as matched")
	}
	if value != 0 {
		t.Errorf("value = %d, want 0", value)
	}
}

func TestParseTerminalOption(t *testing.T) {
	var cont bool
	p := Parser{Options: []Option{
		{Name: "halts", Terminal: true},
		{Name: "continue", Decoder: Bool, Value: &cont},
	}}
	if err := p.Parse([]string{"binary", "--halts", "--continue=yes"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if !p.Stopped() {
		t.Error("parser was not stopped")
	}
	if p.Options[1].Matched() {
		t.Error("second option was reported as matched")
	}
	if cont {
		t.Error("second option value was decoded")
	}
}

func TestParseTerminalInsideCluster(t *testing.T) {
	p := Parser{Options: []Option{{Tag: 'v', Terminal: true}, {Tag: 'r'}}}
	if err := p.Parse([]string{"binary", "-vr"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if p.Options[1].Matched() {
		t.Error("-r after terminal -v was matched")
	}
}

func TestParseRequired(t *testing.T) {
	p := Parser{Options: []Option{{Tag: 'a'}, {Name: "needed", Required: true}}}
	err := p.Parse([]string{"binary", "-a"})
	if !errors.Is(err, ErrMissingOption) {
		t.Fatalf("error = %v, want ErrMissingOption", err)
	}
	var e *Error
	if errors.As(err, &e) && e.Option != "--needed" {
		t.Errorf("Option = %q, want %q", e.Option, "--needed")
	}
	if err := p.Parse([]string{"binary", "--needed"}); err != nil {
		t.Fatalf("Parse error = %v", err)
	}
}

func TestParseDecodeErrorAborts(t *testing.T) {
	var b, c bool
	p := Parser{Options: []Option{
		{Name: "bool", Decoder: Bool, Value: &b},
		{Name: "other", Decoder: Bool, Value: &c},
		{Name: "needed", Required: true},
	}}
	err := p.Parse([]string{"binary", "--bool=sample", "--other"})
	if !errors.Is(err, ErrIllegalInput) {
		t.Fatalf("error = %v, want ErrIllegalInput", err)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error %T is not *Error", err)
	}
	if e.Option != "--bool" || e.Token != "--bool=sample" {
		t.Errorf("Option, Token = %q, %q, want %q, %q", e.Option, e.Token, "--bool", "--bool=sample")
	}
	if !p.Options[0].Matched() {
		t.Error("failing option lost its match state")
	}
	if p.Options[1].Matched() {
		t.Error("option after failure was matched")
	}
}

func TestParseCustomDecoderError(t *testing.T) {
	boom := errors.New("boom")
	p := Parser{Options: []Option{
		{Tag: 'x', Decoder: DecoderFunc(func(*Parser, *Option) error { return boom })},
	}}
	err := p.Parse([]string{"binary", "-x"})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
	if KindOf(err) != IllegalInput {
		t.Errorf("KindOf = %v, want %v", KindOf(err), IllegalInput)
	}
}

func TestParseResetsState(t *testing.T) {
	p := Parser{Options: []Option{{Tag: 'a', Terminal: true}}}
	if err := p.Parse([]string{"binary", "-a"}); err != nil {
		t.Fatal(err)
	}
	if err := p.Parse([]string{"binary", "rest"}); err != nil {
		t.Fatal(err)
	}
	if p.Options[0].Matched() || p.Stopped() {
		t.Errorf("state carried over: matched=%v stopped=%v", p.Options[0].Matched(), p.Stopped())
	}
}

func TestParseChain(t *testing.T) {
	var verbose bool
	var jobs uint64
	global := &Parser{
		Options: []Option{{Tag: 'v', Name: "verbose", Decoder: Bool, Value: &verbose}},
		Lenient: true,
	}
	local := &Parser{
		Options: []Option{{Tag: 'j', Name: "jobs", Decoder: Uint, Value: &jobs}},
		Lenient: true,
	}
	args := []string{"binary", "-v", "--jobs=3", "target"}
	if err := ParseChain(args, global, local); err != nil {
		t.Fatalf("ParseChain error = %v", err)
	}
	if !verbose || jobs != 3 {
		t.Errorf("verbose, jobs = %v, %d, want true, 3", verbose, jobs)
	}
	if next, _ := local.Next(); next != "target" {
		t.Errorf("Next() = %q, want %q", next, "target")
	}
	if err := ParseChain(args, global, nil); !errors.Is(err, ErrNullReference) {
		t.Errorf("nil stage error = %v, want ErrNullReference", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		wantErr bool
	}{
		{"ok", []Option{{Tag: 'a', Name: "all"}, {Name: "bare", Synonym: "b"}}, false},
		{"anonymous", []Option{{}}, true},
		{"escape tag", []Option{{Tag: '-'}}, true},
		{"delimiter tag", []Option{{Tag: '='}}, true},
		{"control tag", []Option{{Tag: '\n'}}, true},
		{"delimiter in name", []Option{{Name: "a=b"}}, true},
		{"escape name", []Option{{Name: "-x"}}, true},
		{"duplicate tag", []Option{{Tag: 'a'}, {Tag: 'a'}}, true},
		{"duplicate name", []Option{{Name: "x"}, {Synonym: "x"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parser{Options: tt.options}
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrIllegalInput) {
				t.Errorf("error = %v, want ErrIllegalInput", err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	p := Parser{Options: []Option{{Tag: 'j', Name: "jobs", Synonym: "threads"}}}
	if p.Lookup("threads") != &p.Options[0] {
		t.Error("Lookup(threads) did not return the option")
	}
	if p.LookupTag('j') != &p.Options[0] {
		t.Error("LookupTag(j) did not return the option")
	}
	if p.Lookup("") != nil || p.LookupTag(0) != nil || p.Lookup("job") != nil {
		t.Error("Lookup matched an empty or partial key")
	}
}
