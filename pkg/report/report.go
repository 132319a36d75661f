// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders parse outcomes as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/yeetrun/clarum/pkg/clarum"
	"github.com/yeetrun/clarum/pkg/tablefile"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. An empty name means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// Result is the outcome of one parse.
type Result struct {
	Line    int      `json:"line,omitempty" yaml:"line,omitempty"`
	Vector  []string `json:"vector" yaml:"vector"`
	Kind    string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
	Stopped bool     `json:"stopped" yaml:"stopped"`
	Next    *string  `json:"next,omitempty" yaml:"next,omitempty"`
	Rest    []string `json:"rest,omitempty" yaml:"rest,omitempty"`
	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// Option is the state of one option after a parse.
type Option struct {
	Key         string `json:"key" yaml:"key"`
	Tag         string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Synonym     string `json:"synonym,omitempty" yaml:"synonym,omitempty"`
	Matched     bool   `json:"matched" yaml:"matched"`
	Argument    string `json:"argument,omitempty" yaml:"argument,omitempty"`
	HasArgument bool   `json:"hasArgument" yaml:"hasArgument"`
	Value       any    `json:"value" yaml:"value"`
}

// OK reports whether the parse succeeded.
func (r Result) OK() bool {
	return r.Error == ""
}

// FromParser builds a Result from p after it parsed args and returned err.
func FromParser(p *clarum.Parser, args []string, err error) Result {
	r := Result{Vector: args}
	if err != nil {
		r.Error = err.Error()
		if kind := clarum.KindOf(err); kind != 0 {
			r.Kind = kind.String()
		}
	}
	if p == nil {
		return r
	}
	r.Stopped = p.Stopped()
	if next, ok := p.Next(); ok {
		r.Next = &next
		r.Rest = p.Rest()
	}
	for i := range p.Options {
		o := &p.Options[i]
		arg, hasArg := o.Argument()
		opt := Option{
			Key:         o.Key(),
			Name:        o.Name,
			Synonym:     o.Synonym,
			Matched:     o.Matched(),
			Argument:    arg,
			HasArgument: hasArg,
			Value:       tablefile.Value(o),
		}
		if o.Tag != 0 {
			opt.Tag = string(o.Tag)
		}
		r.Options = append(r.Options, opt)
	}
	return r
}

// FromBound builds a Result from a bound table. b may be nil when the table
// failed to build.
func FromBound(b *tablefile.Bound, args []string, err error) Result {
	if b == nil {
		return FromParser(nil, args, err)
	}
	return FromParser(b.Parser, args, err)
}

// Writer renders results in one format.
type Writer struct {
	Format Format
	// Color enables ANSI colors in text output.
	Color bool
}

// Write renders results to w. JSON and YAML output is a single document: an
// object for one result, a list otherwise.
func (rw Writer) Write(w io.Writer, results ...Result) error {
	var doc any = results
	if len(results) == 1 {
		doc = results[0]
	}
	switch rw.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := rw.writeText(w, r); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", rw.Format)
}

func (rw Writer) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if rw.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func (rw Writer) writeText(w io.Writer, r Result) error {
	title := strings.Join(r.Vector, " ")
	if r.Line > 0 {
		title = fmt.Sprintf("%d: %s", r.Line, title)
	}
	fmt.Fprintln(w, rw.paint(color.Bold, title))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	status := rw.paint(color.FgGreen, "ok")
	if !r.OK() {
		status = rw.paint(color.FgRed, r.Error)
	}
	fmt.Fprintf(tw, "  status:\t%s\n", status)
	if r.Stopped {
		fmt.Fprintf(tw, "  stopped:\t%s\n", rw.paint(color.FgYellow, "yes"))
	}
	if r.Next != nil {
		fmt.Fprintf(tw, "  next:\t%s\n", *r.Next)
		fmt.Fprintf(tw, "  rest:\t%s\n", strings.Join(r.Rest, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(r.Options) == 0 {
		return nil
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  OPTION\tMATCHED\tARGUMENT\tVALUE")
	for _, o := range r.Options {
		matched := rw.paint(color.Faint, "no")
		if o.Matched {
			matched = rw.paint(color.FgGreen, "yes")
		}
		arg := "-"
		if o.HasArgument {
			arg = fmt.Sprintf("%q", o.Argument)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%v\n", optionLabel(o), matched, arg, o.Value)
	}
	return tw.Flush()
}

func optionLabel(o Option) string {
	var parts []string
	if o.Tag != "" {
		parts = append(parts, "-"+o.Tag)
	}
	if o.Name != "" {
		parts = append(parts, "--"+o.Name)
	}
	if o.Synonym != "" {
		parts = append(parts, "--"+o.Synonym)
	}
	return strings.Join(parts, ",")
}
