// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/clarum/pkg/batch"
	"github.com/yeetrun/clarum/pkg/cli"
	"github.com/yeetrun/clarum/pkg/codecutil"
	"github.com/yeetrun/clarum/pkg/report"
	"github.com/yeetrun/clarum/pkg/tablefile"
	"github.com/yeetrun/clarum/pkg/tui"
	"gopkg.in/yaml.v3"
)

func (a *app) loadTable() (*tablefile.Table, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, err
	}
	path, err := tablefile.Resolve(a.flags.Table, a.getenv(tablefile.EnvVar), cwd)
	if err != nil {
		return nil, err
	}
	log.Printf("using option table %s", path)
	return tablefile.Load(path)
}

func (a *app) handleParse(_ context.Context, args []string) error {
	vector, err := cli.ParseParse(args)
	if err != nil {
		return err
	}
	table, err := a.loadTable()
	if err != nil {
		return err
	}
	b, err := table.Build()
	if err != nil {
		return fmt.Errorf("invalid option table: %w", err)
	}
	parseErr := b.Parse(vector)
	if err := a.writer.Write(a.stdout, report.FromBound(b, vector, parseErr)); err != nil {
		return err
	}
	if parseErr != nil {
		return &errReported{err: parseErr}
	}
	return nil
}

func (a *app) handleCheck(_ context.Context, args []string) error {
	if err := cli.ParseCheck(args); err != nil {
		return err
	}
	table, err := a.loadTable()
	if err != nil {
		return err
	}
	if _, err := table.Build(); err != nil {
		return fmt.Errorf("invalid option table: %w", err)
	}
	switch a.writer.Format {
	case report.FormatJSON:
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	case report.FormatYAML:
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(table); err != nil {
			return err
		}
		return enc.Close()
	}
	return writeTableText(a.stdout, table)
}

func writeTableText(w io.Writer, table *tablefile.Table) error {
	policy := "strict"
	if table.Lenient {
		policy = "lenient"
	}
	fmt.Fprintf(w, "%d options, %s\n", len(table.Options), policy)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "TAG\tNAME\tSYNONYM\tKIND\tDEFAULT\tFLAGS")
	for _, o := range table.Options {
		kind := o.Kind
		if kind == "" {
			kind = tablefile.KindFlag
		}
		if kind == tablefile.KindEnum {
			kind = tablefile.Kind(fmt.Sprintf("enum(%s)", strings.Join(o.Values, "|")))
		}
		var flags []string
		if o.Terminal {
			flags = append(flags, "terminal")
		}
		if o.Required {
			flags = append(flags, "required")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			dash(o.Tag), dash(o.Name), dash(o.Synonym), kind, dash(o.Default), dash(strings.Join(flags, ",")))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *app) handleBatch(ctx context.Context, args []string) error {
	flags, input, err := cli.ParseBatch(args)
	if err != nil {
		return err
	}
	table, err := a.loadTable()
	if err != nil {
		return err
	}
	if _, err := table.Build(); err != nil {
		return fmt.Errorf("invalid option table: %w", err)
	}
	vectors, err := batch.Open(input)
	if err != nil {
		return err
	}
	jobs := flags.Jobs
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}
	log.Printf("parsing %d vectors from %s with %d jobs", len(vectors), input, jobs)

	var progress func(int)
	errFile, _ := a.stderr.(*os.File)
	if !a.flags.Verbose && tui.IsTerminal(errFile) {
		p := tui.NewProgress(a.stderr, "parsed", len(vectors), tui.ColorEnabled(errFile))
		p.Start()
		defer p.Stop()
		progress = p.Set
	}
	outcomes, err := batch.Run(ctx, table, vectors, jobs, progress)
	if err != nil {
		return err
	}

	results := make([]report.Result, len(outcomes))
	failed := 0
	for i, out := range outcomes {
		results[i] = report.FromBound(out.Bound, out.Vector.Args, out.Err)
		results[i].Line = out.Vector.Line
		if out.Err != nil {
			failed++
		}
	}
	if err := a.writeResults(flags.Output, results); err != nil {
		return err
	}
	log.Printf("%d of %d vectors failed", failed, len(vectors))
	if failed > 0 {
		return fmt.Errorf("%d of %d vectors failed to parse", failed, len(vectors))
	}
	return nil
}

func (a *app) writeResults(path string, results []report.Result) error {
	if path == "" {
		return a.writer.Write(a.stdout, results...)
	}
	w, err := codecutil.CreateFile(path)
	if err != nil {
		return err
	}
	// Files never get color codes.
	fw := a.writer
	fw.Color = false
	if err := fw.Write(w, results...); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Printf("wrote report to %s", path)
	return nil
}

func (a *app) handleDemo(_ context.Context, args []string) error {
	return runDemo(a.stdout, cli.ParseDemo(args))
}

type versionInfo struct {
	Version    string `json:"version"`
	Major      uint64 `json:"major"`
	Minor      uint64 `json:"minor"`
	Patch      uint64 `json:"patch"`
	Prerelease string `json:"prerelease,omitempty"`
	GoVersion  string `json:"goVersion"`
}

func (a *app) handleVersion(_ context.Context, args []string) error {
	flags, err := cli.ParseVersion(args)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", version, err)
	}
	if !flags.JSON {
		fmt.Fprintf(a.stdout, "clarum %s\n", v)
		return nil
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(versionInfo{
		Version:    v.String(),
		Major:      v.Major(),
		Minor:      v.Minor(),
		Patch:      v.Patch(),
		Prerelease: v.Prerelease(),
		GoVersion:  runtime.Version(),
	})
}
