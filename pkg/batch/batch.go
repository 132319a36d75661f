// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package batch parses many argument vectors against one option table.
//
// Each vector gets its own bound parser, so vectors are parsed concurrently
// without sharing any parse state.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yeetrun/clarum/pkg/codecutil"
	"github.com/yeetrun/clarum/pkg/tablefile"
	"golang.org/x/sync/errgroup"
)

// Vector is one argument vector and the input line it came from.
type Vector struct {
	Line int
	Args []string
}

// Outcome is the result of parsing one vector. Bound is nil only when the
// table could not be built.
type Outcome struct {
	Vector Vector
	Bound  *tablefile.Bound
	Err    error
}

// Open reads vectors from the file at path, decompressing zstd input.
func Open(path string) ([]Vector, error) {
	rc, err := codecutil.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	vectors, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return vectors, nil
}

// Read returns one vector per line. Blank lines and lines starting with '#'
// are skipped. Fields are separated by whitespace; double quotes group a
// field and may hold whitespace, and a backslash escapes the next character
// inside quotes.
func Read(r io.Reader) ([]Vector, error) {
	var vectors []Vector
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		args, err := Fields(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		vectors = append(vectors, Vector{Line: line, Args: args})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Fields splits s on whitespace with double-quote grouping. `""` yields an
// empty field.
func Fields(s string) ([]string, error) {
	var (
		fields  []string
		cur     strings.Builder
		inField bool
		quoted  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quoted && c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case quoted && c == '"':
			quoted = false
		case quoted:
			cur.WriteByte(c)
		case c == '"':
			quoted, inField = true, true
		case c == ' ' || c == '\t':
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteByte(c)
			inField = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if inField {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

// Run parses every vector against table using at most jobs goroutines and
// returns the outcomes in input order. Parse failures are reported per
// vector; the returned error is set only if ctx is done before all vectors
// were scheduled. progress, if non-nil, is called after each vector.
func Run(ctx context.Context, table *tablefile.Table, vectors []Vector, jobs int, progress func(done int)) ([]Outcome, error) {
	if jobs < 1 {
		jobs = 1
	}
	outcomes := make([]Outcome, len(vectors))
	done := make(chan struct{}, len(vectors))
	var reported progressPump
	if progress != nil {
		reported.start(done, progress)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	scheduled := 0
	for i, vec := range vectors {
		if gctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = parseOne(table, vec)
			done <- struct{}{}
			return nil
		})
	}

	err := g.Wait()
	close(done)
	reported.wait()
	if err != nil {
		return outcomes, err
	}
	if scheduled < len(vectors) {
		return outcomes, ctx.Err()
	}
	return outcomes, nil
}

func parseOne(table *tablefile.Table, vec Vector) Outcome {
	out := Outcome{Vector: vec}
	b, err := table.Build()
	if err != nil {
		out.Err = err
		return out
	}
	out.Bound = b
	out.Err = b.Parse(vec.Args)
	return out
}

// progressPump forwards completion ticks to a progress callback on one goroutine.
type progressPump struct {
	finished chan struct{}
}

func (s *progressPump) start(done <-chan struct{}, progress func(int)) {
	s.finished = make(chan struct{})
	go func() {
		defer close(s.finished)
		n := 0
		for range done {
			n++
			progress(n)
		}
	}()
}

func (s *progressPump) wait() {
	if s.finished != nil {
		<-s.finished
	}
}
