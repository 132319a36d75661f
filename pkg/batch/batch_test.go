// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/clarum/pkg/clarum"
	"github.com/yeetrun/clarum/pkg/codecutil"
	"github.com/yeetrun/clarum/pkg/tablefile"
)

func TestFields(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"prog -r", []string{"prog", "-r"}},
		{"  prog\t-r   --jobs=4 ", []string{"prog", "-r", "--jobs=4"}},
		{`prog "--filter=*.go files"`, []string{"prog", "--filter=*.go files"}},
		{`prog --filter="a b"`, []string{"prog", "--filter=a b"}},
		{`prog "" x`, []string{"prog", "", "x"}},
		{`prog "say \"hi\""`, []string{"prog", `say "hi"`}},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := Fields(tt.in)
		if err != nil {
			t.Fatalf("Fields(%q) error: %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Fields(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
	if _, err := Fields(`prog "open`); err == nil {
		t.Fatalf("expected error for unterminated quote")
	}
}

func TestRead(t *testing.T) {
	in := strings.Join([]string{
		"# vectors",
		"prog -r",
		"",
		"   ",
		"prog --jobs=4 file",
		"  # indented comment",
	}, "\n")
	got, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	want := []Vector{
		{Line: 2, Args: []string{"prog", "-r"}},
		{Line: 5, Args: []string{"prog", "--jobs=4", "file"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Read mismatch (-want +got):\n%s", diff)
	}

	if _, err := Read(strings.NewReader("prog\nprog \"x\n")); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("Read error = %v, want line 2 error", err)
	}
}

func TestOpenZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.zst")
	w, err := codecutil.CreateFile(path)
	if err != nil {
		t.Fatalf("CreateFile error: %v", err)
	}
	io.WriteString(w, "prog -r\nprog -j=2\n")
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	vectors, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("vectors = %d, want 2", len(vectors))
	}
}

var testTable = &tablefile.Table{Options: []tablefile.OptionSpec{
	{Tag: "r", Kind: tablefile.KindFlag},
	{Tag: "j", Name: "jobs", Kind: tablefile.KindUint, Default: "1"},
}}

func TestRunKeepsOrder(t *testing.T) {
	var vectors []Vector
	for i := range 50 {
		vectors = append(vectors, Vector{Line: i + 1, Args: []string{"prog", fmt.Sprintf("--jobs=%d", i)}})
	}
	vectors = append(vectors, Vector{Line: 51, Args: []string{"prog", "-x"}})

	var calls atomic.Int32
	outcomes, err := Run(context.Background(), testTable, vectors, 4, func(done int) {
		calls.Add(1)
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(outcomes) != len(vectors) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(vectors))
	}
	for i, out := range outcomes[:50] {
		if out.Err != nil {
			t.Fatalf("vector %d error: %v", i, out.Err)
		}
		if out.Vector.Line != i+1 {
			t.Fatalf("outcome %d is for line %d", i, out.Vector.Line)
		}
		if got := out.Bound.Values()["jobs"]; got != uint64(i) {
			t.Fatalf("outcome %d jobs = %v, want %d", i, got, i)
		}
	}
	if last := outcomes[50]; !errors.Is(last.Err, clarum.ErrUnknownOption) {
		t.Fatalf("last outcome error = %v, want ErrUnknownOption", last.Err)
	}
	if got := calls.Load(); got != int32(len(vectors)) {
		t.Fatalf("progress calls = %d, want %d", got, len(vectors))
	}
}

func TestRunBadTable(t *testing.T) {
	table := &tablefile.Table{Options: []tablefile.OptionSpec{{Name: "x", Kind: "float"}}}
	outcomes, err := Run(context.Background(), table, []Vector{{Line: 1, Args: []string{"prog"}}}, 0, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcomes[0].Bound != nil || !errors.Is(outcomes[0].Err, clarum.ErrIllegalInput) {
		t.Fatalf("outcome = %+v, want build failure", outcomes[0])
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	vectors := []Vector{{Line: 1, Args: []string{"prog"}}, {Line: 2, Args: []string{"prog"}}}
	if _, err := Run(ctx, testTable, vectors, 1, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}
