// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Progress draws a one-line "label done/total" spinner until stopped.
type Progress struct {
	out      io.Writer
	label    string
	total    int
	interval time.Duration
	frame    *color.Color

	mu     sync.Mutex
	done   int
	idx    int
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewProgress returns a stopped Progress writing to out.
func NewProgress(out io.Writer, label string, total int, colored bool) *Progress {
	frame := color.New(color.FgCyan)
	if colored {
		frame.EnableColor()
	} else {
		frame.DisableColor()
	}
	return &Progress{
		out:      out,
		label:    label,
		total:    total,
		interval: 120 * time.Millisecond,
		frame:    frame,
	}
}

// Start begins redrawing on a ticker. Calling Start twice is a no-op.
func (p *Progress) Start() {
	p.mu.Lock()
	if p.stopCh != nil {
		p.mu.Unlock()
		return
	}
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	p.stopCh, p.doneCh = stopCh, doneCh
	p.mu.Unlock()

	p.render()
	go func() {
		defer close(doneCh)
		t := time.NewTicker(p.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.mu.Lock()
				p.idx = (p.idx + 1) % len(frames)
				p.mu.Unlock()
				p.render()
			case <-stopCh:
				return
			}
		}
	}()
}

// Set records the number of finished items. It is safe to call from any
// goroutine.
func (p *Progress) Set(done int) {
	p.mu.Lock()
	p.done = done
	p.mu.Unlock()
}

// Stop halts the spinner and clears its line.
func (p *Progress) Stop() {
	p.mu.Lock()
	stopCh, doneCh := p.stopCh, p.doneCh
	p.stopCh = nil
	p.mu.Unlock()
	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
	fmt.Fprint(p.out, "\r\033[K")
}

func (p *Progress) render() {
	p.mu.Lock()
	line := fmt.Sprintf("%s %s %d/%d", p.frame.Sprint(frames[p.idx]), p.label, p.done, p.total)
	p.mu.Unlock()
	fmt.Fprintf(p.out, "\r\033[K%s", line)
}
