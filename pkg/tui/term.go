// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// ColorEnabled reports whether output to f should use ANSI colors. NO_COLOR
// and a dumb or empty TERM disable colors even on a terminal.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch os.Getenv("TERM") {
	case "", "dumb":
		return false
	}
	return IsTerminal(f)
}

// ParseColorMode resolves a --color value of auto, always or never against f.
func ParseColorMode(mode string, f *os.File) (bool, error) {
	switch mode {
	case "", "auto":
		return ColorEnabled(f), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	}
	return false, fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
}
