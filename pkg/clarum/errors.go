// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clarum

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// NullReference reports an absent parser, argument vector, value slot or
	// required argument.
	NullReference ErrorKind = iota + 1
	// IllegalInput reports malformed token syntax or an undecodable value.
	IllegalInput
	// UnknownOption reports an unrecognized token under strict policy.
	UnknownOption
	// MissingOption reports a required option that was never matched.
	MissingOption
)

func (k ErrorKind) String() string {
	switch k {
	case NullReference:
		return "null reference"
	case IllegalInput:
		return "illegal input"
	case UnknownOption:
		return "unknown option"
	case MissingOption:
		return "missing option"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinel errors, one per kind. Every *Error matches its kind's sentinel
// with errors.Is.
var (
	ErrNullReference = errors.New("null reference")
	ErrIllegalInput  = errors.New("illegal input")
	ErrUnknownOption = errors.New("unknown option")
	ErrMissingOption = errors.New("missing option")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case NullReference:
		return ErrNullReference
	case IllegalInput:
		return ErrIllegalInput
	case UnknownOption:
		return ErrUnknownOption
	case MissingOption:
		return ErrMissingOption
	}
	return nil
}

// Error is returned by Parse and by the built-in decoders.
type Error struct {
	Kind   ErrorKind
	Token  string // The argv token being processed, if any
	Option string // Display name of the option involved (e.g. "--jobs" or "-j"), if any
	Err    error  // Underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Option != "" {
		msg += " " + e.Option
	} else if e.Token != "" {
		msg += fmt.Sprintf(" %q", e.Token)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
