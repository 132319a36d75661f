// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decodeutil provides option decoders beyond the built-in ones in
// package clarum. They follow the same contract: an absent value or an
// unusable slot is a NullReference error, undecodable text is IllegalInput.
package decodeutil

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"github.com/yeetrun/clarum/pkg/clarum"
)

var errValueRequired = errors.New("value required")

var (
	// Int stores a signed decimal into a *int64.
	Int = valueDecoder("*int64", func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})

	// Duration stores a time.ParseDuration value into a *time.Duration.
	Duration = valueDecoder("*time.Duration", time.ParseDuration)

	// Semver stores a semantic version into a *semver.Version.
	Semver = valueDecoder("*semver.Version", func(s string) (semver.Version, error) {
		v, err := semver.NewVersion(s)
		if err != nil {
			return semver.Version{}, err
		}
		return *v, nil
	})

	// UUID stores a UUID in any of the forms accepted by uuid.Parse into a
	// *uuid.UUID.
	UUID = valueDecoder("*uuid.UUID", uuid.Parse)

	// Digest stores a validated "algorithm:hex" content digest into a
	// *digest.Digest.
	Digest = valueDecoder("*digest.Digest", digest.Parse)

	// Count increments an *int on every match and ignores any value, so -vvv
	// counts three.
	Count clarum.Decoder = clarum.DecoderFunc(func(_ *clarum.Parser, o *clarum.Option) error {
		slot, ok := o.Value.(*int)
		if !ok || slot == nil {
			return slotError(o, "*int")
		}
		*slot++
		return nil
	})
)

// valueDecoder builds a decoder that requires a value, parses it and stores
// the result into a *T.
func valueDecoder[T any](want string, parse func(string) (T, error)) clarum.Decoder {
	return clarum.DecoderFunc(func(_ *clarum.Parser, o *clarum.Option) error {
		slot, ok := o.Value.(*T)
		if !ok || slot == nil {
			return slotError(o, want)
		}
		arg, present := o.Argument()
		if !present {
			return &clarum.Error{Kind: clarum.NullReference, Err: errValueRequired}
		}
		v, err := parse(arg)
		if err != nil {
			return &clarum.Error{Kind: clarum.IllegalInput, Err: err}
		}
		*slot = v
		return nil
	})
}

// Enum stores the value into a *string if it is one of values. Matching is
// case-sensitive.
func Enum(values ...string) clarum.Decoder {
	allowed := slices.Clone(values)
	return valueDecoder("*string", func(s string) (string, error) {
		if !slices.Contains(allowed, s) {
			return "", fmt.Errorf("%q is not one of %s", s, strings.Join(allowed, "|"))
		}
		return s, nil
	})
}

// Chain runs decoders in order against the same option and stops at the
// first error. Nil entries are skipped.
func Chain(decoders ...clarum.Decoder) clarum.Decoder {
	return clarum.DecoderFunc(func(p *clarum.Parser, o *clarum.Option) error {
		for _, d := range decoders {
			if d == nil {
				continue
			}
			if err := d.Decode(p, o); err != nil {
				return err
			}
		}
		return nil
	})
}

func slotError(o *clarum.Option, want string) error {
	if o.Value == nil {
		return &clarum.Error{Kind: clarum.NullReference, Err: fmt.Errorf("no value slot, want %s", want)}
	}
	return &clarum.Error{Kind: clarum.NullReference, Err: fmt.Errorf("value slot is %T, want %s", o.Value, want)}
}
