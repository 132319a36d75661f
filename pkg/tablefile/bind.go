// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tablefile

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"github.com/yeetrun/clarum/pkg/clarum"
	"github.com/yeetrun/clarum/pkg/decodeutil"
)

// Kind selects an option's decoder and slot type.
type Kind string

const (
	KindFlag       Kind = "flag"
	KindBool       Kind = "bool"
	KindUint       Kind = "uint"
	KindInt        Kind = "int"
	KindString     Kind = "string"
	KindStringCopy Kind = "string-copy"
	KindDuration   Kind = "duration"
	KindEnum       Kind = "enum"
	KindSemver     Kind = "semver"
	KindUUID       Kind = "uuid"
	KindDigest     Kind = "digest"
	KindCount      Kind = "count"
	KindNone       Kind = "none"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	KindFlag, KindBool, KindUint, KindInt, KindString, KindStringCopy,
	KindDuration, KindEnum, KindSemver, KindUUID, KindDigest, KindCount, KindNone,
}

// Bound is a table bound to a fresh parser and output slots. Each Bound
// owns its state and may be parsed on its own goroutine.
type Bound struct {
	Parser *clarum.Parser
	kinds  []Kind
}

// Build validates the table and returns a new Bound. Defaults are decoded
// with the option's own decoder, so a default must be valid input. A count
// default is the starting count.
func (t *Table) Build() (*Bound, error) {
	if t == nil {
		return nil, &clarum.Error{Kind: clarum.NullReference, Err: fmt.Errorf("nil table")}
	}
	b := &Bound{
		Parser: &clarum.Parser{Lenient: t.Lenient, Options: make([]clarum.Option, 0, len(t.Options))},
		kinds:  make([]Kind, 0, len(t.Options)),
	}
	for i, spec := range t.Options {
		o, kind, err := spec.option()
		if err != nil {
			return nil, fmt.Errorf("option %d (%s): %w", i+1, spec.key(), err)
		}
		b.Parser.Options = append(b.Parser.Options, o)
		b.kinds = append(b.kinds, kind)
	}
	if err := b.Parser.Validate(); err != nil {
		return nil, err
	}
	// Values is keyed by Key, so a tag-only option must not reuse another
	// option's name.
	keys := make(map[string]int, len(b.Parser.Options))
	for i := range b.Parser.Options {
		key := b.Parser.Options[i].Key()
		if j, ok := keys[key]; ok {
			return nil, illegal("options %d and %d share key %q", j+1, i+1, key)
		}
		keys[key] = i
	}
	return b, nil
}

func (s OptionSpec) option() (clarum.Option, Kind, error) {
	o := clarum.Option{
		Name:     s.Name,
		Synonym:  s.Synonym,
		Terminal: s.Terminal,
		Required: s.Required,
	}
	switch len(s.Tag) {
	case 0:
	case 1:
		o.Tag = s.Tag[0]
	default:
		return o, "", illegal("tag %q is longer than one character", s.Tag)
	}

	kind := s.Kind
	if kind == "" {
		kind = KindFlag
	}
	switch kind {
	case KindFlag, KindBool:
		o.Decoder, o.Value = clarum.Bool, new(bool)
	case KindUint:
		o.Decoder, o.Value = clarum.Uint, new(uint64)
	case KindInt:
		o.Decoder, o.Value = decodeutil.Int, new(int64)
	case KindString:
		o.Decoder, o.Value = clarum.StringRef, new(string)
	case KindStringCopy:
		if s.Size <= 0 {
			return o, kind, illegal("string-copy needs a positive size")
		}
		buf := make([]byte, 0, s.Size)
		o.Decoder, o.Value = clarum.StringCopy, &buf
	case KindDuration:
		o.Decoder, o.Value = decodeutil.Duration, new(time.Duration)
	case KindEnum:
		if len(s.Values) == 0 {
			return o, kind, illegal("enum needs values")
		}
		o.Decoder, o.Value = decodeutil.Enum(s.Values...), new(string)
	case KindSemver:
		o.Decoder, o.Value = decodeutil.Semver, new(semver.Version)
	case KindUUID:
		o.Decoder, o.Value = decodeutil.UUID, new(uuid.UUID)
	case KindDigest:
		o.Decoder, o.Value = decodeutil.Digest, new(digest.Digest)
	case KindCount:
		n := new(int)
		o.Decoder, o.Value = decodeutil.Count, n
		if s.Default != "" {
			v, err := strconv.Atoi(s.Default)
			if err != nil || v < 0 {
				return o, kind, illegal("count default %q is not a non-negative integer", s.Default)
			}
			*n = v
		}
		return o, kind, nil
	case KindNone:
		if s.Default != "" {
			return o, kind, illegal("kind none takes no default")
		}
		return o, kind, nil
	default:
		return o, kind, illegal("unknown kind %q", kind)
	}

	if s.Default != "" {
		if err := clarum.Apply(o.Decoder, o.Value, s.Default); err != nil {
			return o, kind, fmt.Errorf("default %q: %w", s.Default, err)
		}
	}
	return o, kind, nil
}

func illegal(format string, args ...any) error {
	return &clarum.Error{Kind: clarum.IllegalInput, Err: fmt.Errorf(format, args...)}
}

// Parse runs the bound parser over args.
func (b *Bound) Parse(args []string) error {
	return b.Parser.Parse(args)
}

// Kind returns the kind of the i'th option.
func (b *Bound) Kind(i int) Kind {
	return b.kinds[i]
}

// Values returns the current slot contents keyed by option key. Slot values
// are flattened to bool, uint64, int64, int or string; kind none maps to
// whether the option matched.
func (b *Bound) Values() map[string]any {
	out := make(map[string]any, len(b.Parser.Options))
	for i := range b.Parser.Options {
		o := &b.Parser.Options[i]
		out[o.Key()] = Value(o)
	}
	return out
}

// Value flattens an option's slot to a plain value suitable for encoding.
func Value(o *clarum.Option) any {
	switch v := o.Value.(type) {
	case nil:
		return o.Matched()
	case *bool:
		return *v
	case *uint64:
		return *v
	case *uint:
		return uint64(*v)
	case *int64:
		return *v
	case *int:
		return *v
	case *string:
		return *v
	case *[]byte:
		return string(*v)
	case *time.Duration:
		return v.String()
	case *semver.Version:
		return v.String()
	case *uuid.UUID:
		return v.String()
	case *digest.Digest:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(o.Value)
}
