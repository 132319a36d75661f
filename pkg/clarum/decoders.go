// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clarum

import (
	"math"
	"math/bits"
)

// Built-in decoders.
var (
	// Bool stores into a *bool. A missing value means true; otherwise the
	// value must be one of true, yes, on, 1, false, no, off, 0.
	Bool Decoder = DecoderFunc(decodeBool)

	// Uint stores an unsigned decimal into a *uint64 or *uint. The value is
	// required.
	Uint Decoder = DecoderFunc(decodeUint)

	// StringRef points a *string at the inline value. The result shares
	// memory with the argument vector.
	StringRef Decoder = DecoderFunc(decodeStringRef)

	// StringCopy copies the inline value into the capacity of a *[]byte and
	// reslices it to the copied length. The buffer is never grown.
	StringCopy Decoder = DecoderFunc(decodeStringCopy)
)

// maxUintDigits is len("18446744073709551615").
const maxUintDigits = 20

func decodeBool(_ *Parser, o *Option) error {
	slot, ok := o.Value.(*bool)
	if !ok || slot == nil {
		return slotError(o, "*bool")
	}
	arg, present := o.Argument()
	if !present {
		*slot = true
		return nil
	}
	v, err := ParseBool(arg)
	if err != nil {
		return err
	}
	*slot = v
	return nil
}

// ParseBool decodes the case-sensitive boolean words accepted by Bool.
func ParseBool(s string) (bool, error) {
	switch s {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, errorf(IllegalInput, "invalid boolean %q", s)
}

func decodeUint(_ *Parser, o *Option) error {
	arg, present := o.Argument()
	if !present {
		return errorf(NullReference, "value required")
	}
	v, err := ParseUint(arg)
	if err != nil {
		return err
	}
	switch slot := o.Value.(type) {
	case *uint64:
		if slot != nil {
			*slot = v
			return nil
		}
	case *uint:
		if slot != nil {
			if v > math.MaxUint {
				return errorf(IllegalInput, "%q overflows uint", arg)
			}
			*slot = uint(v)
			return nil
		}
	}
	return slotError(o, "*uint64 or *uint")
}

// ParseUint decodes an unsigned decimal without sign, prefix or separators.
// Digits are accumulated left to right and any carry out of 64 bits is an
// IllegalInput error.
func ParseUint(s string) (uint64, error) {
	if s == "" {
		return 0, errorf(IllegalInput, "empty number")
	}
	if len(s) > maxUintDigits {
		return 0, errorf(IllegalInput, "%q is longer than %d digits", s, maxUintDigits)
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, errorf(IllegalInput, "%q is not a decimal number", s)
		}
		hi, lo := bits.Mul64(v, 10)
		sum, carry := bits.Add64(lo, uint64(c-'0'), 0)
		if hi != 0 || carry != 0 {
			return 0, errorf(IllegalInput, "%q overflows uint64", s)
		}
		v = sum
	}
	return v, nil
}

func decodeStringRef(_ *Parser, o *Option) error {
	slot, ok := o.Value.(*string)
	if !ok || slot == nil {
		return slotError(o, "*string")
	}
	arg, present := o.Argument()
	if !present {
		return errorf(NullReference, "value required")
	}
	*slot = arg
	return nil
}

func decodeStringCopy(_ *Parser, o *Option) error {
	slot, ok := o.Value.(*[]byte)
	if !ok || slot == nil {
		return slotError(o, "*[]byte")
	}
	arg, present := o.Argument()
	if !present {
		return errorf(NullReference, "value required")
	}
	buf := *slot
	if cap(buf) < len(arg) {
		return errorf(IllegalInput, "value of %d bytes does not fit buffer of %d", len(arg), cap(buf))
	}
	buf = buf[:len(arg)]
	copy(buf, arg)
	*slot = buf
	return nil
}

func slotError(o *Option, want string) *Error {
	if o.Value == nil {
		return errorf(NullReference, "no value slot, want %s", want)
	}
	return errorf(NullReference, "value slot is %T, want %s", o.Value, want)
}

// Apply runs d against slot as though an option had been matched with the
// inline value arg. It is how default values are stored using the same
// decoding rules as the command line.
func Apply(d Decoder, slot any, arg string) error {
	if d == nil {
		return errorf(NullReference, "nil decoder")
	}
	o := &Option{Value: slot}
	o.match(arg, true)
	return d.Decode(nil, o)
}
