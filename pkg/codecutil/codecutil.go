// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codecutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic is the frame header of a zstd stream.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	if z.f == nil {
		return nil
	}
	return z.f.Close()
}

// OpenFile opens path for reading. Zstd compressed files are decompressed
// transparently regardless of their extension.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := newReader(f, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return rc, nil
}

// NewReader wraps r so zstd compressed input is decompressed and anything
// else passes through. Closing the result does not close r.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	return newReader(r, nil)
}

func newReader(r io.Reader, f *os.File) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(head, zstdMagic) {
		return passthrough{Reader: br, f: f}, nil
	}
	decoder, err := zstd.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &zstdReadCloser{Decoder: decoder, f: f}, nil
}

type passthrough struct {
	io.Reader
	f *os.File
}

func (p passthrough) Close() error {
	if p.f == nil {
		return nil
	}
	return p.f.Close()
}

// CreateFile creates path for writing. A ".zst" extension makes the
// written stream zstd compressed.
func CreateFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) != ".zst" {
		return f, nil
	}
	encoder, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &zstdWriteCloser{Encoder: encoder, f: f}, nil
}

type zstdWriteCloser struct {
	*zstd.Encoder
	f *os.File
}

func (z *zstdWriteCloser) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.f.Close()
		return err
	}
	return z.f.Close()
}
