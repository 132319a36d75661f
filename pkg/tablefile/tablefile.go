// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tablefile loads declarative option tables from TOML or YAML files
// and binds them to a clarum.Parser with typed output slots.
package tablefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the table file looked up by Find.
	FileName = "clarum.toml"
	// EnvVar names a table file when no flag is given.
	EnvVar = "CLARUM_TABLE"
)

// Format is a table file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Table is an option table as written in a table file.
type Table struct {
	Lenient bool         `toml:"lenient,omitempty" yaml:"lenient,omitempty" json:"lenient,omitempty"`
	Options []OptionSpec `toml:"options" yaml:"options" json:"options"`
}

// OptionSpec declares one option. Tag is at most one character.
type OptionSpec struct {
	Tag      string   `toml:"tag,omitempty" yaml:"tag,omitempty" json:"tag,omitempty"`
	Name     string   `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Synonym  string   `toml:"synonym,omitempty" yaml:"synonym,omitempty" json:"synonym,omitempty"`
	Kind     Kind     `toml:"kind,omitempty" yaml:"kind,omitempty" json:"kind,omitempty"`
	Default  string   `toml:"default,omitempty" yaml:"default,omitempty" json:"default,omitempty"`
	Size     int      `toml:"size,omitempty" yaml:"size,omitempty" json:"size,omitempty"`
	Values   []string `toml:"values,omitempty" yaml:"values,omitempty" json:"values,omitempty"`
	Terminal bool     `toml:"terminal,omitempty" yaml:"terminal,omitempty" json:"terminal,omitempty"`
	Required bool     `toml:"required,omitempty" yaml:"required,omitempty" json:"required,omitempty"`
}

// key mirrors clarum.Option.Key for error messages before an option exists.
func (s OptionSpec) key() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Synonym != "":
		return s.Synonym
	}
	return s.Tag
}

// FormatFor picks the format from a file extension. Anything other than
// .yaml or .yml is TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// Load reads the table file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// Decode reads a table in the given format. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (*Table, error) {
	var t Table
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&t)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown table format %q", format)
	}
	return &t, nil
}

// Find walks up from startDir looking for FileName. It returns an error
// satisfying errors.Is(err, os.ErrNotExist) when there is none.
func Find(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// Resolve returns the table path to use: flag if set, else env, else the
// nearest FileName at or above cwd.
func Resolve(flag, env, cwd string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env != "" {
		return env, nil
	}
	path, err := Find(cwd)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("no table given and no %s found above %s: %w", FileName, cwd, err)
		}
		return "", err
	}
	return path, nil
}
