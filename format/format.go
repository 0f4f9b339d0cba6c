// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package format turns the raw content of configuration files into
// normalized configuration trees.
//
// Each supported serialization format is an [Adapter]. Adapters only ever
// produce nil, bool, int64, float64, string, time.Time, []any and
// map[string]any values; they never construct application defined types
// from file content.
package format

import (
	"fmt"
	"strings"

	"github.com/z5labs/confstack/tree"
)

// Adapter parses one serialization format.
type Adapter interface {
	// Parse converts content into a normalized tree. Empty content, or
	// content holding only whitespace and comments, yields an empty tree.
	Parse(content []byte) (tree.Tree, error)

	// Extensions lists the file extensions, without a leading dot, that
	// files in this format may carry, from most to least generic.
	Extensions() []string
}

// Style selects an [Adapter].
type Style int

const (
	YAML Style = iota
	TOML
	JSON
	INI
)

// String implements the [fmt.Stringer] interface.
func (s Style) String() string {
	switch s {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	case JSON:
		return "json"
	case INI:
		return "ini"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// UnsupportedStyleError occurs when a format other than YAML, TOML, JSON or
// INI is requested.
type UnsupportedStyleError struct {
	Style string
}

// Error implements the error interface.
func (e UnsupportedStyleError) Error() string {
	return fmt.Sprintf("config style must be one of yaml, toml, json, ini: %q", e.Style)
}

// ParseStyle looks up a Style by its case insensitive name.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "json":
		return JSON, nil
	case "ini":
		return INI, nil
	default:
		return 0, UnsupportedStyleError{Style: name}
	}
}

// For returns the Adapter for s.
func For(s Style) (Adapter, error) {
	switch s {
	case YAML:
		return Yaml{}, nil
	case TOML:
		return Toml{}, nil
	case JSON:
		return Json{}, nil
	case INI:
		return Ini{}, nil
	default:
		return nil, UnsupportedStyleError{Style: s.String()}
	}
}

var genericExtensions = []string{"cfg", "config"}

func extensions(specific ...string) []string {
	exts := make([]string, 0, len(genericExtensions)+len(specific))
	exts = append(exts, genericExtensions...)
	return append(exts, specific...)
}

// ParseError occurs when content selected for reading is malformed.
type ParseError struct {
	// Source names where the content came from, usually a file path.
	// Adapters leave it empty; callers fill it in.
	Source string

	// Line and Column are 1-based and zero when unknown.
	Line   int
	Column int

	Message string
	Cause   error
}

// Error implements the error interface.
func (e ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("failed to parse config")
	if e.Source != "" {
		fmt.Fprintf(&sb, " in %s", e.Source)
	}
	switch {
	case e.Line > 0 && e.Column > 0:
		fmt.Fprintf(&sb, " at line %d, column %d", e.Line, e.Column)
	case e.Line > 0:
		fmt.Fprintf(&sb, " at line %d", e.Line)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ParseError) Unwrap() error {
	return e.Cause
}

// NotAMappingError occurs when the top level value of a config file is
// something other than a mapping, e.g. a bare list or scalar.
type NotAMappingError struct {
	Kind string
}

// Error implements the error interface.
func (e NotAMappingError) Error() string {
	return fmt.Sprintf("top level value must be a mapping, found %s", e.Kind)
}

func notAMapping(kind string) ParseError {
	err := NotAMappingError{Kind: kind}
	return ParseError{
		Message: err.Error(),
		Cause:   err,
	}
}

// lineColumn converts a byte offset in content into a 1-based line and column.
func lineColumn(content []byte, offset int64) (int, int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}
	line, col := 1, 1
	for _, b := range content[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

func isBlank(content []byte) bool {
	return len(strings.TrimSpace(string(content))) == 0
}
