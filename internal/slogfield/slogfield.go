// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slogfield

import (
	"log/slog"

	"github.com/z5labs/confstack/key"
)

// Any returns an slog.Attr for the supplied value. Config mappings and
// sequences are kept as they are so that masking handlers can walk them.
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Strings returns an slog.Attr for a slice of strings.
func Strings(key string, values []string) slog.Attr {
	return slog.Any(key, values)
}

// KeyChain returns an slog.Attr holding the dotted form of a key path.
func KeyChain(name string, c key.Chain) slog.Attr {
	return slog.String(name, c.Key())
}
