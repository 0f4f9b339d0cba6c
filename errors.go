// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"errors"
	"fmt"

	"github.com/z5labs/confstack/format"
)

// InvalidArgumentError occurs when a Reader is configured with a malformed
// app id or an unsupported config style.
type InvalidArgumentError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid reader argument: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidArgumentError) Unwrap() error {
	return e.Cause
}

// SourceError occurs when a config file that was selected for reading
// could not be turned into a tree. The Cause is usually a [format.ParseError].
type SourceError struct {
	Source string
	Cause  error
}

// Error implements the [builtin.error] interface. A cause that already
// names the same source is reported on its own.
func (e SourceError) Error() string {
	var perr format.ParseError
	if errors.As(e.Cause, &perr) && perr.Source == e.Source {
		return e.Cause.Error()
	}
	return fmt.Sprintf("failed to load config from %s: %s", e.Source, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e SourceError) Unwrap() error {
	return e.Cause
}

// ReadFileError occurs when a discovered config file can no longer be read.
type ReadFileError struct {
	Path  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ReadFileError) Error() string {
	return fmt.Sprintf("failed to read config file %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ReadFileError) Unwrap() error {
	return e.Cause
}
