// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ioutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

type CloseError struct {
	Cause error
}

func (e CloseError) Error() string {
	return fmt.Sprintf("failed to close file: %s", e.Cause)
}

func (e CloseError) Unwrap() error {
	return e.Cause
}

// ReadFile reads the whole file at path from fs. The file is always closed
// before returning and a failure to close is joined into the returned error.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	return ReadAllAndTryClose(f)
}

// ReadAllAndTryClose reads r until EOF and closes it if it is an io.Closer.
func ReadAllAndTryClose(r io.Reader) (_ []byte, err error) {
	defer tryClose(&err, r)
	return io.ReadAll(r)
}

func tryClose(err *error, v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}

	closeErr := c.Close()
	if closeErr == nil {
		return
	}

	cerr := CloseError{
		Cause: closeErr,
	}
	if *err == nil {
		*err = cerr
		return
	}
	*err = errors.Join(*err, cerr)
}
