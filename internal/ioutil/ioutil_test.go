// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ioutil

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

type closeFailReader struct {
	*strings.Reader
	closeErr error
	closed   bool
}

func (r *closeFailReader) Close() error {
	r.closed = true
	return r.closeErr
}

type readFunc func([]byte) (int, error)

func (f readFunc) Read(b []byte) (int, error) {
	return f(b)
}

func TestReadFile(t *testing.T) {
	t.Run("will return the file content", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		err := afero.WriteFile(memFs, "/etc/xdg/labrat/config.yml", []byte("printer: seiko3\n"), 0o644)
		if !assert.Nil(t, err) {
			return
		}

		b, err := ReadFile(memFs, "/etc/xdg/labrat/config.yml")
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "printer: seiko3\n", string(b)) {
			return
		}
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the file does not exist", func(t *testing.T) {
			_, err := ReadFile(afero.NewMemMapFs(), "/missing")
			if !assert.ErrorIs(t, err, fs.ErrNotExist) {
				return
			}
		})
	})
}

func TestReadAllAndTryClose(t *testing.T) {
	t.Run("will close the reader", func(t *testing.T) {
		r := &closeFailReader{Reader: strings.NewReader("hello")}

		b, err := ReadAllAndTryClose(r)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "hello", string(b)) {
			return
		}
		if !assert.True(t, r.closed) {
			return
		}
	})

	t.Run("will return a CloseError", func(t *testing.T) {
		t.Run("if closing fails", func(t *testing.T) {
			closeErr := errors.New("failed to close")
			r := &closeFailReader{Reader: strings.NewReader("hello"), closeErr: closeErr}

			_, err := ReadAllAndTryClose(r)

			var cerr CloseError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
			if !assert.ErrorIs(t, err, closeErr) {
				return
			}
			if !assert.NotEmpty(t, cerr.Error()) {
				return
			}
		})
	})

	t.Run("will return the read error", func(t *testing.T) {
		t.Run("if the io.Reader fails", func(t *testing.T) {
			readErr := errors.New("failed to read")
			r := readFunc(func(b []byte) (int, error) {
				return 0, readErr
			})

			_, err := ReadAllAndTryClose(r)
			if !assert.ErrorIs(t, err, readErr) {
				return
			}
		})
	})
}
