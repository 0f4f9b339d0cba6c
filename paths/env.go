// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LookupFunc reports the value of the named environment variable and
// whether it is set.
type LookupFunc func(name string) (string, bool)

// Env bundles the process state that path resolution depends on.
//
// Resolution never consults the real process directly, so tests can
// supply a MapEnv and an in-memory filesystem instead.
type Env struct {
	LookupEnv LookupFunc

	// HomeDir replaces a leading ~ in paths.
	HomeDir string

	// WorkDir anchors relative paths.
	WorkDir string

	Fs afero.Fs
}

// OSEnv returns an Env bound to the current process and the OS filesystem.
func OSEnv() Env {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return Env{
		LookupEnv: os.LookupEnv,
		HomeDir:   home,
		WorkDir:   wd,
		Fs:        afero.NewOsFs(),
	}
}

// MapEnv returns a LookupFunc backed by a fixed set of variables.
func MapEnv(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// Lookup returns the value of the named variable. A variable that is
// unset or holds only whitespace is reported as absent.
func (e Env) Lookup(name string) (string, bool) {
	if e.LookupEnv == nil {
		return "", false
	}
	v, ok := e.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Expand turns p into a clean absolute path. A leading ~ is replaced by
// HomeDir and relative paths are resolved against WorkDir.
func (e Env) Expand(p string) string {
	switch {
	case p == "~":
		p = e.home()
	case strings.HasPrefix(p, "~/"):
		p = filepath.Join(e.home(), p[2:])
	}
	if !filepath.IsAbs(p) {
		wd := e.WorkDir
		if wd == "" {
			wd = string(filepath.Separator)
		}
		p = filepath.Join(wd, p)
	}
	return filepath.Clean(p)
}

func (e Env) home() string {
	if e.HomeDir == "" {
		return string(filepath.Separator)
	}
	return e.HomeDir
}

// Filesystem returns Fs, or the OS filesystem if Fs is nil.
func (e Env) Filesystem() afero.Fs {
	if e.Fs == nil {
		return afero.NewOsFs()
	}
	return e.Fs
}

// readable reports whether path names a regular file that can be opened.
func (e Env) readable(path string) bool {
	fs := e.Filesystem()
	info, err := fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	f, err := fs.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func (e Env) isDir(path string) bool {
	info, err := e.Filesystem().Stat(path)
	return err == nil && info.IsDir()
}
