// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package paths discovers the configuration files an application should
// read, following either the XDG base directory convention or the classic
// Unix layout of /etc files and home directory dotfiles.
package paths

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Convention selects where configuration files are searched for.
type Convention int

const (
	// XDG searches $XDG_CONFIG_DIRS and $XDG_CONFIG_HOME.
	XDG Convention = iota

	// Classic searches /etc/<app>, /etc/<app>rc, /etc/<app>/,
	// ~/.<app>, ~/.<app>rc and ~/.<app>/.
	Classic
)

// String implements the [fmt.Stringer] interface.
func (c Convention) String() string {
	switch c {
	case XDG:
		return "xdg"
	case Classic:
		return "classic"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// Tier is the coarse priority class of a config file.
type Tier int

const (
	System Tier = iota
	User
)

// String implements the [fmt.Stringer] interface.
func (t Tier) String() string {
	switch t {
	case System:
		return "system"
	case User:
		return "user"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Source is an existing, readable config file.
type Source struct {
	Path string
	Tier Tier

	// Rank orders sources within a tier. Higher ranks take priority.
	Rank int
}

// Sources are the files found for each tier, each ordered from lowest to
// highest priority.
type Sources struct {
	System []Source
	User   []Source
}

// All returns every source in merge order, system tier first.
func (s Sources) All() []Source {
	all := make([]Source, 0, len(s.System)+len(s.User))
	all = append(all, s.System...)
	return append(all, s.User...)
}

// Candidates supplies the file basenames tried within a directory.
type Candidates interface {
	// Constrained is used where the directory does not identify the app.
	Constrained(base string) []string

	// DirConstrained is used where the directory identifies the app.
	DirConstrained(base string) []string

	// Dotted is used for hidden files in the home directory.
	Dotted(base string) []string
}

// InvalidAppIDError occurs when an application identifier is not a
// lowercase letter followed by lowercase letters, digits or underscores.
type InvalidAppIDError struct {
	AppID string
}

// Error implements the error interface.
func (e InvalidAppIDError) Error() string {
	return fmt.Sprintf("app id may only contain lowercase letters, digits and underscores and must start with a letter: %q", e.AppID)
}

var appIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Option configures a Resolver.
type Option func(*Resolver)

// WithConvention selects the search convention. The default is XDG.
func WithConvention(c Convention) Option {
	return func(r *Resolver) {
		r.convention = c
	}
}

// RootPrefix joins prefix in front of every path searched, which sandboxes
// the search under a different filesystem root.
func RootPrefix(prefix string) Option {
	return func(r *Resolver) {
		r.rootPrefix = strings.TrimSpace(prefix)
	}
}

// WithEnv replaces the process environment consulted during resolution.
func WithEnv(env Env) Option {
	return func(r *Resolver) {
		r.env = env
	}
}

// Resolver computes the ordered config files of one application.
type Resolver struct {
	appID      string
	convention Convention
	rootPrefix string
	env        Env
}

// NewResolver validates appID and returns a Resolver for it.
func NewResolver(appID string, opts ...Option) (*Resolver, error) {
	if !appIDPattern.MatchString(appID) {
		return nil, InvalidAppIDError{AppID: appID}
	}

	r := &Resolver{
		appID:      appID,
		convention: XDG,
		env:        OSEnv(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// AppID returns the application identifier.
func (r *Resolver) AppID() string {
	return r.appID
}

// Env returns the environment the Resolver consults.
func (r *Resolver) Env() Env {
	return r.env
}

// SysConfigVar names the variable that overrides the system tier search.
func (r *Resolver) SysConfigVar() string {
	return strings.ToUpper(r.appID) + "_SYS_CONFIG"
}

// UserConfigVar names the variable that overrides the user tier search.
func (r *Resolver) UserConfigVar() string {
	return strings.ToUpper(r.appID) + "_CONFIG"
}

// Resolve returns the readable config files for baseName, which defaults
// to the application identifier when empty.
//
// When a tier's override variable is set, the file it names is the only
// candidate for that tier, even if it turns out to be unreadable.
// Unreadable or missing candidates are skipped silently.
func (r *Resolver) Resolve(baseName string, c Candidates) Sources {
	base := strings.TrimSpace(baseName)
	if base == "" {
		base = r.appID
	}

	var sys, usr []string
	if p, ok := r.env.Lookup(r.SysConfigVar()); ok {
		sys = r.override(p)
	} else if r.convention == Classic {
		sys = r.classicSystem(base, c)
	} else {
		sys = r.xdgSystem(base, c)
	}

	if p, ok := r.env.Lookup(r.UserConfigVar()); ok {
		usr = r.override(p)
	} else if r.convention == Classic {
		usr = r.classicUser(base, c)
	} else {
		usr = r.xdgUser(base, c)
	}

	return Sources{
		System: rank(System, sys),
		User:   rank(User, usr),
	}
}

func rank(tier Tier, paths []string) []Source {
	srcs := make([]Source, 0, len(paths))
	for i, p := range paths {
		srcs = append(srcs, Source{Path: p, Tier: tier, Rank: i})
	}
	return srcs
}

// path expands p and places it under the root prefix.
func (r *Resolver) path(p string) string {
	abs := r.env.Expand(p)
	if r.rootPrefix == "" {
		return abs
	}
	return filepath.Join(r.rootPrefix, abs)
}

func (r *Resolver) override(p string) []string {
	path := r.path(p)
	if !r.env.readable(path) {
		return nil
	}
	return []string{path}
}

// firstIn returns the first readable file in dir among names.
func (r *Resolver) firstIn(dir string, names []string) (string, bool) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if r.env.readable(p) {
			return p, true
		}
	}
	return "", false
}

func (r *Resolver) xdgSystem(base string, c Candidates) []string {
	var dirs []string
	if v, ok := r.env.Lookup("XDG_CONFIG_DIRS"); ok {
		for _, d := range strings.Split(v, ":") {
			if strings.TrimSpace(d) == "" {
				continue
			}
			dirs = append(dirs, d)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{"/etc/xdg"}
	}

	var found []string
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := r.path(filepath.Join(dirs[i], r.appID))
		if p, ok := r.firstIn(dir, c.DirConstrained(base)); ok {
			found = append(found, p)
		}
	}
	return found
}

func (r *Resolver) xdgUser(base string, c Candidates) []string {
	home, ok := r.env.Lookup("XDG_CONFIG_HOME")
	if !ok {
		home = "~/.config"
	}

	dir := r.path(filepath.Join(home, r.appID))
	if !r.env.isDir(dir) {
		return nil
	}
	if p, ok := r.firstIn(dir, c.DirConstrained(base)); ok {
		return []string{p}
	}
	return nil
}

func (r *Resolver) classicSystem(base string, c Candidates) []string {
	for _, name := range []string{base, base + "rc"} {
		p := r.path(filepath.Join("/etc", name))
		if r.env.readable(p) {
			return []string{p}
		}
	}

	dir := r.path(filepath.Join("/etc", r.appID))
	if p, ok := r.firstIn(dir, c.DirConstrained(base)); ok {
		return []string{p}
	}
	return nil
}

func (r *Resolver) classicUser(base string, c Candidates) []string {
	if p, ok := r.firstIn(r.path("~"), c.Dotted(base)); ok {
		return []string{p}
	}

	dir := r.path(filepath.Join("~", "."+r.appID))
	if p, ok := r.firstIn(dir, c.DirConstrained(base)); ok {
		return []string{p}
	}
	return nil
}
