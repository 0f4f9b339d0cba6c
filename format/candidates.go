// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package format

// Candidates derives the file basenames tried for a config file from an
// Adapter's extensions.
type Candidates struct {
	exts []string
}

// CandidatesFor returns the Candidates for a.
func CandidatesFor(a Adapter) Candidates {
	return Candidates{exts: a.Extensions()}
}

// Constrained lists basenames for directories that don't identify the
// application on their own, so the name itself must: base, base.ext...
func (c Candidates) Constrained(base string) []string {
	names := []string{base}
	for _, ext := range c.exts {
		names = append(names, base+"."+ext)
	}
	return names
}

// DirConstrained lists basenames for directories that already identify the
// application: the constrained names followed by config, config.ext...
func (c Candidates) DirConstrained(base string) []string {
	names := c.Constrained(base)
	if base == "config" {
		return names
	}
	return append(names, c.Constrained("config")...)
}

// Dotted lists hidden file basenames for the home directory:
// .base, .baserc, .base.ext...
func (c Candidates) Dotted(base string) []string {
	names := []string{"." + base, "." + base + "rc"}
	for _, ext := range c.exts {
		names = append(names, "."+base+"."+ext)
	}
	return names
}
