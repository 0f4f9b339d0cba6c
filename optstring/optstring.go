// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package optstring parses flag-like strings such as
// "--page-width=33mm --verbose --no-color" into a flat configuration tree.
package optstring

import (
	"regexp"
	"strings"

	"github.com/z5labs/confstack/key"
	"github.com/z5labs/confstack/tree"
)

var (
	optionPattern   = regexp.MustCompile(`--?([^=\s]+)(?:=(\S+))?`)
	negationPattern = regexp.MustCompile(`\A(?:no[-_]?|!)(.*)\z`)
)

// Parse scans text for options of the form -key, --key or --key=value.
//
// An option with a value sets key to the value as a string; no type
// inference is done. An option without a value is a boolean flag: it is
// false if its name starts with "no", "no-", "no_" or "!" (the prefix is
// stripped) and true otherwise. Text that doesn't look like an option is
// ignored. Later occurrences of a key replace earlier ones.
func Parse(text string) tree.Tree {
	t := tree.New()
	for _, m := range optionPattern.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if m[4] >= 0 {
			t[string(key.Normalize(name))] = text[m[4]:m[5]]
			continue
		}

		if sm := negationPattern.FindStringSubmatch(name); sm != nil {
			t[string(key.Normalize(sm[1]))] = false
			continue
		}
		t[string(key.Normalize(name))] = true
	}
	return t
}

// IsBlank reports whether text holds nothing but whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
