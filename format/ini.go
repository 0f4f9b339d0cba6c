// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package format

import (
	"bufio"
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/z5labs/confstack/tree"

	"gopkg.in/ini.v1"
)

// GlobalSection is the mapping that INI keys appearing before any
// section header are placed under.
const GlobalSection = "global"

// Ini is the Adapter for INI content.
//
// Every section becomes a mapping of its own. Unquoted values are typed:
// true and false become booleans, integers become int64, decimal floats
// become float64 and an empty value becomes null. Quoted values are
// always strings.
type Ini struct{}

// Extensions implements the Adapter interface.
func (Ini) Extensions() []string {
	return extensions("ini")
}

// Parse implements the Adapter interface.
func (Ini) Parse(content []byte) (tree.Tree, error) {
	if isBlank(content) {
		return tree.New(), nil
	}

	f, err := ini.LoadSources(
		ini.LoadOptions{
			PreserveSurroundedQuote:  true,
			SpaceBeforeInlineComment: true,
		},
		content,
	)
	if err != nil {
		return nil, iniParseError(content, err)
	}

	t := tree.New()
	for _, sec := range f.Sections() {
		keys := sec.Keys()
		if len(keys) == 0 {
			continue
		}

		name := sec.Name()
		if name == ini.DefaultSection {
			name = GlobalSection
		}

		m, ok := t[name].(map[string]any)
		if !ok {
			m = make(map[string]any, len(keys))
			t[name] = m
		}
		for _, k := range keys {
			m[k.Name()] = iniValue(k.Value())
		}
	}
	return t.Normalize(), nil
}

func iniParseError(content []byte, err error) ParseError {
	perr := ParseError{
		Message: err.Error(),
		Cause:   err,
	}

	var derr ini.ErrDelimiterNotFound
	if errors.As(err, &derr) {
		perr.Line = lineOf(content, derr.Line)
	}
	return perr
}

// lineOf returns the 1-based number of the first line in content equal to
// text after trimming surrounding whitespace.
func lineOf(content []byte, text string) int {
	text = strings.TrimSpace(text)
	sc := bufio.NewScanner(bytes.NewReader(content))
	for n := 1; sc.Scan(); n++ {
		if strings.TrimSpace(sc.Text()) == text {
			return n
		}
	}
	return 0
}

var iniFloatPattern = regexp.MustCompile(`^[+-]?(?:\d+\.\d*|\.\d+|\d+)(?:[eE][+-]?\d+)?$`)

func iniValue(raw string) any {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"':
			if u, err := strconv.Unquote(s); err == nil {
				return u
			}
			return s[1 : len(s)-1]
		case s[0] == '\'' && s[len(s)-1] == '\'':
			return s[1 : len(s)-1]
		}
	}

	switch strings.ToLower(s) {
	case "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i
	}
	if iniFloatPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
