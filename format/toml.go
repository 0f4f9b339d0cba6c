// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package format

import (
	"errors"
	"time"

	"github.com/z5labs/confstack/tree"

	"github.com/pelletier/go-toml/v2"
)

// Toml is the Adapter for TOML content.
//
// Local dates and local date-times become UTC time.Time values. Local
// times, which have no date component, are kept as their string form.
type Toml struct{}

// Extensions implements the Adapter interface.
func (Toml) Extensions() []string {
	return extensions("toml")
}

// Parse implements the Adapter interface.
func (Toml) Parse(content []byte) (tree.Tree, error) {
	if isBlank(content) {
		return tree.New(), nil
	}

	var m map[string]any
	err := toml.Unmarshal(content, &m)
	if err != nil {
		return nil, tomlParseError(err)
	}
	if m == nil {
		return tree.New(), nil
	}

	v := tomlValue(m)
	return tree.Tree(v.(map[string]any)).Normalize(), nil
}

func tomlParseError(err error) ParseError {
	perr := ParseError{
		Message: err.Error(),
		Cause:   err,
	}

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		perr.Line, perr.Column = derr.Position()
	}
	return perr
}

func tomlValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = tomlValue(e)
		}
		return m
	case []any:
		seq := make([]any, len(x))
		for i, e := range x {
			seq[i] = tomlValue(e)
		}
		return seq
	case toml.LocalDate:
		return x.AsTime(time.UTC)
	case toml.LocalDateTime:
		return x.AsTime(time.UTC)
	case toml.LocalTime:
		return x.String()
	default:
		return v
	}
}
