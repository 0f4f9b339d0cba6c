// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/z5labs/confstack/tree"
)

// Json is the Adapter for JSON content.
//
// Integral numbers become int64 and every other number becomes float64.
// A document consisting solely of null is treated as empty.
type Json struct{}

// Extensions implements the Adapter interface.
func (Json) Extensions() []string {
	return extensions("json")
}

// Parse implements the Adapter interface.
func (Json) Parse(content []byte) (tree.Tree, error) {
	if isBlank(content) {
		return tree.New(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var v any
	err := dec.Decode(&v)
	if err != nil {
		return nil, jsonParseError(content, dec, err)
	}
	err = dec.Decode(new(any))
	if err != io.EOF {
		if err == nil {
			err = errors.New("unexpected content after top level value")
		}
		return nil, jsonParseError(content, dec, err)
	}

	if v == nil {
		return tree.New(), nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		perr := notAMapping(jsonKind(v))
		perr.Line, perr.Column = 1, 1
		return nil, perr
	}
	return tree.Tree(jsonValue(m).(map[string]any)).Normalize(), nil
}

func jsonParseError(content []byte, dec *json.Decoder, err error) ParseError {
	perr := ParseError{
		Message: err.Error(),
		Cause:   err,
	}

	offset := dec.InputOffset()
	var serr *json.SyntaxError
	if errors.As(err, &serr) {
		offset = serr.Offset
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		offset = int64(len(content))
	}
	perr.Line, perr.Column = lineColumn(content, offset)
	return perr
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = jsonValue(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = jsonValue(e)
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	default:
		return v
	}
}
