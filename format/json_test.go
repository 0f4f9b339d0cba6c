// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJson_Parse(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the content is malformed", func(t *testing.T) {
			content := "{\n  \"a\": 1,\n  \"b\": ,\n}\n"

			_, err := Json{}.Parse([]byte(content))

			var perr ParseError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, 3, perr.Line) {
				return
			}
		})

		t.Run("if the content is truncated", func(t *testing.T) {
			_, err := Json{}.Parse([]byte(`{"a": 1`))

			var perr ParseError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, 1, perr.Line) {
				return
			}
		})

		t.Run("if there is content after the top level value", func(t *testing.T) {
			_, err := Json{}.Parse([]byte(`{"a": 1} {"b": 2}`))

			var perr ParseError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
		})

		t.Run("if the top level value is not an object", func(t *testing.T) {
			testCases := []struct {
				Content string
				Kind    string
			}{
				{Content: `[1, 2]`, Kind: "array"},
				{Content: `"hello"`, Kind: "string"},
				{Content: `12`, Kind: "number"},
				{Content: `true`, Kind: "boolean"},
			}

			for _, testCase := range testCases {
				t.Run(testCase.Kind, func(t *testing.T) {
					_, err := Json{}.Parse([]byte(testCase.Content))

					var nerr NotAMappingError
					if !assert.ErrorAs(t, err, &nerr) {
						return
					}
					if !assert.Equal(t, testCase.Kind, nerr.Kind) {
						return
					}
				})
			}
		})
	})

	t.Run("will return an empty tree", func(t *testing.T) {
		t.Run("if the document is null", func(t *testing.T) {
			tr, err := Json{}.Parse([]byte(" null \n"))
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Empty(t, tr) {
				return
			}
		})
	})

	t.Run("will convert numbers", func(t *testing.T) {
		content := `{
  "copies": 3,
  "ratio": 0.25,
  "huge": 1e3,
  "neg": -7,
  "nested": {"page-height": "102mm", "list": [1, 2.5, null, false]}
}`
		tr, err := Json{}.Parse([]byte(content))
		if !assert.Nil(t, err) {
			return
		}

		if !assert.Equal(t, int64(3), tr["copies"]) {
			return
		}
		if !assert.Equal(t, 0.25, tr["ratio"]) {
			return
		}
		if !assert.Equal(t, float64(1000), tr["huge"]) {
			return
		}
		if !assert.Equal(t, int64(-7), tr["neg"]) {
			return
		}

		expected := map[string]any{
			"page_height": "102mm",
			"list":        []any{int64(1), 2.5, nil, false},
		}
		if !assert.Equal(t, expected, tr["nested"]) {
			return
		}
	})
}
