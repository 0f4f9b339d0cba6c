// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package merge

import (
	"testing"

	"github.com/z5labs/confstack/key"
	"github.com/z5labs/confstack/tree"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMerge(t *testing.T) {
	t.Run("will report", func(t *testing.T) {
		t.Run("every key in sorted order", func(t *testing.T) {
			base := tree.Tree{"a": int64(1), "b": int64(2), "c": int64(3), "d": int64(4), "e": int64(5)}
			overlay := tree.Tree{"d": int64(4), "e": int64(8), "f": int64(9), "g": int64(11)}

			got, entries := Merge(base, overlay)

			expected := []Entry{
				{Path: key.Chain{"a"}, Action: Unchanged, Old: int64(1), New: int64(1)},
				{Path: key.Chain{"b"}, Action: Unchanged, Old: int64(2), New: int64(2)},
				{Path: key.Chain{"c"}, Action: Unchanged, Old: int64(3), New: int64(3)},
				{Path: key.Chain{"d"}, Action: Unchanged, Old: int64(4), New: int64(4)},
				{Path: key.Chain{"e"}, Action: Changed, Old: int64(5), New: int64(8)},
				{Path: key.Chain{"f"}, Action: Added, New: int64(9)},
				{Path: key.Chain{"g"}, Action: Added, New: int64(11)},
			}
			if !assert.Equal(t, expected, entries) {
				return
			}
			if !assert.Equal(t, tree.Tree{
				"a": int64(1), "b": int64(2), "c": int64(3), "d": int64(4),
				"e": int64(8), "f": int64(9), "g": int64(11),
			}, got) {
				return
			}
		})

		t.Run("nested keys with their full path", func(t *testing.T) {
			base := tree.Tree{"global": map[string]any{"page_width": "33mm", "delta_x": "-4mm"}}
			overlay := tree.Tree{"global": map[string]any{"delta_x": "-3mm"}}

			_, entries := Merge(base, overlay)

			expected := []Entry{
				{Path: key.Chain{"global", "delta_x"}, Action: Changed, Old: "-4mm", New: "-3mm"},
				{Path: key.Chain{"global", "page_width"}, Action: Unchanged, Old: "33mm", New: "33mm"},
			}
			if !assert.Equal(t, expected, entries) {
				return
			}
		})

		t.Run("nested keys as added when the base value is null", func(t *testing.T) {
			base := tree.Tree{"partridges": nil}
			overlay := tree.Tree{"partridges": map[string]any{"count": int64(1)}}

			got, entries := Merge(base, overlay)

			expected := []Entry{
				{Path: key.Chain{"partridges", "count"}, Action: Added, New: int64(1)},
			}
			if !assert.Equal(t, expected, entries) {
				return
			}
			if !assert.Equal(t, tree.Tree{"partridges": map[string]any{"count": int64(1)}}, got) {
				return
			}
		})
	})

	t.Run("will merge nested mappings instead of replacing them", func(t *testing.T) {
		base := tree.Tree{"a": map[string]any{"x": int64(1)}}
		overlay := tree.Tree{"a": map[string]any{"y": int64(2)}}

		got, _ := Merge(base, overlay)
		if !assert.Equal(t, tree.Tree{"a": map[string]any{"x": int64(1), "y": int64(2)}}, got) {
			return
		}
	})

	t.Run("will replace a mapping with a scalar", func(t *testing.T) {
		base := tree.Tree{"a": map[string]any{"x": int64(1)}}
		overlay := tree.Tree{"a": "flat"}

		got, entries := Merge(base, overlay)
		if !assert.Equal(t, tree.Tree{"a": "flat"}, got) {
			return
		}
		if !assert.Len(t, entries, 1) {
			return
		}
		if !assert.Equal(t, Changed, entries[0].Action) {
			return
		}
	})

	t.Run("will replace a scalar with a mapping", func(t *testing.T) {
		base := tree.Tree{"a": "flat"}
		overlay := tree.Tree{"a": map[string]any{"x": int64(1)}}

		got, entries := Merge(base, overlay)
		if !assert.Equal(t, tree.Tree{"a": map[string]any{"x": int64(1)}}, got) {
			return
		}
		if !assert.Equal(t, []Entry{{
			Path:   key.Chain{"a"},
			Action: Changed,
			Old:    "flat",
			New:    map[string]any{"x": int64(1)},
		}}, entries) {
			return
		}
	})

	t.Run("will replace sequences wholesale", func(t *testing.T) {
		base := tree.Tree{"birds": []any{"huey", "dewey"}}
		overlay := tree.Tree{"birds": []any{"louie"}}

		got, _ := Merge(base, overlay)
		if !assert.Equal(t, tree.Tree{"birds": []any{"louie"}}, got) {
			return
		}
	})

	t.Run("will not modify its inputs", func(t *testing.T) {
		base := tree.Tree{"a": map[string]any{"x": int64(1)}}
		overlay := tree.Tree{"a": map[string]any{"x": int64(2)}}

		got, _ := Merge(base, overlay)
		got["a"].(map[string]any)["z"] = true

		if !assert.Equal(t, tree.Tree{"a": map[string]any{"x": int64(1)}}, base) {
			return
		}
		if !assert.Equal(t, tree.Tree{"a": map[string]any{"x": int64(2)}}, overlay) {
			return
		}
	})

	t.Run("will handle nil trees", func(t *testing.T) {
		got, entries := Merge(nil, nil)
		if !assert.NotNil(t, got) {
			return
		}
		if !assert.Empty(t, got) {
			return
		}
		if !assert.Empty(t, entries) {
			return
		}
	})
}

func TestFold(t *testing.T) {
	t.Run("will give later trees priority", func(t *testing.T) {
		system := tree.Tree{"printer": "seiko3", "width": "33mm"}
		user := tree.Tree{"width": "10cm"}

		got, _ := Fold(system, user)
		if !assert.Equal(t, tree.Tree{"printer": "seiko3", "width": "10cm"}, got) {
			return
		}
	})

	t.Run("will return an empty tree when given nothing", func(t *testing.T) {
		got, entries := Fold()
		if !assert.Equal(t, tree.New(), got) {
			return
		}
		if !assert.Empty(t, entries) {
			return
		}
	})
}

func genTree(depth int) *rapid.Generator[tree.Tree] {
	return rapid.Custom(func(t *rapid.T) tree.Tree {
		n := rapid.IntRange(0, 4).Draw(t, "size")
		tr := make(tree.Tree, n)
		for i := 0; i < n; i++ {
			k := rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "key")
			if depth > 0 && rapid.Bool().Draw(t, "nested") {
				tr[k] = map[string]any(genTree(depth-1).Draw(t, "child"))
				continue
			}
			tr[k] = rapid.OneOf(
				rapid.Map(rapid.Int64Range(0, 3), func(n int64) any { return n }),
				rapid.Map(rapid.SampledFrom([]string{"x", "y"}), func(s string) any { return s }),
				rapid.Just[any](nil),
			).Draw(t, "value")
		}
		return tr
	})
}

func TestFold_Properties(t *testing.T) {
	t.Run("fold equals nested pairwise merges", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := genTree(2).Draw(t, "a")
			b := genTree(2).Draw(t, "b")
			c := genTree(2).Draw(t, "c")

			folded, _ := Fold(a, b, c)
			ab, _ := Merge(a, b)
			abc, _ := Merge(ab, c)
			if !tree.Equal(folded, abc) {
				t.Fatalf("fold(a, b, c) = %v, merge(merge(a, b), c) = %v", folded, abc)
			}
		})
	})

	t.Run("empty tree is an identity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			x := genTree(2).Draw(t, "x")

			right, _ := Merge(x, tree.New())
			if !tree.Equal(right, x) {
				t.Fatalf("merge(x, {}) = %v, want %v", right, x)
			}

			left, _ := Merge(tree.New(), x)
			if !tree.Equal(left, x) {
				t.Fatalf("merge({}, x) = %v, want %v", left, x)
			}
		})
	})

	t.Run("merging a tree with itself changes nothing", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			x := genTree(2).Draw(t, "x")

			got, entries := Merge(x, x)
			if !tree.Equal(got, x) {
				t.Fatalf("merge(x, x) = %v, want %v", got, x)
			}
			for _, e := range entries {
				if e.Action != Unchanged {
					t.Fatalf("unexpected %s entry for %s", e.Action, e.Path)
				}
			}
		})
	})

	t.Run("overlay leaves always win", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			base := genTree(2).Draw(t, "base")
			overlay := genTree(0).Draw(t, "overlay")

			got, _ := Merge(base, overlay)
			for k, v := range overlay {
				if !tree.Equal(got[k], v) {
					t.Fatalf("key %s = %v, want %v", k, got[k], v)
				}
			}
		})
	})
}
