// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package tree defines the configuration tree produced by parsing a single
// source and by merging many sources together.
//
// A Tree is a mapping from normalized keys to values. Values are restricted to
// nil, bool, int64, float64, string, time.Time, []any and map[string]any.
// Nested mappings are always stored as map[string]any so callers never need
// to know about the Tree type below the root.
package tree

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/z5labs/confstack/key"
)

// Tree is the root mapping of a configuration.
type Tree map[string]any

// New returns an empty Tree.
func New() Tree {
	return make(Tree)
}

// Normalize returns a copy of t where every mapping key, at any depth,
// has been passed through [key.Normalize].
func (t Tree) Normalize() Tree {
	return Tree(normalizeMap(reflect.ValueOf(map[string]any(t))))
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	if t == nil {
		return New()
	}
	return Tree(cloneMap(t))
}

// Get walks the given path of keys and returns the value found at its end.
func (t Tree) Get(path ...string) (any, bool) {
	var cur any = map[string]any(t)
	for _, p := range path {
		m, ok := AsMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[string(key.Normalize(p))]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// String returns the string found at path, if there is one.
func (t Tree) String(path ...string) (string, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Sub returns the nested mapping found at path as a Tree.
func (t Tree) Sub(path ...string) (Tree, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return nil, false
	}
	m, ok := AsMap(v)
	if !ok {
		return nil, false
	}
	return Tree(m), true
}

// AsMap reports whether v is a mapping and returns it as a map[string]any.
func AsMap(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case Tree:
		return map[string]any(x), true
	default:
		return nil, false
	}
}

// Normalize recursively rewrites every mapping key found in v, including
// mappings nested inside sequences. Any Go map kind is accepted and returned
// as map[string]any; any Go slice kind other than []byte is returned as []any.
// Non-container values are returned unchanged.
func Normalize(v any) any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case Tree:
		return normalizeMap(reflect.ValueOf(map[string]any(x)))
	case string, bool, int64, float64, time.Time, []byte:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return normalizeMap(rv)
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

// normalizeMap visits raw keys in sorted order so that when two raw keys
// collide after normalization (e.g. "a-b" and "a_b") the already normalized
// spelling wins.
func normalizeMap(rv reflect.Value) map[string]any {
	type entry struct {
		raw string
		k   key.Name
		v   reflect.Value
	}

	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		rk := iter.Key().Interface()
		entries = append(entries, entry{
			raw: fmt.Sprint(rk),
			k:   key.Normalize(rk),
			v:   iter.Value(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].raw < entries[j].raw
	})

	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[string(e.k)] = Normalize(e.v.Interface())
	}
	return out
}

// Clone returns a deep copy of v. Mappings and sequences are copied,
// everything else is returned as is.
func Clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case Tree:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Equal reports whether a and b hold the same configuration value.
// Timestamps compare by instant and mappings compare regardless of
// whether they are typed as Tree or map[string]any.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if am, ok := AsMap(a); ok {
		bm, ok := AsMap(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	switch x := a.(type) {
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	default:
		return reflect.DeepEqual(a, b)
	}
}
