// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package merge folds configuration trees together, later trees taking
// priority over earlier ones, and records what each merge changed.
package merge

import (
	"sort"

	"github.com/z5labs/confstack/key"
	"github.com/z5labs/confstack/tree"
)

// Action describes what a merge did to a single key.
type Action int

const (
	// Unchanged means the key kept the value it had in the base tree.
	Unchanged Action = iota

	// Added means the key was only present in the overlay tree.
	Added

	// Changed means the overlay replaced the base value with a different one.
	Changed
)

// String implements the [fmt.Stringer] interface.
func (a Action) String() string {
	switch a {
	case Unchanged:
		return "Unchanged"
	case Added:
		return "Added"
	case Changed:
		return "Changed"
	default:
		return "Unknown"
	}
}

// Entry is one line of a merge audit trail.
type Entry struct {
	// Path locates the key, starting from the root mapping.
	Path   key.Chain
	Action Action

	// Old is the base value. It is unset for Added entries.
	Old any

	// New is the resulting value. For Unchanged entries it equals Old.
	New any
}

// Merge returns a new tree holding overlay merged on top of base along with
// an audit trail of every leaf key visited, in sorted key order.
//
// Mappings present in both trees are merged recursively; any other value in
// overlay replaces the value in base. Neither base nor overlay is modified
// and the result shares no mappings or sequences with them.
func Merge(base, overlay tree.Tree) (tree.Tree, []Entry) {
	var entries []Entry
	m := mergeMaps(base, overlay, nil, &entries)
	return tree.Tree(m), entries
}

// Fold merges trees from left to right starting from an empty tree, so later
// trees have strictly higher priority. The audit trails of each step are
// concatenated in order.
func Fold(trees ...tree.Tree) (tree.Tree, []Entry) {
	acc := tree.New()
	var entries []Entry
	for _, t := range trees {
		var es []Entry
		acc, es = Merge(acc, t)
		entries = append(entries, es...)
	}
	return acc, entries
}

func mergeMaps(base, overlay map[string]any, path key.Chain, entries *[]Entry) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for _, k := range unionKeys(base, overlay) {
		p := path.Append(key.Name(k))
		bv, inBase := base[k]
		ov, inOverlay := overlay[k]

		switch {
		case inBase && !inOverlay:
			out[k] = tree.Clone(bv)
			*entries = append(*entries, Entry{Path: p, Action: Unchanged, Old: bv, New: bv})
		case !inBase && inOverlay:
			out[k] = tree.Clone(ov)
			*entries = append(*entries, Entry{Path: p, Action: Added, New: ov})
		default:
			out[k] = mergeValues(bv, ov, p, entries)
		}
	}
	return out
}

func mergeValues(bv, ov any, path key.Chain, entries *[]Entry) any {
	om, overlayIsMap := tree.AsMap(ov)
	if overlayIsMap {
		bm, baseIsMap := tree.AsMap(bv)
		if baseIsMap || bv == nil {
			return mergeMaps(bm, om, path, entries)
		}
	}

	action := Changed
	if tree.Equal(bv, ov) {
		action = Unchanged
	}
	*entries = append(*entries, Entry{Path: path, Action: action, Old: bv, New: ov})
	return tree.Clone(ov)
}

func unionKeys(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
