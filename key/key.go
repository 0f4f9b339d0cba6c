// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides the normalized identifiers used for every mapping key
// in a configuration tree.
package key

import (
	"fmt"
	"strings"
)

// Keyer is a common interface all key types must implement.
type Keyer interface {
	Key() string
}

// Name is a single normalized mapping key.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Normalize converts a raw mapping key into its [Name] form: the key's
// string representation with every '-' replaced by '_'. Normalizing a
// [Name] again yields the same [Name].
func Normalize(k any) Name {
	var s string
	switch x := k.(type) {
	case Name:
		s = string(x)
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return Name(strings.ReplaceAll(s, "-", "_"))
}

// Chain represents the path to a nested key, starting from the root mapping.
type Chain []Name

// Key implements the [Keyer] interface.
func (k Chain) Key() string {
	ss := make([]string, len(k))
	for i := range len(k) {
		ss[i] = k[i].Key()
	}
	return strings.Join(ss, ".")
}

// Append returns a new Chain with name added to the end. The receiver is
// never modified, so chains can be shared between sibling paths.
func (k Chain) Append(name Name) Chain {
	c := make(Chain, len(k), len(k)+1)
	copy(c, k)
	return append(c, name)
}

// String implements the [fmt.Stringer] interface.
func (k Chain) String() string {
	return k.Key()
}
