// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package merge

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/z5labs/confstack/tree"
)

// WriteReport renders entries as human readable lines, one per entry:
//
//	Added:     delta_x: -4mm
//	Changed:   page_height: 101mm -> 102mm
//	Unchanged: printer: seiko3
//
// Nested keys are indented below a "Config key:" header for their parent.
func WriteReport(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)

	var parents []string
	for _, e := range entries {
		if len(e.Path) == 0 {
			continue
		}

		dir := make([]string, len(e.Path)-1)
		for i, n := range e.Path[:len(e.Path)-1] {
			dir[i] = string(n)
		}

		common := 0
		for common < len(parents) && common < len(dir) && parents[common] == dir[common] {
			common++
		}
		for i := common; i < len(dir); i++ {
			fmt.Fprintf(bw, "%sConfig key: %s:\n", indent(i), dir[i])
		}
		parents = dir

		leaf := e.Path[len(e.Path)-1]
		fmt.Fprintf(bw, "%s%-10s %s: %s\n", indent(len(dir)), e.Action.String()+":", leaf, describe(e))
	}
	return bw.Flush()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth+1)
}

func describe(e Entry) string {
	switch e.Action {
	case Added:
		return formatValue(e.New)
	case Changed:
		return formatValue(e.Old) + " -> " + formatValue(e.New)
	default:
		return formatValue(e.Old)
	}
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if m, ok := tree.AsMap(v); ok {
		return fmt.Sprint(m)
	}
	return fmt.Sprint(v)
}
