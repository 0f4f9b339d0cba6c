// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/z5labs/confstack/tree"

	"gopkg.in/yaml.v3"
)

// Yaml is the Adapter for YAML content.
//
// Only the core schema tags (null, bool, int, float, str, seq, map) plus
// timestamp are accepted. Plain scalars that look like dates or date-times
// become time.Time values. Any other tag is rejected.
type Yaml struct{}

// Extensions implements the Adapter interface.
func (Yaml) Extensions() []string {
	return extensions("yml", "yaml")
}

// DisallowedTagError occurs when YAML content carries a tag outside of the
// permitted set.
type DisallowedTagError struct {
	Tag string
}

// Error implements the error interface.
func (e DisallowedTagError) Error() string {
	return fmt.Sprintf("tag %s is not permitted", e.Tag)
}

// RecursiveAliasError occurs when a YAML alias refers to a node containing itself.
type RecursiveAliasError struct {
	Anchor string
}

// Error implements the error interface.
func (e RecursiveAliasError) Error() string {
	return fmt.Sprintf("alias *%s refers to a node containing itself", e.Anchor)
}

// ExcessiveAliasError occurs when expanding the aliases of a YAML document
// would produce far more nodes than the document itself contains.
type ExcessiveAliasError struct {
	Aliased int
	Total   int
}

// Error implements the error interface.
func (e ExcessiveAliasError) Error() string {
	return fmt.Sprintf("document contains excessive aliasing: %d of %d expanded nodes come from aliases", e.Aliased, e.Total)
}

// Parse implements the Adapter interface.
func (Yaml) Parse(content []byte) (tree.Tree, error) {
	if isBlank(content) {
		return tree.New(), nil
	}

	var doc yaml.Node
	err := yaml.Unmarshal(content, &doc)
	if err != nil {
		return nil, yamlParseError(err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return tree.New(), nil
	}

	root := doc.Content[0]
	c := &yamlConverter{visiting: make(map[*yaml.Node]bool)}
	v, err := c.convert(root)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return tree.New(), nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		perr := notAMapping(fmt.Sprintf("%T", v))
		perr.Line, perr.Column = root.Line, root.Column
		return nil, perr
	}
	return tree.Tree(m).Normalize(), nil
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

func yamlParseError(err error) ParseError {
	perr := ParseError{
		Message: err.Error(),
		Cause:   err,
	}
	if sm := yamlLinePattern.FindStringSubmatch(err.Error()); sm != nil {
		perr.Line, _ = strconv.Atoi(sm[1])
	}
	return perr
}

// Bounds on alias expansion, the same ones yaml.v3 enforces when
// decoding into Go values.
const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
	aliasRatioRange     = float64(aliasRatioRangeHigh - aliasRatioRangeLow)
)

func allowedAliasRatio(total int) float64 {
	switch {
	case total <= aliasRatioRangeLow:
		return 0.99
	case total >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(total-aliasRatioRangeLow)/aliasRatioRange)
	}
}

type yamlConverter struct {
	visiting map[*yaml.Node]bool

	total      int
	aliased    int
	aliasDepth int
}

func (c *yamlConverter) count(n *yaml.Node) error {
	c.total++
	if c.aliasDepth > 0 {
		c.aliased++
	}
	if c.aliased > 100 && c.total > 1000 && float64(c.aliased)/float64(c.total) > allowedAliasRatio(c.total) {
		return c.fail(n, ExcessiveAliasError{Aliased: c.aliased, Total: c.total})
	}
	return nil
}

func (c *yamlConverter) fail(n *yaml.Node, err error) error {
	return ParseError{
		Line:    n.Line,
		Column:  n.Column,
		Message: err.Error(),
		Cause:   err,
	}
}

func (c *yamlConverter) convert(n *yaml.Node) (any, error) {
	if err := c.count(n); err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		if c.visiting[n.Alias] {
			return nil, c.fail(n, RecursiveAliasError{Anchor: n.Value})
		}
		c.visiting[n.Alias] = true
		c.aliasDepth++
		defer func() {
			delete(c.visiting, n.Alias)
			c.aliasDepth--
		}()
		return c.convert(n.Alias)
	case yaml.SequenceNode:
		if err := c.checkTag(n, "!!seq"); err != nil {
			return nil, err
		}
		c.visiting[n] = true
		defer delete(c.visiting, n)

		seq := make([]any, 0, len(n.Content))
		for _, e := range n.Content {
			v, err := c.convert(e)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.MappingNode:
		if err := c.checkTag(n, "!!map"); err != nil {
			return nil, err
		}
		c.visiting[n] = true
		defer delete(c.visiting, n)
		return c.mapping(n)
	case yaml.ScalarNode:
		return c.scalar(n)
	default:
		return nil, c.fail(n, fmt.Errorf("unexpected yaml node kind %d", n.Kind))
	}
}

func (c *yamlConverter) checkTag(n *yaml.Node, want string) error {
	if tag := n.ShortTag(); tag != want {
		return c.fail(n, DisallowedTagError{Tag: tag})
	}
	return nil
}

// mapping applies "<<" merge keys first so explicit keys always win over
// merged ones regardless of their position in the document.
func (c *yamlConverter) mapping(n *yaml.Node) (map[string]any, error) {
	m := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!merge" {
			continue
		}
		err := c.mergeInto(m, v)
		if err != nil {
			return nil, err
		}
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			continue
		}
		name, err := c.key(k)
		if err != nil {
			return nil, err
		}
		val, err := c.convert(v)
		if err != nil {
			return nil, err
		}
		m[name] = val
	}
	return m, nil
}

func (c *yamlConverter) mergeInto(m map[string]any, n *yaml.Node) error {
	src := n
	if n.Kind == yaml.SequenceNode {
		// Earlier mappings in a merge sequence take priority over later ones.
		for i := len(n.Content) - 1; i >= 0; i-- {
			err := c.mergeInto(m, n.Content[i])
			if err != nil {
				return err
			}
		}
		return nil
	}

	v, err := c.convert(src)
	if err != nil {
		return err
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return c.fail(n, errors.New("merge key value must be a mapping or a list of mappings"))
	}
	for k, sv := range sub {
		m[k] = sv
	}
	return nil
}

func (c *yamlConverter) key(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", c.fail(n, errors.New("mapping keys must be scalars"))
	}
	if _, err := c.scalar(n); err != nil {
		return "", err
	}
	return n.Value, nil
}

func (c *yamlConverter) scalar(n *yaml.Node) (any, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return nil, nil
	case "!!str":
		return n.Value, nil
	case "!!bool":
		var b bool
		return b, c.decode(n, &b)
	case "!!int":
		var i int64
		err := n.Decode(&i)
		if err == nil {
			return i, nil
		}
		// Out of range for int64, keep the precision a float can offer.
		var f float64
		return f, c.decode(n, &f)
	case "!!float":
		var f float64
		return f, c.decode(n, &f)
	case "!!timestamp":
		var t time.Time
		return t, c.decode(n, &t)
	default:
		return nil, c.fail(n, DisallowedTagError{Tag: tag})
	}
}

func (c *yamlConverter) decode(n *yaml.Node, v any) error {
	err := n.Decode(v)
	if err != nil {
		return c.fail(n, err)
	}
	return nil
}
