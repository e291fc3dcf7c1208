package document

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the three node shapes of the generic document tree.
type Kind int

const (
	Mapping Kind = iota
	Sequence
	Scalar
)

func (k Kind) String() string {
	switch k {
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case Scalar:
		return "scalar"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a generic spec-document tree node. Mappings are string-keyed and
// preserve declaration order, which downstream stages rely on for stable
// output.
type Node struct {
	Kind Kind

	// Line is the 1-based source line, when known. Used for diagnostics only.
	Line int

	keys     []string
	children map[string]*Node

	// Items holds sequence elements in source order.
	Items []*Node

	// Value holds the decoded scalar: string, int64, float64, bool, or nil.
	Value any
}

// FromYAML parses YAML or JSON bytes into a document tree. Mapping key order
// follows the source text.
func FromYAML(data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty input decodes to an empty mapping rather than an error so
		// callers can treat "no document" and "empty document" the same way.
		return &Node{Kind: Mapping, children: map[string]*Node{}}, nil
	}
	return fromYAMLNode(root.Content[0])
}

func fromYAMLNode(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(y.Alias)
	case yaml.MappingNode:
		n := &Node{Kind: Mapping, Line: y.Line, children: make(map[string]*Node, len(y.Content)/2)}
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("document: non-scalar mapping key at line %d", k.Line)
			}
			child, err := fromYAMLNode(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			if _, dup := n.children[k.Value]; dup {
				// First occurrence wins; later duplicates are dropped.
				continue
			}
			n.keys = append(n.keys, k.Value)
			n.children[k.Value] = child
		}
		return n, nil
	case yaml.SequenceNode:
		n := &Node{Kind: Sequence, Line: y.Line, Items: make([]*Node, 0, len(y.Content))}
		for _, item := range y.Content {
			child, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, child)
		}
		return n, nil
	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("document: decode scalar at line %d: %w", y.Line, err)
		}
		// yaml.v3 decodes integers as int; widen for a stable scalar contract.
		if i, ok := v.(int); ok {
			v = int64(i)
		}
		return &Node{Kind: Scalar, Line: y.Line, Value: v}, nil
	default:
		return nil, fmt.Errorf("document: unsupported node kind at line %d", y.Line)
	}
}

// Keys returns mapping keys in declaration order. Nil for non-mappings.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != Mapping {
		return nil
	}
	return n.keys
}

// Get returns the child for key. The second result reports presence.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != Mapping {
		return nil, false
	}
	c, ok := n.children[key]
	return c, ok
}

// Has reports whether the mapping contains key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Len returns the number of mapping entries or sequence items.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case Mapping:
		return len(n.keys)
	case Sequence:
		return len(n.Items)
	default:
		return 0
	}
}

// Str returns the scalar as a string. The second result is false when the
// node is not a string scalar.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != Scalar {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// Bool returns the scalar as a bool.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.Kind != Scalar {
		return false, false
	}
	b, ok := n.Value.(bool)
	return b, ok
}

// GetStr is shorthand for Get followed by Str.
func (n *Node) GetStr(key string) (string, bool) {
	c, ok := n.Get(key)
	if !ok {
		return "", false
	}
	return c.Str()
}

// Canonicalize sorts mapping keys recursively. Loaders that cannot preserve
// source declaration order (the Swagger v2 conversion path) call this so
// repeated runs still produce identical output.
func (n *Node) Canonicalize() {
	if n == nil {
		return
	}
	switch n.Kind {
	case Mapping:
		sort.Strings(n.keys)
		for _, k := range n.keys {
			n.children[k].Canonicalize()
		}
	case Sequence:
		for _, item := range n.Items {
			item.Canonicalize()
		}
	}
}
