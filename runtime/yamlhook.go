package runtime

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// YAMLEmbedHook treats an embed block as a YAML mapping and binds each top
// level key to the converted value.  Mappings become dicts in document
// order, sequences become lists.
func YAMLEmbedHook(code string, bindings map[string]Value) error {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(code), &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: embedded yaml must be a mapping", root.Line)
	}
	out := map[string]Value{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: binding names must be scalars", key.Line)
		}
		v, err := FromYAML(root.Content[i+1])
		if err != nil {
			return err
		}
		out[key.Value] = v
	}
	// Bind only once everything converted.
	for k, v := range out {
		bindings[k] = v
	}
	return nil
}

// FromYAML converts a decoded YAML node into a Value.
func FromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return None, nil
		}
		return FromYAML(n.Content[0])
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := FromYAML(c)
			if err != nil {
				return None, err
			}
			items = append(items, v)
		}
		return ListOf(items...), nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := FromYAML(n.Content[i])
			if err != nil {
				return None, err
			}
			v, err := FromYAML(n.Content[i+1])
			if err != nil {
				return None, err
			}
			if err := m.Set(k, v); err != nil {
				return None, err
			}
		}
		return Value{MapType, m}, nil
	}

	switch n.ShortTag() {
	case "!!null":
		return None, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return None, err
		}
		return BoolValue(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return IntValue(i), nil
		}
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return None, fmt.Errorf("line %d: bad integer %q", n.Line, n.Value)
		}
		return NumberValue(d), nil
	case "!!float":
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return None, fmt.Errorf("line %d: unsupported number %q", n.Line, n.Value)
		}
		return NumberValue(d), nil
	}
	return StringValue(n.Value), nil
}
