package restlog

import (
	"fmt"
	"strconv"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// ParamsFromYAML converts a YAML node, keeping the order of mapping keys. A mapping or
// sequence gives structured parameters, a scalar gives a raw payload, and a missing
// or null node gives no parameters.
func ParamsFromYAML(node *yaml.Node) (Params, error) {
	if node == nil || node.Kind == 0 {
		return Params{}, nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Params{}, nil
		}
		return ParamsFromYAML(node.Content[0])
	case yaml.AliasNode:
		return ParamsFromYAML(node.Alias)
	case yaml.MappingNode, yaml.SequenceNode:
		fields, err := yamlParams(node)
		if err != nil {
			return Params{}, err
		}
		return Structured(fields...), nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return Params{}, nil
		}
		return Raw(node.Value), nil
	}
	return Params{}, fmt.Errorf("unsupported params at line %d", node.Line)
}

func yamlParams(node *yaml.Node) ([]Param, error) {
	ret := []Param{}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			p, err := yamlParam(node.Content[i].Value, node.Content[i+1])
			if err != nil {
				return nil, err
			}
			ret = append(ret, p)
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			p, err := yamlParam(strconv.Itoa(i), child)
			if err != nil {
				return nil, err
			}
			ret = append(ret, p)
		}
	}
	return ret, nil
}

func yamlParam(key string, node *yaml.Node) (Param, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		children, err := yamlParams(node)
		if err != nil {
			return Param{}, err
		}
		return Group(key, children...), nil
	case yaml.ScalarNode:
		v, err := yamlScalar(node)
		if err != nil {
			return Param{}, fmt.Errorf("param %q: %w", key, err)
		}
		return Field(key, v), nil
	}
	return Param{}, fmt.Errorf("param %q: unsupported value at line %d", key, node.Line)
}

func yamlScalar(node *yaml.Node) (ldvalue.Value, error) {
	switch node.Tag {
	case "!!null":
		return ldvalue.Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return ldvalue.Null(), err
		}
		return ldvalue.Bool(b), nil
	case "!!int":
		var n int
		if err := node.Decode(&n); err != nil {
			return ldvalue.Null(), err
		}
		return ldvalue.Int(n), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return ldvalue.Null(), err
		}
		return ldvalue.Float64(f), nil
	default:
		return ldvalue.String(node.Value), nil
	}
}
