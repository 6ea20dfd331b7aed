package graph

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either a literal or a {computed: name} mapping
func (r *Resolvable[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var probe struct {
			Computed string `yaml:"computed"`
		}
		if err := node.Decode(&probe); err == nil && probe.Computed != "" {
			*r = Computed[T](probe.Computed)
			return nil
		}
	}

	var v T
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*r = Literal(v)
	return nil
}

// UnmarshalYAML accepts a bare string as value and label
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = node.Value
		return nil
	}

	type plain Option
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Label == "" {
		p.Label = p.Value
	}
	*o = Option(p)
	return nil
}

// UnmarshalYAML accepts {computed: name} or {field: x, in: [...]}; {field, equals} is shorthand
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Computed string   `yaml:"computed"`
		Field    string   `yaml:"field"`
		In       []string `yaml:"in"`
		Equals   string   `yaml:"equals"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	switch {
	case raw.Computed != "":
		*c = WhenComputed(raw.Computed)
	case raw.Field != "":
		values := raw.In
		if raw.Equals != "" {
			values = append(values, raw.Equals)
		}
		if len(values) == 0 {
			return fmt.Errorf("line %d: condition on %q has no values", node.Line, raw.Field)
		}
		*c = WhenFieldIn(raw.Field, values...)
	default:
		*c = Condition{Kind: Always}
	}
	return nil
}
