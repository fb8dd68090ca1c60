package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yanshuy/vhost-server/internal/headers"
)

// HeaderList is the add_header setting: a sequence of mappings whose
// entries become response headers in document order.
//
//	add_header:
//	  - origin-trial: aaa
//	  - origin-trial: bbb
type HeaderList headers.List

func (l *HeaderList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: add_header must be a sequence", node.Line)
	}
	out := HeaderList{}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: add_header entries must be mappings", item.Line)
		}
		// Content alternates key and value nodes, preserving order.
		for i := 0; i+1 < len(item.Content); i += 2 {
			k, v := item.Content[i], item.Content[i+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: header name and value must be scalars", k.Line)
			}
			out = append(out, headers.Field{Name: k.Value, Value: v.Value})
		}
	}
	*l = out
	return nil
}

// List returns the headers as a response header list.
func (l HeaderList) List() headers.List {
	return headers.List(l)
}
