package population

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relatixjs/relatix/internal/ir"
	"github.com/relatixjs/relatix/internal/schema"
)

// LoadYAML decodes a population document against s.
//
// The document is a mapping of table name to a mapping of population key to
// field data:
//
//	People:
//	  alice:
//	    name: Alice
//	    favouriteCoWorker: bob
//	  bob:
//	    name: Bob
//	    favouriteCoWorker: null
//
// Fields that s declares as references take population keys of the target
// table (a string, a list of strings, or null) and become symbolic references.
// Nested fields are addressed by dotted path; sequences do not add a path
// segment. Tables and keys keep document order.
func LoadYAML(r io.Reader, s *schema.Schema) (*Population, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return FromNode(&doc, s)
}

// LoadYAMLFile reads and decodes a population file.
func LoadYAMLFile(path string, s *schema.Schema) (*Population, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read population file: %w", err)
	}
	defer f.Close()
	return LoadYAML(f, s)
}

// FromNode converts an already parsed YAML node. It accepts a document node
// or its root mapping.
func FromNode(node *yaml.Node, s *schema.Schema) (*Population, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return New(), nil
		}
		node = node.Content[0]
	}
	if isNull(node) {
		return New(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &Error{Line: node.Line, Message: "expected a mapping of tables"}
	}

	p := New()
	for i := 0; i+1 < len(node.Content); i += 2 {
		table := node.Content[i].Value
		if !s.Has(table) {
			return nil, &Error{Line: node.Content[i].Line, Table: table, Message: "unknown table"}
		}
		if err := loadTable(p, s, table, node.Content[i+1]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func loadTable(p *Population, s *schema.Schema, table string, node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &Error{Line: node.Line, Table: table, Message: "expected a mapping of population keys"}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if p.Has(table, key) {
			return &Error{Line: node.Content[i].Line, Table: table, Key: key, Message: "population key declared twice"}
		}
		c := converter{schema: s, table: table, key: key}
		fields := resolveAlias(node.Content[i+1])
		if isNull(fields) {
			p.Add(table, key, ir.Object{})
			continue
		}
		if fields.Kind != yaml.MappingNode {
			return &Error{Line: fields.Line, Table: table, Key: key, Message: "expected a mapping of fields"}
		}
		data, err := c.object(fields, "")
		if err != nil {
			return err
		}
		p.Add(table, key, data)
	}
	return nil
}

// converter turns the field data of one population key into values.
type converter struct {
	schema *schema.Schema
	table  string
	key    string
}

func (c converter) fail(node *yaml.Node, format string, args ...any) error {
	return &Error{Line: node.Line, Table: c.table, Key: c.key, Message: fmt.Sprintf(format, args...)}
}

func (c converter) object(node *yaml.Node, prefix string) (ir.Object, error) {
	obj := make(ir.Object, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		v, err := c.value(node.Content[i+1], path)
		if err != nil {
			return nil, err
		}
		obj[name] = v
	}
	return obj, nil
}

func (c converter) value(node *yaml.Node, path string) (ir.Value, error) {
	node = resolveAlias(node)
	if f, ok := c.schema.RefField(c.table, path); ok {
		return c.ref(node, path, f.Target)
	}

	switch node.Kind {
	case yaml.MappingNode:
		return c.object(node, path)
	case yaml.SequenceNode:
		arr := make(ir.Array, len(node.Content))
		for i, elem := range node.Content {
			v, err := c.value(elem, path)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case yaml.ScalarNode:
		return c.scalar(node, path)
	default:
		return nil, c.fail(node, "%s: unsupported YAML node", path)
	}
}

func (c converter) ref(node *yaml.Node, path, target string) (ir.Value, error) {
	switch {
	case isNull(node):
		return ir.Null{}, nil
	case node.Kind == yaml.ScalarNode:
		return Ref(target, node.Value), nil
	case node.Kind == yaml.SequenceNode:
		arr := make(ir.Array, len(node.Content))
		for i, elem := range node.Content {
			elem = resolveAlias(elem)
			if elem.Kind != yaml.ScalarNode || isNull(elem) {
				return nil, c.fail(elem, "%s: reference list must hold population keys", path)
			}
			arr[i] = Ref(target, elem.Value)
		}
		return arr, nil
	default:
		return nil, c.fail(node, "%s: reference must be a population key of %s", path, target)
	}
}

func (c converter) scalar(node *yaml.Node, path string) (ir.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return ir.Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, c.fail(node, "%s: %v", path, err)
		}
		return ir.Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, c.fail(node, "%s: %v", path, err)
		}
		return ir.Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, c.fail(node, "%s: %v", path, err)
		}
		return ir.Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return nil, c.fail(node, "%s: %v", path, err)
		}
		return ir.NewTime(t), nil
	default:
		return ir.String(node.Value), nil
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
