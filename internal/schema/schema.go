// Package schema declares the record shapes the generator is asked to produce
// and checks that parsed output keeps that shape.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Kind string

const (
	String         Kind = "string"
	Number         Kind = "number"
	StringOrNumber Kind = "string or number"
	List           Kind = "list"
	Object         Kind = "object"
)

// Field is one named member of a contract. Items describes list elements,
// Fields describes object members.
type Field struct {
	Name     string
	Kind     Kind
	Nullable bool
	// Hint is appended to the rendered type, e.g. "(years)".
	Hint   string
	Items  *Field
	Fields []Field
}

// Contract is an immutable description of a record shape.
type Contract struct {
	Name string
	// Subject names the source document in prompts ("Job Description", "Resume").
	Subject string
	// Role is the persona line opening the extraction prompt.
	Role string
	// Rules are extra instructions specific to this contract.
	Rules  []string
	Fields []Field
}

// Render writes the contract as an indented JSON template that keeps declaration order.
func (c Contract) Render() string {
	var b strings.Builder
	renderObject(&b, c.Fields, 0)
	return b.String()
}

func renderObject(b *strings.Builder, fields []Field, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString("{\n")
	for i, f := range fields {
		b.WriteString(indent + "  ")
		b.WriteString(quote(f.Name))
		b.WriteString(": ")
		renderValue(b, f, depth+1)
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "}")
}

func renderValue(b *strings.Builder, f Field, depth int) {
	switch f.Kind {
	case List:
		b.WriteString("[")
		if f.Items != nil {
			if f.Items.Kind == Object {
				b.WriteString("\n" + strings.Repeat("  ", depth+1))
				renderObject(b, f.Items.Fields, depth+1)
				b.WriteString("\n" + strings.Repeat("  ", depth))
			} else {
				renderValue(b, *f.Items, depth)
			}
		}
		b.WriteString("]")
	case Object:
		renderObject(b, f.Fields, depth)
	default:
		b.WriteString(quote(describe(f)))
	}
}

func describe(f Field) string {
	text := string(f.Kind)
	if f.Hint != "" {
		text += " " + f.Hint
	}
	if f.Nullable {
		text += " or null"
	}
	return text
}

func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

// Check verifies that doc keeps the contract's shape. Null values, missing
// fields and unknown fields are accepted; only container and scalar kinds are
// enforced, never field content.
func (c Contract) Check(doc map[string]any) error {
	if doc == nil {
		return fmt.Errorf("%s: expected an object", c.Name)
	}
	return checkFields("", c.Fields, doc)
}

func checkFields(path string, fields []Field, doc map[string]any) error {
	for _, f := range fields {
		value, ok := doc[f.Name]
		if !ok {
			continue
		}
		if err := checkValue(join(path, f.Name), f, value); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(path string, f Field, value any) error {
	if value == nil {
		return nil
	}

	switch f.Kind {
	case String:
		if _, ok := value.(string); !ok {
			return mismatch(path, f.Kind, value)
		}
	case Number:
		if _, ok := value.(float64); !ok {
			return mismatch(path, f.Kind, value)
		}
	case StringOrNumber:
		switch value.(type) {
		case string, float64:
		default:
			return mismatch(path, f.Kind, value)
		}
	case List:
		items, ok := value.([]any)
		if !ok {
			return mismatch(path, f.Kind, value)
		}
		if f.Items == nil {
			return nil
		}
		for i, item := range items {
			if err := checkValue(fmt.Sprintf("%s[%d]", path, i), *f.Items, item); err != nil {
				return err
			}
		}
	case Object:
		members, ok := value.(map[string]any)
		if !ok {
			return mismatch(path, f.Kind, value)
		}
		return checkFields(path, f.Fields, members)
	default:
		return fmt.Errorf("%s: unknown kind %q", path, f.Kind)
	}

	return nil
}

func mismatch(path string, kind Kind, value any) error {
	return fmt.Errorf("%s: expected %s, got %s", path, kind, jsonKind(value))
}

func jsonKind(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
