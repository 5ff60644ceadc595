package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Document is a compiled JSON schema used to check files and tool output
// before they are trusted.
type Document struct {
	name   string
	schema *jsonschema.Schema
}

func Compile(name string, schema []byte) (*Document, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}

	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Document{name: name, schema: compiled}, nil
}

// MustCompile is Compile for schemas embedded in the binary.
func MustCompile(name string, schema []byte) *Document {
	doc, err := Compile(name, schema)
	if err != nil {
		panic(err)
	}
	return doc
}

func (d *Document) ValidateJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if t, _ := decoder.Token(); t != nil {
		return fmt.Errorf("decode json: invalid character %v after top-level value", t)
	}
	if err := d.schema.Validate(value); err != nil {
		return fmt.Errorf("validate against %s: %w", d.name, err)
	}
	return nil
}
