package canonicaljson

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

const indent = "  "

// Canonicalizer produces RFC 8785 canonical JSON, optionally indented for
// files meant to be read and diffed by people.
type Canonicalizer struct{}

func (Canonicalizer) Canonicalize(ctx context.Context, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value := jsontext.Value(append([]byte(nil), input...))
	if err := value.Canonicalize(); err != nil {
		return nil, fmt.Errorf("canonicalize json: %w", err)
	}

	return []byte(value), nil
}

// Pretty encodes v canonically and indents it by two spaces. The output ends
// with a newline.
func (c Canonicalizer) Pretty(ctx context.Context, v any) ([]byte, error) {
	raw, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	canonical, err := c.Canonicalize(ctx, raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.WithIndent(indent))
	if err := enc.WriteValue(jsontext.Value(canonical)); err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}
	return buf.Bytes(), nil
}
