package genx

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// unmarshalJSON unmarshals data into v and returns the bytes it decoded.
// Syntax errors are retried once on the output of jsonrepair, which fixes the
// truncated objects and trailing commas models tend to emit.
func unmarshalJSON(data []byte, v any) ([]byte, error) {
	err := json.Unmarshal(data, v)
	if err == nil {
		return data, nil
	}
	var syn *json.SyntaxError
	if !errors.As(err, &syn) {
		return nil, err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fixed), v); err != nil {
		return nil, err
	}
	return []byte(fixed), nil
}

// missingRequired returns the required properties of schema that are absent
// or null in the JSON object data.
func missingRequired(schema *jsonschema.Schema, data []byte) ([]string, error) {
	if schema == nil || len(schema.Required) == 0 {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range schema.Required {
		raw, ok := obj[name]
		if !ok || string(bytes.TrimSpace(raw)) == "null" {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
