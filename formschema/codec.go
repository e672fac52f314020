package formschema

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mbolis/agriquest/log"
)

// Serialize converts builder components to the wire schema and appends the
// submit button. Components of unknown type are skipped.
func Serialize(components []FormComponent) FormSchema {
	schema := FormSchema{
		Display:    DisplayForm,
		Components: make([]WireComponent, 0, len(components)+1),
	}
	for _, c := range components {
		k, err := kindOf(c.Type)
		if err != nil {
			log.Warnf("formschema.serialize: skipping %q: %s", c.Key, err)
			continue
		}
		schema.Components = append(schema.Components, k.wire(c))
	}
	schema.Components = append(schema.Components, submitButton())
	return schema
}

// DecodeSchema parses a stored schema. It accepts both the full document and
// a bare component array.
func DecodeSchema(data []byte) (FormSchema, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return FormSchema{Display: DisplayForm, Components: []WireComponent{}}, nil
	}

	if data[0] == '[' {
		var components []WireComponent
		if err := json.Unmarshal(data, &components); err != nil {
			return FormSchema{}, errors.Wrap(err, "decode component list")
		}
		return FormSchema{Display: DisplayForm, Components: components}, nil
	}

	var schema FormSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return FormSchema{}, errors.Wrap(err, "decode schema")
	}
	if schema.Display == "" {
		schema.Display = DisplayForm
	}
	return schema, nil
}

// Deserialize reads a stored schema back into builder components. A
// malformed document is logged and yields an empty list.
func Deserialize(data []byte) []FormComponent {
	schema, err := DecodeSchema(data)
	if err != nil {
		log.Warnf("formschema.deserialize: %s", err)
		return []FormComponent{}
	}
	return FromSchema(schema)
}

// FromSchema is the inverse of Serialize. Buttons and unsupported wire types
// are dropped; missing keys are generated.
func FromSchema(schema FormSchema) []FormComponent {
	components := make([]FormComponent, 0, len(schema.Components))
	keys := make(map[string]bool, len(schema.Components))
	for _, w := range schema.Components {
		if w.Type == string(Button) {
			continue
		}
		t, ok := wireTypes[w.Type]
		if !ok {
			log.Warnf("formschema.deserialize: skipping %q of unsupported type %q", w.Key, w.Type)
			continue
		}
		c := kinds[t].unwire(w)
		if c.Key == "" {
			c.Key = newKey(t, keys)
		}
		keys[c.Key] = true
		components = append(components, c)
	}
	return components
}
