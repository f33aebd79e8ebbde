package recipes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Prop is a single named attribute of a recipe, such as "cook time".
type Prop struct {
	Key   string
	Value string
}

// Props is an ordered set of core properties with unique keys. On the wire it
// is a JSON object whose members are written and read in slice order, so the
// order a user entered survives a save and reload.
type Props []Prop

// Get returns the value stored under key.
func (p Props) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// Set stores value under key. An existing key keeps its position and takes the
// new value.
func (p *Props) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Prop{Key: key, Value: value})
}

// Len reports the number of properties.
func (p Props) Len() int {
	return len(p)
}

// Map flattens the properties into an unordered map.
func (p Props) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, prop := range p {
		out[prop.Key] = prop.Value
	}
	return out
}

// Clone returns an independent copy.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	return append(Props(nil), p...)
}

// MarshalJSON writes the properties as a JSON object in slice order. An empty
// set is written as {} rather than null.
func (p Props) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping member order. Numbers and booleans
// are kept as their literal text, null members become empty strings, and a
// repeated member overwrites the earlier value in place.
func (p *Props) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("recipes: decode props: %w", err)
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("recipes: props must be a JSON object, got %v", tok)
	}

	var out Props
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("recipes: decode props key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("recipes: unexpected props key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("recipes: decode props value for %q: %w", key, err)
		}
		value, err := propValue(raw)
		if err != nil {
			return fmt.Errorf("recipes: props value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("recipes: decode props: %w", err)
	}

	*p = out
	return nil
}

var errNestedProp = errors.New("nested values are not supported")

func propValue(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errNestedProp
	default:
		return string(trimmed), nil
	}
}
