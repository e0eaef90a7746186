package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fields is a JSON object that remembers the order of its keys. Values are
// kept raw so that anything the pipeline does not understand is written back
// exactly as it was read.
type Fields struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewFields creates an empty ordered object
func NewFields() *Fields {
	return &Fields{values: map[string]json.RawMessage{}}
}

// UnmarshalJSON decodes a JSON object preserving key order. A repeated key
// keeps its first position and its last value.
func (f *Fields) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", token)
	}
	f.keys = f.keys[:0]
	f.values = map[string]json.RawMessage{}
	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", token)
		}
		var value json.RawMessage
		if err = decoder.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode %q: %w", key, err)
		}
		if _, seen := f.values[key]; !seen {
			f.keys = append(f.keys, key)
		}
		f.values[key] = value
	}
	_, err = decoder.Token()
	return err
}

// MarshalJSON encodes the object with keys in their recorded order
func (f *Fields) MarshalJSON() ([]byte, error) {
	buffer := bytes.Buffer{}
	buffer.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buffer.WriteByte(',')
		}
		encodedKey, err := Marshal(key)
		if err != nil {
			return nil, err
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(':')
		buffer.Write(f.values[key])
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// Keys returns keys in order
func (f *Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Has returns true if key is present
func (f *Fields) Has(key string) bool {
	if f == nil {
		return false
	}
	_, ok := f.values[key]
	return ok
}

// Raw returns the raw value for the key
func (f *Fields) Raw(key string) (json.RawMessage, bool) {
	if f == nil {
		return nil, false
	}
	value, ok := f.values[key]
	return value, ok
}

// Get decodes the value under key into dest, it returns false when key is absent
func (f *Fields) Get(key string, dest interface{}) (bool, error) {
	raw, ok := f.Raw(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("invalid %q: %w", key, err)
	}
	return true, nil
}

// Set stores value under key, an existing key keeps its position, a new key is appended
func (f *Fields) Set(key string, value interface{}) error {
	var raw json.RawMessage
	switch actual := value.(type) {
	case json.RawMessage:
		raw = actual
	default:
		encoded, err := Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", key, err)
		}
		raw = encoded
	}
	if f.values == nil {
		f.values = map[string]json.RawMessage{}
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = raw
	return nil
}

// Delete removes key
func (f *Fields) Delete(key string) {
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	for i, candidate := range f.keys {
		if candidate == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Marshal encodes value as compact JSON without HTML escaping
func Marshal(value interface{}) ([]byte, error) {
	buffer := bytes.Buffer{}
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
