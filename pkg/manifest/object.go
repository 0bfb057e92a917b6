// Package manifest reads and writes asset manifests (package.json) while
// keeping them as close as possible to what a human wrote.
//
// Three things matter for round-trip fidelity:
//   - key order, kept by Object, an insertion-ordered JSON object
//   - indentation width, detected from the original file (ParseIndent)
//   - empty arrays versus empty objects, restored from the original file
//     (ParseArrayKeys) because tooling in the JavaScript ecosystem treats
//     "files": [] and "files": {} differently
//
// Decoded documents use *Object for JSON objects, []any for arrays,
// json.Number for numbers, and string, bool or nil for the remaining values.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Object is a JSON object that remembers the order of its keys.
// The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in order. The returned slice is a copy.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// String returns the value under key if it is a string.
func (o *Object) String(key string) (string, bool) {
	s, ok := o.values[key].(string)
	return s, ok
}

// Object returns the value under key if it is an object.
func (o *Object) Object(key string) (*Object, bool) {
	obj, ok := o.values[key].(*Object)
	return obj, ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// SortKeys orders the keys by plain byte comparison.
func (o *Object) SortKeys() {
	sort.Strings(o.keys)
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	c := NewObject()
	for _, k := range o.keys {
		c.Set(k, cloneValue(o.values[k]))
	}
	return c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the object compactly, keys in order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendValue(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, replacing the current contents.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("manifest: expected JSON object, got %T", v)
	}
	*o = *obj
	return nil
}

// Decode parses a JSON document, keeping object key order.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("manifest: unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("manifest: invalid object key %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("manifest: unexpected delimiter %q", t)
		}
	default:
		return tok, nil
	}
}

// Encode serializes v as pretty-printed JSON with a four-space indent.
// Slashes, HTML characters and non-ASCII text are written unescaped.
func Encode(v any) ([]byte, error) {
	var compact bytes.Buffer
	if err := appendValue(&compact, v); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func appendValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case *Object:
		if t == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendString(buf, k)
			buf.WriteByte(':')
			if err := appendValue(buf, t.values[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case []string:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendString(buf, e)
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendString(buf, k)
			buf.WriteByte(':')
			if err := appendValue(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case string:
		appendString(buf, t)
	case json.Number:
		buf.WriteString(t.String())
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case int:
		buf.WriteString(strconv.Itoa(t))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	default:
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return err
		}
		// Encoder terminates each value with a newline.
		buf.Truncate(buf.Len() - 1)
	}
	return nil
}

func appendString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1)
}
