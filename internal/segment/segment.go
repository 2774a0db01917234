package segment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Segment is the named, ordered set of fields sent on submission.
type Segment struct {
	Name   string
	Fields []Field
}

// Field is one resolved schema selection.
type Field struct {
	Key      string
	Label    string
	Resolved bool // false when Key was not found in the catalog
}

// Keys returns the field keys in order.
func (s Segment) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// wirePayload mirrors the JSON body accepted by segment endpoints:
//
//	{"segment_name": "VIPs", "schema": [{"first_name": "First Name"}]}
type wirePayload struct {
	SegmentName string            `json:"segment_name"`
	Schema      []json.RawMessage `json:"schema"`
}

// MarshalJSON encodes the segment in wire form. Each field becomes a
// single-key object; unresolved fields carry a null label.
func (s Segment) MarshalJSON() ([]byte, error) {
	payload := wirePayload{
		SegmentName: s.Name,
		Schema:      make([]json.RawMessage, 0, len(s.Fields)),
	}

	for _, f := range s.Fields {
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value := []byte("null")
		if f.Resolved {
			if value, err = json.Marshal(f.Label); err != nil {
				return nil, err
			}
		}

		var item bytes.Buffer
		item.WriteByte('{')
		item.Write(key)
		item.WriteByte(':')
		item.Write(value)
		item.WriteByte('}')
		payload.Schema = append(payload.Schema, item.Bytes())
	}

	return json.Marshal(payload)
}

// UnmarshalJSON decodes a segment from wire form.
func (s *Segment) UnmarshalJSON(data []byte) error {
	seg, err := ParsePayload(data)
	if err != nil {
		return err
	}
	*s = seg
	return nil
}

// ErrInvalidPayload is wrapped by every ParsePayload failure.
var ErrInvalidPayload = errors.New("invalid segment payload")

// ParsePayload decodes a wire payload. Each schema item must be an object
// with exactly one key whose value is a string or null.
func ParsePayload(data []byte) (Segment, error) {
	var payload wirePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Segment{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	seg := Segment{
		Name:   payload.SegmentName,
		Fields: make([]Field, 0, len(payload.Schema)),
	}

	for i, raw := range payload.Schema {
		var item map[string]*string
		if err := json.Unmarshal(raw, &item); err != nil {
			return Segment{}, fmt.Errorf("%w: schema[%d]: %v", ErrInvalidPayload, i, err)
		}
		if len(item) != 1 {
			return Segment{}, fmt.Errorf("%w: schema[%d]: expected exactly one key, got %d", ErrInvalidPayload, i, len(item))
		}
		for key, label := range item {
			if key == "" {
				return Segment{}, fmt.Errorf("%w: schema[%d]: empty key", ErrInvalidPayload, i)
			}
			f := Field{Key: key}
			if label != nil {
				f.Label = *label
				f.Resolved = true
			}
			seg.Fields = append(seg.Fields, f)
		}
	}

	return seg, nil
}
