package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// isoMillis matches the timestamp layout the admin dashboard has always shown.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Field is one key/value pair of a stored submission.
type Field struct {
	Key   string
	Value any
}

// Submission is the admin view of a stored record: plain values in the
// store's field order, with the store identifier as a string under "_id".
type Submission struct {
	fields []Field
}

// NewSubmission builds a Submission from fields in order. A repeated key
// replaces the earlier value in place.
func NewSubmission(fields ...Field) Submission {
	s := Submission{fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		s.Set(f.Key, f.Value)
	}
	return s
}

// Set assigns key, appending it when new.
func (s *Submission) Set(key string, value any) {
	for i := range s.fields {
		if s.fields[i].Key == key {
			s.fields[i].Value = value
			return
		}
	}
	s.fields = append(s.fields, Field{Key: key, Value: value})
}

// Keys returns the field names in order.
func (s Submission) Keys() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Key
	}
	return out
}

// Get returns the raw value for key.
func (s Submission) Get(key string) (any, bool) {
	for _, f := range s.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Text renders the value for key as plain text; absent and null values are "".
func (s Submission) Text(key string) string {
	v, _ := s.Get(key)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format(isoMillis)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// ID returns the store identifier.
func (s Submission) ID() string { return s.Text(FieldID) }

// Len returns the number of fields.
func (s Submission) Len() int { return len(s.fields) }

// MarshalJSON writes the submission as an object, keeping field order.
// Times use the same millisecond UTC form as Text.
func (s Submission) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		val := f.Value
		if t, ok := val.(time.Time); ok {
			val = t.UTC().Format(isoMillis)
		}
		v, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", f.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
