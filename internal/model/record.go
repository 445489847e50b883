package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is a single stored document
type Record map[string]interface{}

// Document field names managed by the store layer
const (
	FieldID        = "id"
	FieldCreatedOn = "created_on"
	FieldUpdatedOn = "updated_on"
)

// ID returns the record id, or an empty string when it has none
func (r Record) ID() string {
	if id, ok := r[FieldID].(string); ok {
		return id
	}
	return ""
}

// Clone returns a deep copy of the record. Nested maps and slices are
// copied so callers cannot mutate shared fixture data.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Without returns a copy of the record minus the given fields
func (r Record) Without(fields ...string) Record {
	out := r.Clone()
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(Record(t).Clone())
	case Record:
		return t.Clone()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// CloneRecords deep-copies a slice of records
func CloneRecords(in []Record) []Record {
	if in == nil {
		return nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// decodeRecord converts a record into a typed struct through its JSON form
func decodeRecord(r Record, v interface{}) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	return nil
}

// timeField reads a timestamp that may be a time.Time or an RFC 3339 string
func timeField(r Record, key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
