package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgo/seedbed/internal/model"
)

func TestHasResults(t *testing.T) {
	tests := []struct {
		name    string
		results []interface{}
		want    bool
	}{
		{"no statements", nil, false},
		{"empty rows", []interface{}{map[string]interface{}{"status": "OK", "result": []interface{}{}}}, false},
		{"one row", []interface{}{map[string]interface{}{"status": "OK", "result": []interface{}{map[string]interface{}{"id": "user:1"}}}}, true},
		{"null result", []interface{}{map[string]interface{}{"status": "OK", "result": nil}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasResults(tt.results))
		})
	}
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "user:1", qualify("user", "1"))
	assert.Equal(t, "user:1", qualify("user", "user:1"))
}

func TestFieldValues_Sorted(t *testing.T) {
	records := []model.Record{{"name": "b", "age": 3}, {"name": "a", "age": 12}}
	assert.Equal(t, []string{"a", "b"}, FieldValues(records, "name"))
	assert.Equal(t, []string{"12", "3"}, FieldValues(records, "age"))
}

func TestPointers(t *testing.T) {
	assert.Equal(t, "x", *StringPtr("x"))
	assert.Equal(t, 4, *IntPtr(4))
}
