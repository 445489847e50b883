package repository

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// fieldNamePattern limits filter and patch keys to plain identifiers so they
// can be spliced into SurrealQL without quoting.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "already contains")
}

// convertSurrealID converts a SurrealDB ID (which may be a complex object) to a string
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
		return ""
	case map[string]interface{}:
		// Handle {"tb": "table", "id": "xxx"} format
		if tb, ok := v["tb"].(string); ok {
			if idPart, ok := v["id"]; ok {
				return fmt.Sprintf("%s:%v", tb, idPart)
			}
		}
	}

	// Try JSON marshaling as fallback
	if data, err := json.Marshal(id); err == nil {
		var recordID models.RecordID
		if err := json.Unmarshal(data, &recordID); err == nil && recordID.Table != "" {
			return fmt.Sprintf("%s:%v", recordID.Table, recordID.ID)
		}
	}

	return fmt.Sprintf("%v", id)
}

// normalizeValue converts SurrealDB client types into plain Go values
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.RecordID, *models.RecordID:
		return convertSurrealID(t)
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t == nil {
			return nil
		}
		return t.Time
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = normalizeValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// toRecord converts a raw SurrealDB row into a model.Record
func toRecord(row interface{}) (model.Record, error) {
	data, ok := row.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result format %T", row)
	}
	rec := model.Record(normalizeValue(data).(map[string]interface{}))
	if id, ok := data[model.FieldID]; ok {
		rec[model.FieldID] = convertSurrealID(id)
	}
	return rec, nil
}

// extractRecords converts the rows of statement i of a query response
func extractRecords(results []interface{}, i int) ([]model.Record, error) {
	result, ok := database.StatementResult(results, i)
	if !ok || result == nil {
		return []model.Record{}, nil
	}

	rows, ok := result.([]interface{})
	if !ok {
		// A single-record statement returns the object itself
		rows = []interface{}{result}
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}

// assignments builds "field = $prefix_field" clauses for the given keys
func assignments(fields model.Record, prefix string, vars map[string]interface{}) ([]string, error) {
	keys := sortedKeys(fields)
	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		if !fieldNamePattern.MatchString(k) {
			return nil, fmt.Errorf("%w: invalid field name %q", database.ErrQuery, k)
		}
		name := prefix + "_" + k
		clauses = append(clauses, fmt.Sprintf("%s = $%s", k, name))
		vars[name] = fields[k]
	}
	return clauses, nil
}

// stripManaged removes fields the store layer owns
func stripManaged(fields model.Record) model.Record {
	return fields.Without(model.FieldID, model.FieldCreatedOn, model.FieldUpdatedOn)
}

func sortedKeys(r model.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
