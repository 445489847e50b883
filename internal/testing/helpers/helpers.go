// Package helpers provides common test utilities for e2e testing.
//
// This package includes record assertion helpers for checking what a test
// run actually wrote to the store.
package helpers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/model"
)

// ============================================================================
// Database Assertion Helpers
// ============================================================================

// AssertRecordExists checks that a record exists in the database
func AssertRecordExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()

	exists, err := recordExists(db, table, id)
	if err != nil {
		t.Fatalf("failed to query for record: %v", err)
	}
	if !exists {
		t.Errorf("expected record %s to exist, but it doesn't", qualify(table, id))
	}
}

// AssertRecordNotExists checks that a record does not exist
func AssertRecordNotExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()

	exists, err := recordExists(db, table, id)
	if err != nil {
		// Query error might mean not found, which is what we want
		return
	}
	if exists {
		t.Errorf("expected record %s to not exist, but it does", qualify(table, id))
	}
}

func recordExists(db database.Database, table, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := "SELECT * FROM type::record($id)"
	results, err := db.Query(ctx, query, map[string]interface{}{
		"id": qualify(table, id),
	})
	if err != nil {
		return false, err
	}
	return hasResults(results), nil
}

// qualify returns table:key for a bare key or the id unchanged
func qualify(table, id string) string {
	if strings.Contains(id, ":") {
		return id
	}
	return table + ":" + id
}

// hasResults checks if SurrealDB query returned any results
func hasResults(results []interface{}) bool {
	result, ok := database.StatementResult(results, 0)
	if !ok {
		return false
	}

	switch v := result.(type) {
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return true
	case nil:
		return false
	default:
		return true
	}
}

// ============================================================================
// Fixture Comparison Helpers
// ============================================================================

// FieldValues returns the field of every record, formatted and sorted
func FieldValues(records []model.Record, field string) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, fmt.Sprint(r[field]))
	}
	sort.Strings(out)
	return out
}

// AssertSameNames checks that two record lists carry the same names,
// ignoring order
func AssertSameNames(t *testing.T, want, got []model.Record) {
	t.Helper()
	if diff := cmp.Diff(FieldValues(want, "name"), FieldValues(got, "name")); diff != "" {
		t.Errorf("record names differ (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Utility Helpers
// ============================================================================

// StringPtr returns a pointer to the string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the int
func IntPtr(i int) *int {
	return &i
}
