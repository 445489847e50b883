package database

// Atomic batches
//
// AtomicBatch collects statements and runs them as one
// BEGIN TRANSACTION / COMMIT TRANSACTION query:
//
//	batch := NewAtomicBatch()
//	batch.Add("DELETE organization", nil)
//	batch.Add("DELETE user", nil)
//	batch.Execute(ctx, db)  // All or nothing
//
// Variables are namespaced per statement ($name -> $v1_name) by TxBuilder so
// statements written independently cannot collide.

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	varCounter uint64
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add adds a statement to the transaction, namespacing its variables.
// Returns the mapping from original to namespaced variable names.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	// Longest names first so $name is not rewritten inside $name_suffix
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	varMapping := make(map[string]string, len(vars))
	newQuery := query
	for _, varName := range names {
		tb.varCounter++
		newVarName := fmt.Sprintf("v%d_%s", tb.varCounter, varName)
		newQuery = strings.ReplaceAll(newQuery, "$"+varName, "$"+newVarName)

		tb.vars[newVarName] = vars[varName]
		varMapping[varName] = newVarName
	}

	tb.statements = append(tb.statements, newQuery)
	return varMapping
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// ExecuteTransaction executes a transaction built with TxBuilder
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}

	return db.Query(ctx, query, vars)
}

// AtomicBatch provides a simpler API for batch operations that should be atomic
type AtomicBatch struct {
	queries []batchQuery
}

type batchQuery struct {
	query string
	vars  map[string]interface{}
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{
		queries: make([]batchQuery, 0),
	}
}

// Add adds a query to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.queries = append(ab.queries, batchQuery{query: query, vars: vars})
	return ab
}

// Execute runs all queries as a single transaction
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	if len(ab.queries) == 0 {
		return nil
	}

	tb := NewTxBuilder()
	for _, q := range ab.queries {
		tb.Add(q.query, q.vars)
	}

	_, err := ExecuteTransaction(ctx, db, tb)
	return err
}

// Len returns the number of queries in the batch
func (ab *AtomicBatch) Len() int {
	return len(ab.queries)
}
