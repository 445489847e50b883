package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/model"
)

// Collection provides untyped document access to one SurrealDB table
type Collection struct {
	db    database.Database
	table string
}

// NewCollection creates a collection over the given table
func NewCollection(db database.Database, table string) *Collection {
	return &Collection{db: db, table: table}
}

// Table returns the underlying table name
func (c *Collection) Table() string {
	return c.table
}

// Find returns every record matching all filter fields by equality.
// A nil or empty filter scans the whole table.
func (c *Collection) Find(ctx context.Context, filter model.Record) ([]model.Record, error) {
	vars := map[string]interface{}{"tb": c.table}
	query := "SELECT * FROM type::table($tb)"

	if len(filter) > 0 {
		clauses, err := assignments(filter, "f", vars)
		if err != nil {
			return nil, err
		}
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	results, err := c.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.table, err)
	}
	return extractRecords(results, 0)
}

// FindByID retrieves a record by ID. Returns nil, nil when it does not exist.
func (c *Collection) FindByID(ctx context.Context, id string) (model.Record, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": c.recordID(id)}

	result, err := c.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s by id: %w", c.table, err)
	}
	if result == nil {
		return nil, nil
	}
	return toRecord(result)
}

// Create inserts a new record and returns it as stored.
// id, created_on and updated_on are assigned by the store.
func (c *Collection) Create(ctx context.Context, fields model.Record) (model.Record, error) {
	vars := map[string]interface{}{"tb": c.table}
	clauses, err := assignments(stripManaged(fields), "c", vars)
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, "created_on = time::now()", "updated_on = time::now()")

	query := "CREATE type::table($tb) SET " + strings.Join(clauses, ", ")
	results, err := c.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %s: %v", database.ErrDuplicate, c.table, err)
		}
		return nil, fmt.Errorf("create %s: %w", c.table, err)
	}

	created, err := extractRecords(results, 0)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("create %s: no result returned", c.table)
	}
	return created[0], nil
}

// UpdateByID merges the patch into an existing record and returns the
// updated record. Returns nil, nil when the record does not exist.
func (c *Collection) UpdateByID(ctx context.Context, id string, patch model.Record) (model.Record, error) {
	existing, err := c.FindByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}

	vars := map[string]interface{}{"id": c.recordID(id)}
	clauses, err := assignments(stripManaged(patch), "u", vars)
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, "updated_on = time::now()")

	query := "UPDATE type::record($id) SET " + strings.Join(clauses, ", ") + " RETURN AFTER"
	results, err := c.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", c.table, err)
	}

	updated, err := extractRecords(results, 0)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, nil
	}
	return updated[0], nil
}

// DeleteByID removes a record and returns it as it was before deletion.
// Returns nil, nil when the record does not exist.
func (c *Collection) DeleteByID(ctx context.Context, id string) (model.Record, error) {
	query := `DELETE type::record($id) RETURN BEFORE`
	vars := map[string]interface{}{"id": c.recordID(id)}

	results, err := c.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", c.table, err)
	}

	deleted, err := extractRecords(results, 0)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	return deleted[0], nil
}

// Count returns the number of records in the table
func (c *Collection) Count(ctx context.Context) (int, error) {
	query := `SELECT count() AS count FROM type::table($tb) GROUP ALL`
	vars := map[string]interface{}{"tb": c.table}

	result, err := c.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count %s: %w", c.table, err)
	}
	if row, ok := result.(map[string]interface{}); ok {
		return extractCountValue(row["count"]), nil
	}
	return 0, nil
}

// recordID qualifies a bare key with the collection's table
func (c *Collection) recordID(id string) string {
	if strings.Contains(id, ":") {
		return id
	}
	return c.table + ":" + id
}

// ClearTables deletes every record from the given tables in one transaction
func ClearTables(ctx context.Context, db database.Database, tables ...string) error {
	batch := database.NewAtomicBatch()
	for _, table := range tables {
		batch.Add("DELETE type::table($tb)", map[string]interface{}{"tb": table})
	}
	if err := batch.Execute(ctx, db); err != nil {
		return fmt.Errorf("clear tables: %w", err)
	}
	return nil
}
