package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealDB implements the Database interface for SurrealDB.
//
// One SurrealDB value wraps a single websocket session. The client tags each
// request with an id and serializes frame writes, so one connected value may
// be shared by concurrent goroutines.
type SurrealDB struct {
	db     *surrealdb.DB
	config Config
}

// NewSurrealDB creates a new SurrealDB instance
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{
		config: cfg,
	}
}

// Connect establishes a connection to SurrealDB
func (s *SurrealDB) Connect(ctx context.Context) error {
	endpoint := s.config.Endpoint()
	if endpoint == "" {
		return ErrNoAddress
	}

	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v (url: %s)", ErrConnection, err, endpoint)
	}

	// Sign in as root user
	_, err = db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	})
	if err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	// Use namespace and database
	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

// Close closes the database connection. Closing twice is a no-op.
func (s *SurrealDB) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close(context.Background())
}

// Ping checks the database connection
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query executes a query and returns results.
// Each statement yields one {status, result} map.
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[interface{}](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	if results == nil {
		return nil, nil
	}

	output := make([]interface{}, 0, len(*results))
	for _, r := range *results {
		if r.Status != "OK" {
			if r.Error != nil {
				return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
			}
			return nil, ErrQuery
		}
		output = append(output, map[string]interface{}{
			"status": r.Status,
			"result": r.Result,
		})
	}

	return output, nil
}

// QueryOne executes a query and returns the first record of the first statement
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return FirstRecord(results)
}

// Execute runs a query without returning results
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}

// StatementResult returns the result payload of statement i from a Query
// response, unwrapping the {status, result} envelope.
func StatementResult(results []interface{}, i int) (interface{}, bool) {
	if i < 0 || i >= len(results) {
		return nil, false
	}
	if resp, ok := results[i].(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			return resp["result"], true
		}
	}
	return results[i], true
}

// FirstRecord unwraps the first statement and returns its first row.
// It returns ErrNotFound when the statement produced no rows.
func FirstRecord(results []interface{}) (interface{}, error) {
	result, ok := StatementResult(results, 0)
	if !ok || result == nil {
		return nil, ErrNotFound
	}
	if rows, ok := result.([]interface{}); ok {
		if len(rows) == 0 {
			return nil, ErrNotFound
		}
		return rows[0], nil
	}
	// Result is not an array, return as-is (e.g., scalar values)
	return result, nil
}
