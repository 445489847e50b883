// Package database provides the database abstraction layer for seedbed.
//
// This package defines the Database interface that abstracts SurrealDB operations,
// allowing the seeder and repositories to run against fakes in unit tests.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for mutations whose output is not needed)
//
// # Batches
//
// AtomicBatch accumulates statements and runs them wrapped in
// BEGIN TRANSACTION / COMMIT TRANSACTION as one query. See transaction.go.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//   - ErrNoAddress: No endpoint configured
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
//
// # Usage Example
//
//	db, err := database.Open(ctx, database.Config{URL: handle.Address, ...})
//	defer db.Close()
//
//	rows, err := db.Query(ctx, "SELECT * FROM organization", nil)
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/seedbed/internal/config"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")

	// ErrNoAddress indicates no endpoint was configured for the connection.
	ErrNoAddress = errors.New("no database address: set DB_URL or DB_HOST/DB_PORT")
)

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database configuration
type Config struct {
	URL       string
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

// Endpoint returns the websocket endpoint, preferring URL over Host/Port.
// It returns an empty string when neither is set.
func (c Config) Endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" || c.Port == "" {
		return ""
	}
	return fmt.Sprintf("ws://%s:%s", c.Host, c.Port)
}

// FromConfig maps the application database settings onto a connection Config
func FromConfig(c config.DatabaseConfig) Config {
	return Config{
		URL:       c.URL,
		Host:      c.Host,
		Port:      c.Port,
		User:      c.User,
		Password:  c.Password,
		Namespace: c.Namespace,
		Database:  c.Database,
	}
}

// Connector opens a connected Database. Open is the SurrealDB implementation;
// tests substitute their own.
type Connector func(ctx context.Context, cfg Config) (Database, error)

// Open creates a SurrealDB client and connects it
func Open(ctx context.Context, cfg Config) (Database, error) {
	db := NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
