// Package testdb provides test database utilities for e2e testing.
//
// Connections go to the store published in DB_URL, normally by
// testenv.Setup, so queries run against a real SurrealDB instance.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//
//	    // Use tdb.DB for database operations
//	    result, err := tdb.DB.Query(tdb.Ctx(), "SELECT * FROM user", nil)
//	}
package testdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/forgo/seedbed/internal/config"
	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/repository"
)

// TestDB is one connection to the test store, closed when the test ends
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	isolated  bool
	t         *testing.T
}

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

// getTestConfig returns the published database settings
func getTestConfig(t *testing.T) database.Config {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("testdb: failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		t.Skipf("testdb: %s not set, no store to connect to", config.EnvDatabaseURL)
	}
	return database.FromConfig(cfg.Database)
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New connects to the seeded namespace
func New(t *testing.T) *TestDB {
	t.Helper()
	return open(t, getTestConfig(t), false)
}

// Isolated connects to a fresh namespace that is removed after the test
func Isolated(t *testing.T) *TestDB {
	t.Helper()
	cfg := getTestConfig(t)
	cfg.Namespace = uniqueNamespace()
	return open(t, cfg, true)
}

func open(t *testing.T, cfg database.Config, isolated bool) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	tdb := &TestDB{
		DB:        db,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		isolated:  isolated,
		t:         t,
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close closes the connection, removing the namespace first when isolated
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	if tdb.isolated {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		query := fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace)
		_ = tdb.DB.Execute(ctx, query, nil) // Ignore errors on cleanup
	}

	_ = tdb.DB.Close()
	tdb.DB = nil
}

// Ctx returns a context with a reasonable timeout for test operations.
// It is cancelled when the test finishes.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a query and fails the test on error.
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// MustQuery executes a query and returns results, failing the test on error.
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return results
}

// Count returns the number of records in table, failing the test on error.
func (tdb *TestDB) Count(table string) int {
	tdb.t.Helper()
	n, err := repository.NewCollection(tdb.DB, table).Count(tdb.Ctx())
	if err != nil {
		tdb.t.Fatalf("testdb: count %s failed: %v", table, err)
	}
	return n
}
