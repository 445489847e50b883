// Package testdb provides test database utilities for seedbed.
//
// The testdb package opens per-test connections to the store a test run
// was set up against, with automatic cleanup.
//
// # Seeded Database
//
// Connect to the seeded namespace published by testenv:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    n := tdb.Count("user")
//	}
//
// Tests are skipped when no store address has been published.
//
// # Isolation
//
// For tests that write, use a namespace of their own:
//
//	func TestA(t *testing.T) {
//	    tdb := testdb.Isolated(t) // namespace: test_1712345678_1
//	}
//
// The namespace is removed when the test finishes.
//
// # Timeout Context
//
// Test databases include timeout contexts:
//
//	ctx := tdb.Ctx() // 10 second timeout
package testdb
