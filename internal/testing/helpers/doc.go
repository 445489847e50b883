// Package helpers provides test utility functions for seedbed.
//
// The helpers package contains common test utilities for assertions,
// pointer creation, and fixture comparison.
//
// # Pointer Helpers
//
// Create pointers to literal values:
//
//	name := helpers.StringPtr("test")
//	age := helpers.IntPtr(42)
//
// # Assertion Helpers
//
// Common test assertions:
//
//	helpers.AssertRecordExists(t, db, "user", "user:123")
//	helpers.AssertRecordNotExists(t, db, "user", "user:456")
//	helpers.AssertSameNames(t, fixtureRecords, seededRecords)
package helpers
