// Package model defines the documents seedbed stores and seeds.
//
// # Records
//
// Record is the untyped document shape used by the seeder, fixtures and the
// generic repository collection: a field name to value mapping, exactly as
// it comes back from SurrealDB (with "id" normalized to "table:key").
//
// # Domain Entities
//
//   - Organization: name and website
//   - User: name and age
//
// Each entity converts to and from a Record and validates its required
// fields:
//
//	org, err := model.OrganizationFromRecord(rec)
//	if errs := org.Validate(); len(errs) > 0 { ... }
//
// # Validation Errors
//
// Validate methods return []FieldError. NewValidationError wraps them into
// an error value that callers can detect with errors.As.
package model
