// Package repository implements the data access layer for seedbed.
//
// # Collections
//
// Collection gives untyped document access to a single SurrealDB table:
//
//   - Find(filter): equality match on every filter field, full scan when empty
//   - FindByID(id): one record, nil when absent
//   - Create(fields): insert, store assigns id and timestamps
//   - UpdateByID(id, patch): merge fields, nil when absent
//   - DeleteByID(id): remove and return the old record, nil when absent
//
// Field names in filters and patches must be plain identifiers; anything
// else is rejected with database.ErrQuery before a query is sent.
//
// # Typed Repositories
//
// OrganizationRepository and UserRepository wrap a Collection, validate
// required fields and convert records into model structs:
//
//	repo := repository.NewUserRepository(db)
//	user := &model.User{Name: "Ada", Age: 36}
//	if err := repo.Create(ctx, user); err != nil { ... }
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::table() and type::record() for safe table and ID handling
//   - time::now() for created_on / updated_on
package repository
