// Package fixtures provides static fixture sets for seedbed.
//
// # Embedded Sets
//
// Two sets ship with the binary:
//
//   - organizations: {name, website}, written to the organization table
//   - users: {name, age}, written to the user table
//
// # Custom Sets
//
// Point SEED_FIXTURES_DIR at a directory; each *.json, *.yaml or *.yml file
// becomes one set named after the file:
//
//	fixtures/
//	  organizations.json   // JSON, comments and trailing commas allowed
//	  users.yaml
//	  projects.yml         // unknown sets go to a table of the same name
//
// # Validation
//
// Known sets are validated with the model rules at load time; a bad record
// fails the whole load with the set name and index.
package fixtures
