// Package config manages seedbed configuration.
//
// The config package loads and validates configuration from environment variables.
// All configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - DatabaseConfig: SurrealDB connection settings
//   - ProvisionConfig: ephemeral store backend, binary/image, timeouts
//   - SeedConfig: fixture directory and insert concurrency
//   - TestEnvConfig: what to do when test setup fails
//   - LogConfig: zap level and encoding
//
// # Environment Variables
//
//	DB_URL                 - store endpoint, ws://host:port (set by the provisioner)
//	DB_HOST, DB_PORT       - used when DB_URL is empty (default: localhost:8000)
//	DB_NAMESPACE           - namespace (default: seedbed)
//	DB_DATABASE            - database (default: test)
//	DB_USER, DB_PASSWORD   - root credentials (default: root/root)
//	PROVISION_BACKEND      - process or docker (default: process)
//	SURREAL_BINARY         - surreal executable (default: surreal)
//	SURREAL_IMAGE          - docker image (default: surrealdb/surrealdb:latest)
//	PROVISION_TIMEOUT      - readiness deadline (default: 30s)
//	SEED_FIXTURES_DIR      - directory of fixture files (default: embedded set)
//	SEED_CONCURRENCY       - max concurrent inserts per collection, 0 = unbounded
//	SETUP_FAILURE_POLICY   - abort or continue (default: abort)
//	LOG_LEVEL, LOG_FORMAT  - debug|info|warn|error, json|console
//	DEBUG                  - any true value forces debug logging
package config
