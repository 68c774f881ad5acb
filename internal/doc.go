// Package internal holds the gatherhall server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: business logic for users and events
// - audit: the append-only change ledger and its read scoping
// - storage: the Postgres repositories and migrations
// - auth, config, metrics, telemetry, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
