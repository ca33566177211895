// Package internal holds the hackathon management server internals.
//
// The tree is organized by responsibility:
// - api: HTTP handlers, middleware, response envelope, and routing
// - domain: business logic, one package per resource
// - storage: the relational (Postgres) and document (Elasticsearch) layers
// - auth, config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
