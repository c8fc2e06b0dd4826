// Package jobs persists processing jobs in SQLite and defines their
// lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, cancellation flags, and stuck-job recovery. A Job row captures
// everything one trim run needs: source and output paths, the serialized
// removal ranges and encoding profile, subtitle state, progress, and the
// failure diagnostics surfaced to the user.
//
// The database is treated as transient storage for in-flight work rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
//
// Only the orchestrator mutates a live job; every other reader receives
// snapshots through Store queries.
package jobs
