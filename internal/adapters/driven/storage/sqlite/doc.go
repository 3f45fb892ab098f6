// Package sqlite persists corpus snapshots in a local SQLite database so a
// built knowledge base survives restarts without re-embedding.
//
// The database lives at <data dir>/snapshot.db (default
// ~/.sercha-voice/data). It holds at most one snapshot: the serialized
// vector index and the chunk table in index order. Saving replaces both in
// one transaction, so a reader never sees chunks from one build paired with
// vectors from another.
//
// The schema is managed by numbered migrations embedded from the
// migrations directory and tracked in the schema_migrations table.
package sqlite
