// Package sqlite provides the default vector store and run log.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database file holds both interfaces:
//
//   - VectorStore: chunk text, metadata and embedding, keyed by (collection, id)
//   - RunStore: one row per indexing run
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Applied versions are recorded in schema_migrations.
//
// # Search
//
// Queries are exact: every embedding in the collection is scored by cosine
// similarity in Go. Embeddings are stored as little-endian float32 blobs.
//
// # Data Location
//
// The database is stored at <storage-dir>/vectors.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
