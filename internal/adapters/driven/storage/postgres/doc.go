// Package postgres provides a vector store and run log backed by PostgreSQL
// with the pgvector extension.
//
// Similarity search uses the cosine distance operator (<=>). When the
// embedding dimension is known the vector column is typed and an HNSW index
// is created. Metadata is stored as JSONB and filters use containment (@>).
//
// The store owns its connection pool and closes it on Close.
package postgres
