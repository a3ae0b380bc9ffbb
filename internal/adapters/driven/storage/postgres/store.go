package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.VectorStore = (*Store)(nil)
	_ driven.RunStore    = (*Store)(nil)
)

// Store is a pgvector-backed vector store and run log for one collection.
type Store struct {
	pool       *pgxpool.Pool
	collection string
	dimensions int
}

// Option configures a Store.
type Option func(*Store)

// WithCollection selects the collection. Empty keeps the default.
func WithCollection(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithDimensions types the vector column as vector(n) and enables the HNSW index.
// Only affects table creation.
func WithDimensions(n int) Option {
	return func(s *Store) { s.dimensions = n }
}

// NewStore connects to dsn and creates the schema if needed.
func NewStore(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: store.postgres_dsn is required for the postgres backend", domain.ErrConfigMissing)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: %w", domain.ErrVectorStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres: %w", domain.ErrVectorStoreUnavailable, err)
	}

	s := &Store{pool: pool, collection: domain.DefaultCollection}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres: %w", domain.ErrVectorStoreUnavailable, err)
	}
	return s, nil
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) init(ctx context.Context) error {
	for _, stmt := range schema(s.dimensions) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// schema returns the idempotent DDL statements.
func schema(dimensions int) []string {
	vtype := "vector"
	if dimensions > 0 {
		vtype = fmt.Sprintf("vector(%d)", dimensions)
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS fragmenter_chunks (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			text TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding %s NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (collection, id)
		)`, vtype),
		`CREATE INDEX IF NOT EXISTS fragmenter_chunks_metadata_idx ON fragmenter_chunks USING gin (metadata)`,
		`CREATE TABLE IF NOT EXISTS fragmenter_runs (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			files_seen INTEGER NOT NULL DEFAULT 0,
			files_skipped INTEGER NOT NULL DEFAULT 0,
			chunks INTEGER NOT NULL DEFAULT 0,
			embedded INTEGER NOT NULL DEFAULT 0,
			unchanged INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			started_at BIGINT NOT NULL,
			finished_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS fragmenter_runs_collection_idx ON fragmenter_runs (collection, started_at)`,
	}
	// HNSW needs a typed column.
	if dimensions > 0 {
		stmts = append(stmts,
			`CREATE INDEX IF NOT EXISTS fragmenter_chunks_embedding_idx ON fragmenter_chunks USING hnsw (embedding vector_cosine_ops)`)
	}
	return stmts
}

// --- Vector store ---

// Upsert inserts or replaces chunks in one batched transaction.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	now := time.Now().UnixNano()
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		md, err := metadataJSON(c.Metadata)
		if err != nil {
			return fmt.Errorf("postgres: marshal metadata for %s: %w", c.ID, err)
		}
		batch.Queue(`INSERT INTO fragmenter_chunks (collection, id, text, metadata, embedding, updated_at)
			VALUES ($1, $2, $3, $4::jsonb, $5::vector, $6)
			ON CONFLICT (collection, id) DO UPDATE SET
				text = EXCLUDED.text,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding,
				updated_at = EXCLUDED.updated_at`,
			s.collection, c.ID, c.Text, md, pgvector.NewVector(c.Embedding), now)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: upsert chunks: %w", err)
	}
	return tx.Commit(ctx)
}

// Delete removes entries by id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM fragmenter_chunks WHERE collection = $1 AND id = ANY($2)`,
		s.collection, ids)
	if err != nil {
		return fmt.Errorf("postgres: delete chunks: %w", err)
	}
	return nil
}

// Query returns the k nearest chunks by cosine distance.
func (s *Store) Query(ctx context.Context, vec []float32, k int, filter domain.Metadata) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	md, err := metadataJSON(filter)
	if err != nil {
		return nil, fmt.Errorf("postgres: marshal filter: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, text, metadata, 1 - (embedding <=> $1::vector) AS score
		 FROM fragmenter_chunks
		 WHERE collection = $2 AND metadata @> $3::jsonb
		 ORDER BY embedding <=> $1::vector, id
		 LIMIT $4`,
		pgvector.NewVector(vec), s.collection, md, k)
	if err != nil {
		return nil, fmt.Errorf("postgres: query chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.RetrievedChunk
	for rows.Next() {
		var (
			hit domain.RetrievedChunk
			raw []byte
		)
		if err := rows.Scan(&hit.Chunk.ID, &hit.Chunk.Text, &raw, &hit.Score); err != nil {
			return nil, fmt.Errorf("postgres: scan chunk: %w", err)
		}
		if err := json.Unmarshal(raw, &hit.Chunk.Metadata); err != nil {
			return nil, fmt.Errorf("postgres: decode metadata: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// Count returns the number of stored vectors in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM fragmenter_chunks WHERE collection = $1`, s.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count chunks: %w", err)
	}
	return n, nil
}

// All returns every stored chunk ordered by id, without embeddings.
func (s *Store) All(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, metadata FROM fragmenter_chunks WHERE collection = $1 ORDER BY id`,
		s.collection)
	if err != nil {
		return nil, fmt.Errorf("postgres: list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var (
			c   domain.Chunk
			raw []byte
		)
		if err := rows.Scan(&c.ID, &c.Text, &raw); err != nil {
			return nil, fmt.Errorf("postgres: scan chunk: %w", err)
		}
		if err := json.Unmarshal(raw, &c.Metadata); err != nil {
			return nil, fmt.Errorf("postgres: decode metadata: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// --- Run store ---

// SaveRun stores or replaces a run report.
func (s *Store) SaveRun(ctx context.Context, r domain.IndexReport) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fragmenter_runs (id, collection, files_seen, files_skipped, chunks,
			embedded, unchanged, deleted, failed, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
			files_seen = EXCLUDED.files_seen,
			files_skipped = EXCLUDED.files_skipped,
			chunks = EXCLUDED.chunks,
			embedded = EXCLUDED.embedded,
			unchanged = EXCLUDED.unchanged,
			deleted = EXCLUDED.deleted,
			failed = EXCLUDED.failed,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at`,
		r.RunID, s.collection, r.FilesSeen, r.FilesSkipped, r.Chunks,
		r.Embedded, r.Unchanged, r.Deleted, r.Failed,
		r.StartedAt.UnixNano(), r.FinishedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("postgres: save run %s: %w", r.RunID, err)
	}
	return nil
}

// LastRun returns the most recent run of the collection.
func (s *Store) LastRun(ctx context.Context) (*domain.IndexReport, error) {
	var (
		r                 domain.IndexReport
		started, finished int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, files_seen, files_skipped, chunks, embedded, unchanged, deleted, failed,
			started_at, finished_at
		 FROM fragmenter_runs WHERE collection = $1
		 ORDER BY started_at DESC LIMIT 1`,
		s.collection).Scan(&r.RunID, &r.FilesSeen, &r.FilesSkipped, &r.Chunks,
		&r.Embedded, &r.Unchanged, &r.Deleted, &r.Failed, &started, &finished)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: last run: %w", err)
	}

	r.StartedAt = time.Unix(0, started)
	r.FinishedAt = time.Unix(0, finished)
	return &r, nil
}

// metadataJSON encodes md for a JSONB parameter. Nil encodes as {}.
func metadataJSON(md domain.Metadata) (string, error) {
	if len(md) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(md)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
