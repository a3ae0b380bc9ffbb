package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/rank"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.VectorStore = (*Store)(nil)
	_ driven.RunStore    = (*Store)(nil)
)

// FileName is the database file inside the storage directory.
const FileName = "vectors.db"

// Store is a SQLite-backed vector store and run log for one collection.
type Store struct {
	db         *sql.DB
	path       string
	collection string
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

// NewStore opens or creates <dir>/vectors.db and applies pending migrations.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: storage directory is required", domain.ErrConfigMissing)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)

	// WAL lets inspect and query read while an index run writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrVectorStoreUnavailable, err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		collection: domain.DefaultCollection,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrVectorStoreUnavailable, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_init.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Vector Store ====================

// Upsert inserts or replaces chunks in one transaction.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, id, text, metadata, embedding, dimensions, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			text = excluded.text,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for _, c := range chunks {
		metadataJSON, err := marshalMetadata(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", c.ID, err)
		}
		_, err = stmt.ExecContext(ctx, s.collection, c.ID, c.Text, metadataJSON,
			float32SliceToBytes(c.Embedding), len(c.Embedding), now)
		if err != nil {
			return fmt.Errorf("upserting chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Delete removes entries by id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM chunks WHERE collection = ? AND id = ?")
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, s.collection, id); err != nil {
			return fmt.Errorf("deleting chunk %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Query scores every entry in the collection and returns the k best.
func (s *Store) Query(ctx context.Context, vec []float32, k int, filter domain.Metadata) ([]domain.RetrievedChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, metadata, embedding FROM chunks WHERE collection = ?", s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.RetrievedChunk
	for rows.Next() {
		chunk, embedding, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if !rank.Matches(chunk.Metadata, filter) {
			continue
		}
		hits = append(hits, domain.RetrievedChunk{
			Chunk: chunk,
			Score: rank.Cosine(vec, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return rank.TopK(hits, k), nil
}

// Count returns the number of stored vectors in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection = ?", s.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// All returns every stored chunk ordered by id, without embeddings.
func (s *Store) All(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, metadata, embedding FROM chunks WHERE collection = ? ORDER BY id", s.collection)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, _, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// ==================== Run Store ====================

// SaveRun stores or replaces a run report.
func (s *Store) SaveRun(ctx context.Context, r domain.IndexReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, collection, files_seen, files_skipped, chunks,
			embedded, unchanged, deleted, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, s.collection, r.FilesSeen, r.FilesSkipped, r.Chunks,
		r.Embedded, r.Unchanged, r.Deleted, r.Failed,
		r.StartedAt.UnixNano(), r.FinishedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving run %s: %w", r.RunID, err)
	}
	return nil
}

// LastRun returns the most recent run of the collection.
func (s *Store) LastRun(ctx context.Context) (*domain.IndexReport, error) {
	var (
		r                 domain.IndexReport
		started, finished int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, files_seen, files_skipped, chunks, embedded, unchanged, deleted, failed,
			started_at, finished_at
		FROM runs WHERE collection = ?
		ORDER BY started_at DESC LIMIT 1
	`, s.collection).Scan(&r.RunID, &r.FilesSeen, &r.FilesSkipped, &r.Chunks,
		&r.Embedded, &r.Unchanged, &r.Deleted, &r.Failed, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading last run: %w", err)
	}

	r.StartedAt = time.Unix(0, started)
	r.FinishedAt = time.Unix(0, finished)
	return &r, nil
}

// ==================== Helper Functions ====================

func marshalMetadata(md domain.Metadata) (string, error) {
	if md == nil {
		return "{}", nil
	}
	data, err := json.Marshal(md)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// scanChunk scans a chunk row and returns the embedding separately.
func scanChunk(rows *sql.Rows) (domain.Chunk, []float32, error) {
	var (
		chunk         domain.Chunk
		metadataJSON  string
		embeddingBlob []byte
	)
	if err := rows.Scan(&chunk.ID, &chunk.Text, &metadataJSON, &embeddingBlob); err != nil {
		return domain.Chunk{}, nil, fmt.Errorf("scanning chunk: %w", err)
	}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return domain.Chunk{}, nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}
	return chunk, bytesToFloat32Slice(embeddingBlob), nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
