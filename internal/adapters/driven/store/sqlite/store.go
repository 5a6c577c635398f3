// Package sqlite provides a single-file library store for local and
// offline use. Payloads are stored as JSON, embeddings as little-endian
// float32 blobs, and similarity is brute-force cosine over the
// collection. The backend applies no filters inside similarity queries,
// so the searchers post-filter client-side.
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

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/store/sqlite/migrations"
	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.LibraryStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.LibraryStore.
type Store struct {
	db       *sql.DB
	path     string
	embedder driven.EmbeddingService
}

// NewStore opens (or creates) the store at the given data directory.
// If dataDir is empty, defaults to ~/.alexandria/data/library.db.
// The embedder may be nil; similarity search then reports
// domain.ErrEmbeddingUnavailable while fetch, count, insert and the
// audit keep working.
func NewStore(dataDir string, embedder driven.EmbeddingService) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".alexandria", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// WAL mode for better concurrency between readers and the ingest path.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath, embedder: embedder}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the embedded migration files in lexical order.
func (s *Store) migrate(migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(script)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}
	return nil
}

// SimilaritySearch ranks the collection by cosine similarity between
// the query embedding and the stored embeddings. The filter argument is
// ignored: this backend has no server-side filters and advertises that.
func (s *Store) SimilaritySearch(
	ctx context.Context, collection domain.Collection, query string, limit int, _ *driven.Filter,
) ([]driven.Record, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, fields, embedding FROM records WHERE collection = ? AND embedding IS NOT NULL ORDER BY id`,
		string(collection))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer rows.Close()

	var hits []driven.Record
	for rows.Next() {
		var key, fieldsJSON string
		var blob []byte
		if err := rows.Scan(&key, &fieldsJSON, &blob); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		fields, err := decodeFields(fieldsJSON)
		if err != nil {
			return nil, fmt.Errorf("decode record %s: %w", key, err)
		}
		vec := decodeVector(blob)
		hits = append(hits, driven.Record{
			Key:    key,
			Score:  cosineSimilarity(queryVec, vec),
			Fields: fields,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// FetchByKey returns the record with the given key.
func (s *Store) FetchByKey(ctx context.Context, collection domain.Collection, key string) (*driven.Record, error) {
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM records WHERE collection = ? AND key = ?`,
		string(collection), key).Scan(&fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	fields, err := decodeFields(fieldsJSON)
	if err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	return &driven.Record{Key: key, Fields: fields}, nil
}

// FetchAll returns up to limit records in insertion order.
func (s *Store) FetchAll(ctx context.Context, collection domain.Collection, limit int) ([]driven.Record, error) {
	q := `SELECT key, fields FROM records WHERE collection = ? ORDER BY id`
	args := []any{string(collection)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer rows.Close()

	var recs []driven.Record
	for rows.Next() {
		var key, fieldsJSON string
		if err := rows.Scan(&key, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		fields, err := decodeFields(fieldsJSON)
		if err != nil {
			return nil, fmt.Errorf("decode record %s: %w", key, err)
		}
		recs = append(recs, driven.Record{Key: key, Fields: fields})
	}
	return recs, rows.Err()
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context, collection domain.Collection) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, string(collection)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return n, nil
}

// Insert stores a new record. The UNIQUE(collection, key) constraint
// turns a duplicate into domain.ErrAlreadyExists, which is how a racing
// canonical insert gets discarded instead of duplicated.
func (s *Store) Insert(ctx context.Context, collection domain.Collection, rec driven.Record) (string, error) {
	if rec.Key == "" {
		return "", fmt.Errorf("%w: record key is required", domain.ErrInvalidInput)
	}

	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return "", fmt.Errorf("encode record %s: %w", rec.Key, err)
	}

	var blob []byte
	if s.embedder != nil {
		text := embeddableText(collection, rec.Fields)
		if text != "" {
			vec, err := s.embedder.Embed(ctx, text)
			if err != nil {
				return "", fmt.Errorf("embed record %s: %w", rec.Key, err)
			}
			blob = encodeVector(vec)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (collection, key, fields, embedding) VALUES (?, ?, ?, ?)`,
		string(collection), rec.Key, string(fieldsJSON), blob)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("record %s: %w", rec.Key, domain.ErrAlreadyExists)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return rec.Key, nil
}

// Capabilities reports that this backend cannot filter server-side.
func (s *Store) Capabilities(_ context.Context) (driven.StoreCapabilities, error) {
	return driven.StoreCapabilities{ServerSideFilters: false}, nil
}

// embeddableText picks the text worth embedding per collection.
func embeddableText(collection domain.Collection, fields map[string]any) string {
	get := func(key string) string {
		v, _ := fields[key].(string)
		return v
	}
	switch collection {
	case domain.CollectionChunks:
		return get(domain.FieldText)
	case domain.CollectionSummaries:
		return get(domain.FieldSummaryText)
	case domain.CollectionWorks:
		return strings.TrimSpace(get(domain.FieldTitle) + " " + get(domain.FieldAuthor))
	case domain.CollectionDocuments:
		return strings.TrimSpace(get(domain.FieldWorkTitle) + " " + get(domain.FieldWorkAuthor))
	default:
		return ""
	}
}

func decodeFields(fieldsJSON string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// encodeVector packs a float32 vector as a little-endian blob.
func encodeVector(vec []float32) []byte {
	blob := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// decodeVector unpacks a little-endian float32 blob.
func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}

// cosineSimilarity computes the cosine of the angle between two
// vectors; zero when either is empty or of mismatched length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
