package memory

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/redact"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
// Lesson vectors are kept as JSON-encoded float64 columns and ranked by
// cosine similarity in process; the corpus of taught lessons is small
// enough that a linear scan is the whole index.
type SQLiteStore struct {
	db       *sql.DB
	embedder Embedder
}

// NewSQLiteStore opens (or creates) a lesson database at the given path.
func NewSQLiteStore(dbPath string, embedder Embedder) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes all access through Go's pool, so concurrent pipeline runs
	// and teach commands don't hit "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db, embedder: embedder}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add scrubs the lesson text, embeds it, and persists it under a fresh
// ULID. Duplicate texts are stored as separate lessons.
func (s *SQLiteStore) Add(ctx context.Context, text, category string) (string, error) {
	clean := redact.Scrub(text)

	vector, err := s.embedder.Embed(ctx, clean)
	if err != nil {
		return "", fmt.Errorf("embed lesson: %w", err)
	}

	embJSON, err := json.Marshal(vector)
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}

	id := newULID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, text, category, embedding, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, clean, category, string(embJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert lesson: %w", err)
	}
	return id, nil
}

// Search embeds the query and returns up to topK lesson texts ranked by
// cosine similarity, most similar first. Ties keep insertion order via the
// ULID as a secondary key.
func (s *SQLiteStore) Search(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return []string{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, text, embedding FROM lessons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id    string
		text  string
		score float64
	}
	var candidates []scored

	for rows.Next() {
		var id, text, embJSON string
		if err := rows.Scan(&id, &text, &embJSON); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}

		var vec []float64
		if err := json.Unmarshal([]byte(embJSON), &vec); err != nil {
			continue // unreadable vector, skip the row
		}

		candidates = append(candidates, scored{id: id, text: text, score: cosineSimilarity(queryVec, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.text
	}
	return texts, nil
}

// List returns all stored lessons, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*models.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, category, created_at FROM lessons ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*models.Lesson
	for rows.Next() {
		l := &models.Lesson{}
		if err := rows.Scan(&l.ID, &l.Text, &l.Category, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return lessons, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is empty, zero, or of mismatched dimension.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
