package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a local document store used when no vector index is
// configured and by tests. Ranking is keyword overlap between the query and
// the stored chunk text.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and migrates) the store at dbPath.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_loc=Local")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS documents (
		id         TEXT PRIMARY KEY,
		chunk_text TEXT NOT NULL,
		source     TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Upsert stores or replaces a document fragment.
func (s *SQLiteStore) Upsert(ctx context.Context, id, chunkText, source string) error {
	if strings.TrimSpace(chunkText) == "" {
		return fmt.Errorf("chunk text is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, chunk_text, source) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET chunk_text=excluded.chunk_text, source=excluded.source`,
		id, chunkText, source)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", id, err)
	}
	return nil
}

// Search implements Retriever. Fragments are scored by how many query terms
// they contain; with no term matching anything, all fragments are returned in
// insertion order so a generic query still reaches the portfolio documents.
func (s *SQLiteStore) Search(ctx context.Context, query string, topK int) ([]Fragment, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chunk_text FROM documents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	terms := strings.Fields(strings.ToLower(query))

	var fragments []Fragment
	for rows.Next() {
		var f Fragment
		if err := rows.Scan(&f.ID, &f.Text); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		lower := strings.ToLower(f.Text)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				f.Score++
			}
		}
		fragments = append(fragments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Stable sort by score, keeping insertion order within equal scores.
	for i := 1; i < len(fragments); i++ {
		for j := i; j > 0 && fragments[j].Score > fragments[j-1].Score; j-- {
			fragments[j], fragments[j-1] = fragments[j-1], fragments[j]
		}
	}

	if len(fragments) > topK {
		fragments = fragments[:topK]
	}
	return fragments, nil
}
