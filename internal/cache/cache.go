// Package cache persists resolution results keyed by commit state, so repeat
// runs against an unchanged repository skip history traversal entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/lastupdated/internal/history"
)

// ErrMiss is returned by Get when no entry matches the key.
var ErrMiss = errors.New("cache miss")

// Store persists combined metadata in SQLite. A key is valid only for the
// exact (path, head, fingerprint) triple it was written under; any change to
// the repository head or resolver options invalidates it naturally.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// entry is the JSON representation stored per key.
type entry struct {
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	PrimaryAuthor string     `json:"primary_author,omitempty"`
	Authors       []string   `json:"authors,omitempty"`
	Warnings      []string   `json:"warnings,omitempty"`
	WinningPath   string     `json:"winning_path,omitempty"`
}

// Open opens or creates the cache database at dbPath.
// Use ":memory:" for an in-memory cache.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resolutions (
		path TEXT NOT NULL,
		head TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		resolved_at INTEGER NOT NULL,
		metadata BLOB NOT NULL,
		PRIMARY KEY (path, head, fingerprint)
	);
	CREATE INDEX IF NOT EXISTS idx_resolutions_head ON resolutions(head);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get looks up a cached result. Returns ErrMiss when absent.
func (s *Store) Get(ctx context.Context, path, head, fingerprint string) (*history.CombinedMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT metadata FROM resolutions WHERE path = ? AND head = ? AND fingerprint = ?",
		path, head, fingerprint,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("query resolution: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("unmarshal resolution: %w", err)
	}

	md := &history.CombinedMetadata{
		Timestamp:     e.Timestamp,
		PrimaryAuthor: e.PrimaryAuthor,
		Authors:       e.Authors,
		WinningPath:   e.WinningPath,
	}
	for _, w := range e.Warnings {
		md.Warnings.Add(history.WarningKind(w))
	}
	return md, nil
}

// Put stores a resolution result, replacing any previous entry for the key.
func (s *Store) Put(ctx context.Context, path, head, fingerprint string, md *history.CombinedMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(entry{
		Timestamp:     md.Timestamp,
		PrimaryAuthor: md.PrimaryAuthor,
		Authors:       md.Authors,
		Warnings:      md.Warnings.Strings(),
		WinningPath:   md.WinningPath,
	})
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO resolutions (path, head, fingerprint, resolved_at, metadata) VALUES (?, ?, ?, ?, ?)",
		path, head, fingerprint, time.Now().Unix(), raw,
	)
	if err != nil {
		return fmt.Errorf("insert resolution: %w", err)
	}
	return nil
}

// Prune removes entries written under a head other than the given one.
func (s *Store) Prune(ctx context.Context, head string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM resolutions WHERE head != ?", head)
	if err != nil {
		return fmt.Errorf("prune resolutions: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Fingerprint derives a stable hash from anything JSON-serializable, used to
// key cache entries on the resolver options in effect.
func Fingerprint(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "unfingerprintable"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
