// Package storage keeps a local journal of depot interactions in sqlite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dyike/DepotGo/pkg/sqlite"
)

const (
	KindStock  = "stock"
	KindOrder  = "order"
	KindSignup = "signup"
	KindUpload = "upload"
)

const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Interaction is one handler invocation and how it ended. Payloads such as
// passwords and file contents are never stored.
type Interaction struct {
	ID        int64
	Kind      string
	Subject   string
	Target    string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initTable(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		target TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_created ON interactions(created_at);`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create interactions table: %w", err)
	}
	return nil
}

// Insert stores one interaction. A zero CreatedAt is set to now.
func (s *Store) Insert(ctx context.Context, in Interaction) (int64, error) {
	if in.Kind == "" || in.Outcome == "" {
		return 0, fmt.Errorf("interaction kind and outcome are required")
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (kind, subject, target, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.Kind, in.Subject, in.Target, in.Outcome, in.Detail, in.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert interaction: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit interactions, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, subject, target, outcome, detail, created_at
		FROM interactions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		var created int64
		if err := rows.Scan(&in.ID, &in.Kind, &in.Subject, &in.Target, &in.Outcome, &in.Detail, &created); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.CreatedAt = time.UnixMilli(created)
		out = append(out, in)
	}
	return out, rows.Err()
}
