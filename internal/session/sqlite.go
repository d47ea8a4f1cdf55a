package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore persists each session as a JSON document row. The change
// subscription stays in process: a single server arbitrates all writes, so
// cross-process replication is out of scope here.
type SqliteStore struct {
	db  *sql.DB
	hub *hub
}

func OpenSqlite(path string) (*SqliteStore, error) {
	// _txlock=immediate takes the write lock at BEGIN, so two overlapping
	// read-modify-write updates queue on the busy timeout instead of the
	// second one failing its lock upgrade with "database is locked".
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return &SqliteStore{db: db, hub: newHub()}, nil
}

func (s *SqliteStore) Close() error { return s.db.Close() }

func (s *SqliteStore) Create(ctx context.Context, sess *GameSession) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, doc, updated_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		sess.SessionID, string(doc), time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionExists
	}
	return nil
}

func (s *SqliteStore) Get(ctx context.Context, id string) (*GameSession, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM sessions WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSuchSession
	}
	if err != nil {
		return nil, err
	}
	var sess GameSession
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SqliteStore) Update(ctx context.Context, id string, mutate func(*GameSession) error) (*GameSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM sessions WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSuchSession
	}
	if err != nil {
		return nil, err
	}
	var sess GameSession
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		return nil, err
	}
	if err := mutate(&sess); err != nil {
		return nil, err
	}
	next, err := json.Marshal(&sess)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET doc = ?, updated_at = ? WHERE id = ?`,
		string(next), time.Now().UTC(), id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.hub.notify(&sess)
	return sess.Clone(), nil
}

func (s *SqliteStore) Watch(id string, fn func(*GameSession)) func() {
	return s.hub.watch(id, fn)
}
