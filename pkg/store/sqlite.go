package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a ContinuationStore and InstanceStore backed by an embedded
// SQLite database. Continuation bodies and instance snapshots are stored in
// their canonical wire encodings.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened database and runs migrations.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSQLiteStore opens (creating if needed) a store at path. Use
// "file::memory:?cache=shared" for an in-memory store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	s, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS continuations (
		hash TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS instances (
		instance_id TEXT PRIMARY KEY,
		contract TEXT NOT NULL,
		state TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Put stores a contract under its content hash. Idempotent: re-putting the
// same contract is a no-op.
func (s *SQLiteStore) Put(ctx context.Context, c contract.Contract) (string, error) {
	hash, err := contract.Hash(c)
	if err != nil {
		return "", err
	}
	body, err := contract.Marshal(c)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO continuations (hash, body, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (hash) DO NOTHING`,
		hash, string(body), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: put continuation: %w", err)
	}
	return hash, nil
}

// Get resolves a contract by content hash.
func (s *SQLiteStore) Get(ctx context.Context, hash string) (contract.Contract, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM continuations WHERE hash = ?`, hash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get continuation: %w", err)
	}
	return contract.Unmarshal([]byte(body))
}

// SaveInstance upserts a session snapshot, assigning an ID when absent.
func (s *SQLiteStore) SaveInstance(ctx context.Context, inst Instance) (string, error) {
	id := inst.ID
	if id == "" {
		id = uuid.NewString()
	}
	body, err := contract.Marshal(inst.Contract)
	if err != nil {
		return "", err
	}
	stateBody, err := json.Marshal(inst.State)
	if err != nil {
		return "", fmt.Errorf("store: encode state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO instances (instance_id, contract, state, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (instance_id) DO UPDATE SET contract = excluded.contract,
		     state = excluded.state, updated_at = excluded.updated_at`,
		id, string(body), string(stateBody), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: save instance: %w", err)
	}
	return id, nil
}

// LoadInstance reads a session snapshot.
func (s *SQLiteStore) LoadInstance(ctx context.Context, id string) (Instance, error) {
	var body, stateBody string
	err := s.db.QueryRowContext(ctx,
		`SELECT contract, state FROM instances WHERE instance_id = ?`, id).Scan(&body, &stateBody)
	if errors.Is(err, sql.ErrNoRows) {
		return Instance{}, ErrNotFound
	}
	if err != nil {
		return Instance{}, fmt.Errorf("store: load instance: %w", err)
	}
	c, err := contract.Unmarshal([]byte(body))
	if err != nil {
		return Instance{}, err
	}
	var st semantics.State
	if err := json.Unmarshal([]byte(stateBody), &st); err != nil {
		return Instance{}, fmt.Errorf("store: decode state: %w", err)
	}
	return Instance{ID: id, Contract: c, State: st}, nil
}
