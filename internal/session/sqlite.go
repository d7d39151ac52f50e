package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	namespace TEXT PRIMARY KEY,
	username  TEXT NOT NULL DEFAULT '',
	player_id TEXT NOT NULL DEFAULT '',
	room_code TEXT NOT NULL DEFAULT ''
);`

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the session database.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the saved identity for the fixed namespace.
func (s *SQLiteStore) Load(ctx context.Context) (Identity, error) {
	const query = `SELECT username, player_id, room_code FROM sessions WHERE namespace = ?`

	var id Identity
	row := s.db.QueryRowContext(ctx, query, Namespace)
	err := row.Scan(&id.Username, &id.PlayerID, &id.RoomCode)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("load session: %w", err)
	}
	return id, nil
}

// Save overwrites the saved identity.
func (s *SQLiteStore) Save(ctx context.Context, id Identity) error {
	const query = `
		INSERT INTO sessions (namespace, username, player_id, room_code)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			username = excluded.username,
			player_id = excluded.player_id,
			room_code = excluded.room_code`

	if _, err := s.db.ExecContext(ctx, query, Namespace, id.Username, id.PlayerID, id.RoomCode); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Reset clears the player identifier and room code, keeping the username.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	const query = `UPDATE sessions SET player_id = '', room_code = '' WHERE namespace = ?`

	if _, err := s.db.ExecContext(ctx, query, Namespace); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
