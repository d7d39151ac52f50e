// Package session persists the client's identity within a room so a
// restart can rejoin as the same player. Only the (username, player id,
// room code) triple is stored; game state and connection status are
// always rebuilt from the network.
package session

import "context"

// Namespace keys the stored identity so several tools can share one
// database file without colliding.
const Namespace = "cardi-game-storage"

// Identity is what survives a restart.
type Identity struct {
	Username string
	PlayerID string
	RoomCode string
}

// Store loads and saves the single session identity.
type Store interface {
	// Load returns the saved identity, or a zero Identity when none
	// was saved yet.
	Load(ctx context.Context) (Identity, error)
	// Save overwrites the saved identity.
	Save(ctx context.Context, id Identity) error
	// Reset clears the player identifier and room code but keeps the
	// username.
	Reset(ctx context.Context) error
	Close() error
}
