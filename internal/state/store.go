// Package state holds the client's single view of the game room: the
// session identity, the connection status, the last authoritative
// snapshot, and the local card selection. All writes go through the
// Store; readers get deep copies and never observe partial mutation.
package state

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cardi-game/cardi-client/internal/game"
	"github.com/cardi-game/cardi-client/internal/protocol"
)

// ConnectionStatus describes the transport lifecycle.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// Store is the application-state context shared by the connection
// manager, the reconciliation engine and the presentation layer. It is
// constructed once and handed explicitly to whoever needs it; there is
// no package-level instance.
type Store struct {
	log *zerolog.Logger

	mu       sync.Mutex
	username string
	playerID string
	status   ConnectionStatus
	game     *game.State
	sel      Selection
}

// NewStore builds an empty store.
func NewStore(logger *zerolog.Logger) *Store {
	return &Store{
		log:    logger,
		status: StatusDisconnected,
	}
}

// SetUsername records the user-supplied display name.
func (s *Store) SetUsername(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = name
}

// Username returns the display name used to resolve identity.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// SetPlayerID records the server-assigned identity within the room.
func (s *Store) SetPlayerID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerID = id
}

// PlayerID returns the server-assigned identity, or "".
func (s *Store) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// SetStatus records a connection status transition.
func (s *Store) SetStatus(status ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Status returns the current connection status.
func (s *Store) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Game returns a deep copy of the current snapshot, or nil before the
// first one arrives.
func (s *Store) Game() *game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Clone()
}

// RoomCode returns the room code of the current snapshot, or "".
func (s *Store) RoomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ""
	}
	return s.game.RoomCode
}

// ApplySnapshot replaces the held state with an authoritative snapshot.
//
// The server omits the caller's hand from some updates as a bandwidth
// and privacy measure, sending it empty. An empty hand therefore means
// "not transmitted", not "emptied": when the previous snapshot held a
// non-empty hand for the local player and the new one is empty, the
// previous hand is carried over. A genuine win empties the hand too and
// is indistinguishable here while the game is running; a snapshot with
// started=false is the one unambiguous signal the game ended, so the
// carry-over is skipped for it and the GAME_WIN narration stands.
func (s *Store) ApplySnapshot(snap *game.State) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := snap.Clone()
	if s.game != nil && next.Started {
		oldMe := s.game.PlayerByID(s.playerID)
		newMe := next.PlayerByID(s.playerID)
		if oldMe != nil && newMe != nil && len(newMe.Hand) == 0 && len(oldMe.Hand) > 0 {
			newMe.Hand = append([]game.Card(nil), oldMe.Hand...)
		}
	}
	s.game = next
}

// ApplyEvent folds an ephemeral notification into the current state.
// Handlers only narrate: they set the transient message and, for a few
// kinds, mirror the change the next snapshot will confirm. They never
// re-derive turn order or legality; any conflicting snapshot wins.
func (s *Store) ApplyEvent(msg *protocol.Message) {
	if msg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return
	}

	next := s.game.Clone()
	switch msg.Type {
	case protocol.EventPlayerJoined:
		next.Message = fmt.Sprintf("%s has joined the room.", msg.PlayerName.Username)
	case protocol.EventPlayerReconnected:
		next.Message = fmt.Sprintf("%s has reconnected.", msg.PlayerName.Username)
	case protocol.EventPlayerLeft:
		next.Message = fmt.Sprintf("%s has left the room.", msg.PlayerName.Username)
	case protocol.EventCardPlayed:
		p := next.PlayerByID(msg.CardPlayed.PlayerID)
		if p == nil {
			return
		}
		p.Hand = game.RemoveFromHand(p.Hand, msg.CardPlayed.Cards)
		next.Message = fmt.Sprintf("%s played %d card(s).", p.Username, len(msg.CardPlayed.Cards))
	case protocol.EventCardDrawn:
		p := next.PlayerByID(msg.CardDrawn.PlayerID)
		if p == nil {
			return
		}
		// The drawn cards are private; the next snapshot syncs the hand.
		next.Message = fmt.Sprintf("%s drew %d card(s).", p.Username, msg.CardDrawn.NumberOfCards)
	case protocol.EventTurnPassed:
		p := next.PlayerByID(msg.PlayerID.PlayerID)
		if p == nil {
			return
		}
		next.Message = fmt.Sprintf("%s passed the turn.", p.Username)
	case protocol.EventCardiCalled:
		p := next.PlayerByID(msg.PlayerID.PlayerID)
		if p == nil {
			return
		}
		p.HasCalledCardi = true
		next.Message = fmt.Sprintf("%s has called CARDI!", p.Username)
	case protocol.EventGameWin:
		next.Started = false
		next.Message = fmt.Sprintf("%s has won the game!", msg.GameWin.WinnerUsername)
	default:
		if s.log != nil {
			s.log.Debug().Str("type", string(msg.Type)).Msg("ignoring event with no handler")
		}
		return
	}
	s.game = next
}

// MyPlayer returns the local player's entry in the current snapshot,
// or nil when there is no state or no session identity yet. Recomputed
// on every call, never cached.
func (s *Store) MyPlayer() *game.Player {
	snap := s.Game()
	s.mu.Lock()
	id := s.playerID
	s.mu.Unlock()
	if snap == nil || id == "" {
		return nil
	}
	return snap.PlayerByID(id)
}

// IsMyTurn reports whether the player at the snapshot's turn index is
// the local player. False without state, identity, or a started game.
func (s *Store) IsMyTurn() bool {
	snap := s.Game()
	s.mu.Lock()
	id := s.playerID
	s.mu.Unlock()
	if snap == nil || id == "" || !snap.Started {
		return false
	}
	current := snap.CurrentPlayer()
	return current != nil && current.ID == id
}

// Reset discards the room view and the player identity but keeps the
// username so the user can rejoin under the same name.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerID = ""
	s.game = nil
	s.status = StatusDisconnected
	s.sel = Selection{}
}
