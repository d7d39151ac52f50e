package client

import (
	"context"
	"errors"
	"time"

	"github.com/cardi-game/cardi-client/internal/protocol"
	"github.com/cardi-game/cardi-client/internal/state"
)

// CreateRoom asks the server to open a room for the stored username.
// The assigned room code and player id arrive on the room-update queue.
func (m *Manager) CreateRoom() {
	m.Send(protocol.DestRoomCreate, protocol.CreateRoomIntent{
		Username: m.store.Username(),
	})
}

// JoinRoom asks to join an existing room by code.
func (m *Manager) JoinRoom(roomCode string) {
	m.Send(protocol.DestRoomJoin, protocol.JoinRoomIntent{
		Username: m.store.Username(),
		RoomCode: roomCode,
	})
}

// RejoinRoom re-announces a known identity, typically after a restart.
func (m *Manager) RejoinRoom(roomCode, playerID string) {
	m.Send(protocol.DestRoomRejoin, protocol.RejoinRoomIntent{
		RoomCode: roomCode,
		PlayerID: playerID,
	})
}

// StartGame asks the server to start the game. Ownership is checked
// server-side.
func (m *Manager) StartGame() {
	roomCode := m.store.RoomCode()
	if roomCode == "" {
		m.log.Debug().Msg("start game without a room")
		return
	}
	m.Send(protocol.DestGameStart, protocol.StartGameIntent{RoomCode: roomCode})
}

// SubmitPlay sends the current selection as a play. chosenSuit is ""
// unless the suit prompt already collected one. Incomplete submissions
// (nothing selected, wild card without a suit) never reach the network;
// the selection machine reports why and, for a missing suit, re-opens
// the prompt.
func (m *Manager) SubmitPlay(chosenSuit string) error {
	intent, err := m.store.BuildPlay(chosenSuit)
	if err != nil {
		if errors.Is(err, state.ErrSuitRequired) {
			m.log.Debug().Msg("wild play held for suit choice")
		} else {
			m.log.Debug().Err(err).Msg("play not submitted")
		}
		return err
	}
	m.Send(protocol.DestGamePlay, intent)
	return nil
}

// Draw requests a card (or accepts a pending draw penalty).
func (m *Manager) Draw() {
	m.sendTurnIntent(protocol.DestGameDraw)
}

// Pass ends the turn after having acted.
func (m *Manager) Pass() {
	m.sendTurnIntent(protocol.DestGamePass)
}

// CallCardi declares imminent victory.
func (m *Manager) CallCardi() {
	m.sendTurnIntent(protocol.DestCallCardi)
}

func (m *Manager) sendTurnIntent(destination string) {
	roomCode := m.store.RoomCode()
	playerID := m.store.PlayerID()
	if roomCode == "" || playerID == "" {
		m.log.Debug().Str("destination", destination).Msg("turn intent without room or identity")
		return
	}
	m.Send(destination, protocol.TurnIntent{RoomCode: roomCode, PlayerID: playerID})
}

// Leave resets the session: the connection is closed, local state and
// the persisted player identifier are discarded, the username kept.
func (m *Manager) Leave() {
	m.Disconnect()
	m.store.Reset()
	if m.sessions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.sessions.Reset(ctx); err != nil {
			m.log.Warn().Err(err).Msg("reset session identity")
		}
	}
}
