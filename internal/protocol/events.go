package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/cardi-game/cardi-client/internal/game"
)

// EventType tags envelope messages pushed by the server.
type EventType string

const (
	EventGameStart         EventType = "GAME_START"
	EventGameStateUpdate   EventType = "GAME_STATE_UPDATE"
	EventRoomUpdate        EventType = "ROOM_UPDATE"
	EventPlayerJoined      EventType = "PLAYER_JOINED"
	EventPlayerReconnected EventType = "PLAYER_RECONNECTED"
	EventPlayerLeft        EventType = "PLAYER_LEFT"
	EventCardPlayed        EventType = "CARD_PLAYED"
	EventCardDrawn         EventType = "CARD_DRAWN"
	EventTurnPassed        EventType = "TURN_PASSED"
	EventCardiCalled       EventType = "CARDI_CALLED"
	EventGameWin           EventType = "GAME_WIN"
	EventError             EventType = "ERROR"
)

// Envelope is the {type, payload} wrapper used for event notifications.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PlayerNamePayload is shared by joined/reconnected/left events.
type PlayerNamePayload struct {
	Username string `json:"username"`
}

// CardPlayedPayload names the cards an acting player discarded.
type CardPlayedPayload struct {
	PlayerID string      `json:"playerId"`
	Cards    []game.Card `json:"cards"`
}

// CardDrawnPayload reports how many cards a player drew. The cards
// themselves are private; the next snapshot carries the hand.
type CardDrawnPayload struct {
	PlayerID      string `json:"playerId"`
	NumberOfCards int    `json:"numberOfCards"`
}

// PlayerIDPayload is shared by turn-passed and cardi-called events.
type PlayerIDPayload struct {
	PlayerID string `json:"playerId"`
}

// GameWinPayload announces the winner by display name.
type GameWinPayload struct {
	WinnerUsername string `json:"winnerUsername"`
}

// ErrorPayload carries a server-side application error.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Message is the decoded form of one inbound broker message: either a
// full snapshot or exactly one typed event.
type Message struct {
	// Snapshot is non-nil for raw snapshots and for snapshot-bearing
	// envelopes (GAME_START, GAME_STATE_UPDATE, ROOM_UPDATE).
	Snapshot *game.State

	Type EventType

	PlayerName *PlayerNamePayload
	CardPlayed *CardPlayedPayload
	CardDrawn  *CardDrawnPayload
	PlayerID   *PlayerIDPayload
	GameWin    *GameWinPayload
	Err        *ErrorPayload
}

// Decode parses one inbound body. Servers send either a bare GameState
// snapshot or an Envelope; the two are distinguished by the presence of
// a known "type" tag.
func Decode(body []byte) (*Message, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode inbound: %w", err)
	}

	if env.Type == "" {
		var snap game.State
		if err := json.Unmarshal(body, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		return &Message{Snapshot: &snap}, nil
	}

	msg := &Message{Type: env.Type}
	switch env.Type {
	case EventGameStart, EventGameStateUpdate, EventRoomUpdate:
		var snap game.State
		if err := json.Unmarshal(env.Payload, &snap); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		msg.Snapshot = &snap
	case EventPlayerJoined, EventPlayerReconnected, EventPlayerLeft:
		msg.PlayerName = &PlayerNamePayload{}
		if err := json.Unmarshal(env.Payload, msg.PlayerName); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	case EventCardPlayed:
		msg.CardPlayed = &CardPlayedPayload{}
		if err := json.Unmarshal(env.Payload, msg.CardPlayed); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	case EventCardDrawn:
		msg.CardDrawn = &CardDrawnPayload{}
		if err := json.Unmarshal(env.Payload, msg.CardDrawn); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	case EventTurnPassed, EventCardiCalled:
		msg.PlayerID = &PlayerIDPayload{}
		if err := json.Unmarshal(env.Payload, msg.PlayerID); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	case EventGameWin:
		msg.GameWin = &GameWinPayload{}
		if err := json.Unmarshal(env.Payload, msg.GameWin); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	case EventError:
		msg.Err = &ErrorPayload{}
		// Error payloads arrive both as {"message": ...} and as a bare
		// string; accept either.
		if err := json.Unmarshal(env.Payload, msg.Err); err != nil {
			var s string
			if err2 := json.Unmarshal(env.Payload, &s); err2 != nil {
				return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
			}
			msg.Err.Message = s
		}
	default:
		return nil, fmt.Errorf("decode inbound: unknown event type %q", env.Type)
	}
	return msg, nil
}
