package protocol

import "github.com/cardi-game/cardi-client/internal/game"

// Server-side destinations for outbound intents.
const (
	DestRoomCreate = "/app/room.create"
	DestRoomJoin   = "/app/room.join"
	DestRoomRejoin = "/app/room.rejoin"
	DestGameStart  = "/app/game.start"
	DestGamePlay   = "/app/game.play"
	DestGameDraw   = "/app/game.draw"
	DestGamePass   = "/app/game.pass"
	DestCallCardi  = "/app/game.callCardi"
)

// Client-side destinations the server pushes to.
const (
	DestUserErrors      = "/user/queue/errors"
	DestUserRoomUpdates = "/user/queue/room-updates"

	topicGamePrefix = "/topic/game/"
)

// RoomTopic returns the broadcast destination for a room.
func RoomTopic(roomCode string) string {
	return topicGamePrefix + roomCode
}

// CreateRoomIntent asks the server to open a new room.
type CreateRoomIntent struct {
	Username string `json:"username"`
}

// JoinRoomIntent asks to join an existing room by code.
type JoinRoomIntent struct {
	Username string `json:"username"`
	RoomCode string `json:"roomCode"`
}

// RejoinRoomIntent re-announces a known identity after a reconnect.
type RejoinRoomIntent struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// StartGameIntent starts the game; the server checks room ownership.
type StartGameIntent struct {
	RoomCode string `json:"roomCode"`
}

// PlayIntent submits a set of cards. NewSuit is non-nil only when the
// play contains a wild card and the player chose a suit.
type PlayIntent struct {
	RoomCode string      `json:"roomCode"`
	PlayerID string      `json:"playerId"`
	Cards    []game.Card `json:"cards"`
	NewSuit  *string     `json:"newSuit"`
}

// TurnIntent covers draw, pass and cardi declarations, which share a body.
type TurnIntent struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}
