package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardi-game/cardi-client/internal/game"
	"github.com/cardi-game/cardi-client/internal/protocol"
)

func newTestStore() *Store {
	s := NewStore(nil)
	s.SetUsername("alice")
	s.SetPlayerID("p1")
	return s
}

func threeCardHand() []game.Card {
	return []game.Card{
		{ID: "c1", Suit: game.SuitSpades, Value: "8"},
		{ID: "c2", Suit: game.SuitHearts, Value: "K"},
		{ID: "c3", Suit: game.SuitClubs, Value: "2"},
	}
}

func snapshot(hand []game.Card, started bool) *game.State {
	return &game.State{
		RoomCode: "ABCD",
		Players: []game.Player{
			{ID: "p1", Username: "alice", Hand: hand},
			{ID: "p2", Username: "bob", Hand: []game.Card{{ID: "x1", Suit: game.SuitHearts, Value: "4"}}},
		},
		TopCard:            &game.Card{ID: "top", Suit: game.SuitDiamonds, Value: "7"},
		CurrentPlayerIndex: 0,
		Started:            started,
	}
}

func TestApplySnapshotReplacesWholesale(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	next := snapshot(threeCardHand(), true)
	next.CurrentPlayerIndex = 1
	next.DrawPenalty = 2
	next.Message = "bob played 1 card(s)."
	s.ApplySnapshot(next)

	got := s.Game()
	require.NotNil(t, got)
	assert.Equal(t, 1, got.CurrentPlayerIndex)
	assert.Equal(t, 2, got.DrawPenalty)
	assert.Equal(t, "bob played 1 card(s).", got.Message)
}

func TestHandPreservedWhenOmitted(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	// Server omits the caller's hand on this update.
	s.ApplySnapshot(snapshot(nil, true))

	me := s.MyPlayer()
	require.NotNil(t, me)
	require.Len(t, me.Hand, 3)
	assert.Equal(t, "c1", me.Hand[0].ID)
}

func TestHandNotPreservedOnWin(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	// A finished game empties the hand for real. started=false marks
	// the win path, so the carry-over does not apply.
	win := snapshot(nil, false)
	s.ApplySnapshot(win)

	got := s.Game()
	assert.False(t, got.Started)
	me := got.PlayerByID("p1")
	require.NotNil(t, me)
	assert.Empty(t, me.Hand)
}

func TestHandEmptyWithoutPriorState(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(nil, true))

	me := s.MyPlayer()
	require.NotNil(t, me)
	assert.Empty(t, me.Hand)
}

func TestHandNotPreservedForOtherPlayers(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	next := snapshot(threeCardHand(), true)
	next.Players[1].Hand = nil
	s.ApplySnapshot(next)

	got := s.Game()
	assert.Empty(t, got.Players[1].Hand)
}

func TestIsMyTurn(t *testing.T) {
	t.Run("no state", func(t *testing.T) {
		s := newTestStore()
		assert.False(t, s.IsMyTurn())
	})

	t.Run("no identity", func(t *testing.T) {
		s := NewStore(nil)
		s.SetUsername("alice")
		s.ApplySnapshot(snapshot(threeCardHand(), true))
		assert.False(t, s.IsMyTurn())
	})

	t.Run("not started", func(t *testing.T) {
		s := newTestStore()
		s.ApplySnapshot(snapshot(threeCardHand(), false))
		assert.False(t, s.IsMyTurn())
	})

	t.Run("my turn", func(t *testing.T) {
		s := newTestStore()
		s.ApplySnapshot(snapshot(threeCardHand(), true))
		assert.True(t, s.IsMyTurn())
	})

	t.Run("someone else's turn", func(t *testing.T) {
		s := newTestStore()
		snap := snapshot(threeCardHand(), true)
		snap.CurrentPlayerIndex = 1
		s.ApplySnapshot(snap)
		assert.False(t, s.IsMyTurn())
	})

	t.Run("index out of range", func(t *testing.T) {
		s := newTestStore()
		snap := snapshot(threeCardHand(), true)
		snap.CurrentPlayerIndex = 9
		s.ApplySnapshot(snap)
		assert.False(t, s.IsMyTurn())
	})
}

func TestMyPlayer(t *testing.T) {
	s := newTestStore()
	assert.Nil(t, s.MyPlayer())

	s.ApplySnapshot(snapshot(threeCardHand(), true))
	me := s.MyPlayer()
	require.NotNil(t, me)
	assert.Equal(t, "alice", me.Username)
}

func TestApplyEventNarration(t *testing.T) {
	cases := []struct {
		name    string
		msg     *protocol.Message
		wantMsg string
	}{
		{
			name: "player joined",
			msg: &protocol.Message{
				Type:       protocol.EventPlayerJoined,
				PlayerName: &protocol.PlayerNamePayload{Username: "carol"},
			},
			wantMsg: "carol has joined the room.",
		},
		{
			name: "player reconnected",
			msg: &protocol.Message{
				Type:       protocol.EventPlayerReconnected,
				PlayerName: &protocol.PlayerNamePayload{Username: "bob"},
			},
			wantMsg: "bob has reconnected.",
		},
		{
			name: "player left",
			msg: &protocol.Message{
				Type:       protocol.EventPlayerLeft,
				PlayerName: &protocol.PlayerNamePayload{Username: "bob"},
			},
			wantMsg: "bob has left the room.",
		},
		{
			name: "card drawn",
			msg: &protocol.Message{
				Type:      protocol.EventCardDrawn,
				CardDrawn: &protocol.CardDrawnPayload{PlayerID: "p2", NumberOfCards: 2},
			},
			wantMsg: "bob drew 2 card(s).",
		},
		{
			name: "turn passed",
			msg: &protocol.Message{
				Type:     protocol.EventTurnPassed,
				PlayerID: &protocol.PlayerIDPayload{PlayerID: "p2"},
			},
			wantMsg: "bob passed the turn.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore()
			s.ApplySnapshot(snapshot(threeCardHand(), true))
			s.ApplyEvent(tc.msg)
			assert.Equal(t, tc.wantMsg, s.Game().Message)
		})
	}
}

func TestApplyEventCardPlayedRemovesCards(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	// The played cards echo back exactly what a play intent carried.
	s.ApplyEvent(&protocol.Message{
		Type: protocol.EventCardPlayed,
		CardPlayed: &protocol.CardPlayedPayload{
			PlayerID: "p1",
			Cards:    []game.Card{{Suit: game.SuitSpades, Value: "8"}},
		},
	})

	got := s.Game()
	me := got.PlayerByID("p1")
	require.NotNil(t, me)
	require.Len(t, me.Hand, 2)
	assert.Equal(t, "c2", me.Hand[0].ID)
	assert.Equal(t, "alice played 1 card(s).", got.Message)
}

func TestApplyEventCardiCalled(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	s.ApplyEvent(&protocol.Message{
		Type:     protocol.EventCardiCalled,
		PlayerID: &protocol.PlayerIDPayload{PlayerID: "p2"},
	})

	got := s.Game()
	assert.True(t, got.PlayerByID("p2").HasCalledCardi)
	assert.Equal(t, "bob has called CARDI!", got.Message)
}

func TestApplyEventGameWin(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	s.ApplyEvent(&protocol.Message{
		Type:    protocol.EventGameWin,
		GameWin: &protocol.GameWinPayload{WinnerUsername: "bob"},
	})

	got := s.Game()
	assert.False(t, got.Started)
	assert.Equal(t, "bob has won the game!", got.Message)
}

func TestApplyEventWithoutStateIsIgnored(t *testing.T) {
	s := newTestStore()
	s.ApplyEvent(&protocol.Message{
		Type:       protocol.EventPlayerJoined,
		PlayerName: &protocol.PlayerNamePayload{Username: "carol"},
	})
	assert.Nil(t, s.Game())
}

func TestApplyEventUnknownPlayerIsIgnored(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))

	s.ApplyEvent(&protocol.Message{
		Type:     protocol.EventTurnPassed,
		PlayerID: &protocol.PlayerIDPayload{PlayerID: "ghost"},
	})
	assert.Empty(t, s.Game().Message)
}

func TestResetKeepsUsername(t *testing.T) {
	s := newTestStore()
	s.ApplySnapshot(snapshot(threeCardHand(), true))
	s.SetStatus(StatusConnected)

	s.Reset()

	assert.Equal(t, "alice", s.Username())
	assert.Empty(t, s.PlayerID())
	assert.Nil(t, s.Game())
	assert.Equal(t, StatusDisconnected, s.Status())
}
