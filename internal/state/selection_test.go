package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardi-game/cardi-client/internal/game"
)

var (
	eightSpades = game.Card{ID: "8s", Suit: game.SuitSpades, Value: "8"}
	eightHearts = game.Card{ID: "8h", Suit: game.SuitHearts, Value: "8"}
	queenSpades = game.Card{ID: "qs", Suit: game.SuitSpades, Value: "Q"}
	kingClubs   = game.Card{ID: "kc", Suit: game.SuitClubs, Value: "K"}
	kingHearts  = game.Card{ID: "kh", Suit: game.SuitHearts, Value: "K"}
	aceSpades   = game.Card{ID: "as", Suit: game.SuitSpades, Value: "A"}
)

func selectionStore(t *testing.T, drawPenalty int) *Store {
	t.Helper()
	s := newTestStore()
	snap := snapshot(threeCardHand(), true)
	snap.DrawPenalty = drawPenalty
	s.ApplySnapshot(snap)
	return s
}

func ids(cards []game.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestToggleSelectsAndDeselects(t *testing.T) {
	s := selectionStore(t, 0)

	s.ToggleCard(kingClubs)
	assert.Equal(t, []string{"kc"}, ids(s.SelectedCards()))

	s.ToggleCard(kingClubs)
	assert.Empty(t, s.SelectedCards())
}

func TestToggleRemovesOnlyClickedCard(t *testing.T) {
	s := selectionStore(t, 0)

	s.ToggleCard(kingClubs)
	s.ToggleCard(kingHearts)
	require.Equal(t, []string{"kc", "kh"}, ids(s.SelectedCards()))

	// Clicking a selected card returns the prior selection minus it.
	s.ToggleCard(kingClubs)
	assert.Equal(t, []string{"kh"}, ids(s.SelectedCards()))
}

func TestToggleStacksEqualValues(t *testing.T) {
	s := selectionStore(t, 0)

	s.ToggleCard(eightSpades)
	s.ToggleCard(eightHearts)
	assert.Equal(t, []string{"8s", "8h"}, ids(s.SelectedCards()))
}

func TestToggleEightQueenComboSameSuit(t *testing.T) {
	s := selectionStore(t, 0)

	s.ToggleCard(eightSpades)
	s.ToggleCard(queenSpades)
	assert.Equal(t, []string{"8s", "qs"}, ids(s.SelectedCards()))
}

func TestToggleEightQueenComboWrongSuitResets(t *testing.T) {
	s := selectionStore(t, 0)

	// 8♠ then 8♥ stack by value; the Q♠ click then fails the combo's
	// same-suit check against 8♥, so it starts a fresh selection.
	s.ToggleCard(eightSpades)
	s.ToggleCard(eightHearts)
	s.ToggleCard(queenSpades)
	assert.Equal(t, []string{"qs"}, ids(s.SelectedCards()))
}

func TestToggleMismatchResetsToClicked(t *testing.T) {
	s := selectionStore(t, 0)

	s.ToggleCard(kingClubs)
	s.ToggleCard(eightSpades)
	assert.Equal(t, []string{"8s"}, ids(s.SelectedCards()))
}

func TestWildSelectionOpensSuitPrompt(t *testing.T) {
	s := selectionStore(t, 0)

	s.ToggleCard(aceSpades)
	assert.True(t, s.SuitPromptOpen())
}

func TestWildSelectionDuringPenaltyKeepsPromptClosed(t *testing.T) {
	// With a draw penalty owed the ace is a counter-play, not a suit
	// change, so no prompt.
	s := selectionStore(t, 2)

	s.ToggleCard(aceSpades)
	assert.False(t, s.SuitPromptOpen())
}

func TestBuildPlayRequiresSelection(t *testing.T) {
	s := selectionStore(t, 0)

	_, err := s.BuildPlay("")
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestBuildPlayRequiresIdentity(t *testing.T) {
	s := NewStore(nil)
	s.SetUsername("alice")
	s.ApplySnapshot(snapshot(threeCardHand(), true))
	s.ToggleCard(kingClubs)

	_, err := s.BuildPlay("")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestBuildPlayWildWithoutSuitDefers(t *testing.T) {
	s := selectionStore(t, 0)
	s.ToggleCard(aceSpades)
	s.CloseSuitPrompt()

	intent, err := s.BuildPlay("")
	assert.Nil(t, intent)
	assert.ErrorIs(t, err, ErrSuitRequired)
	// Submission re-opens the prompt instead of sending.
	assert.True(t, s.SuitPromptOpen())
	// The selection is kept for the retry.
	assert.Equal(t, []string{"as"}, ids(s.SelectedCards()))
}

func TestBuildPlayWildWithSuit(t *testing.T) {
	s := selectionStore(t, 0)
	s.ToggleCard(aceSpades)

	intent, err := s.BuildPlay(game.SuitHearts)
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, "ABCD", intent.RoomCode)
	assert.Equal(t, "p1", intent.PlayerID)
	require.Len(t, intent.Cards, 1)
	require.NotNil(t, intent.NewSuit)
	assert.Equal(t, game.SuitHearts, *intent.NewSuit)

	// Success clears the selection and closes the prompt.
	assert.Empty(t, s.SelectedCards())
	assert.False(t, s.SuitPromptOpen())
}

func TestBuildPlayPlainCards(t *testing.T) {
	s := selectionStore(t, 0)
	s.ToggleCard(kingClubs)
	s.ToggleCard(kingHearts)

	intent, err := s.BuildPlay("")
	require.NoError(t, err)
	require.Len(t, intent.Cards, 2)
	assert.Nil(t, intent.NewSuit)
}

func TestClearSelection(t *testing.T) {
	s := selectionStore(t, 0)
	s.ToggleCard(aceSpades)
	require.NotEmpty(t, s.SelectedCards())

	s.ClearSelection()
	assert.Empty(t, s.SelectedCards())
	assert.False(t, s.SuitPromptOpen())
}
