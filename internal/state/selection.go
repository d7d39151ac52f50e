package state

import (
	"errors"

	"github.com/cardi-game/cardi-client/internal/game"
	"github.com/cardi-game/cardi-client/internal/protocol"
)

// Local preconditions for submitting a play. These are diagnostics, not
// user-facing errors: the server re-validates everything anyway.
var (
	ErrNothingSelected = errors.New("no cards selected")
	ErrNoIdentity      = errors.New("player identity not assigned yet")
	ErrNoRoom          = errors.New("room code unknown")
	ErrSuitRequired    = errors.New("wild card play needs a suit choice")
)

// Selection is the local-only machine deciding which cards are jointly
// selected as a play candidate. It tracks card instances by ID since a
// hand can hold duplicates of the same suit and value.
type Selection struct {
	cards          []game.Card
	suitPromptOpen bool
}

func (sel *Selection) contains(id string) bool {
	for _, c := range sel.cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

// toggle applies one card click and returns the next selection.
//
// Rules, in order: a selected card is deselected; an empty selection
// takes the card; equal face values stack; 8s and Qs combine across
// ranks when the whole selection is 8s/Qs of the clicked card's suit;
// anything else restarts the selection with the clicked card.
func (sel *Selection) toggle(card game.Card) {
	if sel.contains(card.ID) {
		next := make([]game.Card, 0, len(sel.cards)-1)
		for _, c := range sel.cards {
			if c.ID != card.ID {
				next = append(next, c)
			}
		}
		sel.cards = next
		return
	}

	if len(sel.cards) == 0 {
		sel.cards = []game.Card{card}
		return
	}

	first := sel.cards[0]
	if first.Value == card.Value {
		sel.cards = append(sel.cards, card)
		return
	}

	// The cross-rank 8/Q combo demands suit uniformity across the whole
	// selection, checked at click time: an 8♥ admitted earlier by the
	// equal-value rule disqualifies a later Q♠.
	comboOK := card.IsQuestion()
	for _, c := range sel.cards {
		if !c.IsQuestion() || c.Suit != card.Suit {
			comboOK = false
			break
		}
	}
	if comboOK {
		sel.cards = append(sel.cards, card)
		return
	}

	sel.cards = []game.Card{card}
}

func (sel *Selection) containsWild() bool {
	for _, c := range sel.cards {
		if c.IsWild() {
			return true
		}
	}
	return false
}

// ToggleCard applies a card click to the selection. When the resulting
// selection holds a wild card and no draw penalty is owed, the suit
// prompt opens as a side effect, ahead of submission.
func (s *Store) ToggleCard(card game.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.toggle(card)

	penalty := 0
	if s.game != nil {
		penalty = s.game.DrawPenalty
	}
	if s.sel.containsWild() && penalty == 0 {
		s.sel.suitPromptOpen = true
	}
}

// SelectedCards returns a copy of the current selection in click order.
func (s *Store) SelectedCards() []game.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game.Card(nil), s.sel.cards...)
}

// SuitPromptOpen reports whether the wild-suit choice is pending.
func (s *Store) SuitPromptOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.suitPromptOpen
}

// CloseSuitPrompt dismisses the suit choice without submitting.
func (s *Store) CloseSuitPrompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.suitPromptOpen = false
}

// ClearSelection empties the selection and closes the suit prompt.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = Selection{}
}

// BuildPlay assembles the play intent for the current selection.
// chosenSuit is "" when no wild card is involved. A wild play without a
// chosen suit does not build an intent; it re-opens the suit prompt and
// returns ErrSuitRequired so the caller holds submission. On success
// the selection is cleared and the prompt closed.
func (s *Store) BuildPlay(chosenSuit string) (*protocol.PlayIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sel.cards) == 0 {
		return nil, ErrNothingSelected
	}
	if s.playerID == "" {
		return nil, ErrNoIdentity
	}
	if s.game == nil || s.game.RoomCode == "" {
		return nil, ErrNoRoom
	}
	if s.sel.containsWild() && chosenSuit == "" {
		s.sel.suitPromptOpen = true
		return nil, ErrSuitRequired
	}

	intent := &protocol.PlayIntent{
		RoomCode: s.game.RoomCode,
		PlayerID: s.playerID,
		Cards:    append([]game.Card(nil), s.sel.cards...),
	}
	if chosenSuit != "" {
		intent.NewSuit = &chosenSuit
	}
	s.sel = Selection{}
	return intent, nil
}
