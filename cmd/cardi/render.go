package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cardi-game/cardi-client/internal/game"
	"github.com/cardi-game/cardi-client/internal/state"
)

var suitGlyphs = map[string]string{
	game.SuitSpades:   "♠",
	game.SuitHearts:   "♥",
	game.SuitDiamonds: "♦",
	game.SuitClubs:    "♣",
	game.SuitJoker:    "🃏",
}

func cardLabel(c game.Card) string {
	glyph, ok := suitGlyphs[c.Suit]
	if !ok {
		glyph = "?"
	}
	return c.Value + glyph
}

// renderer prints game state as text. It owns the display window for
// transient messages: a message stays visible for the configured
// window from when it first appeared, regardless of unrelated state
// changes replacing the snapshot underneath.
type renderer struct {
	store  *state.Store
	window time.Duration

	lastMessage string
	shownAt     time.Time
}

func newRenderer(store *state.Store, window time.Duration) *renderer {
	if window <= 0 {
		window = 4 * time.Second
	}
	return &renderer{store: store, window: window}
}

// watch polls for new transient messages and prints each once.
func (r *renderer) watch(ctx context.Context) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := r.store.Game()
			if snap == nil || snap.Message == "" {
				continue
			}
			if snap.Message == r.lastMessage && time.Since(r.shownAt) < r.window {
				continue
			}
			if snap.Message != r.lastMessage {
				r.lastMessage = snap.Message
				r.shownAt = time.Now()
				fmt.Printf("\n** %s\n> ", snap.Message)
			}
		}
	}
}

// table prints the room overview: players, discard pile, whose turn.
func (r *renderer) table() {
	snap := r.store.Game()
	if snap == nil {
		fmt.Println("No game state yet.")
		return
	}

	fmt.Printf("Room %s", snap.RoomCode)
	if !snap.Started {
		fmt.Print(" (waiting to start)")
	}
	fmt.Println()

	for i, p := range snap.Players {
		marker := "  "
		if snap.Started && i == snap.CurrentPlayerIndex {
			marker = "->"
		}
		flags := ""
		if p.HasCalledCardi {
			flags = " CARDI!"
		}
		if p.ID == snap.RoomOwnerID {
			flags += " (owner)"
		}
		fmt.Printf("%s %-16s %2d cards  wins:%d%s\n", marker, p.Username, len(p.Hand), p.Wins, flags)
	}

	if snap.TopCard != nil {
		fmt.Printf("Top card: %s", cardLabel(*snap.TopCard))
		if snap.ActiveSuit != "" {
			fmt.Printf("  (active suit: %s)", snap.ActiveSuit)
		}
		fmt.Println()
	}

	switch {
	case !snap.Started:
	case r.store.IsMyTurn() && snap.DrawPenalty > 0:
		fmt.Printf("DRAW PENALTY! You must draw %d or play a counter.\n", snap.DrawPenalty)
	case r.store.IsMyTurn() && snap.QuestionActive:
		suit := ""
		if snap.TopCard != nil {
			suit = snap.TopCard.Suit
		}
		fmt.Printf("QUESTION! You must play a %s or draw.\n", suit)
	case r.store.IsMyTurn():
		fmt.Println("It's YOUR turn!")
	default:
		if current := snap.CurrentPlayer(); current != nil {
			fmt.Printf("%s's turn.\n", current.Username)
		}
	}
}

// hand prints the local player's cards with selection markers.
func (r *renderer) hand() {
	me := r.store.MyPlayer()
	if me == nil {
		fmt.Println("No hand yet.")
		return
	}

	selected := make(map[string]bool)
	for _, c := range r.store.SelectedCards() {
		selected[c.ID] = true
	}

	var b strings.Builder
	for i, c := range me.Hand {
		if i > 0 {
			b.WriteString("  ")
		}
		if selected[c.ID] {
			fmt.Fprintf(&b, "[%d:%s]", i+1, cardLabel(c))
		} else {
			fmt.Fprintf(&b, " %d:%s ", i+1, cardLabel(c))
		}
	}
	fmt.Println(b.String())
}
