package game

// Card suits as sent by the server. Joker is a marker suit, not a real one.
const (
	SuitSpades   = "Spades"
	SuitHearts   = "Hearts"
	SuitDiamonds = "Diamonds"
	SuitClubs    = "Clubs"
	SuitJoker    = "Joker"
)

// Rank constants with special meaning for the selection rules.
const (
	// RankWild lets the player choose the effective suit going forward.
	RankWild = "A"
	// RankQuestion8 and RankQuestionQ impose a suit-matching obligation
	// on the next player and may be combined in a same-suit play.
	RankQuestion8 = "8"
	RankQuestionQ = "Q"
)

// Suits lists the four playable suits a wild card can switch to.
var Suits = []string{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Card is a single card instance. ID distinguishes duplicates of the
// same suit and value within a hand.
type Card struct {
	ID    string `json:"id"`
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// IsWild reports whether playing this card lets the player pick a suit.
func (c Card) IsWild() bool {
	return c.Value == RankWild
}

// IsQuestion reports whether this card imposes a suit-matching
// obligation on the next player.
func (c Card) IsQuestion() bool {
	return c.Value == RankQuestion8 || c.Value == RankQuestionQ
}

// Player is a room participant as described by server snapshots.
type Player struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Hand           []Card `json:"hand"`
	Wins           int    `json:"wins"`
	HasCalledCardi bool   `json:"hasCalledCardi"`
}

// State is the authoritative room snapshot. The server owns every field;
// the client only narrates on top of it.
type State struct {
	RoomCode             string   `json:"roomCode"`
	RoomOwnerID          string   `json:"roomOwnerId"`
	Players              []Player `json:"players"`
	TopCard              *Card    `json:"topCard"`
	CurrentPlayerIndex   int      `json:"currentPlayerIndex"`
	IsReversed           bool     `json:"isReversed"`
	Started              bool     `json:"started"`
	Message              string   `json:"message"`
	DrawPenalty          int      `json:"drawPenalty"`
	PlayerHasTakenAction bool     `json:"playerHasTakenAction"`
	QuestionActive       bool     `json:"questionActive"`
	ActiveSuit           string   `json:"activeSuit,omitempty"`
}

// Clone returns a deep copy so readers never alias the stored state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		cp := p
		cp.Hand = append([]Card(nil), p.Hand...)
		out.Players[i] = cp
	}
	if s.TopCard != nil {
		top := *s.TopCard
		out.TopCard = &top
	}
	return &out
}

// PlayerByID finds a player in the snapshot, or nil.
func (s *State) PlayerByID(id string) *Player {
	if s == nil || id == "" {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// PlayerByUsername finds a player by display name, or nil.
func (s *State) PlayerByUsername(name string) *Player {
	if s == nil || name == "" {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].Username == name {
			return &s.Players[i]
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil when the
// index is out of range or the game has no players yet.
func (s *State) CurrentPlayer() *Player {
	if s == nil || s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentPlayerIndex]
}

// RemoveFromHand deletes one hand card per (suit, value) pair in played.
// Instance IDs are ignored because event payloads echo face values only.
func RemoveFromHand(hand []Card, played []Card) []Card {
	remaining := make([]Card, 0, len(hand))
	used := make([]bool, len(played))
	for _, c := range hand {
		matched := false
		for i, p := range played {
			if !used[i] && p.Suit == c.Suit && p.Value == c.Value {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			remaining = append(remaining, c)
		}
	}
	return remaining
}
