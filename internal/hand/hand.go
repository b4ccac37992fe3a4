// Package hand holds the ordered cards of one participant.
package hand

import (
	"sort"

	"github.com/lox/pokerbattle/internal/deck"
)

// Owner identifies which participant a hand belongs to
type Owner int

const (
	Player Owner = iota
	Enemy
)

// Owners lists every participant in seat order
var Owners = [...]Owner{Player, Enemy}

// String returns the owner name
func (o Owner) String() string {
	switch o {
	case Player:
		return "player"
	case Enemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Valid reports whether o is a known owner
func (o Owner) Valid() bool {
	return o == Player || o == Enemy
}

// ParseOwner converts a name back into an Owner
func ParseOwner(s string) (Owner, bool) {
	switch s {
	case "player":
		return Player, true
	case "enemy":
		return Enemy, true
	default:
		return 0, false
	}
}

// Hand is an ordered, mutable sequence of cards
type Hand struct {
	owner Owner
	cards []deck.Card
}

// New creates an empty hand for owner
func New(owner Owner) *Hand {
	return &Hand{owner: owner}
}

// Owner returns the participant this hand belongs to
func (h *Hand) Owner() Owner {
	return h.owner
}

// Clear empties the hand and returns the cards that were in it
func (h *Hand) Clear() []deck.Card {
	removed := h.cards
	h.cards = nil
	return removed
}

// Add appends a card
func (h *Hand) Add(card deck.Card) {
	h.cards = append(h.cards, card)
}

// Set replaces the card at index i and returns the previous card
func (h *Hand) Set(i int, card deck.Card) (deck.Card, bool) {
	if i < 0 || i >= len(h.cards) {
		return deck.Card{}, false
	}
	old := h.cards[i]
	h.cards[i] = card
	return old, true
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the cards in order
func (h *Hand) Cards() []deck.Card {
	cards := make([]deck.Card, len(h.cards))
	copy(cards, h.cards)
	return cards
}

// SortForBattle orders the hand by rank descending, then by suit. Jokers
// have rank 0 and therefore sort last.
func (h *Hand) SortForBattle() {
	SortForBattle(h.cards)
}

// SortForBattle sorts cards in place using the battle ordering
func SortForBattle(cards []deck.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if a.Joker != b.Joker {
			return b.Joker
		}
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		return a.Suit < b.Suit
	})
}
