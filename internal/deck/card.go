package deck

import (
	"fmt"
	"strconv"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists the four suits in generation order
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the symbol for a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Name returns the display name used by the presentation layer
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "Spade"
	case Hearts:
		return "Heart"
	case Diamonds:
		return "Diamond"
	case Clubs:
		return "Club"
	default:
		return "Unknown"
	}
}

// Letter returns the single-letter notation for a suit
func (s Suit) Letter() byte {
	switch s {
	case Spades:
		return 's'
	case Hearts:
		return 'h'
	case Diamonds:
		return 'd'
	case Clubs:
		return 'c'
	default:
		return '?'
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Jokers carry rank 0.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// LowAce is the value an Ace takes in an A-2-3-4-5 straight
const LowAce Rank = 1

// Label returns the rank label: J, Q, K, A for court cards, decimal otherwise
func (r Rank) Label() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return strconv.Itoa(int(r))
	}
}

// String returns the compact notation for a rank (T for ten)
func (r Rank) String() string {
	if r == Ten {
		return "T"
	}
	if r < Two || r > Ace {
		return "?"
	}
	return r.Label()
}

// Valid reports whether r is one of the thirteen standard ranks
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Card represents a playing card. The zero-suit, zero-rank card with Joker
// set is the wildcard.
type Card struct {
	Suit  Suit
	Rank  Rank
	Joker bool
}

// Joker is the single wildcard card
var Joker = Card{Joker: true}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the short form of a card (e.g., "A♠")
func (c Card) String() string {
	if c.Joker {
		return "Joker"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Label formats a card for display: "{suit} {rank}" or "Joker"
func (c Card) Label() string {
	if c.Joker {
		return "Joker"
	}
	return c.Suit.Name() + " " + c.Rank.Label()
}

// Notation returns the two-character form accepted by ParseCard ("As", "Jk")
func (c Card) Notation() string {
	if c.Joker {
		return "Jk"
	}
	return c.Rank.String() + string(c.Suit.Letter())
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return !c.Joker && c.Suit.IsRed()
}

// Labels formats a slice of cards with Label
func Labels(cards []Card) []string {
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.Label()
	}
	return labels
}
