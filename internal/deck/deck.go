package deck

import (
	rand "math/rand/v2"
)

// StandardSize is the number of non-joker cards in a deck
const StandardSize = 52

// Deck is the draw pile. The top of the pile is the end of the slice.
//
// Cards handed back with Return go under the bottom and are no longer
// fresh. EnsureCapacity only counts fresh cards, so a reshuffle happens once
// the unused part of the pile runs short, while every card stays owned by
// exactly one of the deck or a hand. Count therefore grows again on Return
// and is not monotonic between resets; Fresh only falls until a reshuffle.
type Deck struct {
	cards    []Card
	returned int // cards at the bottom of the pile that were already dealt
	joker    bool
	rng      *rand.Rand
}

// New creates a shuffled 52-card deck, plus one joker when includeJoker is set
func New(rng *rand.Rand, includeJoker bool) *Deck {
	d := &Deck{
		cards: make([]Card, 0, StandardSize+1),
		rng:   rng,
	}
	d.Reset(includeJoker)
	return d
}

// Reset discards the pile, regenerates the full population and shuffles it
func (d *Deck) Reset(includeJoker bool) {
	d.joker = includeJoker
	d.cards = d.cards[:0]
	d.returned = 0

	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	if includeJoker {
		d.cards = append(d.cards, Joker)
	}

	d.shuffle()
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}

	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	if d.returned > len(d.cards) {
		d.returned = len(d.cards)
	}
	return card, true
}

// DrawN draws up to n cards
func (d *Deck) DrawN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}

	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, _ := d.Draw()
		cards = append(cards, card)
	}
	return cards
}

// Return puts dealt cards under the bottom of the pile
func (d *Deck) Return(cards ...Card) {
	if len(cards) == 0 {
		return
	}
	pile := make([]Card, 0, len(cards)+len(d.cards))
	pile = append(pile, cards...)
	d.cards = append(pile, d.cards...)
	d.returned += len(cards)
}

// EnsureCapacity reshuffles the whole pile when fewer than n fresh cards are
// left. It reports whether a reshuffle happened.
func (d *Deck) EnsureCapacity(n int) bool {
	if d.Fresh() >= n {
		return false
	}
	d.returned = 0
	d.shuffle()
	return true
}

// Count returns the number of cards in the pile
func (d *Deck) Count() int {
	return len(d.cards)
}

// Fresh returns the number of cards not dealt since the last shuffle
func (d *Deck) Fresh() int {
	return len(d.cards) - d.returned
}

// Population returns the size of the generated card set (52 or 53)
func (d *Deck) Population() int {
	if d.joker {
		return StandardSize + 1
	}
	return StandardSize
}

// IncludesJoker reports whether the population contains the joker
func (d *Deck) IncludesJoker() bool {
	return d.joker
}

// Cards returns a copy of the pile, bottom first
func (d *Deck) Cards() []Card {
	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)
	return cards
}

// shuffle is an unbiased Fisher–Yates pass over the pile
func (d *Deck) shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}
