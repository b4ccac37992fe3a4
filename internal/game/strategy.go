package game

import (
	"github.com/lox/pokerbattle/internal/deck"
	"github.com/lox/pokerbattle/internal/evaluator"
)

// SuggestRedraw picks the positions a simple strategy would replace. Made
// hands of a straight or better are kept. Otherwise jokers and any paired
// ranks are held, a hand one card short of a flush throws that card, and a
// hand with nothing keeps only its highest card.
func SuggestRedraw(cards []deck.Card) []int {
	if len(cards) == 0 || evaluator.Evaluate(cards) >= evaluator.Straight {
		return nil
	}

	counts := make(map[deck.Rank]int, len(cards))
	suits := make(map[deck.Suit]int, len(deck.Suits))
	jokers := 0
	for _, c := range cards {
		if c.Joker {
			jokers++
			continue
		}
		counts[c.Rank]++
		suits[c.Suit]++
	}

	grouped := false
	for _, n := range counts {
		if n >= 2 {
			grouped = true
			break
		}
	}

	var discard []int
	switch {
	case grouped:
		for i, c := range cards {
			if !c.Joker && counts[c.Rank] < 2 {
				discard = append(discard, i)
			}
		}

	case len(cards) >= 5 && flushDraw(suits, jokers, len(cards)):
		var suit deck.Suit
		best := 0
		for _, s := range deck.Suits {
			if suits[s] > best {
				suit, best = s, suits[s]
			}
		}
		for i, c := range cards {
			if !c.Joker && c.Suit != suit {
				discard = append(discard, i)
			}
		}

	default:
		keep := -1
		for i, c := range cards {
			if c.Joker {
				continue
			}
			if keep < 0 || c.Rank > cards[keep].Rank {
				keep = i
			}
		}
		for i, c := range cards {
			if !c.Joker && i != keep {
				discard = append(discard, i)
			}
		}
	}
	return discard
}

// flushDraw reports whether exactly one real card is off the majority suit
func flushDraw(suits map[deck.Suit]int, jokers, size int) bool {
	for _, n := range suits {
		if n+jokers == size-1 {
			return true
		}
	}
	return false
}
