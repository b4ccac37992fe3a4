package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lox/pokerbattle/internal/deck"
)

// Strength is the full comparison key of a hand: its category plus the
// kicker ranks used to break ties inside that category, most significant
// first.
type Strength struct {
	Rank    HandRank    `json:"rank"`
	Kickers []deck.Rank `json:"kickers"`
}

// String renders the strength as "One Pair [9 A 7 4]"
func (s Strength) String() string {
	labels := make([]string, len(s.Kickers))
	for i, k := range s.Kickers {
		labels[i] = k.Label()
	}
	return fmt.Sprintf("%s [%s]", s.Rank, strings.Join(labels, " "))
}

// EvaluateStrength computes the category and kicker sequence of cards
func EvaluateStrength(cards []deck.Card) Strength {
	if len(cards) == 0 {
		return Strength{Rank: None}
	}

	a := analyse(cards)
	rank := a.rank()

	var kickers []deck.Rank
	switch rank {
	case StraightFlush, Straight:
		kickers = []deck.Rank{a.high}
	case FourOfAKind:
		kickers = append(a.fiveOfAKind(), a.remaining(1)...)
	case ThreeOfAKind, OnePair:
		kickers = append([]deck.Rank{a.groups[0].rank}, a.remaining(1)...)
	case FullHouse:
		kickers = []deck.Rank{a.groups[0].rank, a.groups[1].rank}
	case TwoPair:
		kickers = append([]deck.Rank{a.groups[0].rank, a.groups[1].rank}, a.remaining(2)...)
	default:
		kickers = a.withJokersHigh()
	}

	return Strength{Rank: rank, Kickers: kickers}
}

// fiveOfAKind returns the quad rank, repeated once for every card of the
// group beyond four so those cards still count as kickers
func (a analysis) fiveOfAKind() []deck.Rank {
	top := a.groups[0]
	kickers := []deck.Rank{top.rank}
	for i := 4; i < top.size; i++ {
		kickers = append(kickers, top.rank)
	}
	return kickers
}

// remaining returns the ranks of real cards outside the first n groups
func (a analysis) remaining(n int) []deck.Rank {
	used := make(map[deck.Rank]bool, n)
	for i := 0; i < n && i < len(a.groups); i++ {
		used[a.groups[i].rank] = true
	}

	var rest []deck.Rank
	for _, r := range a.ranks {
		if !used[r] {
			rest = append(rest, r)
		}
	}
	return rest
}

// withJokersHigh lists every rank descending, each joker taking the highest
// rank not already held
func (a analysis) withJokersHigh() []deck.Rank {
	held := make(map[deck.Rank]bool, len(a.ranks))
	for _, r := range a.ranks {
		held[r] = true
	}

	ranks := make([]deck.Rank, 0, len(a.ranks)+a.jokers)
	ranks = append(ranks, a.ranks...)
	for r, left := deck.Ace, a.jokers; left > 0 && r >= deck.Two; r-- {
		if held[r] {
			continue
		}
		ranks = append(ranks, r)
		left--
	}

	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })
	return ranks
}
