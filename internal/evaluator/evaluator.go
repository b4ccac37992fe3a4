// Package evaluator classifies poker hands that may contain jokers and
// compares them for battle resolution.
//
// Jokers always reinforce the largest rank group. Flush and straight tests
// run independently of that assignment and the first matching category in
// precedence order wins, so a joker can complete a straight flush even when
// it would otherwise have made trips.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/lox/pokerbattle/internal/deck"
)

// HandRank is the category of a hand. Higher values beat lower values.
type HandRank uint8

const (
	None HandRank = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// HandRanks lists every category from weakest to strongest
var HandRanks = [...]HandRank{None, OnePair, TwoPair, ThreeOfAKind, Straight, Flush, FullHouse, FourOfAKind, StraightFlush}

// String returns a human-readable category name
func (r HandRank) String() string {
	switch r {
	case None:
		return "None"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the category by name so it reads well in JSON
func (r HandRank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a category name written by MarshalText
func (r *HandRank) UnmarshalText(text []byte) error {
	rank, err := ParseHandRank(string(text))
	if err != nil {
		return err
	}
	*r = rank
	return nil
}

// ParseHandRank converts a category name back into a HandRank
func ParseHandRank(s string) (HandRank, error) {
	for _, r := range HandRanks {
		if r.String() == s {
			return r, nil
		}
	}
	return None, fmt.Errorf("unknown hand rank %q", s)
}

// straightLength is the number of consecutive ranks in a straight
const straightLength = 5

// group is a run of cards sharing a rank; size includes any jokers assigned
type group struct {
	rank deck.Rank
	size int
}

// analysis is everything Evaluate and EvaluateStrength need from one pass
type analysis struct {
	jokers int
	ranks  []deck.Rank // non-joker ranks, descending
	groups []group     // size descending then rank descending; jokers on groups[0]
	flush  bool
	high   deck.Rank // straight high card, 0 if no straight
}

func analyse(cards []deck.Card) analysis {
	var a analysis
	counts := make(map[deck.Rank]int, len(cards))
	var suit deck.Suit
	a.flush = true

	for _, c := range cards {
		if c.Joker {
			a.jokers++
			continue
		}
		if len(a.ranks) == 0 {
			suit = c.Suit
		} else if c.Suit != suit {
			a.flush = false
		}
		a.ranks = append(a.ranks, c.Rank)
		counts[c.Rank]++
	}
	sort.Slice(a.ranks, func(i, j int) bool { return a.ranks[i] > a.ranks[j] })

	for rank, size := range counts {
		a.groups = append(a.groups, group{rank: rank, size: size})
	}
	sort.Slice(a.groups, func(i, j int) bool {
		if a.groups[i].size != a.groups[j].size {
			return a.groups[i].size > a.groups[j].size
		}
		return a.groups[i].rank > a.groups[j].rank
	})

	if a.jokers > 0 {
		if len(a.groups) == 0 {
			// Nothing to copy, so the wildcards stand for aces.
			a.groups = append(a.groups, group{rank: deck.Ace})
		}
		a.groups[0].size += a.jokers
	}

	a.high = straightHigh(counts, a.jokers)
	return a
}

// straightHigh returns the high card of the best straight the jokers can
// complete, or 0. At least one real card must anchor the window.
func straightHigh(counts map[deck.Rank]int, jokers int) deck.Rank {
	if len(counts) == 0 || len(counts)+jokers < straightLength {
		return 0
	}

	present := func(r deck.Rank) bool {
		if r == deck.LowAce {
			return counts[deck.Ace] > 0
		}
		return counts[r] > 0
	}

	for start := deck.Ten; start >= deck.LowAce; start-- {
		missing := 0
		for r := start; r < start+straightLength; r++ {
			if !present(r) {
				missing++
			}
		}
		if missing <= jokers {
			return start + straightLength - 1
		}
	}
	return 0
}

func (a analysis) groupSize(i int) int {
	if i < len(a.groups) {
		return a.groups[i].size
	}
	return 0
}

func (a analysis) rank() HandRank {
	top, second := a.groupSize(0), a.groupSize(1)
	straight := a.high > 0

	switch {
	case straight && a.flush:
		return StraightFlush
	case top >= 4:
		return FourOfAKind
	case top >= 3 && second >= 2:
		return FullHouse
	case a.flush:
		return Flush
	case straight:
		return Straight
	case top >= 3:
		return ThreeOfAKind
	case top >= 2 && second >= 2:
		return TwoPair
	case top >= 2:
		return OnePair
	default:
		return None
	}
}

// Evaluate returns the category of cards. An empty hand is None.
func Evaluate(cards []deck.Card) HandRank {
	if len(cards) == 0 {
		return None
	}
	return analyse(cards).rank()
}
