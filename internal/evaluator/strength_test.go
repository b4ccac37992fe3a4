package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/pokerbattle/internal/deck"
)

func TestEvaluateStrength(t *testing.T) {
	tests := []struct {
		name    string
		cards   string
		rank    HandRank
		kickers []deck.Rank
	}{
		{"straight flush reports high card", "2s3s4s5s6s", StraightFlush, []deck.Rank{6}},
		{"wheel reports five", "As2h3d4c5s", Straight, []deck.Rank{5}},
		{"broadway", "AhKdQcJsTs", Straight, []deck.Rank{14}},
		{"quads then kicker", "9s9h9d9cKs", FourOfAKind, []deck.Rank{9, 13}},
		{"full house triple then pair", "2sKhKd2cKs", FullHouse, []deck.Rank{13, 2}},
		{"flush all ranks", "2s7s9sJsKs", Flush, []deck.Rank{13, 11, 9, 7, 2}},
		{"trips then kickers", "QsQhQd4c2s", ThreeOfAKind, []deck.Rank{12, 4, 2}},
		{"two pair high low kicker", "4dJsJh4c9s", TwoPair, []deck.Rank{11, 4, 9}},
		{"pair then kickers", "9s9hAd7c4s", OnePair, []deck.Rank{9, 14, 7, 4}},
		{"high card all ranks", "2s5h9dJcKs", None, []deck.Rank{13, 11, 9, 5, 2}},

		{"joker joins trips", "5s5h5d9cJk", FourOfAKind, []deck.Rank{5, 9}},
		{"joker joins higher pair", "KhKdJk4s4c", FullHouse, []deck.Rank{13, 4}},
		{"joker joins highest single", "JkAh9d5c2s", OnePair, []deck.Rank{14, 9, 5, 2}},
		{"joker inside straight", "8s9sTsJsJk", StraightFlush, []deck.Rank{12}},
		{"joker wheel", "As2h3d4cJk", Straight, []deck.Rank{5}},
		{"joker in flush takes ace", "Jk2h4h6h8h", Flush, []deck.Rank{14, 8, 6, 4, 2}},
		{"joker in flush skips held ranks", "JkAhKh9h2h", Flush, []deck.Rank{14, 13, 12, 9, 2}},
		{"all jokers are aces", "JkJkJkJkJk", FourOfAKind, []deck.Rank{14, 14}},
		{"two jokers make five kings", "KsKhKdJkJk", FourOfAKind, []deck.Rank{13, 13}},
		{"three jokers make five nines", "9dJkJk9hJk", FourOfAKind, []deck.Rank{9, 9}},
		{"bare jokers fill from the top", "JkJkJk", Flush, []deck.Rank{14, 13, 12}},
		{"four jokers and a nine", "JkJkJkJk9s", StraightFlush, []deck.Rank{13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := EvaluateStrength(deck.MustParseCards(tt.cards))
			assert.Equal(t, tt.rank, s.Rank)
			assert.Equal(t, tt.kickers, s.Kickers)
			assert.Equal(t, Evaluate(deck.MustParseCards(tt.cards)), s.Rank)
		})
	}
}

func TestEvaluateStrengthEmpty(t *testing.T) {
	s := EvaluateStrength(nil)
	assert.Equal(t, None, s.Rank)
	assert.Empty(t, s.Kickers)
}

func TestStrengthString(t *testing.T) {
	s := EvaluateStrength(deck.MustParseCards("9s9hAd7cTs"))
	assert.Equal(t, "One Pair [9 A 10 7]", s.String())
}
