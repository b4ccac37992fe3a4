package evaluator

import (
	rand "math/rand/v2"
	"testing"

	"github.com/paulhankin/poker"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerbattle/internal/deck"
)

// toOracle converts a card into the reference evaluator's representation
func toOracle(t *testing.T, c deck.Card) poker.Card {
	t.Helper()

	rank := poker.Rank(c.Rank)
	if c.Rank == deck.Ace {
		rank = 1
	}
	var suit poker.Suit
	switch c.Suit {
	case deck.Spades:
		suit = poker.Spade
	case deck.Hearts:
		suit = poker.Heart
	case deck.Diamonds:
		suit = poker.Diamond
	case deck.Clubs:
		suit = poker.Club
	}

	card, err := poker.MakeCard(suit, rank)
	require.NoError(t, err)
	return card
}

// bestOfSeven returns the strongest five-card strength among seven cards
func bestOfSeven(cards []deck.Card) Strength {
	var best Strength
	first := true
	five := make([]deck.Card, 0, 5)

	for skipA := 0; skipA < len(cards); skipA++ {
		for skipB := skipA + 1; skipB < len(cards); skipB++ {
			five = five[:0]
			for i, c := range cards {
				if i != skipA && i != skipB {
					five = append(five, c)
				}
			}
			s := EvaluateStrength(five)
			if first || Compare(s, best) > 0 {
				best, first = s, false
			}
		}
	}
	return best
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// Without jokers the evaluator must order hands exactly like a standard
// poker evaluator.
func TestCompareMatchesReferenceEvaluator(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping reference comparison in short mode")
	}

	rng := rand.New(rand.NewPCG(2024, 11))
	d := deck.New(rng, false)

	eval := func(cards []deck.Card) int16 {
		var hand [7]poker.Card
		for i, c := range cards {
			hand[i] = toOracle(t, c)
		}
		return poker.Eval7(&hand)
	}

	for i := 0; i < 2000; i++ {
		d.Reset(false)
		a := d.DrawN(7)
		b := d.DrawN(7)

		want := sign(int(eval(a)) - int(eval(b)))
		got := Compare(bestOfSeven(a), bestOfSeven(b))
		require.Equal(t, want, got, "a=%v b=%v", a, b)
	}
}
