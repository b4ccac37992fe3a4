package evaluator

import "github.com/lox/pokerbattle/internal/deck"

// Outcome is the result of comparing two hands
type Outcome int

const (
	Draw Outcome = iota
	AWins
	BWins
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case AWins:
		return "a_wins"
	case BWins:
		return "b_wins"
	default:
		return "draw"
	}
}

// Battle is the resolved comparison of two hands
type Battle struct {
	Outcome Outcome
	A       Strength
	B       Strength
}

// Compare orders two strengths: 1 if a is stronger, -1 if b is, 0 if equal.
// Categories are compared first, then kickers element by element; when one
// kicker list is a strict prefix of the other the shorter one loses.
func Compare(a, b Strength) int {
	if a.Rank != b.Rank {
		if a.Rank > b.Rank {
			return 1
		}
		return -1
	}

	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		if a.Kickers[i] > b.Kickers[i] {
			return 1
		} else if a.Kickers[i] < b.Kickers[i] {
			return -1
		}
	}

	switch {
	case len(a.Kickers) > len(b.Kickers):
		return 1
	case len(a.Kickers) < len(b.Kickers):
		return -1
	}
	return 0
}

// Resolve evaluates both hands and decides the battle
func Resolve(a, b []deck.Card) Battle {
	battle := Battle{
		A: EvaluateStrength(a),
		B: EvaluateStrength(b),
	}

	switch Compare(battle.A, battle.B) {
	case 1:
		battle.Outcome = AWins
	case -1:
		battle.Outcome = BWins
	default:
		battle.Outcome = Draw
	}
	return battle
}
