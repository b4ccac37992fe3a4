package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/pokerbattle/internal/deck"
	"github.com/lox/pokerbattle/internal/evaluator"
)

// EvalCmd prints the rank of each hand and, for two hands, the battle result
type EvalCmd struct {
	Hands []string `arg:"" help:"Hands in card notation, e.g. 'AsKsQsJsJk' or 'As Ks Qs'"`
}

func (c *EvalCmd) Run(g *Globals) error {
	return evaluate(os.Stdout, c.Hands)
}

func evaluate(out io.Writer, hands []string) error {
	parsed := make([][]deck.Card, len(hands))
	for i, h := range hands {
		cards, err := deck.ParseCards(h)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		if len(cards) == 0 {
			return fmt.Errorf("hand %d: no cards", i+1)
		}
		parsed[i] = cards
	}

	for i, cards := range parsed {
		fmt.Fprintf(out, "Hand %d: %s  %s\n", i+1, renderCards(cards), renderStrength(evaluator.EvaluateStrength(cards)))
	}

	if len(parsed) == 2 {
		battle := evaluator.Resolve(parsed[0], parsed[1])
		var verdict string
		switch battle.Outcome {
		case evaluator.AWins:
			verdict = "Hand 1 wins"
		case evaluator.BWins:
			verdict = "Hand 2 wins"
		default:
			verdict = "Draw"
		}
		fmt.Fprintln(out, strings.Repeat("-", 20))
		fmt.Fprintln(out, headerStyle.Render(verdict))
	}
	return nil
}
