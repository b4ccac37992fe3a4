package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokerbattle/internal/deck"
	"github.com/lox/pokerbattle/internal/evaluator"
	"github.com/lox/pokerbattle/internal/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	blackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	jokerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	rankStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	indexStyle = lipgloss.NewStyle().Faint(true)

	winStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	loseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	drawStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func renderCard(c deck.Card) string {
	switch {
	case c.Joker:
		return jokerStyle.Render(c.String())
	case c.IsRed():
		return redStyle.Render(c.String())
	default:
		return blackStyle.Render(c.String())
	}
}

func renderCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = renderCard(c)
	}
	return strings.Join(parts, " ")
}

// renderIndexed numbers cards from 1 for redraw selection
func renderIndexed(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = indexStyle.Render(fmt.Sprintf("%d:", i+1)) + renderCard(c)
	}
	return strings.Join(parts, " ")
}

func renderStrength(s evaluator.Strength) string {
	return rankStyle.Render(s.String())
}

func renderOutcome(r game.BattleResult) string {
	switch r {
	case game.PlayerWin:
		return winStyle.Render("You win!")
	case game.EnemyWin:
		return loseStyle.Render("Enemy wins")
	default:
		return drawStyle.Render("Draw")
	}
}
