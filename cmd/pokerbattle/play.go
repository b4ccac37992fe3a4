package main

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokerbattle/internal/game"
	"github.com/lox/pokerbattle/internal/hand"
	"github.com/lox/pokerbattle/internal/randutil"
)

// PlayCmd runs rounds against the enemy in the terminal
type PlayCmd struct {
	Seed     *int64 `help:"Deterministic seed (default: config seed or time)"`
	HandSize *int   `help:"Cards per hand"`
	Joker    *bool  `help:"Include the joker"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, err := g.logger("warn")
	if err != nil {
		return err
	}

	rules := cfg.Game.Rules()
	if c.HandSize != nil {
		rules.HandSize = *c.HandSize
	}
	if c.Joker != nil {
		rules.IncludeJoker = *c.Joker
	}
	seed := cfg.Game.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	seed = randutil.Seed(seed, time.Now())
	logger.Debug("Starting terminal game", "seed", seed, "handSize", rules.HandSize, "joker", rules.IncludeJoker)

	score, err := play(os.Stdin, os.Stdout, randutil.New(seed), rules, logger, tea.WithAltScreen())
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render(" ♠ ♥ Poker Battle ♦ ♣ "))
	fmt.Println(score.String())
	return nil
}

// tally counts finished rounds from the player's side
type tally struct {
	played, wins, losses, draws int
}

func (t *tally) record(r game.BattleResult) {
	t.played++
	switch r {
	case game.PlayerWin:
		t.wins++
	case game.EnemyWin:
		t.losses++
	default:
		t.draws++
	}
}

func (t tally) String() string {
	return fmt.Sprintf("Rounds played: %d (won %d, lost %d, drawn %d)", t.played, t.wins, t.losses, t.draws)
}

// play runs the terminal game until the player quits and returns the score
func play(in io.Reader, out io.Writer, rng *rand.Rand, rules game.Config, logger *log.Logger, opts ...tea.ProgramOption) (tally, error) {
	model, err := newPlayModel(rng, rules, logger)
	if err != nil {
		return tally{}, err
	}

	opts = append([]tea.ProgramOption{tea.WithInput(in), tea.WithOutput(out)}, opts...)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return tally{}, err
	}

	m := final.(*playModel)
	return m.score, m.err
}

type playPhase int

const (
	phaseRedraw playPhase = iota
	phaseContinue
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// playModel is the Bubble Tea model for one terminal session
type playModel struct {
	manager *game.Manager
	round   *game.Round
	logger  *log.Logger
	input   textinput.Model

	phase    playPhase
	lines    []string // current round
	log      []string // every line shown this session
	status   string
	score    tally
	err      error
	quitting bool
}

func newPlayModel(rng *rand.Rand, rules game.Config, logger *log.Logger) (*playModel, error) {
	manager, err := game.NewManager(rng, rules, game.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	m := &playModel{
		manager: manager,
		round:   game.NewRound(manager),
		logger:  logger.WithPrefix("play"),
		input:   ti,
	}
	if err := m.startRound(); err != nil {
		return nil, err
	}
	return m, nil
}

// Init initializes the model
func (m *playModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses; enter submits the prompt for the current phase
func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			answer := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if err := m.submit(answer); err != nil {
				m.err = err
				m.quitting = true
			}
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *playModel) submit(answer string) error {
	m.status = ""
	lower := strings.ToLower(answer)

	switch m.phase {
	case phaseRedraw:
		if lower == "q" || lower == "quit" {
			m.quitting = true
			return nil
		}
		indices, err := parseSelection(answer, m.manager.Config().HandSize)
		if err != nil {
			m.setStatus(err.Error())
			return nil
		}
		return m.battle(indices)

	default:
		switch lower {
		case "", "y", "yes":
			return m.startRound()
		case "n", "no", "q", "quit":
			m.quitting = true
			return nil
		}
		m.setStatus("Answer y or n")
		return nil
	}
}

func (m *playModel) startRound() error {
	if err := m.round.Deal(); err != nil {
		return err
	}
	m.lines = nil
	m.phase = phaseRedraw
	m.input.Placeholder = "positions to redraw, e.g. 1,3 (enter to stand, q to quit)"

	m.addLine(headerStyle.Render(fmt.Sprintf("Round %d", m.round.Number())))
	m.addLine(fmt.Sprintf("Your hand: %s  (%s)", renderIndexed(m.manager.Hand(hand.Player)), m.manager.EvaluateHand(hand.Player)))
	return nil
}

func (m *playModel) battle(indices []int) error {
	replaced, err := m.round.Redraw(hand.Player, indices)
	if err != nil {
		return err
	}
	if replaced > 0 {
		m.addLine(fmt.Sprintf("Replaced %d: %s", replaced, renderCards(m.manager.Hand(hand.Player))))
	}
	enemyReplaced, err := m.round.Redraw(hand.Enemy, game.SuggestRedraw(m.manager.Hand(hand.Enemy)))
	if err != nil {
		return err
	}
	m.addLine(fmt.Sprintf("Enemy redraws %d", enemyReplaced))

	result, err := m.round.Resolve()
	if err != nil {
		return err
	}
	m.addLine(fmt.Sprintf("You:   %s  %s", renderCards(m.manager.Hand(hand.Player)), renderStrength(result.Player)))
	m.addLine(fmt.Sprintf("Enemy: %s  %s", renderCards(m.manager.Hand(hand.Enemy)), renderStrength(result.Enemy)))
	m.addLine(renderOutcome(result.Outcome))
	m.score.record(result.Outcome)
	m.logger.Debug("Round finished", "round", m.round.Number(), "outcome", result.Outcome)

	if err := m.round.End(); err != nil {
		return err
	}
	m.phase = phaseContinue
	m.input.Placeholder = "play again? [Y/n]"
	return nil
}

func (m *playModel) addLine(line string) {
	m.lines = append(m.lines, line)
	m.log = append(m.log, line)
}

func (m *playModel) setStatus(status string) {
	m.status = status
	m.log = append(m.log, status)
}

// View renders the current round, the score and the prompt
func (m *playModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" ♠ ♥ Poker Battle ♦ ♣ "))
	b.WriteString("\n\n")
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.score.String()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter to submit • Esc or Ctrl+C to quit"))
	return b.String()
}

// parseSelection converts 1-based positions separated by spaces or commas
// into hand indices
func parseSelection(line string, size int) ([]int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ','
	})
	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid card position %q", f)
		}
		if n < 1 || n > size {
			return nil, fmt.Errorf("card position %d out of range (1-%d)", n, size)
		}
		indices = append(indices, n-1)
	}
	return indices, nil
}
