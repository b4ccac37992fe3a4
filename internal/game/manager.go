package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerbattle/internal/deck"
	"github.com/lox/pokerbattle/internal/evaluator"
	"github.com/lox/pokerbattle/internal/hand"
)

// MaxHandSize keeps enough cards in the pile to redraw a whole hand while
// both hands are out
const MaxHandSize = 17

// ErrInvalidHandSize is returned for hand sizes outside 1..MaxHandSize
var ErrInvalidHandSize = errors.New("invalid hand size")

// Config holds the rules of a table
type Config struct {
	HandSize     int
	IncludeJoker bool
}

// DefaultConfig returns five-card hands without a joker
func DefaultConfig() Config {
	return Config{HandSize: 5}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.HandSize < 1 || c.HandSize > MaxHandSize {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidHandSize, c.HandSize, MaxHandSize)
	}
	return nil
}

// BattleResult is the outcome of a battle from the player's side
type BattleResult int

const (
	Draw BattleResult = iota
	PlayerWin
	EnemyWin
)

// String returns the result name
func (r BattleResult) String() string {
	switch r {
	case PlayerWin:
		return "player_win"
	case EnemyWin:
		return "enemy_win"
	default:
		return "draw"
	}
}

// MarshalText encodes the result by name
func (r BattleResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a result name written by MarshalText
func (r *BattleResult) UnmarshalText(text []byte) error {
	for _, candidate := range []BattleResult{Draw, PlayerWin, EnemyWin} {
		if candidate.String() == string(text) {
			*r = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown battle result %q", text)
}

// Result is a resolved battle between the player and enemy hands
type Result struct {
	Outcome    BattleResult       `json:"outcome"`
	PlayerRank evaluator.HandRank `json:"playerRank"`
	EnemyRank  evaluator.HandRank `json:"enemyRank"`
	Player     evaluator.Strength `json:"player"`
	Enemy      evaluator.Strength `json:"enemy"`
}

// Manager owns one deck and the player and enemy hands. It is not safe for
// concurrent use; a caller serving several goroutines must hold one lock
// around every call.
type Manager struct {
	cfg    Config
	deck   *deck.Deck
	hands  [len(hand.Owners)]*hand.Hand
	bus    EventBus
	clock  quartz.Clock
	logger *log.Logger
}

// NewManager creates a manager with a freshly shuffled deck and empty hands.
// The RNG is required so that every deck can be replayed from a seed.
func NewManager(rng *rand.Rand, cfg Config, opts ...Option) (*Manager, error) {
	if rng == nil {
		return nil, errors.New("rng is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mc := newManagerConfig(opts)
	m := &Manager{
		cfg:    cfg,
		deck:   deck.New(rng, cfg.IncludeJoker),
		bus:    mc.bus,
		clock:  mc.clock,
		logger: mc.logger.WithPrefix("game"),
	}
	for _, owner := range hand.Owners {
		m.hands[owner] = hand.New(owner)
	}
	return m, nil
}

// Config returns the rules the manager was created with
func (m *Manager) Config() Config {
	return m.cfg
}

// Events returns the bus hand, deck and battle events are published on
func (m *Manager) Events() EventBus {
	return m.bus
}

// Subscribe registers a subscriber on the manager's event bus
func (m *Manager) Subscribe(subscriber EventSubscriber) {
	m.bus.Subscribe(subscriber)
}

// Unsubscribe removes a subscriber from the manager's event bus
func (m *Manager) Unsubscribe(subscriber EventSubscriber) {
	m.bus.Unsubscribe(subscriber)
}

// Hand returns a copy of the owner's cards
func (m *Manager) Hand(owner hand.Owner) []deck.Card {
	if !owner.Valid() {
		return nil
	}
	return m.hands[owner].Cards()
}

// DeckCount returns the number of cards in the draw pile
func (m *Manager) DeckCount() int {
	return m.deck.Count()
}

// DeckCards returns a copy of the draw pile, bottom first
func (m *Manager) DeckCards() []deck.Card {
	return m.deck.Cards()
}

// Population returns the number of cards generated for the deck
func (m *Manager) Population() int {
	return m.deck.Population()
}

// DealInitialHand clears the owner's hand and deals a new one
func (m *Manager) DealInitialHand(owner hand.Owner) {
	if !owner.Valid() {
		return
	}
	h := m.hands[owner]
	m.deck.Return(h.Clear()...)
	m.ensureCapacity(m.cfg.HandSize)
	m.drawTo(h, m.cfg.HandSize)
	m.publishHand(owner, ReasonDeal)
}

// DealInitialHands deals fresh hands to both owners from one capacity check
func (m *Manager) DealInitialHands() {
	for _, owner := range hand.Owners {
		m.deck.Return(m.hands[owner].Clear()...)
	}
	m.ensureCapacity(m.cfg.HandSize * len(hand.Owners))
	for _, owner := range hand.Owners {
		m.drawTo(m.hands[owner], m.cfg.HandSize)
	}
	for _, owner := range hand.Owners {
		m.publishHand(owner, ReasonDeal)
	}
}

// ReplaceCards redraws the cards at the given positions and returns how many
// were replaced. Duplicate and out of range indices are dropped.
func (m *Manager) ReplaceCards(owner hand.Owner, indices []int) int {
	if !owner.Valid() {
		return 0
	}
	h := m.hands[owner]
	targets := validIndices(indices, h.Len())
	if len(targets) == 0 {
		return 0
	}

	m.ensureCapacity(len(targets))
	discarded := make([]deck.Card, 0, len(targets))
	for _, i := range targets {
		card, ok := m.deck.Draw()
		if !ok {
			break
		}
		old, _ := h.Set(i, card)
		discarded = append(discarded, old)
	}
	// Discards go back only after drawing so a card is never dealt straight
	// back into the position it left.
	m.deck.Return(discarded...)

	m.publishHand(owner, ReasonReplace)
	return len(discarded)
}

// ReplaceCardAt redraws a single card. An out of range index is logged and
// ignored.
func (m *Manager) ReplaceCardAt(owner hand.Owner, index int) bool {
	if !owner.Valid() {
		return false
	}
	if index < 0 || index >= m.hands[owner].Len() {
		m.logger.Warn("Replace index out of range", "owner", owner, "index", index, "size", m.hands[owner].Len())
		return false
	}
	return m.ReplaceCards(owner, []int{index}) == 1
}

// SortHand orders the owner's hand for battle display
func (m *Manager) SortHand(owner hand.Owner) {
	if !owner.Valid() {
		return
	}
	m.hands[owner].SortForBattle()
	m.publishHand(owner, ReasonSort)
}

// EvaluateHand returns the category of the owner's current hand
func (m *Manager) EvaluateHand(owner hand.Owner) evaluator.HandRank {
	return evaluator.Evaluate(m.Hand(owner))
}

// HandStrength returns the category and kickers of the owner's hand
func (m *Manager) HandStrength(owner hand.Owner) evaluator.Strength {
	return evaluator.EvaluateStrength(m.Hand(owner))
}

// LogHand writes the owner's rank and cards to the log
func (m *Manager) LogHand(owner hand.Owner) {
	cards := m.Hand(owner)
	if len(cards) == 0 {
		m.logger.Warn("Hand is empty, deal before evaluating", "owner", owner)
		return
	}
	m.logger.Info("Hand evaluated",
		"owner", owner,
		"rank", evaluator.Evaluate(cards),
		"cards", deck.Labels(cards))
}

// ResolveBattle compares the player hand against the enemy hand
func (m *Manager) ResolveBattle() Result {
	battle := evaluator.Resolve(m.hands[hand.Player].Cards(), m.hands[hand.Enemy].Cards())

	result := Result{
		PlayerRank: battle.A.Rank,
		EnemyRank:  battle.B.Rank,
		Player:     battle.A,
		Enemy:      battle.B,
	}
	switch battle.Outcome {
	case evaluator.AWins:
		result.Outcome = PlayerWin
	case evaluator.BWins:
		result.Outcome = EnemyWin
	default:
		result.Outcome = Draw
	}

	m.logger.Debug("Battle resolved",
		"outcome", result.Outcome,
		"player", result.Player,
		"enemy", result.Enemy)
	m.bus.Publish(NewBattleResolvedEvent(result, m.clock.Now()))
	return result
}

// Reset empties both hands and regenerates the deck
func (m *Manager) Reset(includeJoker bool) {
	m.cfg.IncludeJoker = includeJoker
	for _, owner := range hand.Owners {
		m.hands[owner].Clear()
	}
	m.deck.Reset(includeJoker)
	for _, owner := range hand.Owners {
		m.publishHand(owner, ReasonReset)
	}
}

func (m *Manager) ensureCapacity(required int) {
	if !m.deck.EnsureCapacity(required) {
		return
	}
	m.logger.Info("Deck reshuffled", "required", required, "remaining", m.deck.Count())
	m.bus.Publish(NewDeckShuffledEvent(required, m.deck.Count(), m.clock.Now()))
}

func (m *Manager) drawTo(h *hand.Hand, n int) {
	for i := 0; i < n; i++ {
		card, ok := m.deck.Draw()
		if !ok {
			return
		}
		h.Add(card)
	}
}

func (m *Manager) publishHand(owner hand.Owner, reason ChangeReason) {
	m.bus.Publish(NewHandChangedEvent(owner, m.hands[owner].Cards(), reason, m.clock.Now()))
}

// validIndices deduplicates indices, keeping first occurrences, and drops any
// outside [0, size)
func validIndices(indices []int, size int) []int {
	seen := make(map[int]bool, len(indices))
	targets := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= size || seen[i] {
			continue
		}
		seen[i] = true
		targets = append(targets, i)
	}
	return targets
}
