package server

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerbattle/internal/evaluator"
	"github.com/lox/pokerbattle/internal/game"
	"github.com/lox/pokerbattle/internal/hand"
)

// ErrEnemyControlled is returned when a client tries to act for an enemy the
// table plays itself
var ErrEnemyControlled = errors.New("enemy is controlled by the table")

// Table is one player-versus-enemy session. All game state is guarded by mu;
// events from the manager are published while mu is held, so connections see
// them in the order the operations happened.
type Table struct {
	id          string
	enemyRedraw bool
	clock       quartz.Clock
	logger      *log.Logger

	mu         sync.Mutex
	manager    *game.Manager
	round      *game.Round
	conns      map[*Connection]struct{}
	createdAt  time.Time
	lastActive time.Time
	closed     bool
}

// NewTable creates a table with its own deck drawn from rng
func NewTable(id string, rng *rand.Rand, rules game.Config, enemyRedraw bool, clock quartz.Clock, logger *log.Logger) (*Table, error) {
	t := &Table{
		id:          id,
		enemyRedraw: enemyRedraw,
		clock:       clock,
		logger:      logger.With("table", id),
		conns:       make(map[*Connection]struct{}),
	}

	manager, err := game.NewManager(rng, rules,
		game.WithLogger(logger),
		game.WithClock(clock),
	)
	if err != nil {
		return nil, err
	}
	manager.Subscribe(t)

	t.manager = manager
	t.round = game.NewRound(manager)
	t.createdAt = clock.Now()
	t.lastActive = t.createdAt
	return t, nil
}

// ID returns the table identifier
func (t *Table) ID() string {
	return t.id
}

// State returns a snapshot of the table as clients see it
func (t *Table) State() TableState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Info returns the table's list entry
func (t *Table) Info() TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TableInfo{
		ID:          t.id,
		State:       t.round.State().String(),
		Round:       t.round.Number(),
		Connections: len(t.conns),
		CreatedAt:   t.createdAt,
	}
}

// Deal starts a round
func (t *Table) Deal() (TableState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if err := t.round.Deal(); err != nil {
		return TableState{}, err
	}
	t.logger.Debug("Round dealt", "round", t.round.Number())
	return t.stateLocked(), nil
}

// Redraw replaces cards for owner. When the table plays the enemy itself only
// the player may redraw through here.
func (t *Table) Redraw(owner hand.Owner, indices []int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if owner == hand.Enemy && t.enemyRedraw {
		return 0, ErrEnemyControlled
	}
	n, err := t.round.Redraw(owner, indices)
	if err != nil {
		return 0, err
	}
	t.broadcastLocked(MessageTypeRedrawResult, RedrawResultData{Owner: owner.String(), Replaced: n})
	return n, nil
}

// Sort orders the owner's hand
func (t *Table) Sort(owner hand.Owner) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if t.round.State() == game.RoundIdle {
		return fmt.Errorf("%w: nothing dealt to sort", game.ErrInvalidTransition)
	}
	t.manager.SortHand(owner)
	return nil
}

// Battle resolves the round, first letting the table redraw for the enemy if
// it plays the enemy and has not yet done so
func (t *Table) Battle() (BattleData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if t.round.State() != game.RoundDealt {
		return BattleData{}, fmt.Errorf("%w: cannot resolve while %s", game.ErrInvalidTransition, t.round.State())
	}

	if t.enemyRedraw && !t.round.Redrawn(hand.Enemy) {
		indices := game.SuggestRedraw(t.manager.Hand(hand.Enemy))
		if _, err := t.round.Redraw(hand.Enemy, indices); err != nil {
			return BattleData{}, err
		}
		t.logger.Debug("Enemy redrew", "indices", indices)
	}

	result, err := t.round.Resolve()
	if err != nil {
		return BattleData{}, err
	}
	t.manager.LogHand(hand.Player)
	t.manager.LogHand(hand.Enemy)
	return t.battleLocked(result), nil
}

// End closes a resolved round
func (t *Table) End() (TableState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch()

	if err := t.round.End(); err != nil {
		return TableState{}, err
	}
	return t.stateLocked(), nil
}

// Attach registers a connection and sends it the current state
func (t *Table) Attach(c *Connection) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTableNotFound
	}
	t.conns[c] = struct{}{}
	t.touch()

	msg, err := NewMessage(MessageTypeTableState, t.stateLocked(), t.clock.Now())
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Detach removes a connection
func (t *Table) Detach(c *Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, c)
}

// Close notifies and disconnects every connection
func (t *Table) Close(reason string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.broadcastLocked(MessageTypeTableClosed, TableClosedData{ID: t.id, Reason: reason})
	conns := make([]*Connection, 0, len(t.conns))
	for c := range t.conns {
		conns = append(conns, c)
	}
	t.conns = make(map[*Connection]struct{})
	t.mu.Unlock()

	for _, c := range conns {
		c.CloseAfterFlush()
	}
}

// IdleFor returns how long the table has gone without activity
func (t *Table) IdleFor(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return now.Sub(t.lastActive)
}

// OnEvent forwards manager events to connected clients. It is called with
// mu held.
func (t *Table) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.HandChangedEvent:
		t.broadcastAt(MessageTypeHandChanged, HandChangedData{
			Reason: e.Reason,
			Hand:   t.handView(e.Owner, false),
		}, e.Timestamp())

	case game.DeckShuffledEvent:
		t.broadcastAt(MessageTypeDeckShuffled, DeckShuffledData{
			Required:  e.Required,
			Remaining: e.Remaining,
		}, e.Timestamp())

	case game.BattleResolvedEvent:
		t.broadcastAt(MessageTypeBattleResolved, t.battleLocked(e.Result), e.Timestamp())
	}
}

func (t *Table) touch() {
	t.lastActive = t.clock.Now()
}

func (t *Table) battleLocked(result game.Result) BattleData {
	return BattleData{
		Round:  t.round.Number(),
		Result: result,
		Player: t.handView(hand.Player, true),
		Enemy:  t.handView(hand.Enemy, true),
	}
}

// handView renders a hand. The enemy's cards are hidden until the round is
// resolved unless reveal is set.
func (t *Table) handView(owner hand.Owner, reveal bool) HandView {
	cards := t.manager.Hand(owner)
	view := HandView{Owner: owner.String(), Count: len(cards)}

	if owner == hand.Enemy && !reveal && t.round.State() != game.RoundResolved {
		view.Hidden = true
		return view
	}
	view.Cards = cardViews(cards)
	if len(cards) > 0 {
		rank := evaluator.Evaluate(cards)
		view.Rank = &rank
	}
	return view
}

func (t *Table) stateLocked() TableState {
	rules := t.manager.Config()
	state := TableState{
		ID:           t.id,
		State:        t.round.State().String(),
		Round:        t.round.Number(),
		HandSize:     rules.HandSize,
		IncludeJoker: rules.IncludeJoker,
		EnemyRedraw:  t.enemyRedraw,
		DeckCount:    t.manager.DeckCount(),
		Population:   t.manager.Population(),
		Player:       t.handView(hand.Player, false),
		Enemy:        t.handView(hand.Enemy, false),
		Redrawn:      make(map[string]bool, len(hand.Owners)),
		CreatedAt:    t.createdAt,
		LastActive:   t.lastActive,
	}
	for _, owner := range hand.Owners {
		state.Redrawn[owner.String()] = t.round.Redrawn(owner)
	}
	if result, ok := t.round.Result(); ok {
		state.Result = &result
	}
	return state
}

func (t *Table) broadcastLocked(messageType MessageType, data any) {
	t.broadcastAt(messageType, data, t.clock.Now())
}

func (t *Table) broadcastAt(messageType MessageType, data any, at time.Time) {
	if len(t.conns) == 0 {
		return
	}
	msg, err := NewMessage(messageType, data, at)
	if err != nil {
		t.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}

	for c := range t.conns {
		if err := c.SendMessage(msg); err != nil {
			t.logger.Debug("Dropping connection", "error", err)
			delete(t.conns, c)
		}
	}
}
