package game

import (
	"errors"
	"fmt"

	"github.com/lox/pokerbattle/internal/hand"
)

// RoundState is the phase of a round
type RoundState int

const (
	RoundIdle RoundState = iota
	RoundDealt
	RoundResolved
)

// String returns the state name
func (s RoundState) String() string {
	switch s {
	case RoundIdle:
		return "idle"
	case RoundDealt:
		return "dealt"
	case RoundResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s RoundState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// current round state
	ErrInvalidTransition = errors.New("invalid round transition")
	// ErrRedrawUsed is returned when an owner redraws twice in one round
	ErrRedrawUsed = errors.New("redraw already used this round")
)

// Round drives a Manager through deal, one optional redraw per owner,
// and battle. Like the Manager it is not safe for concurrent use.
type Round struct {
	manager *Manager
	state   RoundState
	number  int
	redrawn [len(hand.Owners)]bool
	result  *Result
}

// NewRound starts an idle round sequence over m
func NewRound(m *Manager) *Round {
	return &Round{manager: m}
}

// State returns the current phase
func (r *Round) State() RoundState {
	return r.state
}

// Number returns how many rounds have been dealt
func (r *Round) Number() int {
	return r.number
}

// Manager returns the underlying manager
func (r *Round) Manager() *Manager {
	return r.manager
}

// Redrawn reports whether owner has used their redraw in this round
func (r *Round) Redrawn(owner hand.Owner) bool {
	if !owner.Valid() {
		return false
	}
	return r.redrawn[owner]
}

// Result returns the battle result of the round, if resolved
func (r *Round) Result() (Result, bool) {
	if r.result == nil {
		return Result{}, false
	}
	return *r.result, true
}

// Deal starts a new round by dealing both hands. A resolved round must be
// ended first.
func (r *Round) Deal() error {
	if r.state != RoundIdle {
		return fmt.Errorf("%w: cannot deal while %s", ErrInvalidTransition, r.state)
	}
	r.manager.DealInitialHands()
	r.state = RoundDealt
	r.number++
	r.redrawn = [len(hand.Owners)]bool{}
	r.result = nil
	return nil
}

// Redraw replaces the cards at indices for owner. Each owner gets one redraw
// per round.
func (r *Round) Redraw(owner hand.Owner, indices []int) (int, error) {
	if r.state != RoundDealt {
		return 0, fmt.Errorf("%w: cannot redraw while %s", ErrInvalidTransition, r.state)
	}
	if !owner.Valid() {
		return 0, fmt.Errorf("unknown owner %d", owner)
	}
	if r.redrawn[owner] {
		return 0, fmt.Errorf("%w: %s", ErrRedrawUsed, owner)
	}
	r.redrawn[owner] = true
	return r.manager.ReplaceCards(owner, indices), nil
}

// Resolve sorts both hands and decides the battle
func (r *Round) Resolve() (Result, error) {
	if r.state != RoundDealt {
		return Result{}, fmt.Errorf("%w: cannot resolve while %s", ErrInvalidTransition, r.state)
	}
	for _, owner := range hand.Owners {
		r.manager.SortHand(owner)
	}
	result := r.manager.ResolveBattle()
	r.result = &result
	r.state = RoundResolved
	return result, nil
}

// End returns a resolved round to idle
func (r *Round) End() error {
	if r.state != RoundResolved {
		return fmt.Errorf("%w: cannot end while %s", ErrInvalidTransition, r.state)
	}
	r.state = RoundIdle
	return nil
}
