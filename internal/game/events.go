package game

import (
	"time"

	"github.com/lox/pokerbattle/internal/deck"
	"github.com/lox/pokerbattle/internal/hand"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeHandChanged    EventType = "hand_changed"
	EventTypeDeckShuffled   EventType = "deck_shuffled"
	EventTypeBattleResolved EventType = "battle_resolved"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a game
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// ChangeReason says which operation changed a hand
type ChangeReason string

const (
	ReasonDeal    ChangeReason = "deal"
	ReasonReplace ChangeReason = "replace"
	ReasonSort    ChangeReason = "sort"
	ReasonReset   ChangeReason = "reset"
)

// HandChangedEvent is published after any operation that mutates a hand
type HandChangedEvent struct {
	Owner     hand.Owner
	Cards     []deck.Card
	Reason    ChangeReason
	timestamp time.Time
}

func (e HandChangedEvent) EventType() EventType { return EventTypeHandChanged }
func (e HandChangedEvent) Timestamp() time.Time { return e.timestamp }

// NewHandChangedEvent creates a hand changed event with its own copy of cards
func NewHandChangedEvent(owner hand.Owner, cards []deck.Card, reason ChangeReason, at time.Time) HandChangedEvent {
	snapshot := make([]deck.Card, len(cards))
	copy(snapshot, cards)
	return HandChangedEvent{
		Owner:     owner,
		Cards:     snapshot,
		Reason:    reason,
		timestamp: at,
	}
}

// DeckShuffledEvent is published when a draw batch needed more fresh cards
// than were left and the pile was reshuffled
type DeckShuffledEvent struct {
	Required  int
	Remaining int
	timestamp time.Time
}

func (e DeckShuffledEvent) EventType() EventType { return EventTypeDeckShuffled }
func (e DeckShuffledEvent) Timestamp() time.Time { return e.timestamp }

// NewDeckShuffledEvent creates a deck shuffled event
func NewDeckShuffledEvent(required, remaining int, at time.Time) DeckShuffledEvent {
	return DeckShuffledEvent{
		Required:  required,
		Remaining: remaining,
		timestamp: at,
	}
}

// BattleResolvedEvent is published when the two hands have been compared
type BattleResolvedEvent struct {
	Result    Result
	timestamp time.Time
}

func (e BattleResolvedEvent) EventType() EventType { return EventTypeBattleResolved }
func (e BattleResolvedEvent) Timestamp() time.Time { return e.timestamp }

// NewBattleResolvedEvent creates a battle resolved event
func NewBattleResolvedEvent(result Result, at time.Time) BattleResolvedEvent {
	return BattleResolvedEvent{
		Result:    result,
		timestamp: at,
	}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus. Like the Manager it is not
// safe for concurrent use; callers serialize access.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers in subscription order
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
