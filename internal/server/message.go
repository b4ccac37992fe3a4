package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokerbattle/internal/deck"
	"github.com/lox/pokerbattle/internal/evaluator"
	"github.com/lox/pokerbattle/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message stamped with at
func NewMessage(messageType MessageType, data any, at time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: at,
	}, nil
}

// Client → Server / REST request bodies

type CreateTableRequest struct {
	HandSize     *int  `json:"handSize,omitempty"`
	IncludeJoker *bool `json:"includeJoker,omitempty"`
	EnemyRedraw  *bool `json:"enemyRedraw,omitempty"`
	Seed         int64 `json:"seed,omitempty"`
}

type RedrawData struct {
	Owner   string `json:"owner,omitempty"`
	Indices []int  `json:"indices"`
}

type SortData struct {
	Owner string `json:"owner,omitempty"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CardView is the presentation form of a card
type CardView struct {
	Label    string `json:"label"`
	Notation string `json:"notation"`
	Suit     string `json:"suit,omitempty"`
	Rank     int    `json:"rank,omitempty"`
	Joker    bool   `json:"joker,omitempty"`
	Red      bool   `json:"red,omitempty"`
}

// NewCardView formats a card for clients
func NewCardView(c deck.Card) CardView {
	if c.Joker {
		return CardView{Label: c.Label(), Notation: c.Notation(), Joker: true}
	}
	return CardView{
		Label:    c.Label(),
		Notation: c.Notation(),
		Suit:     c.Suit.Name(),
		Rank:     int(c.Rank),
		Red:      c.IsRed(),
	}
}

// cardViews formats cards, always returning a non-nil slice
func cardViews(cards []deck.Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = NewCardView(c)
	}
	return views
}

// HandView is one participant's hand as a client is allowed to see it
type HandView struct {
	Owner  string              `json:"owner"`
	Count  int                 `json:"count"`
	Hidden bool                `json:"hidden,omitempty"`
	Cards  []CardView          `json:"cards,omitempty"`
	Rank   *evaluator.HandRank `json:"rank,omitempty"`
}

type HandChangedData struct {
	Reason game.ChangeReason `json:"reason"`
	Hand   HandView          `json:"hand"`
}

type DeckShuffledData struct {
	Required  int `json:"required"`
	Remaining int `json:"remaining"`
}

type RedrawResultData struct {
	Owner    string `json:"owner"`
	Replaced int    `json:"replaced"`
}

// BattleData is a resolved battle with both hands revealed
type BattleData struct {
	Round  int         `json:"round"`
	Result game.Result `json:"result"`
	Player HandView    `json:"player"`
	Enemy  HandView    `json:"enemy"`
}

// TableState is a full snapshot of a table
type TableState struct {
	ID           string          `json:"id"`
	State        string          `json:"state"`
	Round        int             `json:"round"`
	HandSize     int             `json:"handSize"`
	IncludeJoker bool            `json:"includeJoker"`
	EnemyRedraw  bool            `json:"enemyRedraw"`
	DeckCount    int             `json:"deckCount"`
	Population   int             `json:"population"`
	Player       HandView        `json:"player"`
	Enemy        HandView        `json:"enemy"`
	Redrawn      map[string]bool `json:"redrawn"`
	Result       *game.Result    `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastActive   time.Time       `json:"lastActive"`
}

// TableInfo is the summary row returned when listing tables
type TableInfo struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	Round       int       `json:"round"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type TableClosedData struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
