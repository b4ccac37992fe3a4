package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "royal flush",
			input: "AsKsQsJsTs",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Spades, Rank: King},
				{Suit: Spades, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Ten},
			},
		},
		{
			name:  "separators ignored",
			input: "5h, 4d 3c",
			expected: []Card{
				{Suit: Hearts, Rank: Five},
				{Suit: Diamonds, Rank: Four},
				{Suit: Clubs, Rank: Three},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqDjc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{
			name:     "joker",
			input:    "JkJcjK",
			expected: []Card{Joker, {Suit: Clubs, Rank: Jack}, Joker},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AxKs",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := ParseCards(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cards)
		})
	}
}

func TestCardFormatting(t *testing.T) {
	tests := []struct {
		card     Card
		str      string
		label    string
		notation string
	}{
		{NewCard(Spades, Ace), "A♠", "Spade A", "As"},
		{NewCard(Hearts, Ten), "T♥", "Heart 10", "Th"},
		{NewCard(Diamonds, Two), "2♦", "Diamond 2", "2d"},
		{NewCard(Clubs, Queen), "Q♣", "Club Q", "Qc"},
		{Joker, "Joker", "Joker", "Jk"},
	}

	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.card.String())
			assert.Equal(t, tt.label, tt.card.Label())
			assert.Equal(t, tt.notation, tt.card.Notation())

			parsed, err := ParseCard(tt.notation)
			require.NoError(t, err)
			assert.Equal(t, tt.card, parsed)
		})
	}
}

func TestCardColour(t *testing.T) {
	assert.True(t, NewCard(Hearts, Five).IsRed())
	assert.True(t, NewCard(Diamonds, Five).IsRed())
	assert.False(t, NewCard(Spades, Five).IsRed())
	assert.False(t, NewCard(Clubs, Five).IsRed())
	assert.False(t, Joker.IsRed())
}

func TestRankValid(t *testing.T) {
	assert.False(t, Rank(0).Valid())
	assert.False(t, LowAce.Valid())
	assert.True(t, Two.Valid())
	assert.True(t, Ace.Valid())
	assert.False(t, Rank(15).Valid())
	assert.Equal(t, "?", LowAce.String())
}

func TestLabels(t *testing.T) {
	cards := MustParseCards("KhJk")
	assert.Equal(t, []string{"Heart K", "Joker"}, Labels(cards))
}
