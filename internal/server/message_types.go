package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeDeal   MessageType = "deal"
	MessageTypeRedraw MessageType = "redraw"
	MessageTypeSort   MessageType = "sort"
	MessageTypeBattle MessageType = "battle"
	MessageTypeEnd    MessageType = "end"
	MessageTypeState  MessageType = "state"

	// Server to client messages
	MessageTypeTableState     MessageType = "table_state"
	MessageTypeHandChanged    MessageType = "hand_changed"
	MessageTypeDeckShuffled   MessageType = "deck_shuffled"
	MessageTypeBattleResolved MessageType = "battle_resolved"
	MessageTypeRedrawResult   MessageType = "redraw_result"
	MessageTypeTableClosed    MessageType = "table_closed"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
