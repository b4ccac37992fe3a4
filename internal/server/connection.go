package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerbattle/internal/hand"
)

// Connection represents a WebSocket client watching one table
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	table     *Table
	clock     quartz.Clock
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, table *Table, clock quartz.Clock, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		table:  table,
		clock:  clock,
		logger: logger.WithPrefix("conn").With("table", table.ID()),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close tears the connection down immediately
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.CloseAfterFlush()
		err = c.conn.Close()
	})
	return err
}

// CloseAfterFlush stops accepting messages; the write pump sends what is
// queued, then a close frame.
func (c *Connection) CloseAfterFlush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeSendLocked()
}

func (c *Connection) closeSendLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// SendMessage queues a message for the client without blocking. A client
// that falls too far behind is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		c.closeSendLocked()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.table.Detach(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client. Game changes
// reach every watcher through the table's event broadcast, so only queries
// and failures are answered directly.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeState:
		c.reply(MessageTypeTableState, c.table.State())

	case MessageTypeDeal:
		if _, err := c.table.Deal(); err != nil {
			c.sendFailure(err)
		}

	case MessageTypeRedraw:
		var data RedrawData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse redraw data")
			return
		}
		owner, ok := parseOwner(data.Owner)
		if !ok {
			c.sendError("invalid_owner", "Unknown owner: "+data.Owner)
			return
		}
		if _, err := c.table.Redraw(owner, data.Indices); err != nil {
			c.sendFailure(err)
		}

	case MessageTypeSort:
		var data SortData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("invalid_message", "Failed to parse sort data")
				return
			}
		}
		owner, ok := parseOwner(data.Owner)
		if !ok {
			c.sendError("invalid_owner", "Unknown owner: "+data.Owner)
			return
		}
		if err := c.table.Sort(owner); err != nil {
			c.sendFailure(err)
		}

	case MessageTypeBattle:
		if _, err := c.table.Battle(); err != nil {
			c.sendFailure(err)
		}

	case MessageTypeEnd:
		state, err := c.table.End()
		if err != nil {
			c.sendFailure(err)
			return
		}
		c.reply(MessageTypeTableState, state)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) reply(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg) // Ignore send errors
}

func (c *Connection) sendFailure(err error) {
	_, code := classifyError(err)
	c.sendError(code, err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.reply(MessageTypeError, ErrorData{Code: code, Message: message})
}

// parseOwner reads an owner name, defaulting to the player
func parseOwner(name string) (hand.Owner, bool) {
	if name == "" {
		return hand.Player, true
	}
	return hand.ParseOwner(name)
}
