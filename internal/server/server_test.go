package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerbattle/internal/config"
	"github.com/lox/pokerbattle/internal/hand"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T, mutate func(c *config.Config)) (*Server, *httptest.Server, *quartz.Mock) {
	t.Helper()

	cfg := config.Default()
	cfg.Game.Seed = 42
	if mutate != nil {
		mutate(cfg)
	}

	clock := quartz.NewMock(t)
	s, err := NewServer(cfg, WithLogger(testLogger()), WithClock(clock))
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.CloseAll("test finished")
		ts.Close()
	})
	return s, ts, clock
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createTable(t *testing.T, ts *httptest.Server, req CreateTableRequest) TableState {
	t.Helper()
	var state TableState
	status := doJSON(t, http.MethodPost, ts.URL+"/api/tables", req, &state)
	require.Equal(t, http.StatusCreated, status)
	return state
}

func TestServerHealth(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	var body map[string]any
	status := doJSON(t, http.MethodGet, ts.URL+"/health", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxTables = 0
	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestTableLifecycle(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	state := createTable(t, ts, CreateTableRequest{})
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "idle", state.State)
	assert.Equal(t, 5, state.HandSize)
	assert.Equal(t, 52, state.DeckCount)

	var list TableListData
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/tables", nil, &list))
	require.Len(t, list.Tables, 1)
	assert.Equal(t, state.ID, list.Tables[0].ID)

	var got TableState
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/tables/"+state.ID, nil, &got))
	assert.Equal(t, state.ID, got.ID)

	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, ts.URL+"/api/tables/"+state.ID, nil, nil))

	var errBody ErrorData
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, ts.URL+"/api/tables/"+state.ID, nil, &errBody))
	assert.Equal(t, "table_not_found", errBody.Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, ts.URL+"/api/tables/"+state.ID+"/deal", nil, &errBody))
}

func TestCreateTableOverrides(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	size, joker := 7, true
	state := createTable(t, ts, CreateTableRequest{HandSize: &size, IncludeJoker: &joker})
	assert.Equal(t, 7, state.HandSize)
	assert.True(t, state.IncludeJoker)
	assert.Equal(t, 53, state.Population)

	bad := 0
	var errBody ErrorData
	status := doJSON(t, http.MethodPost, ts.URL+"/api/tables", CreateTableRequest{HandSize: &bad}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_hand_size", errBody.Code)
}

func TestCreateTableSeedIsReproducible(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	deal := func() []CardView {
		state := createTable(t, ts, CreateTableRequest{Seed: 1234})
		var dealt TableState
		require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/api/tables/"+state.ID+"/deal", nil, &dealt))
		return dealt.Player.Cards
	}
	assert.Equal(t, deal(), deal())
}

func TestTableLimit(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *config.Config) { c.Server.MaxTables = 2 })

	createTable(t, ts, CreateTableRequest{})
	createTable(t, ts, CreateTableRequest{})

	var errBody ErrorData
	status := doJSON(t, http.MethodPost, ts.URL+"/api/tables", CreateTableRequest{}, &errBody)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "too_many_tables", errBody.Code)
}

func TestRoundOverREST(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	table := createTable(t, ts, CreateTableRequest{})
	base := ts.URL + "/api/tables/" + table.ID

	var errBody ErrorData
	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, base+"/battle", nil, &errBody))
	assert.Equal(t, "invalid_transition", errBody.Code)

	var dealt TableState
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/deal", nil, &dealt))
	assert.Equal(t, "dealt", dealt.State)
	assert.Equal(t, 1, dealt.Round)
	assert.Len(t, dealt.Player.Cards, 5)
	assert.NotNil(t, dealt.Player.Rank)
	assert.True(t, dealt.Enemy.Hidden)
	assert.Empty(t, dealt.Enemy.Cards)
	assert.Equal(t, 5, dealt.Enemy.Count)
	assert.Equal(t, dealt.Population, dealt.DeckCount+dealt.Player.Count+dealt.Enemy.Count)

	var redraw struct {
		Replaced int        `json:"replaced"`
		Table    TableState `json:"table"`
	}
	status := doJSON(t, http.MethodPost, base+"/redraw", RedrawData{Indices: []int{0, 1, 1, 9}}, &redraw)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, redraw.Replaced)
	assert.True(t, redraw.Table.Redrawn[hand.Player.String()])
	assert.Equal(t, dealt.Player.Cards[2:], redraw.Table.Player.Cards[2:])

	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, base+"/redraw", RedrawData{Indices: []int{0}}, &errBody))
	assert.Equal(t, "redraw_used", errBody.Code)

	assert.Equal(t, http.StatusForbidden, doJSON(t, http.MethodPost, base+"/redraw", RedrawData{Owner: "enemy", Indices: []int{0}}, &errBody))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/redraw", RedrawData{Owner: "dealer"}, &errBody))

	var battle BattleData
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/battle", nil, &battle))
	assert.Equal(t, 1, battle.Round)
	assert.Len(t, battle.Player.Cards, 5)
	assert.Len(t, battle.Enemy.Cards, 5)
	assert.False(t, battle.Enemy.Hidden)
	require.NotNil(t, battle.Enemy.Rank)
	assert.Equal(t, battle.Result.EnemyRank, *battle.Enemy.Rank)
	assert.Equal(t, battle.Result.PlayerRank, *battle.Player.Rank)

	var resolved TableState
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base, nil, &resolved))
	assert.Equal(t, "resolved", resolved.State)
	assert.True(t, resolved.Redrawn[hand.Enemy.String()], "table redraws for the enemy before battle")
	assert.False(t, resolved.Enemy.Hidden)
	require.NotNil(t, resolved.Result)
	assert.Equal(t, battle.Result.Outcome, resolved.Result.Outcome)
	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, base+"/deal", nil, &errBody))
	assert.Equal(t, "invalid_transition", errBody.Code)

	var ended TableState
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/end", nil, &ended))
	assert.Equal(t, "idle", ended.State)
	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, base+"/end", nil, &errBody))
}

func TestManualEnemyRedraw(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *config.Config) { c.Game.EnemyRedraw = false })
	table := createTable(t, ts, CreateTableRequest{})
	base := ts.URL + "/api/tables/" + table.ID

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/deal", nil, &TableState{}))

	var redraw struct {
		Replaced int `json:"replaced"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/redraw", RedrawData{Owner: "enemy", Indices: []int{4}}, &redraw))
	assert.Equal(t, 1, redraw.Replaced)

	var state TableState
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/sort", SortData{Owner: "enemy"}, &state))
	assert.True(t, state.Enemy.Hidden)
}

func dialTable(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/tables/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil reads messages until one of the given type arrives
func readUntil(t *testing.T, conn *websocket.Conn, messageType MessageType) Message {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Type == messageType {
			return msg
		}
	}
}

func TestWebSocketEvents(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	table := createTable(t, ts, CreateTableRequest{})
	base := ts.URL + "/api/tables/" + table.ID

	conn := dialTable(t, ts, table.ID)

	snapshot := readMessage(t, conn)
	require.Equal(t, MessageTypeTableState, snapshot.Type)
	var state TableState
	require.NoError(t, json.Unmarshal(snapshot.Data, &state))
	assert.Equal(t, table.ID, state.ID)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/deal", nil, &TableState{}))

	seen := map[string]HandChangedData{}
	for len(seen) < 2 {
		msg := readUntil(t, conn, MessageTypeHandChanged)
		var data HandChangedData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		seen[data.Hand.Owner] = data
	}
	assert.Len(t, seen["player"].Hand.Cards, 5)
	assert.Equal(t, "deal", string(seen["player"].Reason))
	assert.True(t, seen["enemy"].Hand.Hidden)
	assert.Empty(t, seen["enemy"].Hand.Cards)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/battle", nil, &BattleData{}))

	msg := readUntil(t, conn, MessageTypeBattleResolved)
	var battle BattleData
	require.NoError(t, json.Unmarshal(msg.Data, &battle))
	assert.Len(t, battle.Enemy.Cards, 5)
	assert.Len(t, battle.Player.Cards, 5)
}

func TestWebSocketCommands(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	table := createTable(t, ts, CreateTableRequest{})

	conn := dialTable(t, ts, table.ID)
	readUntil(t, conn, MessageTypeTableState)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeDeal}))
	readUntil(t, conn, MessageTypeHandChanged)

	payload, err := json.Marshal(RedrawData{Indices: []int{0}})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeRedraw, Data: payload}))

	msg := readUntil(t, conn, MessageTypeRedrawResult)
	var result RedrawResultData
	require.NoError(t, json.Unmarshal(msg.Data, &result))
	assert.Equal(t, "player", result.Owner)
	assert.Equal(t, 1, result.Replaced)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeRedraw, Data: payload}))
	msg = readUntil(t, conn, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "redraw_used", errData.Code)

	require.NoError(t, conn.WriteJSON(Message{Type: "shuffle"}))
	msg = readUntil(t, conn, MessageTypeError)
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "unknown_message_type", errData.Code)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeState}))
	msg = readUntil(t, conn, MessageTypeTableState)
	var state TableState
	require.NoError(t, json.Unmarshal(msg.Data, &state))
	assert.Equal(t, "dealt", state.State)
	assert.True(t, state.Redrawn["player"])
}

func TestWebSocketUnknownTable(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/tables/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTableClosesConnections(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	table := createTable(t, ts, CreateTableRequest{})

	conn := dialTable(t, ts, table.ID)
	readUntil(t, conn, MessageTypeTableState)

	require.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, ts.URL+"/api/tables/"+table.ID, nil, nil))

	msg := readUntil(t, conn, MessageTypeTableClosed)
	var closed TableClosedData
	require.NoError(t, json.Unmarshal(msg.Data, &closed))
	assert.Equal(t, table.ID, closed.ID)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected normal close, got %v", err)
}

func TestReaperRemovesIdleTables(t *testing.T) {
	s, _, clock := newTestServer(t, func(c *config.Config) {
		c.Server.IdleTimeout = "2m"
		c.Server.ReapInterval = "1m"
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	idle, err := s.CreateTable(CreateTableRequest{})
	require.NoError(t, err)

	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	s.StartReaper(reaperCtx)

	clock.Advance(time.Minute).MustWait(ctx)
	busy, err := s.CreateTable(CreateTableRequest{})
	require.NoError(t, err)
	_, ok := s.Table(idle.ID())
	assert.True(t, ok, "table idle for one minute is kept")

	clock.Advance(time.Minute).MustWait(ctx)
	_, ok = s.Table(idle.ID())
	assert.False(t, ok, "table idle for two minutes is removed")
	_, ok = s.Table(busy.ID())
	assert.True(t, ok)

	_, err = busy.Deal()
	require.NoError(t, err)
	clock.Advance(time.Minute).MustWait(ctx)
	_, ok = s.Table(busy.ID())
	assert.True(t, ok, "activity resets the idle timer")

	clock.Advance(time.Minute).MustWait(ctx)
	_, ok = s.Table(busy.ID())
	assert.False(t, ok)
	assert.Empty(t, s.Tables())
}
