package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

func testDefs() *state.Defs {
	defs := state.NewDefs(config.Default())
	defs.Arena = types.ArenaDef{Title: "Test Arena"}
	defs.Quests = []types.QuestDef{{
		ID: "rats", Name: "Cellar Rats", Monster: "Giant Rat", Difficulty: 1,
		Kind: types.QuestObjectives,
		Objectives: []types.Objective{
			{Description: "Slay rats", Type: types.ObjectiveHunt, Target: 2, ProgressWeight: 100,
				PerAction: types.Reward{Gold: 3, Exp: 5}},
		},
		FinalReward: types.Reward{Gold: 20, Exp: 30},
	}}
	return defs
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.Handle))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		t.Cleanup(func() { resp.Body.Close() })
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitClients(t *testing.T, srv *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return srv.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHandle_HelloCarriesSnapshot(t *testing.T) {
	srv := NewServer(engine.New(testDefs(), 42), nil)
	conn := dial(t, srv)

	msg := read(t, conn)
	assert.Equal(t, "hello", msg.Type)
	assert.NotEmpty(t, msg.Client)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, 1, msg.Snapshot.Ledger.Level)
	waitClients(t, srv, 1)
}

func TestHandle_CommandsActivateEngine(t *testing.T) {
	eng := engine.New(testDefs(), 42)
	srv := NewServer(eng, nil)
	conn := dial(t, srv)
	read(t, conn)

	for _, cmd := range []string{"unlock", "visit"} {
		require.NoError(t, conn.WriteJSON(Command{Type: cmd}))
		assert.Equal(t, "snapshot", read(t, conn).Type)
	}

	select {
	case <-eng.Ready():
	case <-time.After(time.Second):
		t.Fatal("engine should be ready after unlock and visit")
	}
}

func TestHandle_RejectsBadCommands(t *testing.T) {
	srv := NewServer(engine.New(testDefs(), 42), nil)
	conn := dial(t, srv)
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "malformed command", msg.Error)

	require.NoError(t, conn.WriteJSON(Command{Type: "dance"}))
	msg = read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "dance")
}

func TestStep_BroadcastsEffectiveTicks(t *testing.T) {
	eng := engine.New(testDefs(), 42)
	eng.Unlock()
	eng.MarkVisited()
	srv := NewServer(eng, nil)

	a := dial(t, srv)
	b := dial(t, srv)
	read(t, a)
	read(t, b)
	waitClients(t, srv, 2)

	res := srv.Step(1000)
	require.True(t, res.Ticked)
	assert.False(t, srv.Step(1010).Ticked, "throttled tick must not broadcast")

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		assert.Equal(t, "tick", msg.Type)
		assert.Equal(t, uint64(1), msg.Tick)
		require.NotNil(t, msg.Snapshot)
		require.NotNil(t, msg.Snapshot.Quest)
		assert.Equal(t, "Cellar Rats", msg.Snapshot.Quest.Name)
		assert.NotEmpty(t, msg.Events)
	}
}

func TestHandle_DisconnectUnregisters(t *testing.T) {
	srv := NewServer(engine.New(testDefs(), 42), nil)
	conn := dial(t, srv)
	read(t, conn)
	waitClients(t, srv, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	waitClients(t, srv, 0)
}
