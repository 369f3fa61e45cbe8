package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

// memJournal is an in-memory storage.Journal.
type memJournal struct {
	mu       sync.Mutex
	sessions []storage.Session
	swaps    []storage.SwapRecord
}

func (j *memJournal) StartSession(sess storage.Session) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	sess.ID = "j" + string(rune('0'+len(j.sessions)))
	j.sessions = append(j.sessions, sess)
	return sess.ID, nil
}

func (j *memJournal) RecordSwap(r storage.SwapRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.swaps = append(j.swaps, r)
	return nil
}

func cascadeLevel(t *testing.T) levels.Level {
	t.Helper()
	lvl, err := levels.NewLoader(levels.Builtin()).LoadByID("cascade")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	return lvl
}

func newTestServer(t *testing.T, journal storage.Journal) (*Server, *httptest.Server) {
	t.Helper()
	lvl := cascadeLevel(t)
	cfg := Config{
		Match3: config.DefaultMatch3Config(),
		Mode:   match3.ModeStrict,
		Level:  &lvl,
		Logger: log.New(io.Discard),
	}
	if journal != nil {
		cfg.Journal = journal
	}
	srv := NewServer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Response {
	t.Helper()
	//nolint:errcheck // Test deadline
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return resp
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
}

func swapRequest(a, b core.Coord) Request {
	pa, pb := pointOf(a), pointOf(b)
	return Request{Type: RequestSwap, A: &pa, B: &pb}
}

// localBoard builds the board the server builds for the cascade level.
func localBoard(t *testing.T, seed int64) *core.Board {
	t.Helper()
	lvl := cascadeLevel(t)
	rules := match3.RulesFor(match3.ModeStrict, config.DefaultMatch3Config().Rules)
	b, err := lvl.NewBoard(rules, seed)
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}
	return b
}

func TestInitialState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "session=alpha&seed=7")

	resp := read(t, conn)
	if resp.Type != ResponseState || resp.Session != "alpha" {
		t.Fatalf("got %+v, want state for alpha", resp)
	}
	if resp.Board == nil {
		t.Fatal("state has no board")
	}
	if want := cascadeLevel(t).Rows; !slices.Equal(resp.Board.Rows, want) {
		t.Errorf("rows = %v, want %v", resp.Board.Rows, want)
	}
	if resp.Board.Seed != 7 || resp.Board.Swaps != 0 || resp.Board.Palette != "RGBY" {
		t.Errorf("board = %+v", *resp.Board)
	}
}

func TestGeneratedSessionID(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := read(t, dial(t, ts, ""))
	if len(resp.Session) != 36 {
		t.Errorf("session = %q, want a UUID", resp.Session)
	}
}

func TestSwapBroadcastsEvents(t *testing.T) {
	_, ts := newTestServer(t, nil)
	a := dial(t, ts, "session=shared&seed=7")
	b := dial(t, ts, "session=shared")
	read(t, a)
	read(t, b)

	send(t, a, swapRequest(core.C(1, 0), core.C(1, 1)))

	want := localBoard(t, 7)
	events, err := want.TrySwap(core.C(1, 0), core.C(1, 1))
	if err != nil {
		t.Fatalf("local TrySwap failed: %v", err)
	}

	for name, conn := range map[string]*websocket.Conn{"sender": a, "watcher": b} {
		resp := read(t, conn)
		if resp.Type != ResponseEvents {
			t.Fatalf("%s: got %+v, want events", name, resp)
		}
		if len(resp.Events) != len(events) {
			t.Errorf("%s: %d events, want %d", name, len(resp.Events), len(events))
		}
		if resp.Events[0].Kind != string(core.KindSwapped) {
			t.Errorf("%s: first event %q, want swapped", name, resp.Events[0].Kind)
		}
		if resp.Fingerprint != want.Fingerprint() {
			t.Errorf("%s: fingerprint %s, want %s", name, resp.Fingerprint, want.Fingerprint())
		}
	}

	send(t, b, Request{Type: RequestState})
	state := read(t, b)
	if state.Board.Swaps != 1 || !slices.Equal(state.Board.Rows, want.Rows()) {
		t.Errorf("state after swap = %+v", *state.Board)
	}
}

func TestSwapErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "session=errs")
	read(t, conn)

	tests := []struct {
		name string
		msg  any
		code string
	}{
		{"not adjacent", swapRequest(core.C(0, 0), core.C(2, 0)), CodeNotAdjacent},
		{"out of bounds", swapRequest(core.C(0, 0), core.C(0, -1)), CodeOutOfBounds},
		{"no match", swapRequest(core.C(0, 0), core.C(1, 0)), CodeNoMatch},
		{"missing cell", Request{Type: RequestSwap, A: &Point{}}, CodeBadRequest},
		{"unknown type", Request{Type: "teleport"}, CodeUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msg)
			resp := read(t, conn)
			if resp.Type != ResponseError || resp.Code != tt.code {
				t.Errorf("got %s/%s, want error/%s", resp.Type, resp.Code, tt.code)
			}
		})
	}

	t.Run("bad json", func(t *testing.T) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
			t.Fatalf("WriteMessage failed: %v", err)
		}
		if resp := read(t, conn); resp.Code != CodeBadRequest {
			t.Errorf("code = %s, want %s", resp.Code, CodeBadRequest)
		}
	})

	send(t, conn, Request{Type: RequestState})
	if resp := read(t, conn); resp.Board.Swaps != 0 {
		t.Errorf("rejected swaps changed the board: %+v", *resp.Board)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{core.ErrOutOfBounds, CodeOutOfBounds},
		{core.ErrNotAdjacent, CodeNotAdjacent},
		{core.ErrEmptyCell, CodeEmptyCell},
		{core.ErrNoMatch, CodeNoMatch},
		{core.ErrResolutionDidNotTerminate, CodeCascadeLimit},
		{core.ErrInvalidConfig, CodeBuildFailed},
		{io.EOF, CodeInternal},
	}
	for _, tt := range tests {
		if got := errorCode(fmt.Errorf("swap (1,1): %w", tt.err)); got != tt.code {
			t.Errorf("errorCode(%v) = %s, want %s", tt.err, got, tt.code)
		}
	}
}

func TestHint(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "session=hint")
	read(t, conn)

	send(t, conn, Request{Type: RequestHint})
	resp := read(t, conn)
	if resp.Type != ResponseHint || resp.A == nil || resp.B == nil {
		t.Fatalf("got %+v, want hint", resp)
	}
	if resp.A.coord() != core.C(1, 0) || resp.B.coord() != core.C(1, 1) {
		t.Errorf("hint = %v-%v, want (1,0)-(1,1)", *resp.A, *resp.B)
	}
}

func TestNewBoardBroadcastsState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	a := dial(t, ts, "session=fresh&seed=7")
	b := dial(t, ts, "session=fresh")
	read(t, a)
	read(t, b)

	send(t, a, swapRequest(core.C(1, 0), core.C(1, 1)))
	read(t, a)
	read(t, b)

	send(t, b, Request{Type: RequestNew, Seed: 3})
	for _, conn := range []*websocket.Conn{a, b} {
		resp := read(t, conn)
		if resp.Type != ResponseState || resp.Board.Seed != 3 || resp.Board.Swaps != 0 {
			t.Errorf("got %+v, want fresh state", resp)
		}
	}
}

func TestJournal(t *testing.T) {
	j := &memJournal{}
	_, ts := newTestServer(t, j)
	conn := dial(t, ts, "session=logged&seed=7")
	read(t, conn)

	send(t, conn, swapRequest(core.C(0, 0), core.C(1, 0))) // rejected
	read(t, conn)
	send(t, conn, swapRequest(core.C(1, 0), core.C(1, 1)))
	resp := read(t, conn)

	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.sessions) != 1 {
		t.Fatalf("%d sessions journaled, want 1", len(j.sessions))
	}
	sess := j.sessions[0]
	if sess.Source != "ws" || sess.Mode != "match3_strict" || sess.LevelID != "cascade" || sess.Seed != 7 {
		t.Errorf("session = %+v", sess)
	}
	if len(j.swaps) != 1 {
		t.Fatalf("%d swaps journaled, want 1", len(j.swaps))
	}
	if j.swaps[0].Seq != 1 || j.swaps[0].Fingerprint != resp.Fingerprint {
		t.Errorf("swap = %+v", j.swaps[0])
	}

	p, err := match3.ParamsFromSession(sess, levels.NewLoader(levels.Builtin()))
	if err != nil {
		t.Fatalf("ParamsFromSession failed: %v", err)
	}
	if _, _, err := match3.Replay(p, j.swaps); err != nil {
		t.Errorf("journal does not replay: %v", err)
	}
}

func TestSessionDroppedWhenEmpty(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dial(t, ts, "session=gone")
	read(t, conn)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		srv.mu.Lock()
		_, ok := srv.sessions["gone"]
		srv.mu.Unlock()
		if !ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("session still registered after its last client left")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRejoinWhileLastClientLeaves(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	first, err := srv.session("x", 7)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	// A second connection picks up the session before the first one leaves.
	joining, err := srv.session("x", 0)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if joining != first {
		t.Fatal("a live session ID should resolve to the same board")
	}

	srv.release(first)
	srv.mu.Lock()
	kept := srv.sessions["x"] == first
	srv.mu.Unlock()
	if !kept {
		t.Fatal("session dropped while a joining client still holds it")
	}

	later, err := srv.session("x", 0)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if later != first {
		t.Error("a later client should share the board of the joining one")
	}

	srv.release(joining)
	srv.release(later)
	srv.mu.Lock()
	_, ok := srv.sessions["x"]
	srv.mu.Unlock()
	if ok {
		t.Error("session should be dropped once every client has left")
	}
}

func TestInvalidSeed(t *testing.T) {
	_, ts := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?seed=abc"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("response = %v, want 400", resp)
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestEncodeEvents(t *testing.T) {
	events := []core.Event{
		core.TileSwapped{A: core.C(0, 0), B: core.C(1, 0)},
		core.TilesRemoved{Coords: []core.Coord{core.C(0, 0), core.C(0, 1)}},
		core.TileFell{From: core.C(0, 3), To: core.C(0, 0)},
		core.TileSpawned{At: core.C(0, 3), Type: core.TileRed},
	}

	data, err := json.Marshal(encodeEvents(events))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `[{"kind":"swapped","a":{"x":0,"y":0},"b":{"x":1,"y":0}},` +
		`{"kind":"removed","coords":[{"x":0,"y":0},{"x":0,"y":1}]},` +
		`{"kind":"fell","from":{"x":0,"y":3},"to":{"x":0,"y":0}},` +
		`{"kind":"spawned","at":{"x":0,"y":3},"tile":"R"}]`
	if string(data) != want {
		t.Errorf("encoded events:\n got %s\nwant %s", data, want)
	}
}
