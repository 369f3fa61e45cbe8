// Package ws serves match-3 boards over websockets.
// Clients attach to a board session, send swaps and receive the resulting
// event batches; every client of a session sees the same board.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Config configures a Server.
type Config struct {
	Match3  config.Match3Config
	Mode    match3.Mode
	Level   *levels.Level   // Preset layout for new sessions; nil generates boards
	Journal storage.Journal // Optional
	Logger  *log.Logger     // Nil uses a stderr logger
}

// session is one shared board. mu serializes every access to the board.
type session struct {
	id string

	// clients counts connections holding the session, guarded by Server.mu.
	clients int

	mu        sync.Mutex
	params    match3.Params
	board     *core.Board
	journalID string
	swaps     int
}

// Server is an http.Handler serving /ws and /healthz.
type Server struct {
	cfg    Config
	hub    *Hub
	logger *log.Logger
	mux    *http.ServeMux

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer creates a server. Call Run to start its hub.
func NewServer(cfg Config) *Server {
	if cfg.Mode == "" {
		cfg.Mode = match3.ModeClassic
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "match3-ws",
		})
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		sessions: make(map[string]*session),
	}
	s.hub = NewHub(logger, s.handleMessage, func(c *Client) { s.release(c.session) })

	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // Health check body is informational
		w.Write([]byte("ok"))
	})

	return s
}

// Run runs the client hub until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting websocket server", "address", addr, "mode", s.cfg.Mode, "journal", s.cfg.Journal != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stopHub()
	return srv.Shutdown(shutdownCtx)
}

// handleWS upgrades a request and attaches it to a session.
// ?session=<id> joins or creates a named session; without it a new one is made.
// ?seed=<n> seeds a newly created board.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		id = uuid.NewString()
	}
	var seed int64
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		seed = n
	}

	sess, err := s.session(id, seed)
	if err != nil {
		s.logger.Error("cannot build board", "session", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.release(sess)
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:     s.hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		session: sess,
	}

	// The initial state is queued before any later event batch.
	sess.mu.Lock()
	if !s.hub.Register(client) {
		sess.mu.Unlock()
		s.release(sess)
		//nolint:errcheck // Server is stopping
		conn.Close()
		return
	}
	s.hub.Send(client, s.stateResponse(sess))
	sess.mu.Unlock()
	s.logger.Info("client joined", "session", id, "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump()
}

// session returns the session with the given ID, creating it if needed,
// and counts the caller as one of its clients. Every successful call must
// be paired with release.
func (s *Server) session(id string, seed int64) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{id: id}
		if err := s.startBoard(sess, seed); err != nil {
			return nil, err
		}
		s.sessions[id] = sess
	}
	sess.clients++
	return sess, nil
}

// release drops one client of sess and forgets the session once none is
// left. A client that joined between the last leave and this call keeps
// the session alive.
func (s *Server) release(sess *session) {
	s.mu.Lock()
	sess.clients--
	closed := sess.clients == 0 && s.sessions[sess.id] == sess
	if closed {
		delete(s.sessions, sess.id)
	}
	s.mu.Unlock()

	if closed {
		s.logger.Info("session closed", "session", sess.id)
	}
}

// startBoard builds a fresh board for sess and opens a journal entry.
// The caller must own sess.
func (s *Server) startBoard(sess *session, seed int64) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	params := match3.ParamsFromConfig(s.cfg.Match3, s.cfg.Mode, seed)
	params.Level = s.cfg.Level

	board, err := params.Build()
	if err != nil {
		return err
	}

	sess.params = params
	sess.board = board
	sess.swaps = 0
	sess.journalID = ""

	if s.cfg.Journal != nil {
		jid, jerr := s.cfg.Journal.StartSession(params.Session(s.cfg.Mode.ID(), "ws"))
		if jerr != nil {
			s.logger.Warn("journal unavailable", "session", sess.id, "error", jerr)
		} else {
			sess.journalID = jid
		}
	}
	return nil
}

// handleMessage processes one client frame.
func (s *Server) handleMessage(c *Client, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.hub.Send(c, s.errorResponse(c.session, CodeBadRequest, "invalid JSON: "+err.Error()))
		return
	}

	sess := c.session
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch req.Type {
	case RequestState:
		s.hub.Send(c, s.stateResponse(sess))

	case RequestSwap:
		if req.A == nil || req.B == nil {
			s.hub.Send(c, s.errorResponse(sess, CodeBadRequest, "swap needs a and b"))
			return
		}
		s.swap(c, sess, req.A.coord(), req.B.coord())

	case RequestNew:
		if err := s.startBoard(sess, req.Seed); err != nil {
			s.hub.Send(c, s.errorResponse(sess, errorCode(err), err.Error()))
			return
		}
		s.logger.Info("new board", "session", sess.id, "seed", sess.params.Seed)
		s.hub.Broadcast(sess, s.stateResponse(sess))

	case RequestHint:
		m, ok := sess.board.FindMove()
		if !ok {
			s.hub.Send(c, s.errorResponse(sess, CodeNoMove, "no swap forms a match"))
			return
		}
		a, b := pointOf(m.A), pointOf(m.B)
		s.hub.Send(c, s.encode(Response{Type: ResponseHint, Session: sess.id, A: &a, B: &b}))

	default:
		s.hub.Send(c, s.errorResponse(sess, CodeUnknownType, "unknown message type "+strconv.Quote(req.Type)))
	}
}

// swap applies a swap and broadcasts its events. The caller holds sess.mu.
func (s *Server) swap(c *Client, sess *session, a, b core.Coord) {
	events, err := sess.board.TrySwap(a, b)
	if !match3.Accepted(err) {
		if errors.Is(err, core.ErrNoMatch) || errors.Is(err, core.ErrEmptyCell) {
			s.logger.Debug("swap rejected", "session", sess.id, "a", a, "b", b)
		}
		s.hub.Send(c, s.errorResponse(sess, errorCode(err), err.Error()))
		return
	}

	sess.swaps++
	resp := Response{
		Type:        ResponseEvents,
		Session:     sess.id,
		Events:      encodeEvents(events),
		Fingerprint: sess.board.Fingerprint(),
	}
	if err != nil {
		s.logger.Warn("cascade hit the pass limit", "session", sess.id, "error", err)
		resp.Code = CodeCascadeLimit
		resp.Message = err.Error()
	}

	if s.cfg.Journal != nil && sess.journalID != "" {
		rec := match3.SwapRecord(sess.journalID, sess.swaps, a, b, events, sess.board, err)
		if jerr := s.cfg.Journal.RecordSwap(rec); jerr != nil {
			s.logger.Warn("journal write failed", "session", sess.id, "error", jerr)
		}
	}

	s.hub.Broadcast(sess, s.encode(resp))
}

// stateResponse encodes the current board. The caller owns sess.
func (s *Server) stateResponse(sess *session) []byte {
	return s.encode(Response{
		Type:    ResponseState,
		Session: sess.id,
		Board:   boardState(sess.board, sess.params.Seed, sess.swaps),
	})
}

func (s *Server) errorResponse(sess *session, code, msg string) []byte {
	return s.encode(Response{Type: ResponseError, Session: sess.id, Code: code, Message: msg})
}

func (s *Server) encode(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("cannot encode response", "type", resp.Type, "error", err)
		data, _ = json.Marshal(Response{Type: ResponseError, Session: resp.Session, Code: CodeInternal})
	}
	return data
}
