package ws

import (
	"errors"

	"github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/games/match3/core"
)

// Request types sent by clients.
const (
	RequestSwap  = "swap"
	RequestState = "state"
	RequestNew   = "new"
	RequestHint  = "hint"
)

// Response types sent by the server.
const (
	ResponseState  = "state"
	ResponseEvents = "events"
	ResponseHint   = "hint"
	ResponseError  = "error"
)

// Error codes carried by error responses.
const (
	CodeBadRequest   = "bad_request"
	CodeUnknownType  = "unknown_type"
	CodeOutOfBounds  = "out_of_bounds"
	CodeNotAdjacent  = "not_adjacent"
	CodeEmptyCell    = "empty_cell"
	CodeNoMatch      = "no_match"
	CodeNoMove       = "no_move"
	CodeBuildFailed  = "build_failed"
	CodeCascadeLimit = "cascade_limit"
	CodeInternal     = "internal"
)

// Point is a board coordinate on the wire. Y = 0 is the bottom row.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func pointOf(c core.Coord) Point {
	return Point{X: c.X, Y: c.Y}
}

func (p Point) coord() core.Coord {
	return core.C(p.X, p.Y)
}

// Request is a client message.
type Request struct {
	Type string `json:"type"`
	A    *Point `json:"a,omitempty"`
	B    *Point `json:"b,omitempty"`
	Seed int64  `json:"seed,omitempty"`
}

// BoardState is a full board snapshot.
type BoardState struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Palette     string   `json:"palette"`
	Rows        []string `json:"rows"` // Top row first
	Fingerprint string   `json:"fingerprint"`
	Seed        int64    `json:"seed"`
	Swaps       int      `json:"swaps"`
	GameOver    bool     `json:"game_over"`
}

// Event is one board event on the wire. Fields are set according to Kind.
type Event struct {
	Kind   string  `json:"kind"`
	A      *Point  `json:"a,omitempty"`
	B      *Point  `json:"b,omitempty"`
	Coords []Point `json:"coords,omitempty"`
	From   *Point  `json:"from,omitempty"`
	To     *Point  `json:"to,omitempty"`
	At     *Point  `json:"at,omitempty"`
	Tile   string  `json:"tile,omitempty"`
}

// Response is a server message.
type Response struct {
	Type        string      `json:"type"`
	Session     string      `json:"session"`
	Board       *BoardState `json:"board,omitempty"`
	Events      []Event     `json:"events,omitempty"`
	A           *Point      `json:"a,omitempty"`
	B           *Point      `json:"b,omitempty"`
	Fingerprint string      `json:"fingerprint,omitempty"`
	Code        string      `json:"code,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// encodeEvents converts engine events to their wire form.
func encodeEvents(events []core.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		we := Event{Kind: string(e.Kind())}
		switch e := e.(type) {
		case core.TileSwapped:
			a, b := pointOf(e.A), pointOf(e.B)
			we.A, we.B = &a, &b
		case core.TilesRemoved:
			we.Coords = make([]Point, len(e.Coords))
			for i, c := range e.Coords {
				we.Coords[i] = pointOf(c)
			}
		case core.TileFell:
			from, to := pointOf(e.From), pointOf(e.To)
			we.From, we.To = &from, &to
		case core.TileSpawned:
			at := pointOf(e.At)
			we.At = &at
			we.Tile = string(e.Type.Char())
		}
		out = append(out, we)
	}
	return out
}

// boardState snapshots a board.
func boardState(b *core.Board, seed int64, swaps int) *BoardState {
	return &BoardState{
		Width:       b.Width(),
		Height:      b.Height(),
		Palette:     b.Palette().String(),
		Rows:        b.Rows(),
		Fingerprint: b.Fingerprint(),
		Seed:        seed,
		Swaps:       swaps,
		GameOver:    match3.Finished(b),
	}
}

// errorCode maps engine errors to wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrOutOfBounds):
		return CodeOutOfBounds
	case errors.Is(err, core.ErrNotAdjacent):
		return CodeNotAdjacent
	case errors.Is(err, core.ErrEmptyCell):
		return CodeEmptyCell
	case errors.Is(err, core.ErrNoMatch):
		return CodeNoMatch
	case errors.Is(err, core.ErrResolutionDidNotTerminate):
		return CodeCascadeLimit
	case errors.Is(err, core.ErrGenerationImpossible), errors.Is(err, core.ErrInvalidConfig):
		return CodeBuildFailed
	default:
		return CodeInternal
	}
}
