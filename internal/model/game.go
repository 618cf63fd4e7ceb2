package model

import (
	"sync"
	"time"

	"github.com/benbeisheim/chess-server/internal/ws"
	"github.com/rs/zerolog/log"
)

// The connections for a specific game
type GameConnections struct {
	outboxes map[string]*ws.Outbox // connection id -> outbound queue
	mu       sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		outboxes: make(map[string]*ws.Outbox),
	}
}

// Game is one match: the rules state, its two seats and everyone watching.
// mu guards state, players and result. Broadcasts are enqueued while mu is
// held so every connection sees commits in order; outbox sends never block.
// Lock order is mu, then connections.mu.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       *GameState
	players     Players
	result      *Result
	connections *GameConnections
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// GameView is what clients receive for a game lookup.
type GameView struct {
	ID      string        `json:"id"`
	Board   BoardSnapshot `json:"board"`
	Players Players       `json:"players"`
	Result  *Result       `json:"result"`
}

func NewGame(id string) *Game {
	return NewGameFromState(id, NewGameState())
}

// NewGameFromState wraps an existing state, e.g. one restored from a snapshot.
func NewGameFromState(id string, state *GameState) *Game {
	return &Game{
		ID:          id,
		state:       state,
		connections: NewGameConnections(),
	}
}

// AddPlayer seats playerID. The first player is White, the second Black. A
// player already seated gets their colour back together with ErrAlreadySeated.
func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.colorOf(playerID); ok {
		return c, ErrAlreadySeated
	}
	if !g.players.White.Seated {
		g.players.White = ClientPlayer{ID: playerID, Color: PlayerColorWhite, Seated: true}
		log.Info().Str("gameId", g.ID).Str("playerId", playerID).Msg("seated white")
		return PlayerColorWhite, nil
	}
	if !g.players.Black.Seated {
		g.players.Black = ClientPlayer{ID: playerID, Color: PlayerColorBlack, Seated: true}
		log.Info().Str("gameId", g.ID).Str("playerId", playerID).Msg("seated black")
		return PlayerColorBlack, nil
	}
	return "", ErrGameFull
}

func (g *Game) colorOf(playerID string) (PlayerColor, bool) {
	if playerID == "" {
		return "", false
	}
	switch {
	case g.players.White.Seated && playerID == g.players.White.ID:
		return PlayerColorWhite, true
	case g.players.Black.Seated && playerID == g.players.Black.ID:
		return PlayerColorBlack, true
	}
	return "", false
}

// ColorOf returns the colour seated for playerID.
func (g *Game) ColorOf(playerID string) (PlayerColor, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.colorOf(playerID)
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	_, ok := g.ColorOf(playerID)
	return ok
}

func (g *Game) GetState() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view()
}

func (g *Game) view() GameView {
	v := GameView{ID: g.ID, Board: g.state.Snapshot(), Players: g.players}
	if g.result != nil {
		r := *g.result
		v.Result = &r
	}
	return v
}

// Snapshot returns the current board.
func (g *Game) Snapshot() BoardSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Snapshot()
}

func (g *Game) Result() (Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result == nil {
		return Result{}, false
	}
	return *g.result, true
}

// MakeMove submits a move for the seated player and broadcasts the new board
// to every connection.
func (g *Game) MakeMove(playerID string, from, to Position) (BoardSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return BoardSnapshot{}, ErrUnknownPlayer
	}
	if g.result != nil {
		return BoardSnapshot{}, ErrGameOver
	}

	logger := log.With().Str("gameId", g.ID).Str("color", string(color)).
		Stringer("from", from).Stringer("to", to).Logger()
	snap, err := g.state.SubmitMove(color, from, to)
	if err != nil {
		logger.Debug().Err(err).Msg("move rejected")
		return BoardSnapshot{}, err
	}
	logger.Debug().Msg("move applied")

	if msg, err := ws.NewMessage(ws.MessageTypeGameState, snap); err == nil {
		g.broadcast(msg)
	}
	return snap, nil
}

// Resign ends the match in the opponent's favour.
func (g *Game) Resign(playerID string) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return Result{}, ErrUnknownPlayer
	}
	if g.result != nil {
		return Result{}, ErrGameOver
	}
	r := Result{
		GameID:  g.ID,
		Winner:  color.Opponent(),
		Reason:  ResultResignation,
		White:   g.players.White.ID,
		Black:   g.players.Black.ID,
		EndedAt: time.Now().UTC(),
	}
	g.result = &r

	log.Info().Str("gameId", g.ID).Str("winner", string(r.Winner)).Msg("player resigned")
	if msg, err := ws.NewMessage(ws.MessageTypeGameOver, r); err == nil {
		g.broadcast(msg)
	}
	return r, nil
}

// RegisterConnection adds a viewer queue and sends it the current board. The
// snapshot and the registration happen under one lock, so no commit can fall
// between them.
func (g *Game) RegisterConnection(connID string, out *ws.Outbox) {
	g.mu.Lock()
	defer g.mu.Unlock()

	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.state.Snapshot())
	if err == nil {
		out.Send(msg)
	}

	g.connections.mu.Lock()
	if old, exists := g.connections.outboxes[connID]; exists {
		old.Close()
	}
	g.connections.outboxes[connID] = out
	g.connections.mu.Unlock()
	log.Debug().Str("gameId", g.ID).Str("conn", connID).Msg("registered connection")
}

// UnregisterConnection removes and closes the queue for connID.
func (g *Game) UnregisterConnection(connID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if out, exists := g.connections.outboxes[connID]; exists {
		out.Close()
		delete(g.connections.outboxes, connID)
		log.Debug().Str("gameId", g.ID).Str("conn", connID).Msg("unregistered connection")
	}
}

// ConnectionCount returns the number of registered viewers.
func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.outboxes)
}

// broadcast enqueues msg on every connection. A full queue drops the message
// for that peer only. mu must be held.
func (g *Game) broadcast(msg ws.Message) {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()

	for connID, out := range g.connections.outboxes {
		if !out.Send(msg) {
			log.Warn().Str("gameId", g.ID).Str("conn", connID).Msg("outbox full, dropped message")
		}
	}
}
