// service/game_manager.go
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/benbeisheim/chess-server/internal/model"
	"github.com/benbeisheim/chess-server/internal/ws"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// MatchFoundEvent tells a queued player which game and seat they got.
type MatchFoundEvent struct {
	GameID  string            `json:"gameId"`
	Color   model.PlayerColor `json:"color"`
	IDToken string            `json:"idToken,omitempty"`
}

// GameManager owns every live game. mu guards the maps only; it is released
// before any game operation runs.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan MatchFoundEvent
	pendingMatches   map[string]MatchFoundEvent
	mu               sync.RWMutex
}

// NewGameManager starts the matchmaking loop, which runs until ctx is done.
func NewGameManager(ctx context.Context, matchInterval time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan MatchFoundEvent),
		pendingMatches:   make(map[string]MatchFoundEvent),
	}

	go gm.processMatchmaking(ctx, matchInterval)

	return gm
}

// RegisterMatchmakingChannel sets the channel a player's match event will be
// delivered on. ch must be buffered. The manager closes ch after delivering an
// event or when a newer channel replaces it. A match found before
// registration is delivered immediately.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Debug().Str("playerId", playerID).Msg("registering matchmaking channel")

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		ch <- event
		close(ch)
		return
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's current
// channel. ch is not closed.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if cur, ok := gm.matchingChannels[playerID]; ok && cur == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) processMatchmaking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.matchQueued()
		}
	}
}

// matchQueued pairs queued players until fewer than two remain.
func (gm *GameManager) matchQueued() {
	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := model.NewGame(gameID)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("seat first matched player")
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("seat second matched player")
			continue
		}

		gm.mu.Lock()
		gm.games[gameID] = game
		gm.notifyMatch(player1.ID, MatchFoundEvent{GameID: gameID, Color: p1Color})
		gm.notifyMatch(player2.ID, MatchFoundEvent{GameID: gameID, Color: p2Color})
		gm.mu.Unlock()

		log.Info().Str("gameId", gameID).Str("white", player1.ID).Str("black", player2.ID).Msg("match created")
	}
}

// notifyMatch must be called with mu held.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.pendingMatches[playerID] = event
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		gm.pendingMatches[playerID] = event
		log.Warn().Str("playerId", playerID).Msg("matchmaking channel full, match kept pending")
	}
	close(ch)
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = model.NewGame(gameID)
	return nil
}

// AddGame registers an already constructed game.
func (gm *GameManager) AddGame(game *model.Game) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[game.ID]; exists {
		return ErrGameExists
	}
	gm.games[game.ID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

// ListGames returns the ids of all games, sorted.
func (gm *GameManager) ListGames() []string {
	gm.mu.RLock()
	ids := maps.Keys(gm.games)
	gm.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PlayerColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameView, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, from, to model.Position) (model.BoardSnapshot, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.BoardSnapshot{}, err
	}
	return game.MakeMove(playerID, from, to)
}

func (gm *GameManager) Resign(gameID string, playerID string) (model.Result, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.Result{}, err
	}
	return game.Resign(playerID)
}

func (gm *GameManager) RegisterConnection(gameID string, connID string, out *ws.Outbox) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	game.RegisterConnection(connID, out)
	return nil
}

func (gm *GameManager) UnregisterConnection(gameID string, connID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(connID)
}
