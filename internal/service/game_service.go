package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-server/internal/auth"
	"github.com/benbeisheim/chess-server/internal/model"
	"github.com/benbeisheim/chess-server/internal/store"
	"github.com/benbeisheim/chess-server/internal/ws"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrMatchmakingClosed = errors.New("matchmaking wait cancelled")

// Seat is returned to a player who joined a game.
type Seat struct {
	GameID  string            `json:"gameId"`
	Color   model.PlayerColor `json:"color"`
	IDToken string            `json:"idToken,omitempty"`
}

type GameService struct {
	gameManager *GameManager
	issuer      *auth.Issuer
	results     store.ResultStore
}

func NewGameService(gameManager *GameManager, issuer *auth.Issuer, results store.ResultStore) *GameService {
	return &GameService{
		gameManager: gameManager,
		issuer:      issuer,
		results:     results,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	log.Info().Str("gameId", gameID).Msg("game created")

	return gameID, nil
}

// JoinGame seats playerID and issues the id token for that seat. The token is
// issued once: a player already seated gets their seat back without a token
// and ErrAlreadySeated.
func (gs *GameService) JoinGame(gameID string, playerID string) (Seat, error) {
	color, err := gs.gameManager.AddPlayerToGame(gameID, playerID)
	if errors.Is(err, model.ErrAlreadySeated) {
		return Seat{GameID: gameID, Color: color}, err
	}
	if err != nil {
		return Seat{}, err
	}
	token, err := gs.issuer.Issue(playerID, gameID, string(color))
	if err != nil {
		return Seat{}, err
	}
	return Seat{GameID: gameID, Color: color, IDToken: token}, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

// WaitForMatch blocks until playerID is paired or ctx is done.
func (gs *GameService) WaitForMatch(ctx context.Context, playerID string) (MatchFoundEvent, error) {
	ch := make(chan MatchFoundEvent, 1)
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
	defer gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)

	select {
	case <-ctx.Done():
		gs.gameManager.LeaveMatchmaking(playerID)
		return MatchFoundEvent{}, ctx.Err()
	case event, ok := <-ch:
		if !ok {
			return MatchFoundEvent{}, ErrMatchmakingClosed
		}
		token, err := gs.issuer.Issue(playerID, event.GameID, string(event.Color))
		if err != nil {
			return MatchFoundEvent{}, err
		}
		event.IDToken = token
		return event, nil
	}
}

func (gs *GameService) GetGameState(gameID string) (model.GameView, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) ListGames() []string {
	return gs.gameManager.ListGames()
}

func (gs *GameService) HandleMove(gameID string, playerID string, from, to model.Position) (model.BoardSnapshot, error) {
	return gs.gameManager.MakeMove(gameID, playerID, from, to)
}

// Resign ends the game and records its result.
func (gs *GameService) Resign(ctx context.Context, gameID string, playerID string) (model.Result, error) {
	r, err := gs.gameManager.Resign(gameID, playerID)
	if err != nil {
		return model.Result{}, err
	}
	if err := gs.results.Record(ctx, r); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("record result")
	}
	return r, nil
}

func (gs *GameService) RecentResults(ctx context.Context, limit int) ([]model.Result, error) {
	return gs.results.Recent(ctx, limit)
}

// VerifyToken resolves an id token to its seat.
func (gs *GameService) VerifyToken(token string) (auth.Claims, error) {
	return gs.issuer.Verify(token)
}

func (gs *GameService) RegisterConnection(gameID string, connID string, out *ws.Outbox) error {
	return gs.gameManager.RegisterConnection(gameID, connID, out)
}

func (gs *GameService) UnregisterConnection(gameID string, connID string) {
	gs.gameManager.UnregisterConnection(gameID, connID)
}
