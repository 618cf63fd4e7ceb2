package controller

import (
	"bytes"
	"errors"

	"github.com/benbeisheim/chess-server/internal/middleware"
	"github.com/benbeisheim/chess-server/internal/model"
	"github.com/benbeisheim/chess-server/internal/render"
	"github.com/benbeisheim/chess-server/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// errorStatus maps service and session errors to HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrGameFull), errors.Is(err, model.ErrGameOver), errors.Is(err, model.ErrAlreadySeated):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrUnknownPlayer):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"gameId":  gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals(middleware.LocalPlayerID).(string)

	seat, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return sendError(c, err)
	}
	log.Info().Str("gameId", gameID).Str("playerId", playerID).Str("color", string(seat.Color)).Msg("player joined")

	return c.JSON(seat)
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	view, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.gameService.ListGames(),
	})
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals(middleware.LocalPlayerID).(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) RecentResults(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	results, err := gc.gameService.RecentResults(c.UserContext(), limit)
	if err != nil {
		return sendError(c, err)
	}
	if results == nil {
		results = []model.Result{}
	}
	return c.JSON(fiber.Map{
		"results": results,
	})
}

func (gc *GameController) BoardSVG(c *fiber.Ctx) error {
	view, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	var buf bytes.Buffer
	render.SVG(&buf, view.Board, c.QueryInt("size", 480))
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(buf.Bytes())
}
