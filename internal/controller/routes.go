package controller

import (
	"github.com/benbeisheim/chess-server/internal/middleware"
	"github.com/benbeisheim/chess-server/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the REST, websocket and public routes on app.
func RegisterRoutes(app *fiber.App, gameService *service.GameService, outboxSize int) {
	gameController := NewGameController(gameService)
	wsController := NewWebSocketController(gameService, outboxSize)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/game/:gameId/board.svg", gameController.BoardSVG)

	// WebSocket routes
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	app.Get("/ws/game/:gameId",
		middleware.WebSocketUpgrade(),
		middleware.IdentifyPlayer(gameService),
		websocket.New(wsController.HandleConnection, wsConfig))
	app.Get("/ws/matchmaking",
		middleware.WebSocketUpgrade(),
		middleware.EnsurePlayerID(),
		websocket.New(wsController.HandleMatchmaking, wsConfig))

	// REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())
	api.Get("/results", gameController.RecentResults)

	gameRoutes := api.Group("/game")
	gameRoutes.Get("/", gameController.ListGames)
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
}
