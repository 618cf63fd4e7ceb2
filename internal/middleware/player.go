package middleware

import (
	"strings"

	"github.com/benbeisheim/chess-server/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
)

// Locals keys set by the middleware in this package.
const (
	LocalPlayerID = "playerID"
	LocalGameID   = "tokenGameID"
	LocalColor    = "tokenColor"
)

func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(LocalPlayerID) != nil {
			return c.Next()
		}

		// Check header first
		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		// The header and query values alias the request buffer, which fasthttp
		// reuses once the handler returns. The id outlives the request.
		c.Locals(LocalPlayerID, utils.CopyString(playerID))
		return c.Next()
	}
}

// TokenVerifier resolves an id token to a seat.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Claims, error)
}

// IdentifyPlayer reads an optional id token from the token query parameter or
// a Bearer Authorization header. Without a token the request continues
// anonymously. A bad token is rejected, as is a token for another game when
// the route has a :gameId parameter.
func IdentifyPlayer(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			if a := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(strings.ToLower(a), "bearer ") {
				token = strings.TrimSpace(a[7:])
			}
		}
		if token == "" {
			return c.Next()
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("rejected id token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid id token",
			})
		}
		if gameID := c.Params("gameId"); gameID != "" && gameID != claims.GameID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "id token is for a different game",
			})
		}

		c.Locals(LocalPlayerID, claims.PlayerID)
		c.Locals(LocalGameID, claims.GameID)
		c.Locals(LocalColor, claims.Color)
		return c.Next()
	}
}
