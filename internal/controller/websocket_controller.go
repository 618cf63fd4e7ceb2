package controller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/benbeisheim/chess-server/internal/middleware"
	"github.com/benbeisheim/chess-server/internal/model"
	"github.com/benbeisheim/chess-server/internal/service"
	"github.com/benbeisheim/chess-server/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type WebSocketController struct {
	gameService *service.GameService
	outboxSize  int
}

func NewWebSocketController(gameService *service.GameService, outboxSize int) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		outboxSize:  outboxSize,
	}
}

// session is the per-connection state. Only the reader goroutine touches it.
type session struct {
	gameID   string
	connID   string
	playerID string
	out      *ws.Outbox
	logger   zerolog.Logger
}

func (s *session) send(t ws.MessageType, payload any) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(t)).Msg("marshal reply")
		return
	}
	if !s.out.Send(msg) {
		s.logger.Warn().Str("type", string(t)).Msg("outbox full, dropped reply")
	}
}

// HandleConnection is called when a new WebSocket connection is established.
// Everything written to the socket goes through the connection's outbox and a
// single writer goroutine.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	s := &session{
		gameID: c.Params("gameId"),
		connID: uuid.New().String(),
		out:    ws.NewOutbox(wsc.outboxSize),
	}
	s.playerID, _ = c.Locals(middleware.LocalPlayerID).(string)
	s.logger = log.With().Str("gameId", s.gameID).Str("conn", s.connID).Logger()

	if err := wsc.gameService.RegisterConnection(s.gameID, s.connID, s.out); err != nil {
		s.logger.Warn().Err(err).Msg("failed to register connection")
		c.WriteJSON(ws.TextMessage(ws.MessageTypeError, err.Error()))
		return
	}
	s.logger.Info().Str("playerId", s.playerID).Msg("websocket connected")

	done := make(chan struct{})
	go writeLoop(c, s.out, s.logger, done)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			s.logger.Debug().Err(err).Msg("read loop ended")
			break
		}
		if messageType != websocket.TextMessage {
			s.send(ws.MessageTypeUnrecognizedMessage, "only text messages are accepted")
			continue
		}
		wsc.handleFrame(s, message)
	}

	wsc.gameService.UnregisterConnection(s.gameID, s.connID)
	<-done
	s.logger.Info().Msg("websocket disconnected")
}

func writeLoop(c *websocket.Conn, out *ws.Outbox, logger zerolog.Logger, done chan<- struct{}) {
	defer close(done)
	for msg := range out.C() {
		if err := c.WriteJSON(msg); err != nil {
			logger.Debug().Err(err).Msg("write failed")
			// Keep draining so the outbox is released on close.
			for range out.C() {
			}
			return
		}
	}
}

// handleFrame decodes one text frame and dispatches it.
func (wsc *WebSocketController) handleFrame(s *session, data []byte) {
	var msg ws.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.send(ws.MessageTypeUnrecognizedMessage, "malformed message")
		return
	}
	wsc.handleMessage(s, msg)
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(s *session, msg ws.Message) {
	switch msg.Type {
	case ws.MessageTypeConnect:
		wsc.handleConnect(s)
	case ws.MessageTypeMove:
		wsc.handleMove(s, msg.Payload)
	case ws.MessageTypeResign:
		wsc.handleResign(s, msg.Payload)
	default:
		s.send(ws.MessageTypeUnrecognizedMessage, "unknown message type: "+string(msg.Type))
	}
}

// handleConnect seats the connection's player if a seat is free and replies
// with the board. A full game leaves the connection as a spectator. A player
// who connected with their id token is welcomed back to their seat; the token
// is not reissued.
func (wsc *WebSocketController) handleConnect(s *session) {
	if s.playerID == "" {
		s.playerID = uuid.New().String()
	}
	seat, err := wsc.gameService.JoinGame(s.gameID, s.playerID)
	switch {
	case err == nil, errors.Is(err, model.ErrAlreadySeated):
		s.send(ws.MessageTypeWelcome, seat)
	case errors.Is(err, model.ErrGameFull):
		s.logger.Debug().Msg("game full, connection is spectating")
	default:
		s.send(ws.MessageTypeError, err.Error())
		return
	}

	view, err := wsc.gameService.GetGameState(s.gameID)
	if err != nil {
		s.send(ws.MessageTypeError, err.Error())
		return
	}
	s.send(ws.MessageTypeGameState, view.Board)
}

type tokenPayload struct {
	IDToken string `json:"idToken"`
}

// resolvePlayer returns the player acting for this message: the id token in
// the payload when present, otherwise the connection's player.
func (wsc *WebSocketController) resolvePlayer(s *session, token string) (string, bool) {
	if token == "" {
		return s.playerID, s.playerID != ""
	}
	claims, err := wsc.gameService.VerifyToken(token)
	if err != nil || claims.GameID != s.gameID {
		return "", false
	}
	return claims.PlayerID, true
}

func (wsc *WebSocketController) handleMove(s *session, payload json.RawMessage) {
	var move model.WSMove
	if err := json.Unmarshal(payload, &move); err != nil {
		s.send(ws.MessageTypeUnrecognizedMessage, "malformed move")
		return
	}
	from, to, err := move.Positions()
	if err != nil {
		s.send(ws.MessageTypeUnrecognizedMessage, err.Error())
		return
	}
	playerID, ok := wsc.resolvePlayer(s, move.IDToken)
	if !ok {
		s.send(ws.MessageTypeUnrecognizedPlayer, move.IDToken)
		return
	}

	// On success the new board reaches this connection through the broadcast.
	_, err = wsc.gameService.HandleMove(s.gameID, playerID, from, to)
	var moveErr *model.MoveError
	switch {
	case err == nil:
	case errors.As(err, &moveErr):
		s.send(ws.MessageTypeIllegalMove, moveErr)
	case errors.Is(err, model.ErrUnknownPlayer):
		s.send(ws.MessageTypeUnrecognizedPlayer, move.IDToken)
	default:
		s.send(ws.MessageTypeError, err.Error())
	}
}

func (wsc *WebSocketController) handleResign(s *session, payload json.RawMessage) {
	var p tokenPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			s.send(ws.MessageTypeUnrecognizedMessage, "malformed resign")
			return
		}
	}
	playerID, ok := wsc.resolvePlayer(s, p.IDToken)
	if !ok {
		s.send(ws.MessageTypeUnrecognizedPlayer, p.IDToken)
		return
	}

	if _, err := wsc.gameService.Resign(context.Background(), s.gameID, playerID); err != nil {
		if errors.Is(err, model.ErrUnknownPlayer) {
			s.send(ws.MessageTypeUnrecognizedPlayer, p.IDToken)
			return
		}
		s.send(ws.MessageTypeError, err.Error())
	}
}

// HandleMatchmaking queues the player and writes a single matchFound message
// once they are paired. Closing the socket leaves the queue.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.LocalPlayerID).(string)
	logger := log.With().Str("playerId", playerID).Logger()

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil {
		logger.Debug().Err(err).Msg("already queued")
	}

	// The reader only notices the client going away. It must be gone before
	// this handler returns, since the Conn is pooled and reused afterwards.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer func() {
		c.Close()
		<-done
	}()

	event, err := wsc.gameService.WaitForMatch(ctx, playerID)
	if err != nil {
		logger.Debug().Err(err).Msg("matchmaking ended without a match")
		return
	}
	msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
	if err != nil {
		logger.Error().Err(err).Msg("marshal match event")
		return
	}
	if err := c.WriteJSON(msg); err != nil {
		logger.Warn().Err(err).Msg("failed to deliver match")
	}
}
