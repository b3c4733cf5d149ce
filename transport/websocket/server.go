package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/protocol"
)

const (
	sessionCookieName = "user_session"
	sessionCookieTTL  = 24 * time.Hour
	shutdownTimeout   = 5 * time.Second
)

var errHandlerPanic = errors.New("panic while handling message")

type handlerFunc func(ctx context.Context, c *client, message *protocol.Message) *protocol.Reply

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	handler  *protocol.Handler
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, hub *Hub, handler *protocol.Handler) *Server {
	server := &Server{
		logger:  logger,
		hub:     hub,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[protocol.ActionCreate] = server.handleCreate
	server.handlers[protocol.ActionJoin] = server.handleJoin
	server.handlers[protocol.ActionMove] = server.handleMove
	server.handlers[protocol.ActionLeave] = server.handleLeave

	return server
}

func (that *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Get("/ws", that.upgradeToWebSocket)

	return router
}

// Start serves websocket connections until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until the peer goes away.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	participantID, header := that.sessionCookie(req)

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.logger, participantID, conn)
	that.hub.register(c)

	go c.writePump()

	log.Info("WebSocket connection established", "participantID", participantID)

	that.handleMessages(req.Context(), c)

	that.hub.unregister(c)

	log.Info("WebSocket connection closed", "participantID", participantID)
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := c.logger.With("method", "handleMessages")

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("error reading message", "error", err)
			}
			return
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		that.processMessage(ctx, c, data)
	}
}

// processMessage answers one frame. A panic is contained to the frame that caused it.
func (that *Server) processMessage(ctx context.Context, c *client, data []byte) {
	log := c.logger.With("method", "processMessage")

	var message protocol.Message

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic", "panic", r, "action", message.Action)
			that.sendReply(c, message.Action, protocol.NewReply(nil, errHandlerPanic))
		}
	}()

	if err := json.Unmarshal(data, &message); err != nil {
		log.Debug("failed to unmarshal message", "error", err)
		that.sendReply(c, "", protocol.NewReply(nil, fmt.Errorf("%w: malformed message", apperror.ErrInvalidRequest)))
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Debug("unknown action", "action", message.Action)
		that.sendReply(c, message.Action, protocol.NewReply(nil, fmt.Errorf("%w: unknown action", apperror.ErrInvalidRequest)))
		return
	}

	if reply := handler(ctx, c, &message); reply != nil {
		that.sendReply(c, message.Action, reply)
	}
}

func (that *Server) sendReply(c *client, action string, reply *protocol.Reply) {
	message, err := protocol.NewMessage(action, reply)
	if err != nil {
		c.logger.Error("failed to build reply", "error", err)
		return
	}

	that.hub.reply(c, message)
}

// sessionCookie reads the participant identity. A new one is issued through the
// upgrade response headers when the request carries none.
func (that *Server) sessionCookie(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionCookie")

	cookie, err := req.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value, nil
	}

	cookie = &http.Cookie{
		Name:     sessionCookieName,
		Value:    pkg.GenerateNewSessionID(),
		Expires:  time.Now().Add(sessionCookieTTL),
		Path:     "/ws",
		HttpOnly: true,
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value, header
}
