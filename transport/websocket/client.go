package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-sessions/transport/protocol"
)

const (
	sendBufferSize = 32
	writeWait      = 10 * time.Second
	pongWait       = 120 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// client is one websocket connection. Only writePump writes to conn.
type client struct {
	logger        *slog.Logger
	participantID string

	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClient(logger *slog.Logger, participantID string, conn *websocket.Conn) *client {
	return &client{
		logger:        logger.With("participantID", participantID),
		participantID: participantID,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
	}
}

// enqueue never blocks. A connection that stops reading loses messages.
func (that *client) enqueue(message *protocol.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case that.send <- data:
	default:
		that.logger.Warn("send buffer is full, dropping message", "action", message.Action)
	}

	return nil
}

func (that *client) enqueueEvent(event protocol.Event) error {
	message, err := protocol.NewMessage(event.Action, event.Payload)
	if err != nil {
		return err
	}

	return that.enqueue(message)
}

func (that *client) writePump() {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to write ping", "error", err)
				return
			}
		}
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.send)
	})
}
