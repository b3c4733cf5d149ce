package local

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/protocol"
)

const eventBufferSize = 64

// Hub delivers session events to in-process clients. It runs the same engine
// as the network adapter without any sockets.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// NewClient registers a client with a fresh identity. handler must be built on a
// game manager that broadcasts through this hub.
func (that *Hub) NewClient(handler *protocol.Handler, displayName string) *Client {
	client := &Client{
		id:          uuid.NewString(),
		displayName: displayName,
		handler:     handler,
		hub:         that,
		events:      make(chan protocol.Event, eventBufferSize),
	}

	that.mu.Lock()
	that.clients[client.id] = client
	that.mu.Unlock()

	return client
}

func (that *Hub) SessionUpdated(_ context.Context, session *entity.Session) {
	that.deliver(session, protocol.UpdateEvents(session)...)
}

func (that *Hub) SessionClosed(_ context.Context, session *entity.Session, reason string) {
	that.deliver(session, protocol.ClosedEvent(session, reason))
}

func (that *Hub) deliver(session *entity.Session, events ...protocol.Event) {
	log := that.logger.With("method", "deliver", "gameID", session.ID)

	// the read lock keeps remove from closing a channel mid-send
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, id := range protocol.Recipients(session) {
		client, ok := that.clients[id]
		if !ok {
			continue
		}

		for _, event := range events {
			select {
			case client.events <- event:
			default:
				log.Warn("client is not reading events, dropping", "participantID", id, "action", event.Action)
			}
		}
	}
}

func (that *Hub) remove(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clients[client.id] == client {
		delete(that.clients, client.id)
		close(client.events)
	}
}
