package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/protocol"
)

type archiveRepo interface {
	Save(ctx context.Context, session *entity.Session) error
}

// Hub routes session events to the connections of the session's participants.
type Hub struct {
	logger  *slog.Logger
	archive archiveRepo

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates a hub. Finished sessions are written to archive unless it is nil.
func NewHub(logger *slog.Logger, archive archiveRepo) *Hub {
	return &Hub{
		logger:  logger,
		archive: archive,
		clients: make(map[string]*client),
	}
}

// register binds participantID to c. A newer connection with the same identity replaces the old one.
func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if previous, ok := that.clients[c.participantID]; ok {
		previous.close()
	}

	that.clients[c.participantID] = c
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clients[c.participantID] == c {
		delete(that.clients, c.participantID)
	}

	c.close()
}

// reply sends a message to one connection unless it was already replaced.
func (that *Hub) reply(c *client, message *protocol.Message) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.clients[c.participantID] != c {
		return
	}

	if err := c.enqueue(message); err != nil {
		c.logger.Error("failed to send reply", "error", err)
	}
}

func (that *Hub) SessionUpdated(ctx context.Context, session *entity.Session) {
	that.deliver(session, protocol.UpdateEvents(session)...)

	if session.IsFinished() && that.archive != nil {
		if err := that.archive.Save(ctx, session); err != nil {
			that.logger.Error("failed to archive session", "gameID", session.ID, "error", err)
		}
	}
}

func (that *Hub) SessionClosed(_ context.Context, session *entity.Session, reason string) {
	that.deliver(session, protocol.ClosedEvent(session, reason))
}

func (that *Hub) deliver(session *entity.Session, events ...protocol.Event) {
	log := that.logger.With("method", "deliver", "gameID", session.ID)

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, id := range protocol.Recipients(session) {
		c, ok := that.clients[id]
		if !ok {
			log.Debug("participant is not connected", "participantID", id)
			continue
		}

		for _, event := range events {
			if err := c.enqueueEvent(event); err != nil {
				log.Error("failed to send event", "action", event.Action, "error", err)
			}
		}
	}
}
