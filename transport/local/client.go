package local

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-sessions/transport/protocol"
)

// Client is an in-process participant. Its requests get the same replies a
// websocket client would and its events arrive on Events.
type Client struct {
	id          string
	displayName string

	handler *protocol.Handler
	hub     *Hub
	events  chan protocol.Event
}

func (that *Client) ID() string {
	return that.id
}

func (that *Client) Events() <-chan protocol.Event {
	return that.events
}

func (that *Client) Create(ctx context.Context, mode, tier string) *protocol.Reply {
	return that.handler.Create(ctx, that.id, protocol.CreateRequest{
		DisplayName: that.displayName,
		Mode:        mode,
		Tier:        tier,
	})
}

func (that *Client) Join(ctx context.Context, sessionID string) *protocol.Reply {
	return that.handler.Join(ctx, that.id, protocol.JoinRequest{
		SessionID:   sessionID,
		DisplayName: that.displayName,
	})
}

func (that *Client) Move(ctx context.Context, sessionID string, cell int) *protocol.Reply {
	return that.handler.Move(ctx, that.id, protocol.MoveRequest{
		SessionID: sessionID,
		CellIndex: &cell,
	})
}

func (that *Client) Leave(ctx context.Context, sessionID string) {
	that.handler.Leave(ctx, that.id, protocol.LeaveRequest{SessionID: sessionID})
}

// Close unregisters the client and closes its event channel.
func (that *Client) Close() {
	that.hub.remove(that)
}
