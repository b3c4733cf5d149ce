package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/protocol"
)

func (that *Server) handleCreate(ctx context.Context, c *client, message *protocol.Message) *protocol.Reply {
	var req protocol.CreateRequest
	if err := decodePayload(message, &req); err != nil {
		return protocol.NewReply(nil, err)
	}

	return that.handler.Create(ctx, c.participantID, req)
}

func (that *Server) handleJoin(ctx context.Context, c *client, message *protocol.Message) *protocol.Reply {
	var req protocol.JoinRequest
	if err := decodePayload(message, &req); err != nil {
		return protocol.NewReply(nil, err)
	}

	return that.handler.Join(ctx, c.participantID, req)
}

func (that *Server) handleMove(ctx context.Context, c *client, message *protocol.Message) *protocol.Reply {
	var req protocol.MoveRequest
	if err := decodePayload(message, &req); err != nil {
		return protocol.NewReply(nil, err)
	}

	return that.handler.Move(ctx, c.participantID, req)
}

func (that *Server) handleLeave(ctx context.Context, c *client, message *protocol.Message) *protocol.Reply {
	var req protocol.LeaveRequest
	if err := decodePayload(message, &req); err != nil {
		c.logger.Debug("ignoring malformed leave", "error", err)
		return nil
	}

	that.handler.Leave(ctx, c.participantID, req)

	return nil
}

func decodePayload(message *protocol.Message, v any) error {
	if len(message.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", apperror.ErrInvalidRequest)
	}

	if err := json.Unmarshal(message.Payload, v); err != nil {
		return fmt.Errorf("%w: malformed payload", apperror.ErrInvalidRequest)
	}

	return nil
}
