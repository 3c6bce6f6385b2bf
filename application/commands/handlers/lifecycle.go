package handlers

import (
	"context"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/session"
)

// Opened is the result of creating or opening a session
type Opened struct {
	SessionID string `json:"sessionId"`
	MapID     string `json:"mapId,omitempty"`
	Title     string `json:"title,omitempty"`
	Revision  int    `json:"revision"`
}

func openedFrom(s *session.Session) Opened {
	view := s.View()
	return Opened{
		SessionID: view.SessionID,
		MapID:     view.MapID,
		Title:     view.Title,
		Revision:  view.Revision,
	}
}

func (h *SessionHandlers) createSession(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.CreateSessionCommand)
	s, err := h.manager.Create(ctx, cmd.OwnerID, cmd.Title)
	if err != nil {
		return nil, err
	}
	return openedFrom(s), nil
}

func (h *SessionHandlers) openMap(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.OpenMapCommand)
	s, err := h.manager.Open(ctx, cmd.OwnerID, cmd.MapID)
	if err != nil {
		return nil, err
	}
	return openedFrom(s), nil
}

func (h *SessionHandlers) saveMap(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.SaveMapCommand)
	return h.manager.Save(ctx, cmd.OwnerID, cmd.SessionID, cmd.Title, cmd.Thumbnail)
}

func (h *SessionHandlers) closeSession(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.CloseSessionCommand)
	if err := h.manager.Close(ctx, cmd.OwnerID, cmd.SessionID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *SessionHandlers) deleteMap(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.DeleteMapCommand)
	if err := h.manager.DeleteMap(ctx, cmd.OwnerID, cmd.MapID); err != nil {
		return nil, err
	}
	h.logger.Info("Map deleted",
		zap.String("owner_id", cmd.OwnerID),
		zap.String("map_id", cmd.MapID),
	)
	return nil, nil
}
