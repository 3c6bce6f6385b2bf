// Package handlers executes session commands against the session manager
package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/session"
)

// SessionHandlers executes every command of the session host. Commands
// addressed to an open session run against it and then publish the
// events it recorded.
type SessionHandlers struct {
	manager *session.Manager
	logger  *zap.Logger
}

// NewSessionHandlers creates the handler set
func NewSessionHandlers(manager *session.Manager, logger *zap.Logger) *SessionHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandlers{
		manager: manager,
		logger:  logger,
	}
}

// Register binds every command type to its handler
func (h *SessionHandlers) Register(b *bus.CommandBus) {
	// Lifecycle
	b.MustRegister(commands.CreateSessionCommand{}, bus.CommandHandlerFunc(h.createSession))
	b.MustRegister(commands.OpenMapCommand{}, bus.CommandHandlerFunc(h.openMap))
	b.MustRegister(commands.SaveMapCommand{}, bus.CommandHandlerFunc(h.saveMap))
	b.MustRegister(commands.CloseSessionCommand{}, bus.CommandHandlerFunc(h.closeSession))
	b.MustRegister(commands.DeleteMapCommand{}, bus.CommandHandlerFunc(h.deleteMap))

	// Graph editing
	for _, cmd := range []bus.Command{
		commands.AddNodeCommand{},
		commands.MoveNodeCommand{},
		commands.SetNodeLabelCommand{},
		commands.UpdateNodeStyleCommand{},
		commands.ResizeNodeCommand{},
		commands.DeleteNodeCommand{},
		commands.AddEdgeCommand{},
		commands.UpdateEdgeStyleCommand{},
		commands.SetEdgeShapeCommand{},
		commands.ReconnectEdgeCommand{},
		commands.DeleteEdgeCommand{},
		commands.ClearGraphCommand{},
	} {
		b.MustRegister(cmd, h.sessionHandler(applyGraphCommand))
	}

	// Interaction
	for _, cmd := range []bus.Command{
		commands.UndoCommand{},
		commands.RedoCommand{},
		commands.ShortcutCommand{},
		commands.BeginGestureCommand{},
		commands.EndGestureCommand{},
		commands.DragNodeCommand{},
		commands.SelectNodeCommand{},
		commands.PanCommand{},
		commands.ZoomCommand{},
		commands.AcceptSuggestionCommand{},
		commands.DismissSuggestionsCommand{},
	} {
		b.MustRegister(cmd, h.sessionHandler(applyInteractionCommand))
	}

	b.MustRegister(commands.RequestSuggestionsCommand{}, h.sessionHandler(h.requestSuggestions))
}

type sessionFunc func(ctx context.Context, s *session.Session, cmd bus.Command) (interface{}, error)

// sessionHandler resolves the addressed session, runs fn against it and
// publishes what it recorded
func (h *SessionHandlers) sessionHandler(fn sessionFunc) bus.CommandHandler {
	return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		addressed, ok := cmd.(commands.SessionCommand)
		if !ok {
			return nil, fmt.Errorf("%T is not addressed to a session", cmd)
		}
		ref := addressed.Ref()

		s, err := h.manager.Get(ref.OwnerID, ref.SessionID)
		if err != nil {
			return nil, err
		}

		result, err := fn(ctx, s, cmd)
		h.manager.Publish(ctx, s)
		return result, err
	})
}

func unexpected(cmd bus.Command) error {
	return fmt.Errorf("%w: %T", bus.ErrHandlerNotFound, cmd)
}
