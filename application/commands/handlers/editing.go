package handlers

import (
	"context"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/session"
	"mindmap-backend/domain/core/valueobjects"
)

func applyGraphCommand(_ context.Context, s *session.Session, c bus.Command) (interface{}, error) {
	switch cmd := c.(type) {
	case commands.AddNodeCommand:
		position := valueobjects.PositionAt(cmd.X, cmd.Y)
		if cmd.Screen {
			return s.AddNodeAtScreen(position, cmd.Label, cmd.Style), nil
		}
		return s.AddNode(position, cmd.Label, cmd.Style), nil

	case commands.MoveNodeCommand:
		return s.MoveNode(valueobjects.NodeID(cmd.NodeID), valueobjects.PositionAt(cmd.X, cmd.Y)), nil

	case commands.SetNodeLabelCommand:
		return s.SetNodeLabel(valueobjects.NodeID(cmd.NodeID), cmd.Label), nil

	case commands.UpdateNodeStyleCommand:
		return s.UpdateNodeStyle(valueobjects.NodeID(cmd.NodeID), cmd.Style), nil

	case commands.ResizeNodeCommand:
		size := valueobjects.NewSize(cmd.Width, cmd.Height)
		if cmd.Live {
			return s.ResizeNodeLive(valueobjects.NodeID(cmd.NodeID), size), nil
		}
		return s.ResizeNode(valueobjects.NodeID(cmd.NodeID), size), nil

	case commands.DeleteNodeCommand:
		return s.DeleteNode(valueobjects.NodeID(cmd.NodeID)), nil

	case commands.AddEdgeCommand:
		return s.AddEdge(valueobjects.NodeID(cmd.Source), valueobjects.NodeID(cmd.Target), cmd.Style), nil

	case commands.UpdateEdgeStyleCommand:
		return s.UpdateEdgeStyle(valueobjects.EdgeID(cmd.EdgeID), cmd.Style), nil

	case commands.SetEdgeShapeCommand:
		shape, err := valueobjects.ParseEdgeShape(cmd.Shape)
		if err != nil {
			return nil, err
		}
		return s.SetEdgeShape(valueobjects.EdgeID(cmd.EdgeID), shape), nil

	case commands.ReconnectEdgeCommand:
		id := valueobjects.EdgeID(cmd.EdgeID)
		source, target := valueobjects.NodeID(cmd.Source), valueobjects.NodeID(cmd.Target)
		if cmd.Live {
			return s.PreviewReconnect(id, source, target), nil
		}
		return s.ReconnectEdge(id, source, target), nil

	case commands.DeleteEdgeCommand:
		return s.DeleteEdge(valueobjects.EdgeID(cmd.EdgeID)), nil

	case commands.ClearGraphCommand:
		return s.Clear(), nil
	}
	return nil, unexpected(c)
}

// ShortcutResult reports what a key stroke did
type ShortcutResult struct {
	Action  session.ShortcutAction `json:"action"`
	Outcome session.Outcome        `json:"outcome"`
}

func applyInteractionCommand(_ context.Context, s *session.Session, c bus.Command) (interface{}, error) {
	switch cmd := c.(type) {
	case commands.UndoCommand:
		return s.Undo(), nil

	case commands.RedoCommand:
		return s.Redo(), nil

	case commands.ShortcutCommand:
		stroke := session.KeyStroke{
			Key:   cmd.Key,
			Ctrl:  cmd.Ctrl,
			Meta:  cmd.Meta,
			Shift: cmd.Shift,
			Alt:   cmd.Alt,
		}
		action, outcome := s.HandleShortcut(stroke, session.ParsePlatform(cmd.Platform))
		return ShortcutResult{Action: action, Outcome: outcome}, nil

	case commands.BeginGestureCommand:
		return s.BeginGesture(), nil

	case commands.EndGestureCommand:
		return s.EndGesture(), nil

	case commands.DragNodeCommand:
		id := valueobjects.NodeID(cmd.NodeID)
		if cmd.Delta {
			return s.DragNodeBy(id, cmd.X, cmd.Y), nil
		}
		return s.DragNode(id, valueobjects.PositionAt(cmd.X, cmd.Y)), nil

	case commands.SelectNodeCommand:
		return s.Select(valueobjects.NodeID(cmd.NodeID)), nil

	case commands.PanCommand:
		return s.PanBy(cmd.DX, cmd.DY), nil

	case commands.ZoomCommand:
		switch cmd.Action {
		case commands.ZoomIn:
			return s.ZoomIn(), nil
		case commands.ZoomOut:
			return s.ZoomOut(), nil
		default:
			return s.SetZoom(cmd.Zoom), nil
		}

	case commands.AcceptSuggestionCommand:
		return s.AcceptSuggestion(valueobjects.NodeID(cmd.TargetNodeID)), nil

	case commands.DismissSuggestionsCommand:
		s.DismissSuggestions()
		return nil, nil
	}
	return nil, unexpected(c)
}

// SuggestionList is the result of a suggestion request
type SuggestionList struct {
	NodeID      valueobjects.NodeID      `json:"nodeId"`
	Suggestions []ports.SuggestionResult `json:"suggestions"`
}

func (h *SessionHandlers) requestSuggestions(ctx context.Context, s *session.Session, c bus.Command) (interface{}, error) {
	cmd := c.(commands.RequestSuggestionsCommand)
	nodeID := valueobjects.NodeID(cmd.NodeID)

	results, err := s.RequestSuggestions(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("Suggestions shown",
		zap.String("session_id", s.ID()),
		zap.String("node_id", cmd.NodeID),
		zap.Int("count", len(results)),
	)
	return SuggestionList{NodeID: nodeID, Suggestions: results}, nil
}
