package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mindmap-backend/domain/core/aggregates"
)

// Change is one difference between two saved maps
type Change struct {
	Kind   string // added, removed, moved, relabeled, restyled, reconnected
	Entity string // node or edge
	ID     string
	Detail string
}

func diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "List node and edge changes between two saved maps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := readDocument(args[0])
			if err != nil {
				return err
			}
			after, err := readDocument(args[1])
			if err != nil {
				return err
			}
			printChanges(cmd.OutOrStdout(), Diff(before.state, after.state))
			return nil
		},
	}
}

// Diff compares two graph states by id
func Diff(before, after aggregates.GraphState) []Change {
	var changes []Change

	for _, old := range before.Nodes() {
		node, ok := after.Node(old.ID())
		if !ok {
			changes = append(changes, Change{Kind: "removed", Entity: "node", ID: old.ID().String(), Detail: old.Label()})
			continue
		}
		if !node.Position().Equals(old.Position()) {
			changes = append(changes, Change{Kind: "moved", Entity: "node", ID: old.ID().String(),
				Detail: fmt.Sprintf("(%g, %g) -> (%g, %g)", old.Position().X(), old.Position().Y(), node.Position().X(), node.Position().Y())})
		}
		if node.Label() != old.Label() {
			changes = append(changes, Change{Kind: "relabeled", Entity: "node", ID: old.ID().String(),
				Detail: fmt.Sprintf("%q -> %q", old.Label(), node.Label())})
		}
		if !node.Style().Equals(old.Style()) {
			changes = append(changes, Change{Kind: "restyled", Entity: "node", ID: old.ID().String()})
		}
	}
	for _, node := range after.Nodes() {
		if !before.HasNode(node.ID()) {
			changes = append(changes, Change{Kind: "added", Entity: "node", ID: node.ID().String(), Detail: node.Label()})
		}
	}

	for _, old := range before.Edges() {
		edge, ok := after.Edge(old.ID())
		if !ok {
			changes = append(changes, Change{Kind: "removed", Entity: "edge", ID: old.ID().String(),
				Detail: old.Source().String() + " - " + old.Target().String()})
			continue
		}
		if edge.Source() != old.Source() || edge.Target() != old.Target() {
			changes = append(changes, Change{Kind: "reconnected", Entity: "edge", ID: old.ID().String(),
				Detail: fmt.Sprintf("%s - %s -> %s - %s", old.Source(), old.Target(), edge.Source(), edge.Target())})
		}
		if !edge.Style().Equals(old.Style()) {
			changes = append(changes, Change{Kind: "restyled", Entity: "edge", ID: old.ID().String()})
		}
	}
	for _, edge := range after.Edges() {
		if _, ok := before.Edge(edge.ID()); !ok {
			changes = append(changes, Change{Kind: "added", Entity: "edge", ID: edge.ID().String(),
				Detail: edge.Source().String() + " - " + edge.Target().String()})
		}
	}
	return changes
}

func printChanges(w io.Writer, changes []Change) {
	if len(changes) == 0 {
		Subtle.Fprintln(w, "  No changes")
		return
	}
	for _, c := range changes {
		marker := Warn.Sprint("~")
		switch c.Kind {
		case "added":
			marker = Good.Sprint("+")
		case "removed":
			marker = Bad.Sprint("-")
		}
		fmt.Fprintf(w, "  %s %-4s %-6s %-12s %s\n", marker, c.Entity, c.ID, c.Kind, Subtle.Sprint(c.Detail))
	}
}
