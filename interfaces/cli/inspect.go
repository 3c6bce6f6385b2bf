package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the nodes, edges and viewport of a saved map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				codec, _ := newCodec()
				normalized, err := codec.ToDocument(doc.state, doc.viewport)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(normalized)
			}
			printInspect(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the normalized document as JSON")
	return cmd
}

func printInspect(w io.Writer, doc *document) {
	state := doc.state
	pan := doc.viewport.Pan()

	fmt.Fprintf(w, "  %s  %d\n", Brand.Sprintf("%-10s", "Nodes"), state.NodeCount())
	fmt.Fprintf(w, "  %s  %d\n", Brand.Sprintf("%-10s", "Edges"), state.EdgeCount())
	fmt.Fprintf(w, "  %s  %d\n", Brand.Sprintf("%-10s", "Clusters"), len(state.Clusters()))
	fmt.Fprintf(w, "  %s  %.2f at (%.1f, %.1f)\n", Brand.Sprintf("%-10s", "Viewport"), doc.viewport.Zoom(), pan.X(), pan.Y())
	fmt.Fprintln(w)

	rows := make([][]string, 0, state.NodeCount())
	for _, node := range state.Nodes() {
		rows = append(rows, []string{
			node.ID().String(),
			truncate(node.Label(), 40),
			formatFloat(node.Position().X()),
			formatFloat(node.Position().Y()),
			strconv.Itoa(len(state.Neighbors(node.ID()))),
		})
	}
	table(w, []string{"ID", "LABEL", "X", "Y", "DEGREE"}, rows)

	if state.EdgeCount() == 0 {
		return
	}
	fmt.Fprintln(w)
	rows = rows[:0]
	for _, edge := range state.Edges() {
		shape := "-"
		if s := edge.Style().Shape; s != nil {
			shape = string(*s)
		}
		rows = append(rows, []string{edge.ID().String(), edge.Source().String(), edge.Target().String(), shape})
	}
	table(w, []string{"ID", "SOURCE", "TARGET", "SHAPE"}, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
