package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check that saved maps can be opened",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				doc, err := readDocument(path)
				if err != nil {
					failed++
					fmt.Fprintf(w, "  %s %s  %s\n", statusIcon(false), path, Bad.Sprint(err))
					continue
				}
				fmt.Fprintf(w, "  %s %s  %s\n", statusIcon(true), path,
					Subtle.Sprintf("%d nodes, %d edges", doc.state.NodeCount(), doc.state.EdgeCount()))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents are invalid", failed, len(args))
			}
			return nil
		},
	}
}
