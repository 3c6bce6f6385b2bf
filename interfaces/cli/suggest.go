package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/application/suggestions"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/infrastructure/similarity"
)

func suggestCmd() *cobra.Command {
	var (
		nodeID  string
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "suggest <file>",
		Short: "Ask for connection suggestions for one node of a saved map",
		Long: "Builds the same request the editor sends and prints the ranked answer.\n" +
			"Without --url the local term matcher scores the candidates.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			var service ports.SuggestionService = similarity.NewLocalService(0, 0)
			if url != "" {
				service = similarity.NewClient(similarity.ClientConfig{URL: url}, &http.Client{}, zap.NewNop())
			}
			adapter := suggestions.NewAdapter(service, nil, doc.domain, timeout, nil, nil)

			req, err := adapter.BuildRequest(doc.state, valueobjects.NodeID(nodeID))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			results, err := adapter.Fetch(ctx, "mindmapctl", req)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "  %s %s %s\n\n", Brand.Sprint("Suggestions for"), nodeID,
				Subtle.Sprintf("(%d candidates)", len(req.OtherNodes)))
			if len(results) == 0 {
				Subtle.Fprintln(w, "  No suggestions")
				return nil
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				label := ""
				if node, ok := doc.state.Node(valueobjects.NodeID(r.TargetNodeID)); ok {
					label = truncate(node.Label(), 30)
				}
				rows = append(rows, []string{r.TargetNodeID, label, fmt.Sprintf("%.2f", r.Score), truncate(r.Explanation, 50)})
			}
			table(w, []string{"TARGET", "LABEL", "SCORE", "WHY"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeID, "node", "", "Active node id")
	cmd.Flags().StringVar(&url, "url", "", "Similarity service URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	_ = cmd.MarkFlagRequired("node")
	return cmd
}
