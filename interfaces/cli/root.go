// Package cli implements mindmapctl, an offline tool for saved map
// documents
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mindmap-backend/application/snapshot"
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
)

var version = "dev"

var environment string

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mindmapctl",
		Short:         "Inspect and check saved mind map documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("mindmapctl {{ .Version }}\n")
	root.PersistentFlags().StringVar(&environment, "env", "production", "Rule set used to read documents (development or production)")

	root.AddCommand(
		inspectCmd(),
		validateCmd(),
		diffCmd(),
		suggestCmd(),
		tokenCmd(),
	)
	return root
}

// Execute runs the root command and reports errors
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		Bad.Fprintf(os.Stderr, "mindmapctl: %v\n", err)
		return err
	}
	return nil
}

// document is a decoded saved map
type document struct {
	state    aggregates.GraphState
	viewport valueobjects.Viewport
	domain   *config.DomainConfig
}

func newCodec() (*snapshot.Codec, *config.DomainConfig) {
	domain := config.LoadDomainConfig(environment)
	return snapshot.NewCodec(aggregates.NewGraphStore(domain), valueobjects.ZoomBoundsFrom(domain)), domain
}

// readDocument decodes the document at path, "-" for stdin
func readDocument(path string) (*document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	codec, domain := newCodec()
	state, viewport, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return &document{state: state, viewport: viewport, domain: domain}, nil
}
