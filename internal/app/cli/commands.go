// Package cli implements the pectl subcommands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"pe_backend/internal/app/config"
	"pe_backend/internal/app/di"
)

// Commands is the list of all pectl subcommands.
var Commands = []subcommands.Command{
	&ingestCmd{},
	&seriesCmd{},
	&tokenCmd{},
}

// buildApp loads the configuration and wires the application for a single command.
func buildApp(ctx context.Context) (*di.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return di.Build(ctx, cfg)
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
