package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
)

type ingestCmd struct {
	timeout time.Duration
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "fetch prices and earnings into the database" }
func (*ingestCmd) Usage() string {
	return `pectl ingest [-timeout <duration>] [SYMBOL...]

  Fetches weekly prices and earnings from Twelve Data and stores them.
  Without symbols, every active watchlist symbol is ingested.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.timeout, "timeout", 5*time.Minute, "overall time limit")
}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	app, err := buildApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	if app.Ingest == nil {
		return fail(errors.New("ingest requires a database (set DB_DRIVER or DATABASE_URL)"))
	}

	symbols := f.Args()
	if len(symbols) == 0 {
		if symbols, err = app.Watchlist.ActiveCodes(ctx); err != nil {
			return fail(fmt.Errorf("failed to load symbols: %w", err))
		}
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to ingest: watchlist is empty")
		return subcommands.ExitSuccess
	}

	failed, err := app.Ingest.IngestAll(ctx, symbols)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("ingested %d/%d symbols\n", len(symbols)-failed, len(symbols))
	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
