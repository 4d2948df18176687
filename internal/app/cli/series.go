package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"pe_backend/internal/feature/peratio/domain/entity"
	"pe_backend/internal/feature/peratio/usecase"
)

type seriesCmd struct {
	years int
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display the P/E ratio series of a symbol" }
func (*seriesCmd) Usage() string {
	return `pectl series [-years n] SYMBOL

  Computes the trailing-twelve-month P/E series the same way GET /api/stock does
  and prints it as a table.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.years, "years", usecase.DefaultYears, "number of trailing years to display")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	app, err := buildApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	series, err := app.Series.GetSeries(ctx, f.Arg(0), c.years)
	if err != nil {
		return fail(err)
	}
	printMarkdown(SeriesMarkdown(series))
	return subcommands.ExitSuccess
}

// SeriesMarkdown renders a series as a markdown table. Unknown ratios are shown as "-".
func SeriesMarkdown(s entity.Series) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s P/E (TTM)\n\n", s.Symbol)
	if len(s.Points) == 0 {
		b.WriteString("No data.\n")
		return b.String()
	}

	b.WriteString("| Date | Close | P/E |\n")
	b.WriteString("|:-----|------:|----:|\n")
	known := 0
	for _, p := range s.Points {
		ratio := "-"
		if p.PERatio.Valid {
			ratio = p.PERatio.Decimal.StringFixed(2)
			known++
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", entity.FormatDate(p.Date), p.Close.StringFixed(2), ratio)
	}
	fmt.Fprintf(&b, "\n%d weeks, %d with a P/E ratio.\n", len(s.Points), known)
	return b.String()
}
