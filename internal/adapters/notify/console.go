package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime el resultado de un escaneo de arbitraje.
func (c *Console) Notify(_ context.Context, report domain.ArbReport) error {
	now := report.ScannedAt
	if now.IsZero() {
		now = time.Now()
	}

	if report.Reference != nil {
		last := "n/a"
		if report.Reference.LastPrice > 0 {
			last = fmt.Sprintf("$%.2f", report.Reference.LastPrice)
		}
		fmt.Fprintf(c.out, "\n[%s] ref %s | strike $%.2f | last %s | Up $%.3f / Down $%.3f\n",
			now.Format("15:04:05"),
			report.Reference.InstanceKey,
			report.Reference.Strike,
			last,
			report.Reference.UpCost,
			report.Reference.DownCost,
		)
	}

	for _, e := range report.Errors {
		fmt.Fprintf(c.out, "  WARN: %s\n", e)
	}

	if len(report.Checks) == 0 {
		fmt.Fprintln(c.out, "  no strike pairings to check")
		return nil
	}

	c.printChecks(report.Checks)

	if len(report.Opportunities) == 0 {
		fmt.Fprintln(c.out, "  no opportunities — every pairing costs >= $1.00")
		return nil
	}

	best := report.Opportunities[0]
	for _, opp := range report.Opportunities[1:] {
		if opp.Margin > best.Margin {
			best = opp
		}
	}
	fmt.Fprintf(c.out, "  %d opportunities, best: %s %s+%s $%.3f (margin $%.3f)\n",
		len(report.Opportunities),
		best.Ticker, best.RefLeg, best.StrikeLeg, best.TotalCost, best.Margin,
	)
	return nil
}

// printChecks imprime la tabla de emparejamientos evaluados en orden de
// ventana.
func (c *Console) printChecks(checks []domain.ArbCheck) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Ticker", "Strike", "Rel", "Legs", "Ref$", "Strike$", "Total", "Margin", "")

	for _, ch := range checks {
		marker := ""
		margin := "-"
		if ch.IsOpportunity {
			marker = "ARB"
			margin = fmt.Sprintf("$%.3f", ch.Margin)
		}
		table.Append(
			ch.Ticker,
			fmt.Sprintf("%.0f", ch.StrikeB),
			ch.Relation,
			fmt.Sprintf("%s+%s", ch.RefLeg, ch.StrikeLeg),
			fmt.Sprintf("$%.3f", ch.RefCost),
			fmt.Sprintf("$%.3f", ch.StrikeCost),
			fmt.Sprintf("$%.3f", ch.TotalCost),
			margin,
			marker,
		)
	}

	table.Render()
}

// PrintStats imprime el reporte histórico por serie (modo -report).
func (c *Console) PrintStats(stats []domain.SeriesStats) {
	if len(stats) == 0 {
		fmt.Fprintln(c.out, "no simulation history yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Series", "Trades", "YES", "NO", "Rollovers", "Payout", "Last seed", "First trade", "Last trade")

	for _, st := range stats {
		table.Append(
			st.Series,
			fmt.Sprintf("%d", st.TotalTrades),
			fmt.Sprintf("%d", st.TradesYes),
			fmt.Sprintf("%d", st.TradesNo),
			fmt.Sprintf("%d", st.TotalSettlements),
			fmt.Sprintf("$%.2f", st.TotalPayout),
			fmt.Sprintf("$%.2f", st.LastSeedBalance),
			formatDay(st.FirstTradeAt),
			formatDay(st.LastTradeAt),
		)
	}

	table.Render()
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2 15:04")
}
