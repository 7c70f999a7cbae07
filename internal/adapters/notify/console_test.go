package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/strikebot/internal/adapters/notify"
	"github.com/alejandrodnm/strikebot/internal/domain"
	"github.com/alejandrodnm/strikebot/internal/ports"
)

var _ ports.Notifier = (*notify.Console)(nil)

func sampleReport() domain.ArbReport {
	ref := domain.ReferenceMarket{
		InstanceKey: "bitcoin-up-or-down-december-12-9pm-et",
		Strike:      89750,
		LastPrice:   89821.45,
		UpCost:      0.62,
		DownCost:    0.40,
	}
	result := domain.ScanArbitrage(ref, []domain.StrikeMarket{
		{Ticker: "KXBTCD-T89500", Strike: 89500, YesCost: 0.55, NoCost: 0.48},
		{Ticker: "KXBTCD-T90000", Strike: 90000, YesCost: 0.30, NoCost: 0.75},
	})
	return domain.ArbReport{
		Reference:     &ref,
		Checks:        result.Checks,
		Opportunities: result.Opportunities,
		ScannedAt:     time.Date(2026, time.December, 12, 21, 15, 0, 0, time.UTC),
	}
}

func TestConsole_NotifyRendersChecks(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	require.NoError(t, c.Notify(context.Background(), sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "strike $89750.00")
	assert.Contains(t, out, "last $89821.45")
	assert.Contains(t, out, "KXBTCD-T89500")
	assert.Contains(t, out, "Down+Yes")
	assert.Contains(t, out, "ARB")
	assert.Contains(t, out, "1 opportunities")
}

func TestConsole_NotifyNoChecks(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	report := domain.ArbReport{
		Reference: &domain.ReferenceMarket{InstanceKey: "x", Strike: 100},
		Errors:    []string{"strike ladder: kalshi 503"},
	}
	require.NoError(t, c.Notify(context.Background(), report))

	out := buf.String()
	assert.Contains(t, out, "last n/a")
	assert.Contains(t, out, "WARN: strike ladder")
	assert.Contains(t, out, "no strike pairings")
}

func TestConsole_PrintStats(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintStats([]domain.SeriesStats{{
		Series:           "hourly",
		TotalTrades:      12,
		TradesYes:        7,
		TradesNo:         5,
		TotalSettlements: 3,
		TotalPayout:      18.5,
		LastSeedBalance:  104.2,
	}})

	out := buf.String()
	assert.Contains(t, out, "hourly")
	assert.Contains(t, out, "$18.50")
	assert.Contains(t, out, "$104.20")

	buf.Reset()
	c.PrintStats(nil)
	assert.Contains(t, buf.String(), "no simulation history")
}
