package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/strikebot/internal/domain"
	"github.com/alejandrodnm/strikebot/internal/ports"
)

// ArbService composes the two venue providers into a cross-venue scan.
// Upstream failures are collected into the report instead of aborting:
// a scan with a dead venue still reports whatever the other one returned.
type ArbService struct {
	reference ports.ReferenceProvider
	strikes   ports.StrikeProvider
}

// NewArbService creates the arbitrage scan service.
func NewArbService(reference ports.ReferenceProvider, strikes ports.StrikeProvider) *ArbService {
	return &ArbService{reference: reference, strikes: strikes}
}

// Scan fetches both venues and pairs the legs. It only fails outright
// when the reference market is unavailable; a missing strike ladder
// yields a report with the reference data and an error entry.
func (s *ArbService) Scan(ctx context.Context) (*domain.ArbReport, error) {
	report := &domain.ArbReport{ScannedAt: time.Now()}

	ref, err := s.reference.FetchReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.Scan: reference market: %w", err)
	}
	report.Reference = ref

	markets, err := s.strikes.FetchStrikeLadder(ctx)
	if err != nil {
		slog.Warn("scan: strike ladder fetch failed", "err", err)
		report.Errors = append(report.Errors, fmt.Sprintf("strike ladder: %v", err))
		return report, nil
	}
	report.Markets = markets

	result := domain.ScanArbitrage(*ref, markets)
	report.Checks = result.Checks
	report.Opportunities = result.Opportunities

	slog.Info("arbitrage scan complete",
		"ref_strike", ref.Strike,
		"markets", len(markets),
		"checks", len(report.Checks),
		"opportunities", len(report.Opportunities),
	)
	return report, nil
}
