package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ladder(strikes ...float64) []StrikeMarket {
	out := make([]StrikeMarket, len(strikes))
	for i, s := range strikes {
		out[i] = StrikeMarket{Strike: s, YesCost: 0.50, NoCost: 0.50}
	}
	return out
}

func TestNearestStrikeIndex_FirstMinimumWinsTies(t *testing.T) {
	// ref 102.5 vs [100, 105, 110]: distances 2.5, 2.5, 7.5 —
	// the first minimum (index 0) found left-to-right wins.
	idx := nearestStrikeIndex(ladder(100, 105, 110), 102.5)
	assert.Equal(t, 0, idx)
}

func TestNearestStrikeIndex_StrictlyCloser(t *testing.T) {
	idx := nearestStrikeIndex(ladder(100, 105, 110), 104)
	assert.Equal(t, 1, idx)
}

func TestScanArbitrage_WindowBound(t *testing.T) {
	// 20 strikes, reference in the middle: window is ≤ 9 entries.
	strikes := make([]float64, 20)
	for i := range strikes {
		strikes[i] = 100 + float64(i)*5
	}
	ref := ReferenceMarket{Strike: 147, UpCost: 0.50, DownCost: 0.50}
	result := ScanArbitrage(ref, ladder(strikes...))
	assert.LessOrEqual(t, len(result.Checks), 9)
	assert.Equal(t, 9, len(result.Checks))
}

func TestScanArbitrage_WindowClipsAtBoundaries(t *testing.T) {
	// Nearest is index 0: only the closest + 4 above survive (no wrap, no pad).
	ref := ReferenceMarket{Strike: 90, UpCost: 0.50, DownCost: 0.50}
	result := ScanArbitrage(ref, ladder(100, 105, 110, 115, 120, 125, 130))
	assert.Len(t, result.Checks, 5)
	assert.Equal(t, 100.0, result.Checks[0].StrikeB)
	assert.Equal(t, 120.0, result.Checks[len(result.Checks)-1].StrikeB)
}

func TestScanArbitrage_WindowSmallerThanList(t *testing.T) {
	result := ScanArbitrage(ReferenceMarket{Strike: 100}, ladder(95, 100, 105))
	assert.LessOrEqual(t, len(result.Checks), 9)
}

func TestScanArbitrage_LegPairing(t *testing.T) {
	ref := ReferenceMarket{Strike: 110, UpCost: 0.62, DownCost: 0.40}
	markets := []StrikeMarket{
		{Strike: 100, YesCost: 0.55, NoCost: 0.48}, // ref above → Down + Yes
		{Strike: 120, YesCost: 0.52, NoCost: 0.35}, // ref below → Up + No
	}
	result := ScanArbitrage(ref, markets)
	require.Len(t, result.Checks, 2)

	below := result.Checks[0]
	assert.Equal(t, RelationAbove, below.Relation)
	assert.Equal(t, LegDown, below.RefLeg)
	assert.Equal(t, LegYes, below.StrikeLeg)
	assert.InDelta(t, 0.95, below.TotalCost, 1e-9) // 0.40 + 0.55
	assert.True(t, below.IsOpportunity)
	assert.InDelta(t, 0.05, below.Margin, 1e-9)

	above := result.Checks[1]
	assert.Equal(t, RelationBelow, above.Relation)
	assert.Equal(t, LegUp, above.RefLeg)
	assert.Equal(t, LegNo, above.StrikeLeg)
	assert.InDelta(t, 0.97, above.TotalCost, 1e-9) // 0.62 + 0.35
}

func TestScanArbitrage_EqualStrikeEmitsBothChecks(t *testing.T) {
	ref := ReferenceMarket{Strike: 100, UpCost: 0.62, DownCost: 0.40}
	markets := []StrikeMarket{{Strike: 100, YesCost: 0.55, NoCost: 0.35}}

	result := ScanArbitrage(ref, markets)
	require.Len(t, result.Checks, 2)

	first := result.Checks[0] // Down + Yes = 0.40 + 0.55 = 0.95
	assert.Equal(t, RelationEqual, first.Relation)
	assert.Equal(t, LegDown, first.RefLeg)
	assert.Equal(t, LegYes, first.StrikeLeg)
	assert.True(t, first.IsOpportunity)
	assert.InDelta(t, 0.05, first.Margin, 1e-9)

	second := result.Checks[1] // Up + No = 0.62 + 0.35 = 0.97
	assert.Equal(t, LegUp, second.RefLeg)
	assert.Equal(t, LegNo, second.StrikeLeg)
	assert.True(t, second.IsOpportunity)
	assert.InDelta(t, 0.03, second.Margin, 1e-9)

	require.Len(t, result.Opportunities, 2)
}

func TestScanArbitrage_NoOpportunityAtOrAboveDollar(t *testing.T) {
	ref := ReferenceMarket{Strike: 110, UpCost: 0.70, DownCost: 0.45}
	markets := []StrikeMarket{{Strike: 100, YesCost: 0.55, NoCost: 0.48}}
	// Down + Yes = 0.45 + 0.55 = 1.00 exactly → NOT an opportunity.
	result := ScanArbitrage(ref, markets)
	require.Len(t, result.Checks, 1)
	assert.False(t, result.Checks[0].IsOpportunity)
	assert.Equal(t, 0.0, result.Checks[0].Margin)
	assert.Empty(t, result.Opportunities)
}

func TestScanArbitrage_SortsUnorderedLadder(t *testing.T) {
	ref := ReferenceMarket{Strike: 105, UpCost: 0.50, DownCost: 0.50}
	result := ScanArbitrage(ref, ladder(120, 100, 110, 90))
	require.NotEmpty(t, result.Checks)
	for i := 1; i < len(result.Checks); i++ {
		assert.LessOrEqual(t, result.Checks[i-1].StrikeB, result.Checks[i].StrikeB)
	}
}

func TestScanArbitrage_EmptyLadder(t *testing.T) {
	result := ScanArbitrage(ReferenceMarket{Strike: 100}, nil)
	assert.Empty(t, result.Checks)
	assert.Empty(t, result.Opportunities)
}

func TestScanArbitrage_DoesNotMutateInput(t *testing.T) {
	markets := ladder(120, 100, 110)
	ScanArbitrage(ReferenceMarket{Strike: 100}, markets)
	assert.Equal(t, 120.0, markets[0].Strike)
}
