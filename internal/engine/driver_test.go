package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// fakeProvider replays a scripted sequence of snapshots. A nil entry with
// a nil error simulates "market not found"; a non-nil error simulates a
// transport failure.
type fakeProvider struct {
	key   string
	snaps []*domain.MarketSnapshot
	errs  []error
	calls int
}

func (f *fakeProvider) FetchSnapshot(_ context.Context, _ string) (*domain.MarketSnapshot, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var snap *domain.MarketSnapshot
	if i < len(f.snaps) {
		snap = f.snaps[i]
	}
	return snap, err
}

func (f *fakeProvider) CurrentInstanceKey(_ string, _ time.Time) string { return f.key }

type fakeStore struct {
	trades      []domain.Trade
	settlements []domain.Settlement
}

func (f *fakeStore) ApplySchema(context.Context) error { return nil }
func (f *fakeStore) SaveTrade(_ context.Context, t domain.Trade) error {
	f.trades = append(f.trades, t)
	return nil
}
func (f *fakeStore) SaveSettlement(_ context.Context, s domain.Settlement) error {
	f.settlements = append(f.settlements, s)
	return nil
}
func (f *fakeStore) GetTrades(context.Context, string, int) ([]domain.Trade, error) {
	return nil, nil
}
func (f *fakeStore) GetSettlements(context.Context, string) ([]domain.Settlement, error) {
	return nil, nil
}
func (f *fakeStore) GetSeriesStats(context.Context) ([]domain.SeriesStats, error) { return nil, nil }
func (f *fakeStore) Close() error                                                 { return nil }

func liquid(yes, no float64) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		InstanceKey: "btc-hourly-1pm",
		PriceYes:    domain.Price(yes),
		PriceNo:     domain.Price(no),
		CapturedAt:  time.Now(),
	}
}

func newTestDriver(p *fakeProvider, store *fakeStore) *Driver {
	cfg := Config{Series: "hourly", SeedBalance: 100}
	if store == nil {
		return New(cfg, p, nil)
	}
	return New(cfg, p, store)
}

func TestDriver_FirstTickHolds(t *testing.T) {
	// On the first tick the window already contains the current price, so
	// the average equals the price and nothing is ever "cheap".
	p := &fakeProvider{key: "k1", snaps: []*domain.MarketSnapshot{liquid(0.30, 0.70)}}
	d := newTestDriver(p, nil)

	d.Tick(context.Background(), time.Now())

	st := d.State()
	assert.Equal(t, domain.ActionHold, st.LastAction)
	assert.Equal(t, 100.0, st.CashBalance)
	assert.Equal(t, 0.30, st.AvgYes)
	assert.Equal(t, 1, st.TickCount)
	assert.Equal(t, p.snaps[0].CapturedAt, st.SnapshotAt)
}

func TestDriver_BuysOnDip(t *testing.T) {
	p := &fakeProvider{key: "k1", snaps: []*domain.MarketSnapshot{
		liquid(0.50, 0.50),
		liquid(0.50, 0.50),
		liquid(0.40, 0.60), // avg_yes ≈ 0.467, dip of 0.067 > hysteresis
	}}
	store := &fakeStore{}
	d := newTestDriver(p, store)

	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 3; i++ {
		d.Tick(ctx, now)
	}

	st := d.State()
	assert.Equal(t, "Bought YES @ 0.400", st.LastAction)
	assert.Equal(t, 10.0, st.Position.QtyYes)
	assert.InDelta(t, 96.0, st.CashBalance, 1e-9) // 100 - 0.40*10
	require.Len(t, store.trades, 1)
	assert.Equal(t, domain.SideYes, store.trades[0].Side)
}

func TestDriver_FetchErrorSkipsTick(t *testing.T) {
	p := &fakeProvider{key: "k1",
		snaps: []*domain.MarketSnapshot{liquid(0.50, 0.50), nil},
		errs:  []error{nil, errors.New("gateway timeout")},
	}
	d := newTestDriver(p, nil)

	ctx := context.Background()
	d.Tick(ctx, time.Now())
	before := d.State()
	d.Tick(ctx, time.Now())
	after := d.State()

	// The failed tick leaves everything untouched, including the counter
	// and the last action.
	assert.Equal(t, before.TickCount, after.TickCount)
	assert.Equal(t, before.LastAction, after.LastAction)
	assert.Equal(t, before.AvgYes, after.AvgYes)
}

func TestDriver_NoDataAndNoLiquidity(t *testing.T) {
	illiquid := &domain.MarketSnapshot{InstanceKey: "k1", PriceYes: domain.Price(0.5)}
	p := &fakeProvider{key: "k1", snaps: []*domain.MarketSnapshot{nil, illiquid}}
	d := newTestDriver(p, nil)

	ctx := context.Background()
	d.Tick(ctx, time.Now())
	assert.Equal(t, domain.ActionNoData, d.State().LastAction)

	d.Tick(ctx, time.Now())
	st := d.State()
	assert.Equal(t, domain.ActionNoLiquidity, st.LastAction)
	// Neither tick fed the moving average.
	assert.Equal(t, 0.0, st.AvgYes)
	assert.Equal(t, 2, st.TickCount)
}

func TestDriver_RolloverSettlesAndReseeds(t *testing.T) {
	p := &fakeProvider{key: "k1", snaps: []*domain.MarketSnapshot{
		liquid(0.50, 0.50),
		liquid(0.50, 0.50),
		liquid(0.40, 0.60), // buys 10 YES @ 0.40
		liquid(0.55, 0.45),
	}}
	store := &fakeStore{}
	d := newTestDriver(p, store)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d.Tick(ctx, time.Now())
	}
	require.Equal(t, 10.0, d.State().Position.QtyYes)

	p.key = "k2"
	d.Tick(ctx, time.Now())

	st := d.State()
	assert.Equal(t, "k2", st.InstanceKey)
	// cost-basis on 10 unmatched YES at last price 0.40: payout 4.00,
	// seed = 96 + 4 = 100. The new instance starts flat.
	require.Len(t, store.settlements, 1)
	assert.InDelta(t, 4.0, store.settlements[0].Payout, 1e-9)
	assert.InDelta(t, 100.0, store.settlements[0].SeedBalance, 1e-9)
	assert.Equal(t, domain.PolicyCostBasis, store.settlements[0].Policy)
	assert.Equal(t, "k1", store.settlements[0].InstanceKey)
	assert.Equal(t, 0.0, st.Position.QtyYes)
	// The tick that detected the rollover still traded on the fresh
	// window: one price point, average equals price, hold.
	assert.Equal(t, domain.ActionHold, st.LastAction)
	assert.Equal(t, 0.55, st.AvgYes)
}

func TestDriver_ResetUsesMarkToMarket(t *testing.T) {
	p := &fakeProvider{key: "k1", snaps: []*domain.MarketSnapshot{
		liquid(0.50, 0.50),
		liquid(0.50, 0.50),
		liquid(0.40, 0.60),
	}}
	store := &fakeStore{}
	d := newTestDriver(p, store)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d.Tick(ctx, time.Now())
	}

	s := d.Reset(ctx, time.Now())
	assert.Equal(t, domain.PolicyMarkToMarket, s.Policy)
	// 10 YES valued at the last liquid price 0.40 → 96 + 4 = 100.
	assert.InDelta(t, 100.0, s.SeedBalance, 1e-9)
	require.Len(t, store.settlements, 1)

	st := d.State()
	assert.Equal(t, 0.0, st.Position.QtyYes)
	assert.Equal(t, 100.0, st.CashBalance)
	assert.Equal(t, domain.ActionNoData, st.LastAction)
}

func TestDriver_StateListener(t *testing.T) {
	p := &fakeProvider{key: "k1", snaps: []*domain.MarketSnapshot{liquid(0.50, 0.50)}}
	d := newTestDriver(p, nil)

	var got []State
	d.OnState(func(s State) { got = append(got, s) })

	d.Tick(context.Background(), time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, "hourly", got[0].Series)
}
