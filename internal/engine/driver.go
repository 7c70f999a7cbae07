package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/strikebot/internal/domain"
	"github.com/alejandrodnm/strikebot/internal/ports"
)

const (
	DefaultTickInterval = 2 * time.Second
	DefaultSeedBalance  = 100.0
	recentTradesShown   = 10
)

// Config holds the per-series simulation settings.
type Config struct {
	Series       string
	TickInterval time.Duration
	SeedBalance  float64
	Policy       domain.SettlementPolicy
	Controller   domain.Controller
	WindowSize   int
}

// Driver runs the simulation loop for exactly one series. It owns the
// ledger and the price window for that series; on an instance rollover it
// settles the retiring ledger and reseeds a fresh one. All mutable state
// is guarded by mu so the HTTP server can read it concurrently.
type Driver struct {
	cfg      Config
	provider ports.SnapshotProvider
	store    ports.SimStorage // nil disables persistence

	mu          sync.RWMutex
	ledger      *domain.Ledger
	window      *domain.PriceWindow
	instanceKey string
	lastSnap    *domain.MarketSnapshot
	lastAction  string
	settlements []domain.Settlement
	tickCount   int
	startedAt   time.Time

	onState func(State) // optional, invoked after every applied tick
}

// New creates a driver for one series. store may be nil.
func New(cfg Config, provider ports.SnapshotProvider, store ports.SimStorage) *Driver {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.SeedBalance <= 0 {
		cfg.SeedBalance = DefaultSeedBalance
	}
	if cfg.Policy == "" {
		cfg.Policy = domain.PolicyCostBasis
	}
	if cfg.Controller == (domain.Controller{}) {
		cfg.Controller = domain.NewController()
	}
	return &Driver{
		cfg:        cfg,
		provider:   provider,
		store:      store,
		ledger:     domain.NewLedger(cfg.SeedBalance),
		window:     domain.NewPriceWindow(cfg.WindowSize),
		lastAction: domain.ActionNoData,
		startedAt:  time.Now(),
	}
}

// OnState registers a callback invoked with a state snapshot after every
// applied tick. Must be called before Run.
func (d *Driver) OnState(fn func(State)) { d.onState = fn }

// Run executes the tick loop until the context is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	slog.Info("driver starting",
		"series", d.cfg.Series,
		"interval", d.cfg.TickInterval,
		"seed", d.cfg.SeedBalance,
		"policy", d.cfg.Policy,
	)

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("driver stopped", "series", d.cfg.Series)
			return nil
		case <-ticker.C:
			d.Tick(ctx, time.Now())
		}
	}
}

// Tick executes a single simulation step: rollover check, one price fetch,
// window update and controller decision. A fetch error skips the tick
// without touching any state; there is no retry, the next tick is two
// seconds away anyway.
func (d *Driver) Tick(ctx context.Context, now time.Time) {
	d.rolloverIfNeeded(ctx, now)

	snap, err := d.provider.FetchSnapshot(ctx, d.cfg.Series)
	if err != nil {
		slog.Warn("tick: fetch failed, skipping", "series", d.cfg.Series, "err", err)
		return
	}

	d.mu.Lock()
	d.tickCount++

	if snap == nil {
		d.lastAction = domain.ActionNoData
		d.mu.Unlock()
		d.emitState()
		return
	}
	if !snap.HasLiquidity() {
		// Snapshots without both prices never enter the moving average,
		// and never replace the snapshot a settlement will value against.
		d.lastAction = domain.ActionNoLiquidity
		d.mu.Unlock()
		d.emitState()
		return
	}

	yes, no := snap.Yes(), snap.No()
	d.window.Update(yes, no)
	avgYes, avgNo := d.window.Averages()

	decision := d.cfg.Controller.Decide(yes, no, avgYes, avgNo, d.ledger.Position, d.ledger.CashBalance)

	var trade *domain.Trade
	if decision.Buy {
		t := d.ledger.ApplyBuy(d.cfg.Series, decision.Side, decision.Price, d.cfg.Controller.BuySize, now)
		trade = &t
	}
	d.lastSnap = snap
	d.lastAction = decision.Action
	d.mu.Unlock()

	if trade != nil {
		slog.Info("trade executed",
			"series", d.cfg.Series,
			"side", trade.Side,
			"price", trade.Price,
			"size", trade.Size,
		)
		if d.store != nil {
			if err := d.store.SaveTrade(ctx, *trade); err != nil {
				slog.Warn("tick: save trade failed", "series", d.cfg.Series, "err", err)
			}
		}
	}
	d.emitState()
}

// rolloverIfNeeded settles the ledger and reseeds when the active
// instance of the series has changed since the last tick. The cut is
// hard: no position survives into the new instance under any policy.
func (d *Driver) rolloverIfNeeded(ctx context.Context, now time.Time) {
	key := d.provider.CurrentInstanceKey(d.cfg.Series, now)

	d.mu.Lock()
	if d.instanceKey == "" {
		d.instanceKey = key
		d.mu.Unlock()
		return
	}
	if key == d.instanceKey {
		d.mu.Unlock()
		return
	}

	retired := d.instanceKey
	s := d.settleLocked(retired, d.cfg.Policy, now)
	d.instanceKey = key
	d.mu.Unlock()

	slog.Info("instance rollover",
		"series", d.cfg.Series,
		"retired", retired,
		"active", key,
		"payout", s.Payout,
		"seed", s.SeedBalance,
	)
	d.persistSettlement(ctx, s)
}

// Reset manually retires the current ledger at full mark-to-market equity
// and reseeds, regardless of the configured rollover policy.
func (d *Driver) Reset(ctx context.Context, now time.Time) domain.Settlement {
	d.mu.Lock()
	s := d.settleLocked(d.instanceKey, domain.PolicyMarkToMarket, now)
	d.mu.Unlock()

	slog.Info("manual reset", "series", d.cfg.Series, "seed", s.SeedBalance)
	d.persistSettlement(ctx, s)
	return s
}

// settleLocked retires the current ledger under the given policy and
// replaces it with a fresh one seeded from the settlement. mu must be held.
func (d *Driver) settleLocked(instanceKey string, policy domain.SettlementPolicy, now time.Time) domain.Settlement {
	var last domain.MarketSnapshot
	if d.lastSnap != nil {
		last = *d.lastSnap
	}

	payout, seed := domain.Settle(d.ledger, last, policy)
	s := domain.NewSettlement(d.cfg.Series, instanceKey, policy, payout, seed, now)
	d.settlements = append(d.settlements, s)

	d.ledger = domain.NewLedger(seed)
	d.window.Reset()
	d.lastSnap = nil
	d.lastAction = domain.ActionNoData
	return s
}

func (d *Driver) persistSettlement(ctx context.Context, s domain.Settlement) {
	if d.store == nil {
		return
	}
	if err := d.store.SaveSettlement(ctx, s); err != nil {
		slog.Warn("save settlement failed", "series", d.cfg.Series, "err", err)
	}
}

func (d *Driver) emitState() {
	if d.onState == nil {
		return
	}
	d.onState(d.State())
}

// State is a read-only snapshot of the driver. The HTTP layer maps it to
// its own response types.
type State struct {
	Series       string
	InstanceKey  string
	CashBalance  float64
	Equity       float64
	LockedProfit float64
	Position     domain.Position
	AvgYes       float64
	AvgNo        float64
	LastYes      float64
	LastNo       float64
	SnapshotAt   time.Time // capture time of the last liquid snapshot
	LastAction   string
	RecentTrades []domain.Trade
	Settlements  []domain.Settlement
	TickCount    int
	StartedAt    time.Time
}

// State returns a consistent snapshot of the current simulation state.
func (d *Driver) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var lastYes, lastNo float64
	var snapshotAt time.Time
	if d.lastSnap != nil {
		lastYes, lastNo = d.lastSnap.Yes(), d.lastSnap.No()
		snapshotAt = d.lastSnap.CapturedAt
	}
	avgYes, avgNo := d.window.Averages()

	trades := d.ledger.RecentTrades(recentTradesShown)
	recent := make([]domain.Trade, len(trades))
	copy(recent, trades)

	settlements := make([]domain.Settlement, len(d.settlements))
	copy(settlements, d.settlements)

	return State{
		Series:       d.cfg.Series,
		InstanceKey:  d.instanceKey,
		CashBalance:  d.ledger.CashBalance,
		Equity:       d.ledger.Equity(lastYes, lastNo),
		LockedProfit: d.ledger.Position.LockedProfit(),
		Position:     d.ledger.Position,
		AvgYes:       avgYes,
		AvgNo:        avgNo,
		LastYes:      lastYes,
		LastNo:       lastNo,
		SnapshotAt:   snapshotAt,
		LastAction:   d.lastAction,
		RecentTrades: recent,
		Settlements:  settlements,
		TickCount:    d.tickCount,
		StartedAt:    d.startedAt,
	}
}
