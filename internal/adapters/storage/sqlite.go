package storage

// sqlite.go — historial de la simulación en SQLite (pure Go, sin CGo).
//
// Dos tablas append-only: `trades` (una fila por compra) y `settlements`
// (una fila por rollover liquidado). El estado vivo del ledger no se
// persiste — se reconstruye solo, y tras un restart la simulación arranca
// limpia igual que tras un rollover. Prune automático al aplicar el schema.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

const schema = `
-- Una fila por compra ejecutada por el simulador
CREATE TABLE IF NOT EXISTS trades (
    id          TEXT PRIMARY KEY,
    series      TEXT NOT NULL,
    side        TEXT NOT NULL,
    price       REAL NOT NULL,
    size        REAL NOT NULL,
    executed_at TEXT NOT NULL
);

-- Una fila por rollover liquidado (o reset manual)
CREATE TABLE IF NOT EXISTS settlements (
    id           TEXT PRIMARY KEY,
    series       TEXT NOT NULL,
    instance_key TEXT NOT NULL,
    policy       TEXT NOT NULL,
    payout       REAL NOT NULL,
    seed_balance REAL NOT NULL,
    settled_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_series ON trades(series, executed_at DESC);
CREATE INDEX IF NOT EXISTS idx_settle_series ON settlements(series, settled_at DESC);
`

// retention limita el historial: con un trade potencial cada 2s el
// archivo crecería sin límite.
const retention = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.SimStorage usando SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	return &SQLiteStorage{db: db}, nil
}

// ApplySchema crea las tablas si no existen y limpia el historial antiguo.
func (s *SQLiteStorage) ApplySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("storage.ApplySchema: %w", err)
	}
	s.pruneOld(ctx)
	return nil
}

// SaveTrade persiste una compra ejecutada.
func (s *SQLiteStorage) SaveTrade(ctx context.Context, t domain.Trade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (id, series, side, price, size, executed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Series, string(t.Side), t.Price, t.Size, t.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveTrade: %w", err)
	}
	return nil
}

// SaveSettlement persiste la liquidación de un rollover.
func (s *SQLiteStorage) SaveSettlement(ctx context.Context, st domain.Settlement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, series, instance_key, policy, payout, seed_balance, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Series, st.InstanceKey, string(st.Policy),
		st.Payout, st.SeedBalance, st.SettledAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSettlement: %w", err)
	}
	return nil
}

// GetTrades devuelve los últimos trades de la serie, más recientes primero.
// Con limit <= 0 devuelve todos.
func (s *SQLiteStorage) GetTrades(ctx context.Context, series string, limit int) ([]domain.Trade, error) {
	q := `SELECT id, series, side, price, size, executed_at
	      FROM trades WHERE series = ? ORDER BY executed_at DESC`
	args := []any{series}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var side, executedAt string
		if err := rows.Scan(&t.ID, &t.Series, &side, &t.Price, &t.Size, &executedAt); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}
		t.Side = domain.TradeSide(side)
		t.Timestamp, _ = time.Parse(time.RFC3339Nano, executedAt)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// GetSettlements devuelve las liquidaciones de la serie, más recientes primero.
func (s *SQLiteStorage) GetSettlements(ctx context.Context, series string) ([]domain.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, series, instance_key, policy, payout, seed_balance, settled_at
		FROM settlements WHERE series = ? ORDER BY settled_at DESC
	`, series)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSettlements: query: %w", err)
	}
	defer rows.Close()

	var settlements []domain.Settlement
	for rows.Next() {
		var st domain.Settlement
		var policy, settledAt string
		if err := rows.Scan(&st.ID, &st.Series, &st.InstanceKey, &policy,
			&st.Payout, &st.SeedBalance, &settledAt); err != nil {
			return nil, fmt.Errorf("storage.GetSettlements: scan row: %w", err)
		}
		st.Policy = domain.SettlementPolicy(policy)
		st.SettledAt, _ = time.Parse(time.RFC3339Nano, settledAt)
		settlements = append(settlements, st)
	}
	return settlements, rows.Err()
}

// GetSeriesStats agrega contadores y totales por serie.
func (s *SQLiteStorage) GetSeriesStats(ctx context.Context) ([]domain.SeriesStats, error) {
	byName := make(map[string]*domain.SeriesStats)
	get := func(series string) *domain.SeriesStats {
		st, ok := byName[series]
		if !ok {
			st = &domain.SeriesStats{Series: series}
			byName[series] = st
		}
		return st
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT series,
		       COUNT(*),
		       SUM(CASE WHEN side = 'YES' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN side = 'NO' THEN 1 ELSE 0 END),
		       MIN(executed_at),
		       MAX(executed_at)
		FROM trades GROUP BY series
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSeriesStats: trades: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var series, first, last string
		var total, yes, no int
		if err := rows.Scan(&series, &total, &yes, &no, &first, &last); err != nil {
			return nil, fmt.Errorf("storage.GetSeriesStats: scan trades: %w", err)
		}
		st := get(series)
		st.TotalTrades = total
		st.TradesYes = yes
		st.TradesNo = no
		st.FirstTradeAt, _ = time.Parse(time.RFC3339Nano, first)
		st.LastTradeAt, _ = time.Parse(time.RFC3339Nano, last)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetSeriesStats: trades rows: %w", err)
	}

	srows, err := s.db.QueryContext(ctx, `
		SELECT series, COUNT(*), SUM(payout),
		       (SELECT seed_balance FROM settlements s2
		        WHERE s2.series = settlements.series
		        ORDER BY settled_at DESC LIMIT 1)
		FROM settlements GROUP BY series
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSeriesStats: settlements: %w", err)
	}
	defer srows.Close()

	for srows.Next() {
		var series string
		var count int
		var payout, lastSeed float64
		if err := srows.Scan(&series, &count, &payout, &lastSeed); err != nil {
			return nil, fmt.Errorf("storage.GetSeriesStats: scan settlements: %w", err)
		}
		st := get(series)
		st.TotalSettlements = count
		st.TotalPayout = payout
		st.LastSeedBalance = lastSeed
	}
	if err := srows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetSeriesStats: settlements rows: %w", err)
	}

	stats := make([]domain.SeriesStats, 0, len(byName))
	for _, st := range byName {
		stats = append(stats, *st)
	}
	return stats, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra el historial fuera de la ventana de retención. Best
// effort: un fallo aquí no impide arrancar.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)
	for _, q := range []string{
		`DELETE FROM trades WHERE executed_at < ?`,
		`DELETE FROM settlements WHERE settled_at < ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, cutoff); err != nil {
			slog.Warn("storage prune failed", "err", err)
		}
	}
}
