package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ledger es el estado mutable de una serie: cash, posición y trades.
// Un ledger pertenece a exactamente un driver de serie; en cada rollover
// se retira y se construye uno nuevo con el balance resultante del
// settlement. Nunca coexisten dos ledgers de la misma serie.
type Ledger struct {
	CashBalance float64
	Position    Position
	Trades      []Trade
}

// NewLedger crea un ledger con el balance inicial dado, posición vacía
// y sin historial de trades.
func NewLedger(seed float64) *Ledger {
	return &Ledger{CashBalance: seed}
}

// ApplyBuy ejecuta una compra ya aprobada por el controller: descuenta el
// cash, acumula qty y cost basis del lado, y registra el trade.
// El caller es responsable de haber validado fondos y pair cost.
func (l *Ledger) ApplyBuy(series string, side TradeSide, price, size float64, now time.Time) Trade {
	cost := price * size
	l.CashBalance -= cost

	switch side {
	case SideYes:
		l.Position.QtyYes += size
		l.Position.CostBasisYes += cost
	case SideNo:
		l.Position.QtyNo += size
		l.Position.CostBasisNo += cost
	}

	t := Trade{
		ID:        uuid.New().String(),
		Series:    series,
		Side:      side,
		Price:     price,
		Size:      size,
		Timestamp: now,
	}
	l.Trades = append(l.Trades, t)
	return t
}

// Equity devuelve cash + valor de mercado de la posición a los últimos
// precios observados.
func (l *Ledger) Equity(lastYes, lastNo float64) float64 {
	return l.CashBalance + l.Position.QtyYes*lastYes + l.Position.QtyNo*lastNo
}

// RecentTrades devuelve los últimos n trades, más reciente al final.
func (l *Ledger) RecentTrades(n int) []Trade {
	if n <= 0 || len(l.Trades) <= n {
		return l.Trades
	}
	return l.Trades[len(l.Trades)-n:]
}
