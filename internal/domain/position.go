package domain

import "time"

// TradeSide es uno de los dos lados de un mercado binario.
type TradeSide string

const (
	SideYes TradeSide = "YES"
	SideNo  TradeSide = "NO"
)

// Trade es una compra simulada registrada en el ledger. Append-only.
type Trade struct {
	ID        string
	Series    string
	Side      TradeSide
	Price     float64
	Size      float64
	Timestamp time.Time
}

// Position acumula cantidades y cost basis por lado.
// Invariante: CostBasis de un lado es 0 si y solo si su Qty es 0.
type Position struct {
	QtyYes       float64
	QtyNo        float64
	CostBasisYes float64
	CostBasisNo  float64
}

// AvgCostYes devuelve el coste medio del lado YES, o 0 sin posición.
func (p Position) AvgCostYes() float64 {
	if p.QtyYes <= 0 {
		return 0
	}
	return p.CostBasisYes / p.QtyYes
}

// AvgCostNo devuelve el coste medio del lado NO, o 0 sin posición.
func (p Position) AvgCostNo() float64 {
	if p.QtyNo <= 0 {
		return 0
	}
	return p.CostBasisNo / p.QtyNo
}

// PairCost es la suma de costes medios de ambos lados.
// El fair value de un par emparejado es $1.00 a resolución: acumular
// por encima de eso es pérdida garantizada.
func (p Position) PairCost() float64 {
	return p.AvgCostYes() + p.AvgCostNo()
}

// MatchedPairs devuelve min(QtyYes, QtyNo) — pares que pagan $1.00 seguro.
func (p Position) MatchedPairs() float64 {
	if p.QtyYes < p.QtyNo {
		return p.QtyYes
	}
	return p.QtyNo
}

// UnmatchedYes devuelve las shares YES sin par.
func (p Position) UnmatchedYes() float64 { return p.QtyYes - p.MatchedPairs() }

// UnmatchedNo devuelve las shares NO sin par.
func (p Position) UnmatchedNo() float64 { return p.QtyNo - p.MatchedPairs() }

// LockedProfit es la ganancia asegurada por los pares emparejados:
// cada par paga $1.00 y costó PairCost.
func (p Position) LockedProfit() float64 {
	matched := p.MatchedPairs()
	if matched == 0 {
		return 0
	}
	return matched - matched*p.PairCost()
}
