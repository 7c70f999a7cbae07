package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SettlementPolicy determina la fórmula de payout al retirar un ledger
// en un rollover de instancia.
type SettlementPolicy string

const (
	// PolicyCostBasis paga $1.00 por par emparejado y marca a mercado
	// las shares sin par con los últimos precios observados.
	PolicyCostBasis SettlementPolicy = "cost-basis"

	// PolicyMatchedOnly paga solo los pares emparejados; las shares sin
	// par valen $0 (conservador).
	PolicyMatchedOnly SettlementPolicy = "matched-only"

	// PolicyMarkToMarket usa la equity completa (cash + posición a últimos
	// precios) como seed de la siguiente instancia.
	PolicyMarkToMarket SettlementPolicy = "mark-to-market"

	// PolicyWinnerTakeAll paga $1.00 por share del lado con mayor último
	// precio; el lado perdedor vale $0. En empate exacto se liquida como
	// matched-only: los pares pagan $1.00 y lo demás se quema.
	PolicyWinnerTakeAll SettlementPolicy = "winner-take-all"
)

// ParseSettlementPolicy valida el nombre de una policy de configuración.
func ParseSettlementPolicy(s string) (SettlementPolicy, error) {
	switch SettlementPolicy(s) {
	case PolicyCostBasis, PolicyMatchedOnly, PolicyMarkToMarket, PolicyWinnerTakeAll:
		return SettlementPolicy(s), nil
	case "":
		return PolicyCostBasis, nil
	}
	return "", fmt.Errorf("domain.ParseSettlementPolicy: unknown policy %q", s)
}

// Settlement es el registro de un rollover liquidado.
type Settlement struct {
	ID          string
	Series      string
	InstanceKey string // instancia retirada
	Policy      SettlementPolicy
	Payout      float64
	SeedBalance float64 // balance con el que arranca la siguiente instancia
	SettledAt   time.Time
}

// Settle calcula el payout del ledger retirado bajo la policy dada y el
// seed del sucesor. last es el último snapshot CON liquidez de la
// instancia retirada (no el de la nueva); un lado sin precio se valora a 0.
// El corte es duro: ninguna policy arrastra posición entre instancias.
func Settle(l *Ledger, last MarketSnapshot, policy SettlementPolicy) (payout, seed float64) {
	lastYes := last.Yes()
	lastNo := last.No()
	pos := l.Position
	matched := pos.MatchedPairs()

	switch policy {
	case PolicyMatchedOnly:
		payout = matched

	case PolicyMarkToMarket:
		payout = pos.QtyYes*lastYes + pos.QtyNo*lastNo

	case PolicyWinnerTakeAll:
		switch {
		case lastYes > lastNo:
			payout = pos.QtyYes
		case lastNo > lastYes:
			payout = pos.QtyNo
		default:
			payout = matched
		}

	default: // PolicyCostBasis
		payout = matched + pos.UnmatchedYes()*lastYes + pos.UnmatchedNo()*lastNo
	}

	return payout, l.CashBalance + payout
}

// NewSettlement construye el registro de un rollover ya calculado.
func NewSettlement(series, instanceKey string, policy SettlementPolicy, payout, seed float64, at time.Time) Settlement {
	return Settlement{
		ID:          uuid.New().String(),
		Series:      series,
		InstanceKey: instanceKey,
		Policy:      policy,
		Payout:      payout,
		SeedBalance: seed,
		SettledAt:   at,
	}
}
