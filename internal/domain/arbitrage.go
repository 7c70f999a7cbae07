package domain

import (
	"math"
	"sort"
	"time"
)

// La ventana del scanner: 4 strikes por debajo y 4 por encima del más
// cercano al strike de referencia (máx 9 entradas, recortada en los
// bordes de la lista — nunca envuelve ni rellena).
const strikeWindowRadius = 4

// ReferenceMarket es el mercado de referencia del venue A: un único strike
// (precio a batir) con patas Up/Down.
type ReferenceMarket struct {
	InstanceKey string
	Strike      float64
	// LastPrice es el precio actual del subyacente, informativo. 0 si el
	// upstream no pudo proporcionarlo (no bloquea el escaneo).
	LastPrice float64
	UpCost    float64
	DownCost  float64
}

// StrikeMarket es un mercado del venue B: un strike con patas Yes/No,
// con costes ya normalizados a la escala $0–$1.
type StrikeMarket struct {
	Ticker  string
	Strike  float64
	YesCost float64
	NoCost  float64
}

// Leg identifica la pata comprada en cada venue.
type Leg string

const (
	LegUp   Leg = "Up"
	LegDown Leg = "Down"
	LegYes  Leg = "Yes"
	LegNo   Leg = "No"
)

// Relación entre el strike de referencia y el strike comparado.
const (
	RelationAbove = "Ref > Strike"
	RelationBelow = "Ref < Strike"
	RelationEqual = "Equal"
)

// ArbCheck es la evaluación de un emparejamiento de patas entre venues.
// Es oportunidad si el coste combinado es menor que el payout garantizado
// de $1.00.
type ArbCheck struct {
	Ticker        string
	StrikeB       float64
	Relation      string
	RefLeg        Leg
	StrikeLeg     Leg
	RefCost       float64
	StrikeCost    float64
	TotalCost     float64
	IsOpportunity bool
	Margin        float64
}

// ScanResult contiene todos los checks evaluados (para display) y el
// subconjunto que es oportunidad (para acción), en orden de ventana.
type ScanResult struct {
	Checks        []ArbCheck
	Opportunities []ArbCheck
}

// ScanArbitrage localiza emparejamientos de patas entre el mercado de
// referencia y la escalera de strikes del venue B cuyo coste combinado
// es provablemente menor que $1.00.
//
// Racional de los emparejamientos: con strike_ref > strike_b, el rango
// [strike_b, strike_ref) hace ganar a AMBAS patas Down(ref) + Yes(b);
// fuera del rango gana exactamente una. El payout mínimo es $1.00, así
// que cualquier coste combinado < $1.00 es margen libre de riesgo. El
// caso simétrico empareja Up(ref) + No(b). Con strikes iguales ambos
// emparejamientos se evalúan de forma independiente y ambos se emiten.
func ScanArbitrage(ref ReferenceMarket, markets []StrikeMarket) ScanResult {
	var result ScanResult
	if len(markets) == 0 {
		return result
	}

	ladder := make([]StrikeMarket, len(markets))
	copy(ladder, markets)
	sort.SliceStable(ladder, func(i, j int) bool {
		return ladder[i].Strike < ladder[j].Strike
	})

	idx := nearestStrikeIndex(ladder, ref.Strike)
	lo := max(0, idx-strikeWindowRadius)
	hi := min(len(ladder), idx+strikeWindowRadius+1)

	for _, m := range ladder[lo:hi] {
		switch {
		case ref.Strike > m.Strike:
			result.append(newCheck(m, RelationAbove, LegDown, LegYes, ref.DownCost, m.YesCost))
		case ref.Strike < m.Strike:
			result.append(newCheck(m, RelationBelow, LegUp, LegNo, ref.UpCost, m.NoCost))
		default:
			// Strikes iguales: ambos emparejamientos son válidos y se
			// chequean por separado.
			result.append(newCheck(m, RelationEqual, LegDown, LegYes, ref.DownCost, m.YesCost))
			result.append(newCheck(m, RelationEqual, LegUp, LegNo, ref.UpCost, m.NoCost))
		}
	}

	return result
}

// nearestStrikeIndex devuelve el índice del strike con menor diferencia
// absoluta al de referencia. En empate gana el primero encontrado
// escaneando de izquierda a derecha (strikes ascendentes).
func nearestStrikeIndex(ladder []StrikeMarket, strike float64) int {
	closest := 0
	minDiff := math.Inf(1)
	for i, m := range ladder {
		diff := math.Abs(m.Strike - strike)
		if diff < minDiff {
			minDiff = diff
			closest = i
		}
	}
	return closest
}

func newCheck(m StrikeMarket, relation string, refLeg, strikeLeg Leg, refCost, strikeCost float64) ArbCheck {
	total := refCost + strikeCost
	check := ArbCheck{
		Ticker:     m.Ticker,
		StrikeB:    m.Strike,
		Relation:   relation,
		RefLeg:     refLeg,
		StrikeLeg:  strikeLeg,
		RefCost:    refCost,
		StrikeCost: strikeCost,
		TotalCost:  total,
	}
	if total < 1.00 {
		check.IsOpportunity = true
		check.Margin = 1.00 - total
	}
	return check
}

func (r *ScanResult) append(c ArbCheck) {
	r.Checks = append(r.Checks, c)
	if c.IsOpportunity {
		r.Opportunities = append(r.Opportunities, c)
	}
}

// ArbReport es la salida completa de un escaneo, incluyendo los datos
// upstream y los errores no fatales acumulados.
type ArbReport struct {
	Reference     *ReferenceMarket
	Markets       []StrikeMarket
	Checks        []ArbCheck
	Opportunities []ArbCheck
	Errors        []string
	ScannedAt     time.Time
}
