package domain

import "time"

// MarketSnapshot es una lectura inmutable de los precios de una instancia de
// mercado. InstanceKey identifica la instancia viva (cambia en cada rollover).
// Un precio nil significa que ese lado no tiene liquidez en el book.
type MarketSnapshot struct {
	InstanceKey string
	Strike      *float64 // precio a batir; nil si el upstream no lo expone
	PriceYes    *float64
	PriceNo     *float64
	CapturedAt  time.Time
}

// HasLiquidity devuelve true si ambos lados tienen precio.
func (s MarketSnapshot) HasLiquidity() bool {
	return s.PriceYes != nil && s.PriceNo != nil
}

// Yes devuelve el precio YES, o 0 si no hay liquidez en ese lado.
func (s MarketSnapshot) Yes() float64 {
	if s.PriceYes == nil {
		return 0
	}
	return *s.PriceYes
}

// No devuelve el precio NO, o 0 si no hay liquidez en ese lado.
func (s MarketSnapshot) No() float64 {
	if s.PriceNo == nil {
		return 0
	}
	return *s.PriceNo
}

// Price es un helper para construir snapshots en tests y adapters.
func Price(v float64) *float64 { return &v }
