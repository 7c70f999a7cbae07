package kalshi

import "github.com/alejandrodnm/strikebot/internal/domain"

// DTOs raw de la API de Kalshi. La API cotiza en céntimos enteros (1-99);
// la conversión a dólares se hace en mapMarkets.

// marketsResponse es la respuesta paginada de GET /markets.
type marketsResponse struct {
	Markets []kalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

// kalshiMarket es un mercado de strike del evento horario.
type kalshiMarket struct {
	Ticker      string  `json:"ticker"`
	EventTicker string  `json:"event_ticker"`
	Status      string  `json:"status"`
	YesAsk      float64 `json:"yes_ask"`
	NoAsk       float64 `json:"no_ask"`
	StrikeType  string  `json:"strike_type"`
	FloorStrike float64 `json:"floor_strike"`
}

// mapMarkets convierte los DTOs a domain.StrikeMarket. Los mercados sin
// ask en alguno de los dos lados se descartan: un ask de 0 céntimos no es
// un precio, es un book vacío, y entraría al scanner como oportunidad falsa.
func mapMarkets(raw []kalshiMarket) []domain.StrikeMarket {
	ladder := make([]domain.StrikeMarket, 0, len(raw))
	for _, m := range raw {
		if m.YesAsk <= 0 || m.NoAsk <= 0 {
			continue
		}
		ladder = append(ladder, domain.StrikeMarket{
			Ticker:  m.Ticker,
			Strike:  m.FloorStrike,
			YesCost: m.YesAsk / 100.0,
			NoCost:  m.NoAsk / 100.0,
		})
	}
	return ladder
}
