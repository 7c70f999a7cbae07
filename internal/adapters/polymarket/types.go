package polymarket

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaEventsResponse es la respuesta de GET /events?slug=.
type gammaEventsResponse []gammaEvent

// gammaEvent es un evento de Gamma con sus mercados anidados.
type gammaEvent struct {
	Slug    string             `json:"slug"`
	Markets []gammaEventMarket `json:"markets"`
}

// gammaEventMarket es un mercado dentro de un evento. Gamma serializa
// clobTokenIds y outcomes como strings JSON anidados, no como arrays.
type gammaEventMarket struct {
	ClobTokenIDs string `json:"clobTokenIds"`
	Outcomes     string `json:"outcomes"`
	Closed       bool   `json:"closed"`
}

// --- CLOB API ---

// bookResponse es la respuesta de GET /book?token_id=.
type bookResponse struct {
	AssetID string      `json:"asset_id"`
	Bids    []bookLevel `json:"bids"`
	Asks    []bookLevel `json:"asks"`
}

// bookLevel es un nivel de precio raw de la API (strings para mayor precisión).
type bookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}
