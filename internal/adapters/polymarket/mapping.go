package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Outcomes del mercado binario de Bitcoin en Gamma. "Up" se mapea al lado
// YES del simulador y "Down" al lado NO.
const (
	outcomeUp   = "Up"
	outcomeDown = "Down"
)

// parseTokenIDs deserializa los strings JSON anidados de un mercado de
// Gamma y devuelve el map outcome → token_id. El mercado debe tener
// exactamente dos outcomes.
func parseTokenIDs(m gammaEventMarket) (map[string]string, error) {
	var tokenIDs []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &tokenIDs); err != nil {
		return nil, fmt.Errorf("parse clobTokenIds: %w", err)
	}
	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil {
		return nil, fmt.Errorf("parse outcomes: %w", err)
	}
	if len(tokenIDs) != 2 || len(outcomes) != 2 {
		return nil, fmt.Errorf("market has %d outcomes, want 2", len(outcomes))
	}

	byOutcome := make(map[string]string, 2)
	for i, o := range outcomes {
		byOutcome[o] = tokenIDs[i]
	}
	return byOutcome, nil
}

// lowestAsk devuelve el ask más barato del book, o (0, false) si no hay
// vendedores. Sin asks no hay precio de compra: el lado queda sin liquidez.
func lowestAsk(book bookResponse) (float64, bool) {
	found := false
	best := 0.0
	for _, lvl := range book.Asks {
		p, err := strconv.ParseFloat(lvl.Price, 64)
		if err != nil {
			continue
		}
		if !found || p < best {
			best = p
			found = true
		}
	}
	return best, found
}
