package ports

import (
	"context"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// StrikeProvider obtiene la escalera de strikes del venue B para el
// escaneo de arbitraje, con costes ya normalizados a la escala $0–$1.
type StrikeProvider interface {
	FetchStrikeLadder(ctx context.Context) ([]domain.StrikeMarket, error)
}
