package ports

import (
	"context"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// ReferenceProvider obtiene el mercado de referencia del venue A para el
// escaneo de arbitraje: un único strike (precio a batir) con sus patas
// Up/Down.
type ReferenceProvider interface {
	FetchReference(ctx context.Context) (*domain.ReferenceMarket, error)
}
