package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// SnapshotProvider obtiene el snapshot de precios del mercado binario
// activo de una serie (hourly, 15m...).
type SnapshotProvider interface {
	// FetchSnapshot resuelve la instancia activa de la serie y devuelve
	// sus precios YES/NO actuales. Un solo intento: el caller decide si
	// saltar el tick en caso de error.
	FetchSnapshot(ctx context.Context, series string) (*domain.MarketSnapshot, error)

	// CurrentInstanceKey devuelve la clave de la instancia activa de la
	// serie en el instante dado, sin llamar a la red. Se usa para detectar
	// el rollover horario.
	CurrentInstanceKey(series string, now time.Time) string
}
