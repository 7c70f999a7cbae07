package ports

import (
	"context"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// Notifier presenta los resultados del bot al usuario.
type Notifier interface {
	// Notify muestra los checks evaluados y las oportunidades de un
	// escaneo. En la implementación de consola, imprime una tabla.
	Notify(ctx context.Context, report domain.ArbReport) error

	// PrintStats muestra el reporte histórico agregado por serie.
	PrintStats(stats []domain.SeriesStats)
}
