package ports

import (
	"context"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// SimStorage persiste el historial de la simulación: trades ejecutados y
// liquidaciones de cada rollover.
type SimStorage interface {
	ApplySchema(ctx context.Context) error

	// SaveTrade persiste una compra ejecutada por el simulador.
	SaveTrade(ctx context.Context, trade domain.Trade) error

	// SaveSettlement persiste la liquidación de una instancia expirada.
	SaveSettlement(ctx context.Context, s domain.Settlement) error

	// GetTrades devuelve los últimos trades de la serie, más recientes
	// primero. Con limit <= 0 devuelve todos.
	GetTrades(ctx context.Context, series string, limit int) ([]domain.Trade, error)

	// GetSettlements devuelve las liquidaciones de la serie, más
	// recientes primero.
	GetSettlements(ctx context.Context, series string) ([]domain.Settlement, error)

	// GetSeriesStats agrega contadores y totales por serie para el
	// reporte de consola.
	GetSeriesStats(ctx context.Context) ([]domain.SeriesStats, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
