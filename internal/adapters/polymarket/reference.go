package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// OpenPriceSource proporciona los precios del subyacente: la apertura de la
// vela horaria (el precio a batir) y el precio actual.
type OpenPriceSource interface {
	OpenPrice(ctx context.Context) (float64, error)
	CurrentPrice(ctx context.Context) (float64, error)
}

// ReferenceProvider construye el mercado de referencia del escaneo de
// arbitraje: strike del subyacente + costes Up/Down del evento activo.
// Implementa ports.ReferenceProvider.
type ReferenceProvider struct {
	provider *Provider
	opens    OpenPriceSource
	series   string
}

// NewReferenceProvider crea el provider de referencia para la serie dada.
func NewReferenceProvider(provider *Provider, opens OpenPriceSource, series string) *ReferenceProvider {
	if series == "" {
		series = SeriesHourly
	}
	return &ReferenceProvider{provider: provider, opens: opens, series: series}
}

// FetchReference obtiene el snapshot del evento activo y el strike del
// subyacente. A diferencia del simulador, aquí la falta de datos SÍ es un
// error: sin referencia no hay escaneo posible.
func (r *ReferenceProvider) FetchReference(ctx context.Context) (*domain.ReferenceMarket, error) {
	snap, err := r.provider.FetchSnapshot(ctx, r.series)
	if err != nil {
		return nil, fmt.Errorf("polymarket.FetchReference: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("polymarket.FetchReference: no active event for series %s", r.series)
	}
	if !snap.HasLiquidity() {
		return nil, fmt.Errorf("polymarket.FetchReference: %s has no liquidity on both sides", snap.InstanceKey)
	}

	strike, err := r.opens.OpenPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("polymarket.FetchReference: strike: %w", err)
	}

	// El precio actual es informativo: un fallo no tumba el escaneo.
	last, err := r.opens.CurrentPrice(ctx)
	if err != nil {
		slog.Debug("current price fetch failed", "err", err)
		last = 0
	}

	return &domain.ReferenceMarket{
		InstanceKey: snap.InstanceKey,
		Strike:      strike,
		LastPrice:   last,
		UpCost:      snap.Yes(),
		DownCost:    snap.No(),
	}, nil
}
