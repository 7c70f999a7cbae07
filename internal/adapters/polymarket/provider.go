package polymarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

const (
	gammaEventsPath = "/events"
	bookPath        = "/book"
)

// Provider resuelve la instancia activa de una serie vía Gamma y construye
// el snapshot de precios con el mejor ask de cada lado en el CLOB.
// Implementa ports.SnapshotProvider.
type Provider struct {
	client *Client
}

// NewProvider crea el provider sobre el client dado.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// CurrentInstanceKey devuelve el slug del evento activo de la serie.
func (p *Provider) CurrentInstanceKey(series string, now time.Time) string {
	return SlugFor(series, now)
}

// FetchSnapshot obtiene los precios del mercado activo de la serie.
// Devuelve (nil, nil) cuando el evento aún no existe en Gamma: eso es
// "sin datos", no un error. Un lado sin asks queda con precio nil.
func (p *Provider) FetchSnapshot(ctx context.Context, series string) (*domain.MarketSnapshot, error) {
	slug := SlugFor(series, time.Now())

	market, err := p.fetchEventMarket(ctx, slug)
	if err != nil {
		if errors.Is(err, errNotFound) {
			slog.Debug("event not found in gamma", "slug", slug)
			return nil, nil
		}
		return nil, fmt.Errorf("polymarket.FetchSnapshot: %w", err)
	}
	if market == nil {
		return nil, nil
	}

	tokens, err := parseTokenIDs(*market)
	if err != nil {
		return nil, fmt.Errorf("polymarket.FetchSnapshot: %s: %w", slug, err)
	}

	snap := &domain.MarketSnapshot{
		InstanceKey: slug,
		CapturedAt:  time.Now(),
	}
	if price, ok := p.bestAsk(ctx, tokens[outcomeUp]); ok {
		snap.PriceYes = domain.Price(price)
	}
	if price, ok := p.bestAsk(ctx, tokens[outcomeDown]); ok {
		snap.PriceNo = domain.Price(price)
	}
	return snap, nil
}

// fetchEventMarket devuelve el primer mercado del evento con el slug dado,
// o nil si Gamma no conoce el evento todavía.
func (p *Provider) fetchEventMarket(ctx context.Context, slug string) (*gammaEventMarket, error) {
	u := fmt.Sprintf("%s%s?slug=%s", p.client.gammaBase, gammaEventsPath, url.QueryEscape(slug))

	var events gammaEventsResponse
	if err := p.client.get(ctx, p.client.gammaLimiter, u, &events); err != nil {
		return nil, err
	}
	if len(events) == 0 || len(events[0].Markets) == 0 {
		return nil, nil
	}
	return &events[0].Markets[0], nil
}

// bestAsk devuelve el ask más barato del book del token. Cualquier fallo
// del book se trata como falta de liquidez de ese lado, no como error del
// snapshot entero.
func (p *Provider) bestAsk(ctx context.Context, tokenID string) (float64, bool) {
	if tokenID == "" {
		return 0, false
	}
	u := fmt.Sprintf("%s%s?token_id=%s", p.client.clobBase, bookPath, url.QueryEscape(tokenID))

	var book bookResponse
	if err := p.client.get(ctx, p.client.bookLimiter, u, &book); err != nil {
		slog.Debug("book fetch failed", "token", tokenID, "err", err)
		return 0, false
	}
	return lowestAsk(book)
}
