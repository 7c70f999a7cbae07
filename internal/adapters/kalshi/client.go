package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

const (
	defaultBase = "https://api.elections.kalshi.com/trade-api/v2"

	marketsPath  = "/markets"
	pageLimit    = 100
	// API pública de Kalshi: 10 req/s documentados, usamos el 60%.
	ratePerSec = 6
)

// Client es el HTTP client del venue de strikes. Solo usa endpoints
// públicos de lectura; no requiere autenticación.
// Implementa ports.StrikeProvider.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
	series  string
}

// NewClient crea un Client. Con base vacío usa el URL de producción.
// series identifica el evento horario objetivo (ej. "KXBTCD").
func NewClient(base, series string) *Client {
	if base == "" {
		base = defaultBase
	}
	if series == "" {
		series = DefaultSeriesTicker
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(ratePerSec, 3),
		series:  series,
	}
}

// FetchStrikeLadder devuelve los mercados abiertos del evento horario
// activo, ordenables por strike, con los asks ya convertidos de céntimos
// a dólares.
func (c *Client) FetchStrikeLadder(ctx context.Context) ([]domain.StrikeMarket, error) {
	ticker := EventTicker(c.series, time.Now())

	u := fmt.Sprintf("%s%s?event_ticker=%s&status=open&limit=%d",
		c.base, marketsPath, url.QueryEscape(ticker), pageLimit)

	var resp marketsResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("kalshi.FetchStrikeLadder: %s: %w", ticker, err)
	}

	ladder := mapMarkets(resp.Markets)
	slog.Debug("strike ladder fetched",
		"event", ticker,
		"markets", len(resp.Markets),
		"quoted", len(ladder),
	)
	return ladder, nil
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
