package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBase   = "https://api.binance.com"
	defaultSymbol = "BTCUSDT"

	tickerPath = "/api/v3/ticker/price"
	klinesPath = "/api/v3/klines"

	// Binance permite 1200 weight/min; estos dos endpoints pesan 1-2,
	// con 5 req/s vamos sobradísimos.
	ratePerSec = 5
)

// Client obtiene precios spot del subyacente. El precio de apertura de la
// vela horaria en curso es el "precio a batir" de los mercados de Bitcoin.
// Implementa polymarket.OpenPriceSource.
type Client struct {
	http    *http.Client
	base    string
	symbol  string
	limiter *rate.Limiter
}

// NewClient crea un Client. Con base o symbol vacíos usa producción y BTCUSDT.
func NewClient(base, symbol string) *Client {
	if base == "" {
		base = defaultBase
	}
	if symbol == "" {
		symbol = defaultSymbol
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		symbol:  symbol,
		limiter: rate.NewLimiter(ratePerSec, 2),
	}
}

// CurrentPrice devuelve el último precio spot del símbolo.
func (c *Client) CurrentPrice(ctx context.Context) (float64, error) {
	u := fmt.Sprintf("%s%s?symbol=%s", c.base, tickerPath, url.QueryEscape(c.symbol))

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return 0, fmt.Errorf("binance.CurrentPrice: %w", err)
	}

	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance.CurrentPrice: parse %q: %w", resp.Price, err)
	}
	return price, nil
}

// OpenPrice devuelve el open de la vela 1h en curso. Las velas horarias de
// Binance abren al top de la hora UTC, que coincide con el top de la hora
// ET de los mercados (el offset ET-UTC es de horas enteras).
func (c *Client) OpenPrice(ctx context.Context) (float64, error) {
	start := time.Now().UTC().Truncate(time.Hour)
	u := fmt.Sprintf("%s%s?symbol=%s&interval=1h&startTime=%d&limit=1",
		c.base, klinesPath, url.QueryEscape(c.symbol), start.UnixMilli())

	// Formato kline: [openTime, open, high, low, close, volume, ...]
	var klines [][]json.RawMessage
	if err := c.get(ctx, u, &klines); err != nil {
		return 0, fmt.Errorf("binance.OpenPrice: %w", err)
	}
	if len(klines) == 0 || len(klines[0]) < 2 {
		return 0, fmt.Errorf("binance.OpenPrice: no candle for %s yet", start.Format(time.RFC3339))
	}

	var openStr string
	if err := json.Unmarshal(klines[0][1], &openStr); err != nil {
		return 0, fmt.Errorf("binance.OpenPrice: decode open: %w", err)
	}
	open, err := strconv.ParseFloat(openStr, 64)
	if err != nil {
		return 0, fmt.Errorf("binance.OpenPrice: parse %q: %w", openStr, err)
	}
	return open, nil
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
