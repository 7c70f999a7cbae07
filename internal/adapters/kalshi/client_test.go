package kalshi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketsJSON = `{
  "markets": [
    {"ticker": "KXBTCD-25NOV2614-T89750", "status": "open", "strike_type": "greater", "floor_strike": 89750, "yes_ask": 55, "no_ask": 48},
    {"ticker": "KXBTCD-25NOV2614-T90000", "status": "open", "strike_type": "greater", "floor_strike": 90000, "yes_ask": 35, "no_ask": 68},
    {"ticker": "KXBTCD-25NOV2614-T90250", "status": "open", "strike_type": "greater", "floor_strike": 90250, "yes_ask": 0, "no_ask": 80}
  ],
  "cursor": ""
}`

func TestFetchStrikeLadder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.NotEmpty(t, r.URL.Query().Get("event_ticker"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(marketsJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	ladder, err := c.FetchStrikeLadder(context.Background())

	require.NoError(t, err)
	// El tercer mercado no tiene yes_ask y se descarta.
	require.Len(t, ladder, 2)

	assert.Equal(t, "KXBTCD-25NOV2614-T89750", ladder[0].Ticker)
	assert.Equal(t, 89750.0, ladder[0].Strike)
	assert.InDelta(t, 0.55, ladder[0].YesCost, 1e-9) // 55 céntimos
	assert.InDelta(t, 0.48, ladder[0].NoCost, 1e-9)
	assert.InDelta(t, 0.35, ladder[1].YesCost, 1e-9)
}

func TestFetchStrikeLadder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.FetchStrikeLadder(context.Background())
	assert.Error(t, err)
}

func TestEventTicker(t *testing.T) {
	// 26 nov 2025 18:15 UTC = 13:15 ET → el evento activo expira a las 14.
	at := time.Date(2025, time.November, 26, 18, 15, 0, 0, time.UTC)
	assert.Equal(t, "KXBTCD-25NOV2614", EventTicker("KXBTCD", at))

	// 23:30 ET cruza al día siguiente.
	at = time.Date(2025, time.November, 27, 4, 30, 0, 0, time.UTC) // 23:30 ET del 26
	assert.Equal(t, "KXBTCD-25NOV2700", EventTicker("KXBTCD", at))

	// La serie se normaliza a mayúsculas.
	at = time.Date(2025, time.November, 26, 18, 15, 0, 0, time.UTC)
	assert.Equal(t, "KXBTCD-25NOV2614", EventTicker("kxbtcd", at))
}
