package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/strikebot/internal/domain"
	"github.com/alejandrodnm/strikebot/internal/engine"
)

type stubProvider struct {
	snap *domain.MarketSnapshot
}

func (s *stubProvider) FetchSnapshot(context.Context, string) (*domain.MarketSnapshot, error) {
	return s.snap, nil
}

func (s *stubProvider) CurrentInstanceKey(string, time.Time) string { return "k1" }

type stubReference struct{ ref domain.ReferenceMarket }

func (s *stubReference) FetchReference(context.Context) (*domain.ReferenceMarket, error) {
	return &s.ref, nil
}

type stubStrikes struct{ markets []domain.StrikeMarket }

func (s *stubStrikes) FetchStrikeLadder(context.Context) ([]domain.StrikeMarket, error) {
	return s.markets, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *engine.Driver) {
	t.Helper()

	snap := &domain.MarketSnapshot{
		InstanceKey: "k1",
		PriceYes:    domain.Price(0.45),
		PriceNo:     domain.Price(0.55),
		CapturedAt:  time.Now(),
	}
	d := engine.New(engine.Config{Series: "hourly", SeedBalance: 100}, &stubProvider{snap: snap}, nil)
	d.Tick(context.Background(), time.Now())

	sim := NewSimHandler(map[string]*engine.Driver{"hourly": d}, "hourly")
	arb := NewArbHandler(engine.NewArbService(
		&stubReference{ref: domain.ReferenceMarket{Strike: 110, UpCost: 0.62, DownCost: 0.40}},
		&stubStrikes{markets: []domain.StrikeMarket{
			{Ticker: "KX-100", Strike: 100, YesCost: 0.55, NoCost: 0.48},
		}},
	))

	srv := NewServer(Config{}, sim, arb, nil)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, d
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]any
	resp := getJSON(t, ts.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestGetSimulation(t *testing.T) {
	ts, _ := newTestServer(t)

	var body simulationResponse
	resp := getJSON(t, ts.URL+"/api/simulation", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hourly", body.Series)
	assert.Equal(t, "k1", body.InstanceKey)
	assert.Equal(t, 100.0, body.CashBalance)
	assert.Equal(t, domain.ActionHold, body.LastAction)
	assert.Equal(t, 0.45, body.LastYes)
	assert.False(t, body.SnapshotAt.IsZero())
	assert.Equal(t, 1, body.TickCount)
}

func TestGetSimulation_NamedSeries(t *testing.T) {
	ts, _ := newTestServer(t)

	var body simulationResponse
	resp := getJSON(t, ts.URL+"/api/simulation/hourly", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hourly", body.Series)
}

func TestGetSimulation_UnknownSeries(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/simulation/daily", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown series")
}

func TestResetSimulation(t *testing.T) {
	ts, d := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/reset", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Status     string        `json:"status"`
		Settlement settlementDTO `json:"settlement"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reset", body.Status)
	assert.Equal(t, string(domain.PolicyMarkToMarket), body.Settlement.Policy)

	st := d.State()
	assert.Equal(t, 0.0, st.Position.QtyYes)
	require.Len(t, st.Settlements, 1)
}

func TestArbitrageEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var body arbResponse
	resp := getJSON(t, ts.URL+"/api/arbitrage", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body.Reference)
	assert.Equal(t, 110.0, body.Reference.Strike)
	require.Len(t, body.Markets, 1)
	assert.Equal(t, "KX-100", body.Markets[0].Ticker)
	assert.Equal(t, 100.0, body.Markets[0].Strike)
	assert.Equal(t, 0.55, body.Markets[0].YesCost)
	require.Len(t, body.Checks, 1)
	assert.True(t, body.Checks[0].IsOpportunity)
	assert.InDelta(t, 0.05, body.Checks[0].Margin, 1e-9)
	assert.Empty(t, body.Errors)
}
