package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alejandrodnm/strikebot/internal/domain"
	"github.com/alejandrodnm/strikebot/internal/engine"
)

// SimHandler serves the simulation endpoints. Each series has its own
// driver; the default series answers the unqualified routes.
type SimHandler struct {
	drivers       map[string]*engine.Driver
	defaultSeries string
}

// NewSimHandler creates the handler. defaultSeries must be a key of drivers.
func NewSimHandler(drivers map[string]*engine.Driver, defaultSeries string) *SimHandler {
	return &SimHandler{drivers: drivers, defaultSeries: defaultSeries}
}

// GetDefault returns the state of the default series.
// GET /api/simulation
func (h *SimHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	h.getState(w, h.defaultSeries)
}

// GetSeries returns the state of a named series.
// GET /api/simulation/{series}
func (h *SimHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	h.getState(w, r.PathValue("series"))
}

func (h *SimHandler) getState(w http.ResponseWriter, series string) {
	d, ok := h.drivers[series]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown series: "+series)
		return
	}
	writeJSON(w, http.StatusOK, toSimulationResponse(d.State()))
}

// ResetDefault retires the default series' ledger at mark-to-market equity.
// POST /api/reset
func (h *SimHandler) ResetDefault(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, h.defaultSeries)
}

// ResetSeries retires a named series' ledger at mark-to-market equity.
// POST /api/reset/{series}
func (h *SimHandler) ResetSeries(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, r.PathValue("series"))
}

func (h *SimHandler) reset(w http.ResponseWriter, r *http.Request, series string) {
	d, ok := h.drivers[series]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown series: "+series)
		return
	}
	s := d.Reset(r.Context(), time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "reset",
		"series":     series,
		"settlement": toSettlementDTO(s),
	})
}

// ArbHandler serves the cross-venue arbitrage scan.
type ArbHandler struct {
	svc *engine.ArbService
}

// NewArbHandler creates the handler over the scan service.
func NewArbHandler(svc *engine.ArbService) *ArbHandler {
	return &ArbHandler{svc: svc}
}

// Scan runs one on-demand scan cycle and returns the full report.
// GET /api/arbitrage
func (h *ArbHandler) Scan(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Scan(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toArbResponse(report))
}

// --- response DTOs ---

type simulationResponse struct {
	Series       string          `json:"series"`
	InstanceKey  string          `json:"instance_key"`
	CashBalance  float64         `json:"cash_balance"`
	Equity       float64         `json:"equity"`
	LockedProfit float64         `json:"locked_profit"`
	Position     positionDTO     `json:"position"`
	AvgYes       float64         `json:"avg_yes"`
	AvgNo        float64         `json:"avg_no"`
	LastYes      float64         `json:"last_yes"`
	LastNo       float64         `json:"last_no"`
	SnapshotAt   time.Time       `json:"snapshot_at"`
	LastAction   string          `json:"last_action"`
	RecentTrades []tradeDTO      `json:"recent_trades"`
	Settlements  []settlementDTO `json:"settlements"`
	TickCount    int             `json:"tick_count"`
	StartedAt    time.Time       `json:"started_at"`
}

type positionDTO struct {
	QtyYes       float64 `json:"qty_yes"`
	QtyNo        float64 `json:"qty_no"`
	AvgCostYes   float64 `json:"avg_cost_yes"`
	AvgCostNo    float64 `json:"avg_cost_no"`
	PairCost     float64 `json:"pair_cost"`
	MatchedPairs float64 `json:"matched_pairs"`
}

type tradeDTO struct {
	ID        string    `json:"id"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Size      float64   `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

type settlementDTO struct {
	ID          string    `json:"id"`
	InstanceKey string    `json:"instance_key"`
	Policy      string    `json:"policy"`
	Payout      float64   `json:"payout"`
	SeedBalance float64   `json:"seed_balance"`
	SettledAt   time.Time `json:"settled_at"`
}

type arbCheckDTO struct {
	Ticker        string  `json:"ticker"`
	Strike        float64 `json:"strike"`
	Relation      string  `json:"relation"`
	RefLeg        string  `json:"ref_leg"`
	StrikeLeg     string  `json:"strike_leg"`
	RefCost       float64 `json:"ref_cost"`
	StrikeCost    float64 `json:"strike_cost"`
	TotalCost     float64 `json:"total_cost"`
	IsOpportunity bool    `json:"is_opportunity"`
	Margin        float64 `json:"margin"`
}

type arbResponse struct {
	Reference     *referenceDTO     `json:"reference"`
	Markets       []strikeMarketDTO `json:"markets"`
	Checks        []arbCheckDTO     `json:"checks"`
	Opportunities []arbCheckDTO     `json:"opportunities"`
	Errors        []string          `json:"errors"`
	ScannedAt     time.Time         `json:"scanned_at"`
}

type referenceDTO struct {
	InstanceKey string  `json:"instance_key"`
	Strike      float64 `json:"strike"`
	LastPrice   float64 `json:"last_price"`
	UpCost      float64 `json:"up_cost"`
	DownCost    float64 `json:"down_cost"`
}

type strikeMarketDTO struct {
	Ticker  string  `json:"ticker"`
	Strike  float64 `json:"strike"`
	YesCost float64 `json:"yes_cost"`
	NoCost  float64 `json:"no_cost"`
}

// SimulationPayload maps driver state to the same wire shape the REST
// endpoints use, so the websocket feed and /api/simulation stay in sync.
func SimulationPayload(st engine.State) any {
	return toSimulationResponse(st)
}

func toSimulationResponse(st engine.State) simulationResponse {
	trades := make([]tradeDTO, len(st.RecentTrades))
	for i, t := range st.RecentTrades {
		trades[i] = tradeDTO{
			ID:        t.ID,
			Side:      string(t.Side),
			Price:     t.Price,
			Size:      t.Size,
			Timestamp: t.Timestamp,
		}
	}
	settlements := make([]settlementDTO, len(st.Settlements))
	for i, s := range st.Settlements {
		settlements[i] = toSettlementDTO(s)
	}

	return simulationResponse{
		Series:       st.Series,
		InstanceKey:  st.InstanceKey,
		CashBalance:  st.CashBalance,
		Equity:       st.Equity,
		LockedProfit: st.LockedProfit,
		Position: positionDTO{
			QtyYes:       st.Position.QtyYes,
			QtyNo:        st.Position.QtyNo,
			AvgCostYes:   st.Position.AvgCostYes(),
			AvgCostNo:    st.Position.AvgCostNo(),
			PairCost:     st.Position.PairCost(),
			MatchedPairs: st.Position.MatchedPairs(),
		},
		AvgYes:       st.AvgYes,
		AvgNo:        st.AvgNo,
		LastYes:      st.LastYes,
		LastNo:       st.LastNo,
		SnapshotAt:   st.SnapshotAt,
		LastAction:   st.LastAction,
		RecentTrades: trades,
		Settlements:  settlements,
		TickCount:    st.TickCount,
		StartedAt:    st.StartedAt,
	}
}

func toSettlementDTO(s domain.Settlement) settlementDTO {
	return settlementDTO{
		ID:          s.ID,
		InstanceKey: s.InstanceKey,
		Policy:      string(s.Policy),
		Payout:      s.Payout,
		SeedBalance: s.SeedBalance,
		SettledAt:   s.SettledAt,
	}
}

func toArbResponse(report *domain.ArbReport) arbResponse {
	resp := arbResponse{
		Markets:       make([]strikeMarketDTO, len(report.Markets)),
		Checks:        make([]arbCheckDTO, len(report.Checks)),
		Opportunities: make([]arbCheckDTO, len(report.Opportunities)),
		Errors:        report.Errors,
		ScannedAt:     report.ScannedAt,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if report.Reference != nil {
		resp.Reference = &referenceDTO{
			InstanceKey: report.Reference.InstanceKey,
			Strike:      report.Reference.Strike,
			LastPrice:   report.Reference.LastPrice,
			UpCost:      report.Reference.UpCost,
			DownCost:    report.Reference.DownCost,
		}
	}
	for i, m := range report.Markets {
		resp.Markets[i] = strikeMarketDTO{
			Ticker:  m.Ticker,
			Strike:  m.Strike,
			YesCost: m.YesCost,
			NoCost:  m.NoCost,
		}
	}
	for i, c := range report.Checks {
		resp.Checks[i] = toArbCheckDTO(c)
	}
	for i, c := range report.Opportunities {
		resp.Opportunities[i] = toArbCheckDTO(c)
	}
	return resp
}

func toArbCheckDTO(c domain.ArbCheck) arbCheckDTO {
	return arbCheckDTO{
		Ticker:        c.Ticker,
		Strike:        c.StrikeB,
		Relation:      c.Relation,
		RefLeg:        string(c.RefLeg),
		StrikeLeg:     string(c.StrikeLeg),
		RefCost:       c.RefCost,
		StrikeCost:    c.StrikeCost,
		TotalCost:     c.TotalCost,
		IsOpportunity: c.IsOpportunity,
		Margin:        c.Margin,
	}
}

// writeJSON writes v with the given status, falling back to a plain 500 if
// it does not marshal.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
