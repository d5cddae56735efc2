package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/alerts"
	"github.com/tradekeeper/portfolio-analytics/internal/analytics"
	"github.com/tradekeeper/portfolio-analytics/internal/cache"
	"github.com/tradekeeper/portfolio-analytics/internal/health"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
	"github.com/tradekeeper/portfolio-analytics/internal/views"
)

// Store is the persistence surface the handlers read and write directly;
// everything else goes through the aggregator and the alert service
type Store interface {
	GetPortfolioByID(id string) (*models.Portfolio, error)
	GetPositionsByPortfolio(portfolioID, status string) ([]*models.Position, error)
	GetSnapshotsSince(portfolioID string, since time.Time) ([]models.PortfolioSnapshot, error)
	CreateAnalysis(a *models.AIAnalysis) error
	GetAssetByID(id string) (*models.Asset, error)
	GetUserByID(id string) (*models.User, error)
	GetPortfoliosByUser(userID string) ([]*models.Portfolio, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store      Store
	aggregator *views.Aggregator
	alerts     *alerts.Service
	probe      *health.Probe
	summaries  *cache.SummaryCache
	riskFree   decimal.Decimal
	lookback   int
}

// NewHandler creates a new Handler. summaries may be nil to run without the
// Redis cache. lookbackDays is the default window for the performance and
// history endpoints when the request carries no days parameter.
func NewHandler(store Store, aggregator *views.Aggregator, alertSvc *alerts.Service, probe *health.Probe, summaries *cache.SummaryCache, riskFree decimal.Decimal, lookbackDays int) *Handler {
	if lookbackDays <= 0 {
		lookbackDays = analytics.DefaultLookbackDays
	}
	return &Handler{
		store:      store,
		aggregator: aggregator,
		alerts:     alertSvc,
		probe:      probe,
		summaries:  summaries,
		riskFree:   riskFree,
		lookback:   lookbackDays,
	}
}

// GetPortfolio handles GET /portfolios/{id}
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.store.GetPortfolioByID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetUserPortfolios handles GET /users/{id}/portfolios
func (h *Handler) GetUserPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.store.GetPortfoliosByUser(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if portfolios == nil {
		portfolios = []*models.Portfolio{}
	}
	respondJSON(w, http.StatusOK, portfolios)
}

// GetSummary handles GET /portfolios/{id}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if h.summaries != nil {
		cached, err := h.summaries.Get(r.Context(), id)
		if err != nil {
			log.Printf("Summary cache read failed for %s: %v", id, err)
		}
		if cached != nil {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	summary, err := h.aggregator.Summary(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if h.summaries != nil {
		if err := h.summaries.Set(r.Context(), summary); err != nil {
			log.Printf("Summary cache write failed for %s: %v", id, err)
		}
	}
	respondJSON(w, http.StatusOK, summary)
}

// positionView decorates a position with its derived value and return
type positionView struct {
	*models.Position
	CurrentValue decimal.Decimal `json:"current_value"`
	PnlPercent   decimal.Decimal `json:"pnl_percentage"`
}

// GetPositions handles GET /portfolios/{id}/positions
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.PositionStatusOpen
	}

	positions, err := h.store.GetPositionsByPortfolio(id, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	decorated := make([]positionView, 0, len(positions))
	for _, p := range positions {
		decorated = append(decorated, positionView{
			Position:     p,
			CurrentValue: p.CurrentValue(),
			PnlPercent:   p.PnlPercent(),
		})
	}
	respondJSON(w, http.StatusOK, decorated)
}

// GetPerformance handles GET /portfolios/{id}/performance?days=N
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	days := queryInt(r, "days", h.lookback)
	if days <= 0 {
		http.Error(w, "days must be positive", http.StatusBadRequest)
		return
	}
	window := time.Duration(days) * 24 * time.Hour

	now := time.Now()
	history, err := h.store.GetSnapshotsSince(id, now.Add(-window))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, analytics.Performance(history, now, window, h.riskFree))
}

// GetHistory handles GET /portfolios/{id}/history?days=N
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	days := queryInt(r, "days", h.lookback)
	if days <= 0 {
		http.Error(w, "days must be positive", http.StatusBadRequest)
		return
	}

	history, err := h.store.GetSnapshotsSince(id, time.Now().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []models.PortfolioSnapshot{}
	}
	respondJSON(w, http.StatusOK, history)
}

// GetTradingStats handles GET /portfolios/{id}/trading-stats
func (h *Handler) GetTradingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.aggregator.TradingStats(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetConsensus handles GET /analyses/consensus
func (h *Handler) GetConsensus(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.aggregator.ConsensusView()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if analyses == nil {
		analyses = []*models.AIAnalysis{}
	}
	respondJSON(w, http.StatusOK, analyses)
}

// CreateAnalysis handles POST /analyses
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var analysis models.AIAnalysis
	if err := json.NewDecoder(r.Body).Decode(&analysis); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if analysis.AssetID == "" || analysis.AnalysisType == "" {
		http.Error(w, "asset_id and analysis_type are required", http.StatusBadRequest)
		return
	}
	if analysis.ConfidenceScore.IsNegative() || analysis.ConfidenceScore.GreaterThan(decimal.NewFromInt(1)) {
		http.Error(w, "confidence_score must be between 0 and 1", http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetAssetByID(analysis.AssetID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := h.store.CreateAnalysis(&analysis); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, &analysis)
}

// GetUserAlerts handles GET /users/{id}/alerts
func (h *Handler) GetUserAlerts(w http.ResponseWriter, r *http.Request) {
	active, err := h.alerts.ActiveForUser(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if active == nil {
		active = []*models.RiskAlert{}
	}
	respondJSON(w, http.StatusOK, active)
}

// GetPortfolioAlerts handles GET /portfolios/{id}/alerts
func (h *Handler) GetPortfolioAlerts(w http.ResponseWriter, r *http.Request) {
	active, err := h.alerts.ActiveForPortfolio(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if active == nil {
		active = []*models.RiskAlert{}
	}
	respondJSON(w, http.StatusOK, active)
}

// RaiseAlert handles POST /alerts
func (h *Handler) RaiseAlert(w http.ResponseWriter, r *http.Request) {
	var alert models.RiskAlert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.alerts.Raise(&alert); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, alerts.ErrInvalidAlert) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	respondJSON(w, http.StatusCreated, &alert)
}

// AcknowledgeAlert handles POST /alerts/{id}/acknowledge
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.Acknowledge(mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolveAlert handles POST /alerts/{id}/resolve
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.Resolve(mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := h.probe.Check(r.Context())

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, report)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}
