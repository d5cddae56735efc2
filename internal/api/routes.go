package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Portfolio read models
	api.HandleFunc("/portfolios/{id}", handler.GetPortfolio).Methods("GET")
	api.HandleFunc("/portfolios/{id}/summary", handler.GetSummary).Methods("GET")
	api.HandleFunc("/portfolios/{id}/positions", handler.GetPositions).Methods("GET")
	api.HandleFunc("/portfolios/{id}/performance", handler.GetPerformance).Methods("GET")
	api.HandleFunc("/portfolios/{id}/history", handler.GetHistory).Methods("GET")
	api.HandleFunc("/portfolios/{id}/trading-stats", handler.GetTradingStats).Methods("GET")
	api.HandleFunc("/portfolios/{id}/alerts", handler.GetPortfolioAlerts).Methods("GET")

	// Users
	api.HandleFunc("/users/{id}", handler.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}/portfolios", handler.GetUserPortfolios).Methods("GET")

	// AI analyses
	api.HandleFunc("/analyses", handler.CreateAnalysis).Methods("POST")
	api.HandleFunc("/analyses/consensus", handler.GetConsensus).Methods("GET")

	// Risk alerts
	api.HandleFunc("/alerts", handler.RaiseAlert).Methods("POST")
	api.HandleFunc("/alerts/{id}/acknowledge", handler.AcknowledgeAlert).Methods("POST")
	api.HandleFunc("/alerts/{id}/resolve", handler.ResolveAlert).Methods("POST")
	api.HandleFunc("/users/{id}/alerts", handler.GetUserAlerts).Methods("GET")

	return r
}
