package server

import (
	"log/slog"
	"net/http"

	"procurement-dashboard/internal/handlers"
	"procurement-dashboard/internal/services"
)

type Server struct {
	analytics         *services.Analytics
	mux               *http.ServeMux
	logger            *slog.Logger
	apiHandlers       *handlers.APIHandlers
	sseHandlers       *handlers.SSEHandlers
	dashboardHandlers *handlers.DashboardHandlers
}

func NewServer(analytics *services.Analytics, logger *slog.Logger) *Server {
	s := &Server{
		analytics:         analytics,
		mux:               http.NewServeMux(),
		logger:            logger,
		apiHandlers:       handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:       handlers.NewSSEHandlers(analytics, logger),
		dashboardHandlers: handlers.NewDashboardHandlers(analytics, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /", s.dashboardHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/category-spend", s.apiHandlers.HandleCategorySpend)
	s.mux.HandleFunc("GET /api/supplier-performance", s.apiHandlers.HandleSupplierPerformance)
	s.mux.HandleFunc("GET /api/price-variance", s.apiHandlers.HandlePriceVariance)
	s.mux.HandleFunc("GET /api/scenarios", s.apiHandlers.HandleScenarios)
	s.mux.HandleFunc("GET /api/sensitivity", s.apiHandlers.HandleSensitivity)
	s.mux.HandleFunc("GET /api/uncertainty", s.apiHandlers.HandleUncertainty)
	s.mux.HandleFunc("GET /api/recommendations", s.apiHandlers.HandleRecommendations)
	s.mux.HandleFunc("GET /api/maverick-spend", s.apiHandlers.HandleMaverickSpend)
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)
	s.mux.HandleFunc("GET /api/export/workbook", s.apiHandlers.HandleExportWorkbook)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/supplier-performance", s.sseHandlers.HandleSupplierPerformance)
	s.mux.HandleFunc("GET /sse/price-variance", s.sseHandlers.HandlePriceVariance)
	s.mux.HandleFunc("GET /sse/category-spend", s.sseHandlers.HandleCategorySpend)
	s.mux.HandleFunc("GET /sse/scenarios", s.sseHandlers.HandleScenarios)
	s.mux.HandleFunc("GET /sse/recommendations", s.sseHandlers.HandleRecommendations)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
