package server

import (
	"log/slog"
	"net/http"

	"sales-analytics/internal/handlers"
	"sales-analytics/internal/services"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// NewServer routes the API, SSE and dashboard endpoints. dashboard serves
// the root page only.
func NewServer(analytics *services.Analytics, logger *slog.Logger, dashboard http.Handler) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(dashboard)
	return s
}

func (s *Server) setupRoutes(dashboard http.Handler) {
	s.mux.Handle("GET /{$}", dashboard)
	s.mux.HandleFunc("GET /test", s.apiHandlers.HandleTest)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Report API
	s.mux.HandleFunc("GET /api/v1/analise/vendas-por-pais", s.apiHandlers.HandleSalesByCountry)
	s.mux.HandleFunc("GET /api/v1/analise/temporal", s.apiHandlers.HandleTemporal)
	s.mux.HandleFunc("GET /api/v1/analise/produtos", s.apiHandlers.HandleProducts)
	s.mux.HandleFunc("GET /api/v1/analise/clientes", s.apiHandlers.HandleCustomers)
	s.mux.HandleFunc("GET /api/v1/analise/faturamento", s.apiHandlers.HandleBilling)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/country", s.sseHandlers.HandleSalesByCountry)
	s.mux.HandleFunc("GET /sse/temporal", s.sseHandlers.HandleTemporal)
	s.mux.HandleFunc("GET /sse/products", s.sseHandlers.HandleProducts)
	s.mux.HandleFunc("GET /sse/customers", s.sseHandlers.HandleCustomers)
	s.mux.HandleFunc("GET /sse/billing", s.sseHandlers.HandleBilling)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
