package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Stocks
	mux.HandleFunc("/api/stocks/", s.routeStocks)
	mux.HandleFunc("/api/stocks", s.handleStockList)

	// Refresh jobs
	mux.HandleFunc("/api/refresh/", s.handleRefreshList)
	mux.HandleFunc("/api/jobs/", s.handleJobGet)
	mux.HandleFunc("/api/jobs", s.handleJobList)

	// Macro dashboard
	mux.HandleFunc("/api/macro/refresh", s.handleMacroRefresh)
	mux.HandleFunc("/api/macro", s.handleMacroGet)

	// Screens and curated lists
	mux.HandleFunc("/api/screen", s.handleScreen)
	mux.HandleFunc("/api/lists", s.handleLists)

	// Watchlists
	mux.HandleFunc("/api/watchlists/", s.routeWatchlists)
	mux.HandleFunc("/api/watchlists", s.handleWatchlistRoot)

	// Portfolio
	mux.HandleFunc("/api/portfolio/", s.routePortfolio)
	mux.HandleFunc("/api/portfolio", s.handlePortfolioRoot)
}

// routePortfolio dispatches /api/portfolio/{ticker} to the entry handler.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolio/")
	if path == "" {
		s.handlePortfolioRoot(w, r)
		return
	}
	if strings.Contains(path, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handlePortfolioEntry(w, r, path)
}

// routeStocks dispatches /api/stocks/{ticker}/* to the appropriate handler.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
	if path == "" {
		s.handleStockList(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	ticker := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleStock(w, r, ticker)
	case "refresh":
		s.handleStockRefresh(w, r, ticker)
	case "financials":
		s.handleStockFinancials(w, r, ticker)
	case "metrics":
		s.handleStockMetrics(w, r, ticker)
	case "prices":
		s.handleStockPrices(w, r, ticker)
	case "chart":
		s.handleStockChart(w, r, ticker)
	case "technical":
		s.handleStockTechnical(w, r, ticker)
	case "forecast":
		s.handleStockForecast(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeWatchlists dispatches /api/watchlists/{name}/* to the appropriate handler.
func (s *Server) routeWatchlists(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/watchlists/")
	if path == "" {
		s.handleWatchlistRoot(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	name := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch {
	case subpath == "":
		s.handleWatchlist(w, r, name)
	case subpath == "tickers":
		s.handleWatchlistTickerAdd(w, r, name)
	case strings.HasPrefix(subpath, "tickers/"):
		ticker := strings.TrimPrefix(subpath, "tickers/")
		s.handleWatchlistTicker(w, r, name, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":     cfg.Environment,
		"storage_path":    s.app.Storage.DataPath(),
		"logging_level":   cfg.Logging.Level,
		"yahoo_base_url":  cfg.Clients.Yahoo.BaseURL,
		"fred_configured": cfg.Clients.FRED.APIKey != "",
		"fred_api_key":    maskSecret(cfg.Clients.FRED.APIKey),
		"stock_schedule":  cfg.Refresh.StockSchedule,
		"macro_schedule":  cfg.Refresh.MacroSchedule,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}

// queryInt parses an integer query parameter, falling back to def when
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryFloat parses a float query parameter, falling back to def.
func queryFloat(r *http.Request, name string, def float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// queryFloatPtr parses a float query parameter, returning nil when the
// parameter is absent or malformed so an explicit zero stays distinguishable
// from unset.
func queryFloatPtr(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// queryBool reports whether a boolean query parameter is set truthy.
func queryBool(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
