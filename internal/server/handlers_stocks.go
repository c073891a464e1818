package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// --- Stock handlers ---

func (s *Server) handleStockList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stocks, err := s.app.StockService.ListStocks(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing stocks: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": stocks,
		"count":  len(stocks),
	})
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}

	if r.Method == http.MethodDelete {
		if err := s.app.StockService.DeleteStock(r.Context(), ticker); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting stock: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": strings.ToUpper(ticker)})
		return
	}

	snapshot, metrics, err := s.app.StockService.GetStock(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Stock not found: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": snapshot,
		"metrics":  metrics,
	})
}

func (s *Server) handleStockRefresh(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snapshot, err := s.app.StockService.RefreshStock(r.Context(), ticker, queryBool(r, "force"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Refresh error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleStockFinancials(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	period := models.PeriodType(r.URL.Query().Get("period"))
	if period == "" {
		period = models.PeriodQuarterly
	}
	if period != models.PeriodQuarterly && period != models.PeriodAnnual {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid period '%s': must be quarterly or annual", period))
		return
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	records, err := s.app.Storage.FinancialStore().GetRecords(r.Context(), ticker, period)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading financials: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"period":  period,
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handleStockMetrics(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	metrics, err := s.app.Storage.MetricsStore().GetMetrics(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Metrics not found: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleStockPrices(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := queryInt(r, "days", 365)
	if days <= 0 {
		days = 365
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	bars, err := s.app.Storage.PriceStore().GetBars(r.Context(), ticker, since)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading prices: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"days":   days,
		"bars":   bars,
		"count":  len(bars),
	})
}

func (s *Server) handleStockChart(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.TechnicalService.RenderChart(r.Context(), ticker, queryInt(r, "days", 0))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Chart error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleStockTechnical(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	// POST recomputes, GET serves the cache and computes only when missing.
	if r.Method == http.MethodPost {
		snapshot, err := s.app.TechnicalService.Analyze(r.Context(), ticker, queryBool(r, "force"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis error: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, snapshot)
		return
	}

	snapshot, err := s.app.TechnicalService.GetSnapshot(r.Context(), ticker)
	if err != nil {
		snapshot, err = s.app.TechnicalService.Analyze(r.Context(), ticker, false)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Technical analysis unavailable: %v", err))
			return
		}
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleStockForecast(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	options := interfaces.ForecastOptions{
		Model:          r.URL.Query().Get("model"),
		Years:          queryInt(r, "years", 0),
		EarningsGrowth: queryFloatPtr(r, "earnings_growth"),
		GrowthDecay:    queryFloatPtr(r, "growth_decay"),
		TerminalPE:     queryFloatPtr(r, "terminal_pe"),
		RevenueGrowth:  queryFloatPtr(r, "revenue_growth"),
		RevenueDecay:   queryFloatPtr(r, "rev_growth_decay"),
		TerminalPS:     queryFloatPtr(r, "terminal_ps"),
		TargetMargin:   queryFloatPtr(r, "target_margin"),
		FCFGrowth:      queryFloatPtr(r, "fcf_growth"),
		DiscountRate:   queryFloatPtr(r, "discount_rate"),
		TerminalGrowth: queryFloatPtr(r, "terminal_growth"),
		ExpectedReturn: queryFloatPtr(r, "expected_return"),
		Volatility:     queryFloatPtr(r, "volatility"),
		Simulations:    queryInt(r, "simulations", 0),
	}

	report, err := s.app.ForecastService.Forecast(r.Context(), ticker, options)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Forecast error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, report)
}
