package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/fathom/internal/models"
)

// --- Portfolio handlers ---

// handlePortfolioRoot handles GET (list) and POST (add) on /api/portfolio.
func (s *Server) handlePortfolioRoot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		s.handlePortfolioList(w, r)
		return
	}

	var req struct {
		Ticker  string `json:"ticker"`
		Notes   string `json:"notes"`
		Ranking int    `json:"ranking"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	if req.Ranking < 0 || req.Ranking > 5 {
		WriteError(w, http.StatusBadRequest, "Ranking must be between 0 and 5")
		return
	}

	entry := &models.PortfolioEntry{
		Ticker:  ticker,
		Notes:   req.Notes,
		Ranking: req.Ranking,
	}
	if err := s.app.Storage.PortfolioStore().SaveEntry(r.Context(), entry); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving portfolio entry: %v", err))
		return
	}

	WriteJSON(w, http.StatusCreated, entry)
}

// handlePortfolioList returns all entries enriched with stored snapshots
// and growth metrics, ordered by ranking then recency.
func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := s.app.Storage.PortfolioStore().ListEntries(ctx)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing portfolio: %v", err))
		return
	}

	positions := make([]models.PortfolioPosition, 0, len(entries))
	for _, entry := range entries {
		position := models.PortfolioPosition{Entry: *entry}
		if snapshot, err := s.app.Storage.StockStore().GetSnapshot(ctx, entry.Ticker); err == nil {
			position.Snapshot = snapshot
		}
		if metrics, err := s.app.Storage.MetricsStore().GetMetrics(ctx, entry.Ticker); err == nil {
			position.Metrics = metrics
		}
		positions = append(positions, position)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"count":     len(positions),
	})
}

// handlePortfolioEntry handles GET, PUT, and DELETE on /api/portfolio/{ticker}.
func (s *Server) handlePortfolioEntry(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}

	store := s.app.Storage.PortfolioStore()
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	switch r.Method {
	case http.MethodGet:
		entry, err := store.GetEntry(r.Context(), ticker)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Portfolio entry not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, entry)

	case http.MethodPut:
		var req struct {
			Notes   *string `json:"notes"`
			Ranking *int    `json:"ranking"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		entry, err := store.GetEntry(r.Context(), ticker)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Portfolio entry not found: %v", err))
			return
		}

		if req.Notes != nil {
			entry.Notes = *req.Notes
		}
		if req.Ranking != nil {
			if *req.Ranking < 0 || *req.Ranking > 5 {
				WriteError(w, http.StatusBadRequest, "Ranking must be between 0 and 5")
				return
			}
			entry.Ranking = *req.Ranking
		}

		if err := store.SaveEntry(r.Context(), entry); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving portfolio entry: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, entry)

	case http.MethodDelete:
		if err := store.DeleteEntry(r.Context(), ticker); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting portfolio entry: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": ticker})
	}
}
