package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// --- Watchlist handlers ---

// handleWatchlistRoot handles GET (list) and POST (create) on /api/watchlists.
func (s *Server) handleWatchlistRoot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		watchlists, err := s.app.Storage.WatchlistStore().ListWatchlists(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing watchlists: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"watchlists": watchlists,
			"count":      len(watchlists),
		})
		return
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Tickers     []string `json:"tickers"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "Watchlist name is required")
		return
	}

	watchlist := &models.Watchlist{
		Name:        req.Name,
		Description: req.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	for _, t := range req.Tickers {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			watchlist.Add(t)
		}
	}

	if err := s.app.Storage.WatchlistStore().SaveWatchlist(r.Context(), watchlist); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving watchlist: %v", err))
		return
	}

	WriteJSON(w, http.StatusCreated, watchlist)
}

// handleWatchlist handles GET, PUT, and DELETE on /api/watchlists/{name}.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}

	store := s.app.Storage.WatchlistStore()

	switch r.Method {
	case http.MethodGet:
		watchlist, err := store.GetWatchlist(r.Context(), name)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Watchlist not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, watchlist)

	case http.MethodPut:
		var req struct {
			Description *string  `json:"description"`
			Tickers     []string `json:"tickers"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		watchlist, err := store.GetWatchlist(r.Context(), name)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Watchlist not found: %v", err))
			return
		}

		if req.Description != nil {
			watchlist.Description = *req.Description
		}
		if req.Tickers != nil {
			watchlist.Tickers = nil
			for _, t := range req.Tickers {
				if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
					watchlist.Add(t)
				}
			}
		}
		watchlist.UpdatedAt = time.Now().UTC()

		if err := store.SaveWatchlist(r.Context(), watchlist); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving watchlist: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, watchlist)

	case http.MethodDelete:
		if err := store.DeleteWatchlist(r.Context(), name); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting watchlist: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": name})
	}
}

// handleWatchlistTickerAdd handles POST /api/watchlists/{name}/tickers.
func (s *Server) handleWatchlistTickerAdd(w http.ResponseWriter, r *http.Request, name string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Ticker string `json:"ticker"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	store := s.app.Storage.WatchlistStore()
	watchlist, err := store.GetWatchlist(r.Context(), name)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Watchlist not found: %v", err))
		return
	}

	if !watchlist.Add(ticker) {
		WriteJSON(w, http.StatusOK, watchlist)
		return
	}

	if err := store.SaveWatchlist(r.Context(), watchlist); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving watchlist: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, watchlist)
}

// handleWatchlistTicker handles DELETE /api/watchlists/{name}/tickers/{ticker}.
func (s *Server) handleWatchlistTicker(w http.ResponseWriter, r *http.Request, name, ticker string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	store := s.app.Storage.WatchlistStore()
	watchlist, err := store.GetWatchlist(r.Context(), name)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Watchlist not found: %v", err))
		return
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !watchlist.Remove(ticker) {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Ticker '%s' is not on watchlist '%s'", ticker, name))
		return
	}

	if err := store.SaveWatchlist(r.Context(), watchlist); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving watchlist: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, watchlist)
}
