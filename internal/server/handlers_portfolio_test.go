package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

func TestHandlePortfolioAdd(t *testing.T) {
	srv, storage := newTestServerWithStorage()

	body := jsonBody(t, map[string]interface{}{
		"ticker":  "aapl",
		"notes":   "Core holding",
		"ranking": 4,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	entry := storage.portfolio.entries["AAPL"]
	if entry == nil {
		t.Fatal("entry was not persisted under normalized ticker")
	}
	if entry.Notes != "Core holding" || entry.Ranking != 4 {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestHandlePortfolioAdd_RejectsBadRanking(t *testing.T) {
	srv, _ := newTestServerWithStorage()

	body := jsonBody(t, map[string]interface{}{"ticker": "AAPL", "ranking": 9})
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", body)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandlePortfolioList_EnrichedAndOrdered(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	ctx := context.Background()

	storage.portfolio.SaveEntry(ctx, &models.PortfolioEntry{Ticker: "AAPL", Ranking: 2, AddedAt: time.Now().UTC()})
	storage.portfolio.SaveEntry(ctx, &models.PortfolioEntry{Ticker: "NVDA", Ranking: 5, AddedAt: time.Now().UTC()})
	storage.stocks.SaveSnapshot(ctx, &models.StockSnapshot{Ticker: "NVDA", CurrentPrice: 880})
	storage.metrics.SaveMetrics(ctx, &models.GrowthMetrics{Ticker: "NVDA", DataPointsCount: 7})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Positions []models.PortfolioPosition `json:"positions"`
		Count     int                        `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 positions, got %d", resp.Count)
	}
	// Highest ranking first
	if resp.Positions[0].Entry.Ticker != "NVDA" {
		t.Errorf("expected NVDA first, got %q", resp.Positions[0].Entry.Ticker)
	}
	if resp.Positions[0].Snapshot == nil || resp.Positions[0].Snapshot.CurrentPrice != 880 {
		t.Errorf("expected NVDA snapshot attached, got %+v", resp.Positions[0].Snapshot)
	}
	if resp.Positions[0].Metrics == nil || resp.Positions[0].Metrics.DataPointsCount != 7 {
		t.Errorf("expected NVDA metrics attached, got %+v", resp.Positions[0].Metrics)
	}
	// AAPL has no stored snapshot; position still listed
	if resp.Positions[1].Entry.Ticker != "AAPL" || resp.Positions[1].Snapshot != nil {
		t.Errorf("unexpected second position: %+v", resp.Positions[1])
	}
}

func TestHandlePortfolioEntry_UpdateNotesAndRanking(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	ctx := context.Background()
	storage.portfolio.SaveEntry(ctx, &models.PortfolioEntry{Ticker: "AAPL", Notes: "old", Ranking: 1})

	body := jsonBody(t, map[string]interface{}{"notes": "trimming position", "ranking": 3})
	req := httptest.NewRequest(http.MethodPut, "/api/portfolio/AAPL", body)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	entry := storage.portfolio.entries["AAPL"]
	if entry.Notes != "trimming position" || entry.Ranking != 3 {
		t.Errorf("unexpected entry after update: %+v", entry)
	}
}

func TestHandlePortfolioEntry_PartialUpdateKeepsNotes(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	ctx := context.Background()
	storage.portfolio.SaveEntry(ctx, &models.PortfolioEntry{Ticker: "AAPL", Notes: "keep me", Ranking: 1})

	body := jsonBody(t, map[string]interface{}{"ranking": 5})
	req := httptest.NewRequest(http.MethodPut, "/api/portfolio/AAPL", body)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	entry := storage.portfolio.entries["AAPL"]
	if entry.Notes != "keep me" || entry.Ranking != 5 {
		t.Errorf("unexpected entry after partial update: %+v", entry)
	}
}

func TestHandlePortfolioEntry_Delete(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	ctx := context.Background()
	storage.portfolio.SaveEntry(ctx, &models.PortfolioEntry{Ticker: "AAPL"})

	req := httptest.NewRequest(http.MethodDelete, "/api/portfolio/aapl", nil)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, ok := storage.portfolio.entries["AAPL"]; ok {
		t.Error("entry was not deleted")
	}
}

func TestHandlePortfolioEntry_GetMissing(t *testing.T) {
	srv, _ := newTestServerWithStorage()

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/TSLA", nil)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
