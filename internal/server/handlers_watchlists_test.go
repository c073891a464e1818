package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/bobmcallan/fathom/internal/app"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// --- Storage mocks ---

type memWatchlistStore struct {
	lists map[string]*models.Watchlist
}

func newMemWatchlistStore() *memWatchlistStore {
	return &memWatchlistStore{lists: map[string]*models.Watchlist{}}
}

func (m *memWatchlistStore) GetWatchlist(_ context.Context, name string) (*models.Watchlist, error) {
	wl, ok := m.lists[name]
	if !ok {
		return nil, fmt.Errorf("watchlist '%s' not found", name)
	}
	copied := *wl
	return &copied, nil
}

func (m *memWatchlistStore) SaveWatchlist(_ context.Context, wl *models.Watchlist) error {
	copied := *wl
	m.lists[wl.Name] = &copied
	return nil
}

func (m *memWatchlistStore) DeleteWatchlist(_ context.Context, name string) error {
	delete(m.lists, name)
	return nil
}

func (m *memWatchlistStore) ListWatchlists(_ context.Context) ([]*models.Watchlist, error) {
	var out []*models.Watchlist
	for _, wl := range m.lists {
		copied := *wl
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memJobStore struct {
	jobs map[string]*models.RefreshJob
}

func (m *memJobStore) SaveJob(_ context.Context, job *models.RefreshJob) error {
	if m.jobs == nil {
		m.jobs = map[string]*models.RefreshJob{}
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobStore) GetJob(_ context.Context, id string) (*models.RefreshJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job '%s' not found", id)
	}
	return job, nil
}

func (m *memJobStore) ListJobs(_ context.Context, limit int) ([]*models.RefreshJob, error) {
	var out []*models.RefreshJob
	for _, job := range m.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPortfolioStore struct {
	entries map[string]*models.PortfolioEntry
}

func (m *memPortfolioStore) GetEntry(_ context.Context, ticker string) (*models.PortfolioEntry, error) {
	entry, ok := m.entries[ticker]
	if !ok {
		return nil, fmt.Errorf("portfolio entry '%s' not found", ticker)
	}
	copied := *entry
	return &copied, nil
}

func (m *memPortfolioStore) SaveEntry(_ context.Context, entry *models.PortfolioEntry) error {
	if m.entries == nil {
		m.entries = map[string]*models.PortfolioEntry{}
	}
	if existing, ok := m.entries[entry.Ticker]; ok {
		entry.AddedAt = existing.AddedAt
	} else if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}
	copied := *entry
	m.entries[entry.Ticker] = &copied
	return nil
}

func (m *memPortfolioStore) DeleteEntry(_ context.Context, ticker string) error {
	delete(m.entries, ticker)
	return nil
}

func (m *memPortfolioStore) ListEntries(_ context.Context) ([]*models.PortfolioEntry, error) {
	var out []*models.PortfolioEntry
	for _, entry := range m.entries {
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ranking != out[j].Ranking {
			return out[i].Ranking > out[j].Ranking
		}
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out, nil
}

type memStockStore struct {
	snapshots map[string]*models.StockSnapshot
}

func (m *memStockStore) GetSnapshot(_ context.Context, ticker string) (*models.StockSnapshot, error) {
	snap, ok := m.snapshots[ticker]
	if !ok {
		return nil, fmt.Errorf("stock '%s' not found", ticker)
	}
	return snap, nil
}

func (m *memStockStore) SaveSnapshot(_ context.Context, snap *models.StockSnapshot) error {
	if m.snapshots == nil {
		m.snapshots = map[string]*models.StockSnapshot{}
	}
	m.snapshots[snap.Ticker] = snap
	return nil
}

func (m *memStockStore) DeleteSnapshot(_ context.Context, ticker string) error {
	delete(m.snapshots, ticker)
	return nil
}

func (m *memStockStore) ListSnapshots(_ context.Context) ([]*models.StockSnapshot, error) {
	var out []*models.StockSnapshot
	for _, snap := range m.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (m *memStockStore) ListTickers(ctx context.Context) ([]string, error) {
	snaps, _ := m.ListSnapshots(ctx)
	tickers := make([]string, len(snaps))
	for i, snap := range snaps {
		tickers[i] = snap.Ticker
	}
	return tickers, nil
}

type memMetricsStore struct {
	metrics map[string]*models.GrowthMetrics
}

func (m *memMetricsStore) GetMetrics(_ context.Context, ticker string) (*models.GrowthMetrics, error) {
	metrics, ok := m.metrics[ticker]
	if !ok {
		return nil, fmt.Errorf("metrics for '%s' not found", ticker)
	}
	return metrics, nil
}

func (m *memMetricsStore) SaveMetrics(_ context.Context, metrics *models.GrowthMetrics) error {
	if m.metrics == nil {
		m.metrics = map[string]*models.GrowthMetrics{}
	}
	m.metrics[metrics.Ticker] = metrics
	return nil
}

func (m *memMetricsStore) DeleteMetrics(_ context.Context, ticker string) error {
	delete(m.metrics, ticker)
	return nil
}

func (m *memMetricsStore) ListMetrics(_ context.Context) ([]*models.GrowthMetrics, error) {
	var out []*models.GrowthMetrics
	for _, metrics := range m.metrics {
		out = append(out, metrics)
	}
	return out, nil
}

type mockStorage struct {
	stocks     *memStockStore
	metrics    *memMetricsStore
	watchlists *memWatchlistStore
	portfolio  *memPortfolioStore
	jobs       *memJobStore
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		stocks:     &memStockStore{},
		metrics:    &memMetricsStore{},
		watchlists: newMemWatchlistStore(),
		portfolio:  &memPortfolioStore{},
		jobs:       &memJobStore{},
	}
}

func (m *mockStorage) StockStore() interfaces.StockStore         { return m.stocks }
func (m *mockStorage) FinancialStore() interfaces.FinancialStore { return nil }
func (m *mockStorage) PriceStore() interfaces.PriceStore         { return nil }
func (m *mockStorage) MetricsStore() interfaces.MetricsStore     { return m.metrics }
func (m *mockStorage) TechnicalStore() interfaces.TechnicalStore { return nil }
func (m *mockStorage) MacroStore() interfaces.MacroStore         { return nil }
func (m *mockStorage) WatchlistStore() interfaces.WatchlistStore { return m.watchlists }
func (m *mockStorage) PortfolioStore() interfaces.PortfolioStore { return m.portfolio }
func (m *mockStorage) JobStore() interfaces.JobStore             { return m.jobs }
func (m *mockStorage) DataPath() string                          { return "" }
func (m *mockStorage) WriteRaw(subdir, key string, data []byte) error {
	return nil
}
func (m *mockStorage) Close() error { return nil }

func newTestServerWithStorage() (*Server, *mockStorage) {
	logger := common.NewSilentLogger()
	storage := newMockStorage()
	a := &app.App{
		Config:       common.NewDefaultConfig(),
		Logger:       logger,
		Storage:      storage,
		StockService: &mockStockService{},
	}
	return &Server{app: a, logger: logger}, storage
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return bytes.NewBuffer(data)
}

// --- Tests ---

func TestHandleWatchlistCreate(t *testing.T) {
	srv, storage := newTestServerWithStorage()

	body := jsonBody(t, map[string]interface{}{
		"name":        "growth",
		"description": "High growth names",
		"tickers":     []string{"nvda", " amd ", "NVDA"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/watchlists", body)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	saved := storage.watchlists.lists["growth"]
	if saved == nil {
		t.Fatal("watchlist was not persisted")
	}
	// Normalized, deduplicated
	if len(saved.Tickers) != 2 || saved.Tickers[0] != "NVDA" || saved.Tickers[1] != "AMD" {
		t.Errorf("unexpected tickers: %v", saved.Tickers)
	}
}

func TestHandleWatchlistCreate_RequiresName(t *testing.T) {
	srv, _ := newTestServerWithStorage()

	body := jsonBody(t, map[string]interface{}{"tickers": []string{"AAPL"}})
	req := httptest.NewRequest(http.MethodPost, "/api/watchlists", body)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleWatchlistGetAndDelete(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	storage.watchlists.lists["tech"] = &models.Watchlist{
		Name:    "tech",
		Tickers: []string{"AAPL", "MSFT"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/watchlists/tech", nil)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var wl models.Watchlist
	if err := json.NewDecoder(rec.Body).Decode(&wl); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(wl.Tickers) != 2 {
		t.Errorf("expected 2 tickers, got %v", wl.Tickers)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/watchlists/tech", nil)
	rec = httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on delete, got %d", rec.Code)
	}
	if _, ok := storage.watchlists.lists["tech"]; ok {
		t.Error("watchlist was not deleted")
	}
}

func TestHandleWatchlistTickerAddAndRemove(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	storage.watchlists.lists["tech"] = &models.Watchlist{
		Name:      "tech",
		Tickers:   []string{"AAPL"},
		CreatedAt: time.Now().UTC(),
	}

	body := jsonBody(t, map[string]string{"ticker": "msft"})
	req := httptest.NewRequest(http.MethodPost, "/api/watchlists/tech/tickers", body)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := storage.watchlists.lists["tech"].Tickers; len(got) != 2 || got[1] != "MSFT" {
		t.Errorf("unexpected tickers after add: %v", got)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/watchlists/tech/tickers/AAPL", nil)
	rec = httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := storage.watchlists.lists["tech"].Tickers; len(got) != 1 || got[0] != "MSFT" {
		t.Errorf("unexpected tickers after remove: %v", got)
	}
}

func TestHandleWatchlistTickerRemove_NotOnList(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	storage.watchlists.lists["tech"] = &models.Watchlist{Name: "tech", Tickers: []string{"AAPL"}}

	req := httptest.NewRequest(http.MethodDelete, "/api/watchlists/tech/tickers/TSLA", nil)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleWatchlistList(t *testing.T) {
	srv, storage := newTestServerWithStorage()
	storage.watchlists.lists["a"] = &models.Watchlist{Name: "a"}
	storage.watchlists.lists["b"] = &models.Watchlist{Name: "b"}

	req := httptest.NewRequest(http.MethodGet, "/api/watchlists", nil)
	rec := httptest.NewRecorder()
	handlerFor(srv).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Watchlists []models.Watchlist `json:"watchlists"`
		Count      int                `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected 2 watchlists, got %d", resp.Count)
	}
}
