package screen

import (
	"context"
	"fmt"
	"testing"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// --- in-memory stock store ---

type memStockStore struct {
	snapshots []*models.StockSnapshot
}

func (m *memStockStore) GetSnapshot(_ context.Context, ticker string) (*models.StockSnapshot, error) {
	for _, snap := range m.snapshots {
		if snap.Ticker == ticker {
			return snap, nil
		}
	}
	return nil, fmt.Errorf("stock '%s' not found", ticker)
}
func (m *memStockStore) SaveSnapshot(_ context.Context, snapshot *models.StockSnapshot) error {
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}
func (m *memStockStore) DeleteSnapshot(_ context.Context, _ string) error { return nil }
func (m *memStockStore) ListSnapshots(_ context.Context) ([]*models.StockSnapshot, error) {
	return m.snapshots, nil
}
func (m *memStockStore) ListTickers(_ context.Context) ([]string, error) { return nil, nil }

type memMetricsStore struct {
	metrics []*models.GrowthMetrics
}

func (m *memMetricsStore) GetMetrics(_ context.Context, ticker string) (*models.GrowthMetrics, error) {
	for _, gm := range m.metrics {
		if gm.Ticker == ticker {
			return gm, nil
		}
	}
	return nil, fmt.Errorf("metrics for '%s' not found", ticker)
}
func (m *memMetricsStore) SaveMetrics(_ context.Context, metrics *models.GrowthMetrics) error {
	m.metrics = append(m.metrics, metrics)
	return nil
}
func (m *memMetricsStore) DeleteMetrics(_ context.Context, _ string) error { return nil }
func (m *memMetricsStore) ListMetrics(_ context.Context) ([]*models.GrowthMetrics, error) {
	return m.metrics, nil
}

type mockStorageManager struct {
	stocks  *memStockStore
	metrics *memMetricsStore
}

func (m *mockStorageManager) StockStore() interfaces.StockStore         { return m.stocks }
func (m *mockStorageManager) FinancialStore() interfaces.FinancialStore { return nil }
func (m *mockStorageManager) PriceStore() interfaces.PriceStore         { return nil }
func (m *mockStorageManager) MetricsStore() interfaces.MetricsStore     { return m.metrics }
func (m *mockStorageManager) TechnicalStore() interfaces.TechnicalStore { return nil }
func (m *mockStorageManager) MacroStore() interfaces.MacroStore         { return nil }
func (m *mockStorageManager) WatchlistStore() interfaces.WatchlistStore { return nil }
func (m *mockStorageManager) PortfolioStore() interfaces.PortfolioStore { return nil }
func (m *mockStorageManager) JobStore() interfaces.JobStore             { return nil }
func (m *mockStorageManager) DataPath() string                          { return "" }
func (m *mockStorageManager) WriteRaw(_, _ string, _ []byte) error      { return nil }
func (m *mockStorageManager) Close() error                              { return nil }

func newTestService(snapshots ...*models.StockSnapshot) *Service {
	storage := &mockStorageManager{
		stocks:  &memStockStore{snapshots: snapshots},
		metrics: &memMetricsStore{},
	}
	return NewService(storage, common.NewSilentLogger())
}

func floatPtr(v float64) *float64 { return &v }

// --- Tests ---

func TestScreen_Value(t *testing.T) {
	svc := newTestService(
		&models.StockSnapshot{Ticker: "CHEAP", IsProfitable: true, PERatio: 12, PSRatio: 2},
		&models.StockSnapshot{Ticker: "CHEAPER", IsProfitable: true, PERatio: 8, PSRatio: 1.5},
		&models.StockSnapshot{Ticker: "RICH", IsProfitable: true, PERatio: 90, PSRatio: 15},
		&models.StockSnapshot{Ticker: "UNPROFITABLE", IsProfitable: false, PERatio: 10, PSRatio: 2},
	)

	matched, err := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenValue})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 value plays, got %d", len(matched))
	}
	// Sorted by P/E ascending
	if matched[0].Ticker != "CHEAPER" || matched[1].Ticker != "CHEAP" {
		t.Errorf("unexpected order: %s, %s", matched[0].Ticker, matched[1].Ticker)
	}
}

func TestScreen_ValueCustomThresholds(t *testing.T) {
	svc := newTestService(
		&models.StockSnapshot{Ticker: "MID", IsProfitable: true, PERatio: 25, PSRatio: 4},
	)

	// Default thresholds exclude it
	matched, _ := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenValue})
	if len(matched) != 0 {
		t.Errorf("expected no matches at default thresholds, got %d", len(matched))
	}

	// Looser thresholds include it
	matched, _ = svc.Screen(context.Background(), interfaces.ScreenOptions{
		Screen: ScreenValue, MaxPE: 30, MaxPS: 5,
	})
	if len(matched) != 1 {
		t.Errorf("expected 1 match at loose thresholds, got %d", len(matched))
	}
}

func TestScreen_NearValue(t *testing.T) {
	svc := newTestService(
		&models.StockSnapshot{Ticker: "VALUE", IsProfitable: true, PERatio: 15, PSRatio: 2},
		&models.StockSnapshot{Ticker: "CLOSE", IsProfitable: true, PERatio: 24, PSRatio: 4},
		&models.StockSnapshot{Ticker: "CLOSER", IsProfitable: true, PERatio: 21, PSRatio: 3.2},
		&models.StockSnapshot{Ticker: "FAR", IsProfitable: true, PERatio: 80, PSRatio: 20},
	)

	matched, err := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenNearValue})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 near-value candidates, got %d", len(matched))
	}
	// CLOSER ranks ahead: (21-20)/10 + (3.2-3)/2 = 0.2 vs (24-20)/10 + (4-3)/2 = 0.9
	if matched[0].Ticker != "CLOSER" {
		t.Errorf("expected CLOSER first, got %s", matched[0].Ticker)
	}
}

func TestScreen_HighRisk(t *testing.T) {
	svc := newTestService(
		&models.StockSnapshot{Ticker: "SAFE", BubbleScore: 1},
		&models.StockSnapshot{Ticker: "RISKY", BubbleScore: 6},
		&models.StockSnapshot{Ticker: "FROTHY", BubbleScore: 9},
	)

	matched, err := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenHighRisk})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 high-risk stocks, got %d", len(matched))
	}
	if matched[0].Ticker != "FROTHY" {
		t.Errorf("expected highest bubble score first, got %s", matched[0].Ticker)
	}
}

func TestScreen_Growth(t *testing.T) {
	svc := newTestService(
		&models.StockSnapshot{Ticker: "STEADY"},
		&models.StockSnapshot{Ticker: "ACCEL"},
		&models.StockSnapshot{Ticker: "SLOW"},
		&models.StockSnapshot{Ticker: "CHOPPY"},
		&models.StockSnapshot{Ticker: "PRICEY"},
		&models.StockSnapshot{Ticker: "NOMETRICS"},
	)
	svc.storage.(*mockStorageManager).metrics.metrics = []*models.GrowthMetrics{
		{Ticker: "STEADY", EarningsCAGR3Y: floatPtr(0.25), EarningsConsistencyScore: 90, PEGAverage: floatPtr(1.2)},
		{Ticker: "ACCEL", RevenueCAGR3Y: floatPtr(0.30), EarningsConsistencyScore: 80, PEGAverage: floatPtr(2.0), RevenueGrowthAccelerating: true},
		{Ticker: "SLOW", EarningsCAGR3Y: floatPtr(0.10), EarningsConsistencyScore: 95, PEGAverage: floatPtr(1.0)},
		{Ticker: "CHOPPY", EarningsCAGR3Y: floatPtr(0.40), EarningsConsistencyScore: 50, PEGAverage: floatPtr(1.0)},
		{Ticker: "PRICEY", EarningsCAGR3Y: floatPtr(0.40), EarningsConsistencyScore: 90, PEGAverage: floatPtr(4.0)},
	}

	matched, err := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenGrowth})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 quality growers, got %d", len(matched))
	}
	// Accelerating grower ranks ahead despite lower consistency
	if matched[0].Ticker != "ACCEL" || matched[1].Ticker != "STEADY" {
		t.Errorf("unexpected order: %s, %s", matched[0].Ticker, matched[1].Ticker)
	}
}

func TestScreen_GrowthTieBreaks(t *testing.T) {
	svc := newTestService(
		&models.StockSnapshot{Ticker: "CHEAPPEG"},
		&models.StockSnapshot{Ticker: "DEARPEG"},
		&models.StockSnapshot{Ticker: "CONSISTENT"},
	)
	svc.storage.(*mockStorageManager).metrics.metrics = []*models.GrowthMetrics{
		{Ticker: "CHEAPPEG", EarningsCAGR3Y: floatPtr(0.25), EarningsConsistencyScore: 80, PEGAverage: floatPtr(1.0)},
		{Ticker: "DEARPEG", EarningsCAGR3Y: floatPtr(0.25), EarningsConsistencyScore: 80, PEGAverage: floatPtr(2.2)},
		{Ticker: "CONSISTENT", EarningsCAGR3Y: floatPtr(0.25), EarningsConsistencyScore: 95, PEGAverage: floatPtr(2.4)},
	}

	matched, err := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenGrowth})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	if len(matched) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matched))
	}
	// Consistency wins first, PEG breaks the remaining tie
	want := []string{"CONSISTENT", "CHEAPPEG", "DEARPEG"}
	for i, ticker := range want {
		if matched[i].Ticker != ticker {
			t.Errorf("position %d: expected %s, got %s", i, ticker, matched[i].Ticker)
		}
	}

	matched, _ = svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenGrowth, Limit: 1})
	if len(matched) != 1 || matched[0].Ticker != "CONSISTENT" {
		t.Errorf("expected limit to keep top match, got %v", matched)
	}
}

func TestScreen_LimitAndUnknown(t *testing.T) {
	svc := newTestService(
		&models.StockSnapshot{Ticker: "A", IsProfitable: true, PERatio: 10, PSRatio: 2},
		&models.StockSnapshot{Ticker: "B", IsProfitable: true, PERatio: 12, PSRatio: 2},
	)

	matched, _ := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: ScreenValue, Limit: 1})
	if len(matched) != 1 {
		t.Errorf("expected limit of 1, got %d", len(matched))
	}

	if _, err := svc.Screen(context.Background(), interfaces.ScreenOptions{Screen: "bogus"}); err == nil {
		t.Fatal("expected error for unknown screen")
	}
}
