package forecast

import (
	"context"
	"fmt"
	"testing"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// --- mock stock service ---

type mockStockService struct {
	snapshot *models.StockSnapshot
	err      error
	calls    int
}

func (m *mockStockService) RefreshStock(_ context.Context, ticker string, _ bool) (*models.StockSnapshot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}
func (m *mockStockService) RefreshList(_ context.Context, _ string, _ bool) (*models.RefreshJob, error) {
	return nil, fmt.Errorf("not implemented")
}
func (m *mockStockService) GetStock(_ context.Context, _ string) (*models.StockSnapshot, *models.GrowthMetrics, error) {
	return nil, nil, fmt.Errorf("not implemented")
}
func (m *mockStockService) ListStocks(_ context.Context) ([]*models.StockSnapshot, error) {
	return nil, fmt.Errorf("not implemented")
}
func (m *mockStockService) DeleteStock(_ context.Context, _ string) error {
	return fmt.Errorf("not implemented")
}

func profitableSnapshot() *models.StockSnapshot {
	return &models.StockSnapshot{
		Ticker:         "AAPL",
		CompanyName:    "Apple Inc.",
		CurrentPrice:   100,
		MarketCap:      1000,
		Revenue:        250,
		EPS:            5,
		PERatio:        20,
		PSRatio:        4,
		RevenueGrowth:  0.15,
		EarningsGrowth: 0.12,
		ProfitMargin:   0.20,
		IsProfitable:   true,
	}
}

// --- Tests ---

func TestForecast_AllModels(t *testing.T) {
	stocks := &mockStockService{snapshot: profitableSnapshot()}
	svc := NewService(stocks, common.NewSilentLogger())

	report, err := svc.Forecast(context.Background(), "aapl", interfaces.ForecastOptions{Years: 5})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if stocks.calls != 1 {
		t.Errorf("expected one snapshot refresh, got %d", stocks.calls)
	}
	if report.Ticker != "AAPL" {
		t.Errorf("unexpected ticker: %s", report.Ticker)
	}
	if report.EarningsModel == nil || report.EarningsModel.Failed() {
		t.Errorf("expected working earnings model: %+v", report.EarningsModel)
	}
	if report.RevenueModel == nil || report.RevenueModel.Failed() {
		t.Errorf("expected working revenue model: %+v", report.RevenueModel)
	}
	if report.DCFModel == nil || report.DCFModel.Failed() {
		t.Errorf("expected working DCF model: %+v", report.DCFModel)
	}
	if report.MonteCarlo == nil || len(report.MonteCarlo.Percentiles) == 0 {
		t.Error("expected Monte Carlo percentiles")
	}
	if report.Scenarios == nil || len(report.Scenarios.Scenarios) != 3 {
		t.Errorf("expected 3 scenarios: %+v", report.Scenarios)
	}
}

func TestForecast_DefaultHorizon(t *testing.T) {
	stocks := &mockStockService{snapshot: profitableSnapshot()}
	svc := NewService(stocks, common.NewSilentLogger())

	report, err := svc.Forecast(context.Background(), "AAPL", interfaces.ForecastOptions{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if report.EarningsModel.Years != defaultForecastYears {
		t.Errorf("expected %d-year default horizon, got %d", defaultForecastYears, report.EarningsModel.Years)
	}
}

func TestForecast_HorizonTooLong(t *testing.T) {
	svc := NewService(&mockStockService{snapshot: profitableSnapshot()}, common.NewSilentLogger())
	if _, err := svc.Forecast(context.Background(), "AAPL", interfaces.ForecastOptions{Years: 50}); err == nil {
		t.Fatal("expected error for excessive horizon")
	}
}

func TestForecast_EmptyTicker(t *testing.T) {
	svc := NewService(&mockStockService{}, common.NewSilentLogger())
	if _, err := svc.Forecast(context.Background(), "", interfaces.ForecastOptions{Years: 5}); err == nil {
		t.Fatal("expected error for empty ticker")
	}
}

func TestForecast_RefreshError(t *testing.T) {
	svc := NewService(&mockStockService{err: fmt.Errorf("upstream down")}, common.NewSilentLogger())
	if _, err := svc.Forecast(context.Background(), "AAPL", interfaces.ForecastOptions{Years: 5}); err == nil {
		t.Fatal("expected refresh error to propagate")
	}
}

func TestForecast_SingleModel(t *testing.T) {
	svc := NewService(&mockStockService{snapshot: profitableSnapshot()}, common.NewSilentLogger())

	report, err := svc.Forecast(context.Background(), "AAPL", interfaces.ForecastOptions{Model: "earnings", Years: 5})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if report.EarningsModel == nil {
		t.Fatal("expected earnings model to run")
	}
	if report.RevenueModel != nil || report.DCFModel != nil || report.MonteCarlo != nil || report.Scenarios != nil {
		t.Errorf("expected only the earnings model in the report: %+v", report)
	}
}

func TestForecast_UnknownModel(t *testing.T) {
	svc := NewService(&mockStockService{snapshot: profitableSnapshot()}, common.NewSilentLogger())
	if _, err := svc.Forecast(context.Background(), "AAPL", interfaces.ForecastOptions{Model: "astrology"}); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestForecast_ParameterOverrides(t *testing.T) {
	svc := NewService(&mockStockService{snapshot: profitableSnapshot()}, common.NewSilentLogger())

	growth, decay, pe := 0.0, 0.0, 20.0
	report, err := svc.Forecast(context.Background(), "AAPL", interfaces.ForecastOptions{
		Model:          "earnings",
		Years:          5,
		EarningsGrowth: &growth,
		GrowthDecay:    &decay,
		TerminalPE:     &pe,
	})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	// Flat growth at an explicit zero keeps EPS at 5, so the target is
	// exactly the starting EPS times the terminal multiple
	if got := report.EarningsModel.TargetPrice; got != 100 {
		t.Errorf("expected target price 100, got %v", got)
	}
}
