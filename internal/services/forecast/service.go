// Package forecast runs price forecasting models over stored fundamentals
package forecast

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/fathom/internal/analytics"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

const (
	defaultForecastYears = 5
	maxForecastYears     = 20

	// dcfHorizonYears is the longer projection the DCF uses when the whole
	// report runs with defaults
	dcfHorizonYears = 10
)

// Service implements ForecastService over the stock store.
type Service struct {
	stocks interfaces.StockService
	logger *common.Logger
}

// NewService creates a new forecast service.
func NewService(stocks interfaces.StockService, logger *common.Logger) *Service {
	return &Service{
		stocks: stocks,
		logger: logger,
	}
}

// Forecast runs forecasting models for a ticker, all of them by default or
// a single one named in options, with parameter overrides applied. The
// snapshot is refreshed first when stale so valuation inputs reflect
// current prices. Model failures surface as per-model error details rather
// than request errors.
func (s *Service) Forecast(ctx context.Context, ticker string, options interfaces.ForecastOptions) (*models.ForecastReport, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	years := options.Years
	if years <= 0 {
		years = defaultForecastYears
	}
	if years > maxForecastYears {
		return nil, fmt.Errorf("forecast horizon %d exceeds maximum of %d years", years, maxForecastYears)
	}

	snapshot, err := s.stocks.RefreshStock(ctx, ticker, false)
	if err != nil {
		return nil, err
	}

	f := analytics.NewStockForecaster(snapshot)
	report := &models.ForecastReport{
		Ticker:       snapshot.Ticker,
		CompanyName:  snapshot.CompanyName,
		CurrentPrice: snapshot.CurrentPrice,
	}

	runAll := options.Model == "" || options.Model == "all"
	ran := false
	if runAll || options.Model == "earnings" {
		report.EarningsModel = f.EarningsGrowthModel(options.EarningsGrowth, options.GrowthDecay, options.TerminalPE, years)
		ran = true
	}
	if runAll || options.Model == "revenue" {
		report.RevenueModel = f.RevenueGrowthModel(options.RevenueGrowth, options.RevenueDecay, options.TerminalPS, options.TargetMargin, years)
		ran = true
	}
	if runAll || options.Model == "dcf" {
		dcfYears := years
		if runAll {
			dcfYears = dcfHorizonYears
		}
		report.DCFModel = f.DCFModel(options.FCFGrowth, options.DiscountRate, options.TerminalGrowth, dcfYears)
		ran = true
	}
	if runAll || options.Model == "monte_carlo" {
		report.MonteCarlo = f.MonteCarloSimulation(options.ExpectedReturn, options.Volatility, years, options.Simulations)
		ran = true
	}
	if runAll || options.Model == "scenarios" {
		report.Scenarios = f.ScenarioAnalysis(years)
		ran = true
	}
	if !ran {
		return nil, fmt.Errorf("unknown forecast model '%s'", options.Model)
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("model", options.Model).
		Int("years", years).
		Msg("Forecast generated")
	return report, nil
}

// Ensure Service implements ForecastService
var _ interfaces.ForecastService = (*Service)(nil)
