// Package macro manages FRED data collection and the market-regime report
package macro

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/fathom/internal/analytics"
	"github.com/bobmcallan/fathom/internal/clients/fred"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// Lookback windows per series group. Credit spreads need a decade of history
// for the percentile ranking, treasuries only enough to cover the one-year
// spread comparison.
const (
	treasuryLookbackYears = 2
	creditLookbackYears   = 10
	marketLookbackDays    = 400 // covers the 200-day moving average
)

// seriesNames maps FRED series IDs to display names.
var seriesNames = map[string]string{
	fred.SeriesTreasury10Y: "10-Year Treasury",
	fred.SeriesTreasury2Y:  "2-Year Treasury",
	fred.SeriesTreasury3M:  "3-Month Treasury",
	fred.SeriesTreasury30Y: "30-Year Treasury",
	fred.SeriesTreasury5Y:  "5-Year Treasury",
	fred.SeriesCreditIG:    "Investment Grade OAS",
	fred.SeriesCreditHY:    "High Yield OAS",
	fred.SeriesCreditBBB:   "BBB OAS",
	fred.SeriesVIX:         "VIX",
	fred.SeriesVIX3M:       "VIX 3-Month",
	fred.SeriesSP500:       "S&P 500",
}

// Service implements MacroService on top of the FRED client and storage.
type Service struct {
	fred     interfaces.FREDClient
	storage  interfaces.StorageManager
	logger   *common.Logger
	spreads  *analytics.SpreadCalculator
	analyzer *analytics.MacroAnalyzer
	now      func() time.Time // injectable clock for testing
}

// NewService creates a new macro service.
func NewService(fredClient interfaces.FREDClient, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		fred:     fredClient,
		storage:  storage,
		logger:   logger,
		spreads:  analytics.NewSpreadCalculator(),
		analyzer: analytics.NewMacroAnalyzer(),
		now:      time.Now,
	}
}

// RefreshMacro fetches all series and rebuilds the cached report. A report
// fresher than its TTL is returned as-is unless force is set.
func (s *Service) RefreshMacro(ctx context.Context, force bool) (*models.MacroReport, error) {
	if !force {
		cached, err := s.storage.MacroStore().GetReport(ctx)
		if err == nil && s.now().Sub(cached.LastUpdated) < common.FreshnessMacro {
			s.logger.Debug().Msg("Macro report fresh, skipping refresh")
			return cached, nil
		}
	}

	s.logger.Info().Bool("force", force).Msg("Refreshing macro data")

	treasuries := analytics.TreasurySeries{
		TenYear:    s.fetchSeries(ctx, fred.SeriesTreasury10Y, treasuryLookbackYears*365),
		TwoYear:    s.fetchSeries(ctx, fred.SeriesTreasury2Y, treasuryLookbackYears*365),
		ThreeMonth: s.fetchSeries(ctx, fred.SeriesTreasury3M, treasuryLookbackYears*365),
		ThirtyYear: s.fetchSeries(ctx, fred.SeriesTreasury30Y, treasuryLookbackYears*365),
		FiveYear:   s.fetchSeries(ctx, fred.SeriesTreasury5Y, treasuryLookbackYears*365),
	}
	if len(treasuries.TenYear) == 0 {
		return nil, fmt.Errorf("no treasury data available")
	}

	spreadSet := s.spreads.ComputeAllSpreads(treasuries)

	report := &models.MacroReport{
		Spreads:       spreadSet,
		CreditSpreads: s.buildCreditSpreads(ctx),
		VixTerm:       s.buildVixTerm(ctx),
		Recession:     s.analyzer.RecessionSummary(spreadSet),
		LastUpdated:   s.now().UTC(),
	}
	if spreadSet.TenYearTwoYear != nil && spreadSet.TenYearTwoYear.Current != nil {
		report.YieldCurveStatus = s.analyzer.YieldCurveStatus10Y2Y(*spreadSet.TenYearTwoYear.Current)
	}
	report.FearGreed = s.buildFearGreed(ctx, report)

	if err := s.storage.MacroStore().SaveReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("yield_curve", report.YieldCurveStatus).
		Str("recession_risk", recessionRisk(report)).
		Msg("Macro report rebuilt")
	return report, nil
}

func recessionRisk(report *models.MacroReport) string {
	if report.Recession == nil {
		return ""
	}
	return report.Recession.RiskLevel
}

// fetchSeries returns the merged point history for one series, fetching only
// observations newer than what is already stored. Fetch failures fall back to
// stored data.
func (s *Service) fetchSeries(ctx context.Context, seriesID string, lookbackDays int) []models.SeriesPoint {
	stored, err := s.storage.MacroStore().GetSeries(ctx, seriesID)
	if err != nil {
		s.logger.Warn().Err(err).Str("series", seriesID).Msg("Series load failed")
		stored = nil
	}

	since := s.now().AddDate(0, 0, -lookbackDays)
	fetchFrom := since
	if stored != nil && len(stored.Points) > 0 {
		last := stored.Points[len(stored.Points)-1].Date
		if last.After(fetchFrom) {
			fetchFrom = last.AddDate(0, 0, 1)
		}
	}

	points, err := s.fred.GetSeries(ctx, seriesID, fetchFrom)
	if err != nil {
		s.logger.Warn().Err(err).Str("series", seriesID).Msg("FRED fetch failed, using stored data")
	}

	merged := mergePoints(stored, points)
	if len(points) > 0 || stored == nil {
		series := &models.MacroSeries{
			SeriesID:    seriesID,
			Name:        seriesNames[seriesID],
			Points:      merged,
			LastUpdated: s.now().UTC(),
		}
		if err := s.storage.MacroStore().SaveSeries(ctx, series); err != nil {
			s.logger.Warn().Err(err).Str("series", seriesID).Msg("Series save failed")
		}
	}

	// Clip to the requested window
	idx := sort.Search(len(merged), func(i int) bool { return !merged[i].Date.Before(since) })
	return merged[idx:]
}

// mergePoints combines stored and fetched observations, newest fetch winning
// on date collisions, sorted ascending.
func mergePoints(stored *models.MacroSeries, fetched []models.SeriesPoint) []models.SeriesPoint {
	byDate := make(map[string]models.SeriesPoint)
	if stored != nil {
		for _, p := range stored.Points {
			byDate[p.Date.Format("2006-01-02")] = p
		}
	}
	for _, p := range fetched {
		byDate[p.Date.Format("2006-01-02")] = p
	}

	merged := make([]models.SeriesPoint, 0, len(byDate))
	for _, p := range byDate {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}

// buildCreditSpreads ranks each corporate credit series against its decade of
// history.
func (s *Service) buildCreditSpreads(ctx context.Context) []models.CreditSpread {
	ids := []string{fred.SeriesCreditIG, fred.SeriesCreditHY, fred.SeriesCreditBBB}

	var result []models.CreditSpread
	for _, id := range ids {
		points := s.fetchSeries(ctx, id, creditLookbackYears*365)
		current, percentile := s.spreads.CreditPercentile(points)
		spread := models.CreditSpread{
			Name:       seriesNames[id],
			Current:    current,
			Percentile: percentile,
		}
		if percentile != nil {
			spread.Status = s.analyzer.CreditSpreadStatus(*percentile)
		}
		result = append(result, spread)
	}
	return result
}

// buildVixTerm classifies the spot versus 3-month VIX relationship.
func (s *Service) buildVixTerm(ctx context.Context) *models.VixTermStructure {
	spot := latestValue(s.fetchSeries(ctx, fred.SeriesVIX, marketLookbackDays))
	threeMonth := latestValue(s.fetchSeries(ctx, fred.SeriesVIX3M, marketLookbackDays))
	return s.analyzer.VixTermStructure(spot, threeMonth)
}

// buildFearGreed assembles the composite from the already-computed report
// parts plus the S&P 500 trend reading.
func (s *Service) buildFearGreed(ctx context.Context, report *models.MacroReport) *models.FearGreedIndex {
	inputs := analytics.FearGreedInputs{}

	if report.VixTerm != nil {
		inputs.VIX = report.VixTerm.Spot
		inputs.VixTermSpread = report.VixTerm.Spread
	}
	for _, cs := range report.CreditSpreads {
		if cs.Name == seriesNames[fred.SeriesCreditHY] {
			inputs.CreditPercentile = cs.Percentile
		}
	}
	inputs.SP500PctAboveMA200 = s.sp500TrendReading(ctx)

	return s.analyzer.FearGreed(inputs)
}

// sp500TrendReading computes how far the index sits above its 200-day moving
// average, in percent.
func (s *Service) sp500TrendReading(ctx context.Context) *float64 {
	points := s.fetchSeries(ctx, fred.SeriesSP500, marketLookbackDays)
	if len(points) < 200 {
		return nil
	}

	var sum float64
	for _, p := range points[len(points)-200:] {
		sum += p.Value
	}
	ma200 := sum / 200
	if ma200 <= 0 {
		return nil
	}
	pct := (points[len(points)-1].Value - ma200) / ma200 * 100
	return &pct
}

func latestValue(points []models.SeriesPoint) *float64 {
	if len(points) == 0 {
		return nil
	}
	v := points[len(points)-1].Value
	return &v
}

// GetReport returns the cached macro report.
func (s *Service) GetReport(ctx context.Context) (*models.MacroReport, error) {
	return s.storage.MacroStore().GetReport(ctx)
}

// Ensure Service implements MacroService
var _ interfaces.MacroService = (*Service)(nil)
