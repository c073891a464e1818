package analytics

import (
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// Trend classification thresholds on the 3-month spread change. The
// long-end spread moves less, so it gets a tighter band.
const (
	spreadTrendThreshold  = 0.10
	longEndTrendThreshold = 0.05
)

// SpreadCalculator derives yield-curve and credit spreads from paired
// treasury series. All series are expected oldest first.
type SpreadCalculator struct{}

// NewSpreadCalculator returns a calculator
func NewSpreadCalculator() *SpreadCalculator {
	return &SpreadCalculator{}
}

// valueOnOrBefore returns the latest observation dated on or before target
func valueOnOrBefore(points []models.SeriesPoint, target time.Time) *float64 {
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Date.After(target) {
			v := points[i].Value
			return &v
		}
	}
	return nil
}

// historicalSpread computes long minus short as of daysBack before the
// long series' latest date
func historicalSpread(long, short []models.SeriesPoint, daysBack int) *float64 {
	if len(long) == 0 || len(short) == 0 {
		return nil
	}
	target := long[len(long)-1].Date.AddDate(0, 0, -daysBack)
	l := valueOnOrBefore(long, target)
	s := valueOnOrBefore(short, target)
	if l == nil || s == nil {
		return nil
	}
	spread := *l - *s
	return &spread
}

// ComputeSpread builds one spread with lookback history and a trend
// classification from the 3-month change
func (c *SpreadCalculator) ComputeSpread(name string, long, short []models.SeriesPoint, trendThreshold float64) *models.YieldSpread {
	if len(long) == 0 || len(short) == 0 {
		return nil
	}

	current := long[len(long)-1].Value - short[len(short)-1].Value
	spread := &models.YieldSpread{
		Name:        name,
		Current:     &current,
		OneMonthAgo: historicalSpread(long, short, 30),
		ThreeMonths: historicalSpread(long, short, 90),
		SixMonths:   historicalSpread(long, short, 180),
		OneYearAgo:  historicalSpread(long, short, 365),
		Inverted:    current < 0,
	}

	if spread.ThreeMonths != nil {
		change := current - *spread.ThreeMonths
		spread.Change3M = &change
		switch {
		case change > trendThreshold:
			spread.Trend = models.TrendExpanding
		case change < -trendThreshold:
			spread.Trend = models.TrendContracting
		default:
			spread.Trend = models.TrendStable
		}
	}
	return spread
}

// TreasurySeries bundles the yield series needed for all spreads
type TreasurySeries struct {
	TenYear    []models.SeriesPoint
	TwoYear    []models.SeriesPoint
	ThreeMonth []models.SeriesPoint
	ThirtyYear []models.SeriesPoint
	FiveYear   []models.SeriesPoint
}

// ComputeAllSpreads builds the full spread set: 10Y-2Y (classic recession
// indicator), 10Y-3M (the Fed's preferred measure), and 30Y-5Y (long-end
// curve shape)
func (c *SpreadCalculator) ComputeAllSpreads(series TreasurySeries) *models.SpreadSet {
	return &models.SpreadSet{
		TenYearTwoYear:     c.ComputeSpread("10Y-2Y", series.TenYear, series.TwoYear, spreadTrendThreshold),
		TenYearThreeMonth:  c.ComputeSpread("10Y-3M", series.TenYear, series.ThreeMonth, spreadTrendThreshold),
		ThirtyYearFiveYear: c.ComputeSpread("30Y-5Y", series.ThirtyYear, series.FiveYear, longEndTrendThreshold),
		AsOf:               time.Now().UTC(),
	}
}

// CreditPercentile ranks the latest value of a credit spread series
// against its own history: the share of observations at or below it
func (c *SpreadCalculator) CreditPercentile(points []models.SeriesPoint) (current, percentile *float64) {
	if len(points) == 0 {
		return nil, nil
	}
	cur := points[len(points)-1].Value
	var below int
	for _, p := range points {
		if p.Value <= cur {
			below++
		}
	}
	pct := float64(below) / float64(len(points)) * 100
	return &cur, &pct
}
