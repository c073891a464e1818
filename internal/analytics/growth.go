// Package analytics implements the growth, technical, forecasting, and
// macro computations at the core of Fathom. All functions are pure: metrics
// that cannot be computed from the available history come back as nil
// pointers rather than errors.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

const (
	// accelerationFactor is how far the recent average growth must exceed
	// the historical average to count as accelerating
	accelerationFactor = 1.05

	// minCAGRSpanYears is the shortest elapsed span a CAGR can be
	// annualized over
	minCAGRSpanYears = 0.5

	daysPerYear = 365.25
)

// GrowthAnalyzer computes growth metrics from one entity's financial history
type GrowthAnalyzer struct {
	records   []*models.FinancialRecord
	quarterly []*models.FinancialRecord
	annual    []*models.FinancialRecord
}

// NewGrowthAnalyzer sorts the records chronologically and splits them by
// period type
func NewGrowthAnalyzer(records []*models.FinancialRecord) *GrowthAnalyzer {
	sorted := make([]*models.FinancialRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PeriodEndDate.Before(sorted[j].PeriodEndDate)
	})

	a := &GrowthAnalyzer{records: sorted}
	for _, r := range sorted {
		switch r.PeriodType {
		case models.PeriodQuarterly:
			a.quarterly = append(a.quarterly, r)
		case models.PeriodAnnual:
			a.annual = append(a.annual, r)
		}
	}
	return a
}

type datedValue struct {
	date  time.Time
	value float64
}

// metricSeries extracts non-null, non-zero values of a metric from records,
// preserving chronological order
func metricSeries(records []*models.FinancialRecord, metric models.Metric) []datedValue {
	var series []datedValue
	for _, r := range records {
		v := r.Value(metric)
		if v == nil || *v == 0 {
			continue
		}
		series = append(series, datedValue{date: r.PeriodEndDate, value: *v})
	}
	return series
}

// CAGR computes the compound annual growth rate of an annual metric over
// roughly the trailing window of years. The annualization uses the actual
// elapsed span between the first and last qualifying records, which avoids
// bias when sparse annual data covers more or less than the nominal window.
func (a *GrowthAnalyzer) CAGR(metric models.Metric, years int) *float64 {
	series := metricSeries(a.annual, metric)
	if len(series) < 2 {
		return nil
	}

	cutoff := series[len(series)-1].date.AddDate(0, 0, -years*365)
	var window []datedValue
	for _, p := range series {
		if !p.date.Before(cutoff) {
			window = append(window, p)
		}
	}
	if len(window) < 2 {
		return nil
	}

	start, end := window[0], window[len(window)-1]
	actualYears := end.date.Sub(start.date).Hours() / 24 / daysPerYear
	if actualYears < minCAGRSpanYears || start.value <= 0 {
		return nil
	}

	cagr := math.Pow(end.value/start.value, 1/actualYears) - 1
	return &cagr
}

// growthRates computes consecutive quarter-over-quarter percentage changes
// over the most recent periods+1 quarterly points. Changes are only taken
// where the prior value is positive.
func (a *GrowthAnalyzer) growthRates(metric models.Metric, periods int) []float64 {
	series := metricSeries(a.quarterly, metric)
	if len(series) < 2 {
		return nil
	}
	if periods > 0 && len(series) > periods+1 {
		series = series[len(series)-periods-1:]
	}

	var rates []float64
	for i := 1; i < len(series); i++ {
		prev := series[i-1].value
		if prev <= 0 {
			continue
		}
		rates = append(rates, (series[i].value-prev)/prev)
	}
	return rates
}

// AverageQuarterlyGrowth returns the arithmetic mean of recent
// quarter-over-quarter growth rates
func (a *GrowthAnalyzer) AverageQuarterlyGrowth(metric models.Metric, periods int) *float64 {
	rates := a.growthRates(metric, periods)
	if len(rates) == 0 {
		return nil
	}
	m := mean(rates)
	return &m
}

// ConsistencyScore rates how steady a metric's quarterly growth has been,
// on a 0-100 scale. Direction contributes up to 40 points, low volatility
// up to 30, and a positive mean a further 30. Unlike the average-growth
// path, changes off a negative base still count here, so loss-making
// quarters feed the score.
func (a *GrowthAnalyzer) ConsistencyScore(metric models.Metric, periods int) float64 {
	series := metricSeries(a.quarterly, metric)
	if len(series) < 3 {
		return 0
	}
	if periods > 0 && len(series) > periods+1 {
		series = series[len(series)-periods-1:]
	}
	var rates []float64
	for i := 1; i < len(series); i++ {
		prev := series[i-1].value
		if prev == 0 {
			continue
		}
		rates = append(rates, (series[i].value-prev)/prev)
	}
	if len(rates) == 0 {
		return 0
	}

	var positive int
	for _, r := range rates {
		if r > 0 {
			positive++
		}
	}
	score := float64(positive) / float64(len(rates)) * 40

	m := mean(rates)
	if math.Abs(m) > 0.01 {
		cv := stddev(rates, m) / math.Abs(m)
		score += math.Max(0, 30-10*cv)
	}
	if m > 0 {
		score += 30
	}

	return math.Min(100, math.Max(0, score))
}

// IsAccelerating reports whether recent quarterly growth is outpacing the
// historical average. Intentionally permissive: flags both consistent
// growers and true inflections.
func (a *GrowthAnalyzer) IsAccelerating(metric models.Metric) bool {
	if len(metricSeries(a.quarterly, metric)) < 6 {
		return false
	}
	rates := a.growthRates(metric, 0)
	if len(rates) == 0 {
		return false
	}

	historical := mean(rates)
	recentRates := rates
	if len(rates) > 4 {
		recentRates = rates[len(rates)-4:]
	}
	recent := mean(recentRates)

	if historical <= 0 {
		return recent > 0
	}
	return recent >= historical*accelerationFactor
}

// ConsecutiveProfitableQuarters counts from the most recent quarter
// backward while net income is positive
func (a *GrowthAnalyzer) ConsecutiveProfitableQuarters() int {
	count := 0
	for i := len(a.quarterly) - 1; i >= 0; i-- {
		ni := a.quarterly[i].NetIncome
		if ni == nil || *ni <= 0 {
			break
		}
		count++
	}
	return count
}

// PEGRatios holds the growth-adjusted valuation variants
type PEGRatios struct {
	FromCAGR3Y    *float64
	FromQuarterly *float64
	Average       *float64
}

// PEGRatio computes PEG variants from the 3-year earnings CAGR and from
// annualized quarterly earnings growth. A non-positive P/E yields no output.
func (a *GrowthAnalyzer) PEGRatio(peRatio float64) PEGRatios {
	var out PEGRatios
	if peRatio <= 0 {
		return out
	}

	var values []float64
	if cagr := a.CAGR(models.MetricEarnings, 3); cagr != nil && *cagr > 0 {
		peg := peRatio / (*cagr * 100)
		out.FromCAGR3Y = &peg
		values = append(values, peg)
	}
	if q := a.AverageQuarterlyGrowth(models.MetricEarnings, 8); q != nil {
		annualized := math.Pow(1+*q, 4) - 1
		if annualized > 0 {
			peg := peRatio / (annualized * 100)
			out.FromQuarterly = &peg
			values = append(values, peg)
		}
	}
	if len(values) > 0 {
		avg := mean(values)
		out.Average = &avg
	}
	return out
}

// FCFMetrics holds free-cash-flow derived metrics
type FCFMetrics struct {
	CAGR3Y         *float64
	Margin         *float64
	CashConversion *float64
}

// FCFMetricsFor computes free-cash-flow metrics against the current
// trailing FCF and revenue from a snapshot
func (a *GrowthAnalyzer) FCFMetricsFor(currentFCF, currentRevenue float64) FCFMetrics {
	out := FCFMetrics{
		CAGR3Y: a.CAGR(models.MetricFreeCashFlow, 3),
	}
	if currentRevenue > 0 {
		margin := currentFCF / currentRevenue
		out.Margin = &margin
	}
	if ni := a.latestQuarterlyNetIncome(); ni != nil && *ni > 0 {
		ccr := currentFCF / *ni
		out.CashConversion = &ccr
	}
	return out
}

func (a *GrowthAnalyzer) latestQuarterlyNetIncome() *float64 {
	for i := len(a.quarterly) - 1; i >= 0; i-- {
		if a.quarterly[i].NetIncome != nil {
			return a.quarterly[i].NetIncome
		}
	}
	return nil
}

// RuleOf40 is revenue growth plus FCF margin, both in percentage points
func RuleOf40(revenueGrowth, fcfMargin *float64) *float64 {
	if revenueGrowth == nil || fcfMargin == nil {
		return nil
	}
	v := *revenueGrowth*100 + *fcfMargin*100
	return &v
}

// OperatingLeverage is average quarterly earnings growth over average
// quarterly revenue growth
func (a *GrowthAnalyzer) OperatingLeverage() *float64 {
	rev := a.AverageQuarterlyGrowth(models.MetricRevenue, 8)
	earn := a.AverageQuarterlyGrowth(models.MetricEarnings, 8)
	if rev == nil || earn == nil || *rev <= 0 {
		return nil
	}
	lev := *earn / *rev
	return &lev
}

// MarginTrend classifies the direction of quarterly profit margins by
// comparing the recent half of an adaptive window against the prior half
func (a *GrowthAnalyzer) MarginTrend() *models.MarginTrend {
	var margins []float64
	for _, r := range a.quarterly {
		if r.ProfitMargin != nil {
			margins = append(margins, *r.ProfitMargin)
		}
	}
	if len(margins) < 4 {
		return nil
	}

	window := 4
	if len(margins) >= 8 {
		window = 8
	} else if len(margins) >= 6 {
		window = 6
	}
	margins = margins[len(margins)-window:]

	half := window / 2
	prev := mean(margins[:half])
	recent := mean(margins[half:])
	if prev == 0 {
		return nil
	}

	change := (recent - prev) / math.Abs(prev)
	trend := models.MarginStable
	switch {
	case change > 0.10:
		trend = models.MarginExpanding
	case change < -0.10:
		trend = models.MarginContracting
	}
	return &trend
}

// GrowthStage classifies the entity's lifecycle stage from computed
// metrics. Rules are checked in order; the first match wins.
func (a *GrowthAnalyzer) GrowthStage(m *models.GrowthMetrics) models.GrowthStage {
	var primaryCAGR float64
	if m.EarningsCAGR3Y != nil && *m.EarningsCAGR3Y != 0 {
		primaryCAGR = *m.EarningsCAGR3Y
	} else if m.RevenueCAGR3Y != nil {
		primaryCAGR = *m.RevenueCAGR3Y
	}

	var margin float64
	if lm := a.latestQuarterlyMargin(); lm != nil {
		margin = *lm
	}
	accelerating := m.RevenueGrowthAccelerating || m.EarningsGrowthAccelerating

	switch {
	case primaryCAGR > 0.50 && margin < 0.10:
		return models.StageEarlyGrowth
	case primaryCAGR >= 0.20 && primaryCAGR <= 0.50 && accelerating:
		return models.StageRapidGrowth
	case primaryCAGR >= 0.05 && primaryCAGR < 0.20 && margin > 0.10:
		return models.StageMatureGrowth
	case accelerating && primaryCAGR < 0.20:
		return models.StageInflection
	case primaryCAGR < 0:
		return models.StageDeclining
	default:
		return models.StageStable
	}
}

func (a *GrowthAnalyzer) latestQuarterlyMargin() *float64 {
	for i := len(a.quarterly) - 1; i >= 0; i-- {
		if a.quarterly[i].ProfitMargin != nil {
			return a.quarterly[i].ProfitMargin
		}
	}
	return nil
}

// AnalyzeOptions carries snapshot-level inputs into the full analysis
type AnalyzeOptions struct {
	Ticker         string
	PERatio        float64
	CurrentFCF     float64
	CurrentRevenue float64

	// ProviderEarningsGrowth is the data provider's own trailing earnings
	// growth estimate, used as a PEG fallback when statement history is thin
	ProviderEarningsGrowth float64
}

// Analyze computes the full GrowthMetrics record. Returns nil when no
// financial records exist at all.
func (a *GrowthAnalyzer) Analyze(opts AnalyzeOptions) *models.GrowthMetrics {
	if len(a.records) == 0 {
		return nil
	}

	m := &models.GrowthMetrics{
		Ticker:         opts.Ticker,
		RevenueCAGR3Y:  a.CAGR(models.MetricRevenue, 3),
		RevenueCAGR5Y:  a.CAGR(models.MetricRevenue, 5),
		EarningsCAGR3Y: a.CAGR(models.MetricEarnings, 3),
		EarningsCAGR5Y: a.CAGR(models.MetricEarnings, 5),

		AvgQuarterlyRevenueGrowth:  a.AverageQuarterlyGrowth(models.MetricRevenue, 8),
		AvgQuarterlyEarningsGrowth: a.AverageQuarterlyGrowth(models.MetricEarnings, 8),

		RevenueConsistencyScore:  a.ConsistencyScore(models.MetricRevenue, 12),
		EarningsConsistencyScore: a.ConsistencyScore(models.MetricEarnings, 12),

		RevenueGrowthAccelerating:     a.IsAccelerating(models.MetricRevenue),
		EarningsGrowthAccelerating:    a.IsAccelerating(models.MetricEarnings),
		ConsecutiveProfitableQuarters: a.ConsecutiveProfitableQuarters(),

		DataPointsCount: len(a.records),
		LastCalculated:  time.Now().UTC(),
	}
	m.OldestDataDate = a.records[0].PeriodEndDate.Format("2006-01-02")
	m.NewestDataDate = a.records[len(a.records)-1].PeriodEndDate.Format("2006-01-02")

	peg := a.PEGRatio(opts.PERatio)
	m.PEG3YCAGR = peg.FromCAGR3Y
	m.PEGQuarterly = peg.FromQuarterly
	m.PEGAverage = peg.Average
	a.applyProviderPEG(m, opts)

	fcf := a.FCFMetricsFor(opts.CurrentFCF, opts.CurrentRevenue)
	m.FCFCAGR3Y = fcf.CAGR3Y
	m.FCFMargin = fcf.Margin
	m.CashConversionRatio = fcf.CashConversion

	m.RuleOf40 = RuleOf40(m.RevenueCAGR3Y, m.FCFMargin)
	m.OperatingLeverage = a.OperatingLeverage()
	m.MarginTrend = a.MarginTrend()
	m.GrowthStage = a.GrowthStage(m)

	return m
}

// applyProviderPEG adds the provider-growth PEG variant and recomputes the
// average across all available variants
func (a *GrowthAnalyzer) applyProviderPEG(m *models.GrowthMetrics, opts AnalyzeOptions) {
	if opts.PERatio <= 0 || opts.ProviderEarningsGrowth <= 0 {
		return
	}
	peg := opts.PERatio / (opts.ProviderEarningsGrowth * 100)
	m.PEGProvider = &peg

	values := []float64{peg}
	if m.PEG3YCAGR != nil {
		values = append(values, *m.PEG3YCAGR)
	}
	if m.PEGQuarterly != nil {
		values = append(values, *m.PEGQuarterly)
	}
	avg := mean(values)
	m.PEGAverage = &avg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
