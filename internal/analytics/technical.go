package analytics

import (
	"sort"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

const (
	// clusterTolerance is the relative distance within which raw
	// support/resistance levels merge into one cluster
	clusterTolerance = 0.02

	defaultSRWindow  = 20
	defaultNumLevels = 3
	defaultTrendDays = 90
	minTrendPoints   = 10
)

// TechnicalAnalyzer computes price-derived indicators from one entity's
// daily bar history
type TechnicalAnalyzer struct {
	bars []models.PriceBar
}

// NewTechnicalAnalyzer sorts the bars chronologically
func NewTechnicalAnalyzer(bars []models.PriceBar) *TechnicalAnalyzer {
	sorted := make([]models.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &TechnicalAnalyzer{bars: sorted}
}

// SupportResistance finds local extremes over a ±window neighborhood,
// clusters levels within 2% of each other, and returns the strongest few.
// Supports come back highest first, resistances lowest first, so each list
// leads with the level nearest a plausible current price band.
func (t *TechnicalAnalyzer) SupportResistance(window, numLevels int) (supports, resistances []float64) {
	if window <= 0 {
		window = defaultSRWindow
	}
	if numLevels <= 0 {
		numLevels = defaultNumLevels
	}
	if len(t.bars) < 2*window {
		return nil, nil
	}

	// A bar that merely ties the neighborhood extreme still counts, so
	// repeated tests of the same level each register
	var rawSupports, rawResistances []float64
	for i := window; i < len(t.bars)-window; i++ {
		isHigh, isLow := true, true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if t.bars[j].High > t.bars[i].High {
				isHigh = false
			}
			if t.bars[j].Low < t.bars[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			rawResistances = append(rawResistances, t.bars[i].High)
		}
		if isLow {
			rawSupports = append(rawSupports, t.bars[i].Low)
		}
	}

	supports = clusterLevels(rawSupports)
	resistances = clusterLevels(rawResistances)

	// Highest supports and lowest resistances are the actionable ones
	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)
	if len(supports) > numLevels {
		supports = supports[:numLevels]
	}
	if len(resistances) > numLevels {
		resistances = resistances[:numLevels]
	}
	return supports, resistances
}

// clusterLevels greedily chains sorted values into clusters, merging each
// value that sits within clusterTolerance of the cluster's newest member,
// and replaces every cluster with its mean
func clusterLevels(levels []float64) []float64 {
	if len(levels) == 0 {
		return nil
	}
	sorted := make([]float64, len(levels))
	copy(sorted, levels)
	sort.Float64s(sorted)

	var clustered []float64
	cluster := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		last := cluster[len(cluster)-1]
		if last != 0 && (v-last)/last <= clusterTolerance {
			cluster = append(cluster, v)
			continue
		}
		clustered = append(clustered, mean(cluster))
		cluster = []float64{v}
	}
	clustered = append(clustered, mean(cluster))
	return clustered
}

// PivotPoints computes classic floor-trader pivots from the latest bar
func (t *TechnicalAnalyzer) PivotPoints() *models.PivotPoints {
	if len(t.bars) == 0 {
		return nil
	}
	last := t.bars[len(t.bars)-1]
	h, l, c := last.High, last.Low, last.Close
	p := (h + l + c) / 3

	return &models.PivotPoints{
		Pivot: p,
		R1:    2*p - l,
		S1:    2*p - h,
		R2:    p + (h - l),
		S2:    p - (h - l),
		R3:    h + 2*(p-l),
		S3:    l - 2*(h-p),
	}
}

// Trend fits an ordinary least-squares line to closes over the most recent
// periodDays bars and extrapolates 30- and 90-day price targets
func (t *TechnicalAnalyzer) Trend(periodDays int) *models.TrendAnalysis {
	if periodDays <= 0 {
		periodDays = defaultTrendDays
	}
	bars := t.bars
	if len(bars) > periodDays {
		bars = bars[len(bars)-periodDays:]
	}
	if len(bars) < minTrendPoints {
		return nil
	}

	n := float64(len(bars))
	var sumX, sumY, sumXY, sumXX float64
	for i, b := range bars {
		x := float64(i)
		sumX += x
		sumY += b.Close
		sumXY += x * b.Close
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// R² against the fitted line
	meanY := sumY / n
	var ssTot, ssRes float64
	for i, b := range bars {
		fit := intercept + slope*float64(i)
		ssRes += (b.Close - fit) * (b.Close - fit)
		ssTot += (b.Close - meanY) * (b.Close - meanY)
	}
	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	current := bars[len(bars)-1].Close
	lastX := n - 1
	target30 := intercept + slope*(lastX+30)
	target90 := intercept + slope*(lastX+90)

	direction := "Bearish"
	if slope > 0 {
		direction = "Bullish"
	}

	trend := &models.TrendAnalysis{
		Slope:        slope,
		RSquared:     rSquared,
		Direction:    direction,
		CurrentPrice: current,
		Target30D:    target30,
		Target90D:    target90,
	}
	if current > 0 {
		trend.Upside30DPct = (target30 - current) / current * 100
		trend.Upside90DPct = (target90 - current) / current * 100
	}
	if ma := t.movingAverage(20); ma != nil {
		trend.MA20 = ma
	}
	if ma := t.movingAverage(50); ma != nil {
		trend.MA50 = ma
	}
	return trend
}

func (t *TechnicalAnalyzer) movingAverage(period int) *float64 {
	if len(t.bars) < period {
		return nil
	}
	var sum float64
	for _, b := range t.bars[len(t.bars)-period:] {
		sum += b.Close
	}
	avg := sum / float64(period)
	return &avg
}

// PriceTargets finds the nearest resistance strictly above and support
// strictly below the current price
func (t *TechnicalAnalyzer) PriceTargets(currentPrice float64, supports, resistances []float64) *models.PriceTargets {
	targets := &models.PriceTargets{CurrentPrice: currentPrice}
	if currentPrice <= 0 {
		return targets
	}

	for _, r := range resistances {
		if r > currentPrice && (targets.NextResistance == nil || r < *targets.NextResistance) {
			v := r
			targets.NextResistance = &v
		}
	}
	for _, s := range supports {
		if s < currentPrice && (targets.NextSupport == nil || s > *targets.NextSupport) {
			v := s
			targets.NextSupport = &v
		}
	}

	if targets.NextResistance != nil {
		up := (*targets.NextResistance - currentPrice) / currentPrice * 100
		targets.UpsideToResistance = &up
	}
	if targets.NextSupport != nil {
		down := (currentPrice - *targets.NextSupport) / currentPrice * 100
		targets.DownsideToSupport = &down
	}
	return targets
}

// Analyze runs the full technical analysis and assembles a snapshot.
// Returns nil when there is no price history at all.
func (t *TechnicalAnalyzer) Analyze(ticker string) *models.TechnicalSnapshot {
	if len(t.bars) == 0 {
		return nil
	}

	supports, resistances := t.SupportResistance(defaultSRWindow, defaultNumLevels)
	current := t.bars[len(t.bars)-1].Close

	snap := &models.TechnicalSnapshot{
		Ticker:           ticker,
		SupportLevels:    supports,
		ResistanceLevels: resistances,
		Pivots:           t.PivotPoints(),
		Trend:            t.Trend(defaultTrendDays),
		Targets:          t.PriceTargets(current, supports, resistances),
		DataPoints:       len(t.bars),
		OldestDate:       t.bars[0].Date.Format("2006-01-02"),
		NewestDate:       t.bars[len(t.bars)-1].Date.Format("2006-01-02"),
		LastCalculated:   time.Now().UTC(),
	}
	return snap
}
