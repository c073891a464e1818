package analytics

import (
	"math"
	"math/rand"
	"sort"

	"github.com/bobmcallan/fathom/internal/models"
)

const (
	// monteCarloSeed fixes the RNG so repeated simulations of the same
	// inputs produce identical distributions
	monteCarloSeed = 42

	tradingDaysPerYear = 252
	priceFloor         = 0.01
	histogramBins      = 20
)

// defaultExpectedReturn derives an annual drift from the entity's growth
// rates, capped to keep long-horizon projections sane
func (f *StockForecaster) defaultExpectedReturn() float64 {
	if f.earningsGrowth > 0 {
		return math.Min(f.earningsGrowth, 0.25)
	}
	if f.revenueGrowth > 0 {
		return math.Min(0.7*f.revenueGrowth, 0.20)
	}
	return 0.08
}

// MonteCarloSimulation runs geometric daily price paths and aggregates the
// terminal price distribution. The seed is fixed so results are
// reproducible across runs. Nil drift and volatility fall back to
// growth-derived defaults; explicit zeros are honored.
func (f *StockForecaster) MonteCarloSimulation(expectedReturnOpt, volatilityOpt *float64, years, simulations int) *models.MonteCarloResult {
	result := &models.MonteCarloResult{
		Method:       "monte_carlo",
		CurrentPrice: f.currentPrice,
	}
	if f.currentPrice <= 0 {
		result.Error = "no current price available for simulation"
		return result
	}

	if years <= 0 {
		years = 5
	}
	if simulations <= 0 {
		simulations = 1000
	}
	volatility := resolve(volatilityOpt, 0.30)
	expectedReturn := resolve(expectedReturnOpt, f.defaultExpectedReturn())

	result.Years = years
	result.Simulations = simulations
	result.ExpectedReturn = expectedReturn
	result.Volatility = volatility

	days := years * tradingDaysPerYear
	dailyDrift := expectedReturn / tradingDaysPerYear
	dailyVol := volatility / math.Sqrt(tradingDaysPerYear)

	rng := rand.New(rand.NewSource(monteCarloSeed))
	finals := make([]float64, simulations)
	for s := 0; s < simulations; s++ {
		price := f.currentPrice
		for d := 0; d < days; d++ {
			ret := dailyDrift + dailyVol*rng.NormFloat64()
			price *= 1 + ret
			if price < priceFloor {
				price = priceFloor
			}
		}
		finals[s] = price
	}
	sort.Float64s(finals)

	result.Percentiles = map[string]float64{
		"p10": percentile(finals, 10),
		"p25": percentile(finals, 25),
		"p50": percentile(finals, 50),
		"p75": percentile(finals, 75),
		"p90": percentile(finals, 90),
	}
	result.MedianTarget = result.Percentiles["p50"]
	result.MedianUpside = (result.MedianTarget - f.currentPrice) / f.currentPrice * 100

	var profit, up50, double, down50 int
	for _, p := range finals {
		if p >= f.currentPrice {
			profit++
		}
		if p >= f.currentPrice*1.5 {
			up50++
		}
		if p >= f.currentPrice*2 {
			double++
		}
		if p <= f.currentPrice*0.5 {
			down50++
		}
	}
	n := float64(simulations)
	result.Probabilities = map[string]float64{
		"profit":     float64(profit) / n * 100,
		"gain_50pct": float64(up50) / n * 100,
		"double":     float64(double) / n * 100,
		"loss_50pct": float64(down50) / n * 100,
	}

	result.HistogramBins, result.HistogramCount = histogram(finals, histogramBins)
	return result
}

// percentile computes the p-th percentile of sorted values with linear
// interpolation between adjacent ranks
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// histogram buckets sorted values into equal-width bins, returning the bin
// edges (bins+1 values) and per-bin counts
func histogram(sorted []float64, bins int) ([]float64, []int) {
	if len(sorted) == 0 || bins <= 0 {
		return nil, nil
	}
	min, max := sorted[0], sorted[len(sorted)-1]
	edges := make([]float64, bins+1)
	counts := make([]int, bins)
	width := (max - min) / float64(bins)
	for i := 0; i <= bins; i++ {
		edges[i] = min + float64(i)*width
	}
	if width == 0 {
		counts[0] = len(sorted)
		return edges, counts
	}
	for _, v := range sorted {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return edges, counts
}
