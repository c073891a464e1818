package analytics

import (
	"math"

	"github.com/bobmcallan/fathom/internal/models"
)

// StockForecaster projects future prices for one entity from its current
// fundamentals snapshot. Every model returns a structured result carrying
// an "error" detail instead of failing when its precondition is unmet.
type StockForecaster struct {
	currentPrice   float64
	eps            float64
	peRatio        float64
	forwardPE      float64
	psRatio        float64
	revenue        float64
	revenueGrowth  float64
	earningsGrowth float64
	marketCap      float64
	profitMargin   float64
	shares         float64
}

// NewStockForecaster derives shares outstanding from market cap and price
// when both are positive
func NewStockForecaster(snapshot *models.StockSnapshot) *StockForecaster {
	f := &StockForecaster{
		currentPrice:   snapshot.CurrentPrice,
		eps:            snapshot.EPS,
		peRatio:        snapshot.PERatio,
		forwardPE:      snapshot.ForwardPE,
		psRatio:        snapshot.PSRatio,
		revenue:        snapshot.Revenue,
		revenueGrowth:  snapshot.RevenueGrowth,
		earningsGrowth: snapshot.EarningsGrowth,
		marketCap:      snapshot.MarketCap,
		profitMargin:   snapshot.ProfitMargin,
	}
	if f.marketCap > 0 && f.currentPrice > 0 {
		f.shares = f.marketCap / f.currentPrice
	}
	return f
}

// resolve returns the override when one was given, preserving an explicit
// zero, and the fallback otherwise
func resolve(override *float64, fallback float64) float64 {
	if override != nil {
		return *override
	}
	return fallback
}

func (f *StockForecaster) errorResult(method, msg string) *models.ForecastResult {
	return &models.ForecastResult{
		Method:       method,
		CurrentPrice: f.currentPrice,
		Details:      map[string]interface{}{"error": msg},
	}
}

func (f *StockForecaster) result(method string, target float64, years int, details map[string]interface{}) *models.ForecastResult {
	r := &models.ForecastResult{
		Method:       method,
		CurrentPrice: f.currentPrice,
		TargetPrice:  target,
		Years:        years,
		Details:      details,
	}
	if f.currentPrice > 0 && target > 0 {
		r.UpsidePercent = (target - f.currentPrice) / f.currentPrice * 100
		r.AnnualReturn = math.Pow(target/f.currentPrice, 1/float64(years)) - 1
	}
	return r
}

// EarningsGrowthModel projects EPS forward with decaying growth and applies
// a terminal multiple. Decayed growth is floored at 3%; a zero decay leaves
// the growth rate untouched, so explicit flat-growth projections stay flat.
// The terminal P/E defaults to the current ratio capped at 25. Nil
// parameters fall back to snapshot-derived defaults; explicit zeros are
// honored.
func (f *StockForecaster) EarningsGrowthModel(growthRateOpt, growthDecayOpt, terminalPEOpt *float64, years int) *models.ForecastResult {
	const method = "earnings_growth"
	if f.eps <= 0 {
		return f.errorResult(method, "no positive EPS available for earnings model")
	}
	if years <= 0 {
		years = 5
	}
	growthDecay := resolve(growthDecayOpt, 0.1)
	defaultGrowth := f.earningsGrowth
	if defaultGrowth == 0 {
		defaultGrowth = 0.15
	}
	growthRate := resolve(growthRateOpt, defaultGrowth)
	defaultPE := f.peRatio
	if defaultPE <= 0 {
		defaultPE = 20
	}
	terminalPE := resolve(terminalPEOpt, math.Min(defaultPE, 25))

	eps := f.eps
	growth := growthRate
	trajectory := make([]float64, 0, years)
	for y := 0; y < years; y++ {
		eps *= 1 + growth
		trajectory = append(trajectory, eps)
		if growthDecay > 0 {
			growth = math.Max(growth*(1-growthDecay), 0.03)
		}
	}
	target := eps * terminalPE

	return f.result(method, target, years, map[string]interface{}{
		"initial_growth_rate": growthRate,
		"growth_decay":        growthDecay,
		"terminal_pe":         terminalPE,
		"final_eps":           eps,
		"eps_trajectory":      trajectory,
	})
}

// RevenueGrowthModel projects revenue with decaying growth and values the
// result at a terminal P/S multiple. Also reports the EPS implied by the
// target margin at the final revenue level. Nil parameters fall back to
// snapshot-derived defaults; explicit zeros are honored, and a zero decay
// keeps the growth rate flat.
func (f *StockForecaster) RevenueGrowthModel(growthRateOpt, growthDecayOpt, terminalPSOpt, targetMarginOpt *float64, years int) *models.ForecastResult {
	const method = "revenue_growth"
	if f.revenue <= 0 {
		return f.errorResult(method, "no revenue available for revenue model")
	}
	if f.shares <= 0 {
		return f.errorResult(method, "shares outstanding unavailable")
	}
	if years <= 0 {
		years = 5
	}
	growthDecay := resolve(growthDecayOpt, 0.15)
	defaultGrowth := f.revenueGrowth
	if defaultGrowth == 0 {
		defaultGrowth = 0.20
	}
	growthRate := resolve(growthRateOpt, defaultGrowth)
	defaultPS := f.psRatio
	if defaultPS <= 0 {
		defaultPS = 5
	}
	terminalPS := resolve(terminalPSOpt, math.Min(defaultPS, 10))
	defaultMargin := f.profitMargin
	if defaultMargin <= 0 {
		defaultMargin = 0.15
	}
	targetMargin := resolve(targetMarginOpt, math.Max(defaultMargin, 0.15))

	revenue := f.revenue
	growth := growthRate
	for y := 0; y < years; y++ {
		revenue *= 1 + growth
		if growthDecay > 0 {
			growth = math.Max(growth*(1-growthDecay), 0.03)
		}
	}
	targetMarketCap := revenue * terminalPS
	target := targetMarketCap / f.shares
	impliedEPS := revenue * targetMargin / f.shares

	return f.result(method, target, years, map[string]interface{}{
		"initial_growth_rate": growthRate,
		"growth_decay":        growthDecay,
		"terminal_ps":         terminalPS,
		"target_margin":       targetMargin,
		"final_revenue":       revenue,
		"target_market_cap":   targetMarketCap,
		"implied_eps":         impliedEPS,
	})
}

// DCFModel discounts a projected free-cash-flow stream plus a
// Gordon-growth terminal value. The base FCF is estimated from EPS when
// positive, else as a fraction of revenue.
func (f *StockForecaster) DCFModel(fcfGrowthOpt, discountRateOpt, terminalGrowthOpt *float64, years int) *models.ForecastResult {
	const method = "dcf"
	if years <= 0 {
		years = 10
	}
	fcfGrowth := resolve(fcfGrowthOpt, 0.10)
	discountRate := resolve(discountRateOpt, 0.10)
	terminalGrowth := resolve(terminalGrowthOpt, 0.03)
	if discountRate <= terminalGrowth {
		return f.errorResult(method, "discount rate must exceed terminal growth")
	}

	var baseFCF float64
	switch {
	case f.eps > 0 && f.shares > 0:
		baseFCF = 0.8 * f.eps * f.shares
	case f.revenue > 0:
		baseFCF = 0.05 * f.revenue
	default:
		return f.errorResult(method, "no free cash flow proxy available for DCF")
	}
	if f.shares <= 0 {
		return f.errorResult(method, "shares outstanding unavailable")
	}

	fcf := baseFCF
	var totalPV float64
	for y := 1; y <= years; y++ {
		fcf *= 1 + fcfGrowth
		totalPV += fcf / math.Pow(1+discountRate, float64(y))
	}
	terminalValue := fcf * (1 + terminalGrowth) / (discountRate - terminalGrowth)
	totalPV += terminalValue / math.Pow(1+discountRate, float64(years))

	target := totalPV / f.shares
	return f.result(method, target, years, map[string]interface{}{
		"base_fcf":         baseFCF,
		"fcf_growth":       fcfGrowth,
		"discount_rate":    discountRate,
		"terminal_growth":  terminalGrowth,
		"terminal_value":   terminalValue,
		"enterprise_value": totalPV,
	})
}

// ScenarioAnalysis builds bear/base/bull cases. Profitable entities use the
// earnings-multiple method; pre-profit entities fall back to revenue
// multiples at fixed terminal P/S levels.
func (f *StockForecaster) ScenarioAnalysis(years int) *models.ScenarioSet {
	if years <= 0 {
		years = 5
	}

	baseGrowth := f.earningsGrowth
	if baseGrowth == 0 {
		baseGrowth = 0.12
	}
	baseGrowth = math.Min(math.Max(baseGrowth, 0.05), 0.30)

	set := &models.ScenarioSet{
		Method:       "scenario_analysis",
		CurrentPrice: f.currentPrice,
		Years:        years,
		Scenarios:    make(map[string]models.Scenario),
	}

	if f.eps > 0 {
		basePE := f.peRatio
		if basePE <= 0 {
			basePE = 18
		}
		cases := []struct {
			name   string
			growth float64
			pe     float64
		}{
			{"bear", baseGrowth * 0.5, basePE * 0.7},
			{"base", baseGrowth, basePE},
			{"bull", baseGrowth * 1.5, basePE * 1.2},
		}
		for _, c := range cases {
			finalEPS := f.eps * math.Pow(1+c.growth, float64(years))
			target := finalEPS * c.pe
			s := models.Scenario{
				TargetPrice: target,
				GrowthRate:  c.growth,
			}
			pe, eps := c.pe, finalEPS
			s.TerminalPE = &pe
			s.FinalEPS = &eps
			if f.currentPrice > 0 {
				s.UpsidePercent = (target - f.currentPrice) / f.currentPrice * 100
			}
			set.Scenarios[c.name] = s
		}
		return set
	}

	if f.revenue > 0 && f.shares > 0 {
		cases := []struct {
			name   string
			growth float64
			ps     float64
		}{
			{"bear", baseGrowth * 0.5, 2},
			{"base", baseGrowth, 5},
			{"bull", baseGrowth * 1.5, 8},
		}
		for _, c := range cases {
			finalRevenue := f.revenue * math.Pow(1+c.growth, float64(years))
			target := finalRevenue * c.ps / f.shares
			s := models.Scenario{
				TargetPrice: target,
				GrowthRate:  c.growth,
			}
			ps := c.ps
			s.TerminalPS = &ps
			if f.currentPrice > 0 {
				s.UpsidePercent = (target - f.currentPrice) / f.currentPrice * 100
			}
			set.Scenarios[c.name] = s
		}
	}
	return set
}
