package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

func testSnapshot() *models.StockSnapshot {
	return &models.StockSnapshot{
		Ticker:         "TEST",
		CompanyName:    "Test Corp",
		CurrentPrice:   100,
		EPS:            5,
		PERatio:        20,
		PSRatio:        4,
		Revenue:        250,
		RevenueGrowth:  0.15,
		EarningsGrowth: 0.12,
		MarketCap:      1000,
		ProfitMargin:   0.20,
	}
}

func TestNewStockForecaster(t *testing.T) {
	f := NewStockForecaster(testSnapshot())
	assert.InDelta(t, 10.0, f.shares, 0.001)

	// Shares stay zero without both market cap and price
	noCap := testSnapshot()
	noCap.MarketCap = 0
	assert.Equal(t, 0.0, NewStockForecaster(noCap).shares)
}

func TestEarningsGrowthModel(t *testing.T) {
	t.Run("negative EPS fails", func(t *testing.T) {
		snap := testSnapshot()
		snap.EPS = -2
		r := NewStockForecaster(snap).EarningsGrowthModel(nil, nil, nil, 5)
		assert.True(t, r.Failed())
		assert.Equal(t, 0.0, r.TargetPrice)
	})

	t.Run("explicit zero growth stays flat", func(t *testing.T) {
		// Zero growth and zero decay must not fall back to defaults:
		// EPS never moves, so the target is exactly EPS times the
		// terminal multiple
		f := NewStockForecaster(testSnapshot())
		r := f.EarningsGrowthModel(fptr(0), fptr(0), fptr(20), 5)
		require.False(t, r.Failed())

		assert.Equal(t, 100.0, r.TargetPrice)
		assert.Equal(t, 0.0, r.UpsidePercent)
		assert.InDelta(t, math.Pow(100.0/100, 0.2)-1, r.AnnualReturn, 1e-12)
	})

	t.Run("floored growth is constant", func(t *testing.T) {
		// A 3% starting rate sits on the floor, so decay never bites
		// and the projection is exactly compound growth
		f := NewStockForecaster(testSnapshot())
		r := f.EarningsGrowthModel(fptr(0.03), fptr(0.9), fptr(10), 5)
		require.False(t, r.Failed())

		expectedEPS := 5 * math.Pow(1.03, 5)
		assert.InDelta(t, expectedEPS*10, r.TargetPrice, 0.001)
		assert.InDelta(t, (r.TargetPrice-100)/100*100, r.UpsidePercent, 0.0001)
		assert.InDelta(t, math.Pow(r.TargetPrice/100, 0.2)-1, r.AnnualReturn, 0.0001)
	})

	t.Run("growth decays toward the floor", func(t *testing.T) {
		f := NewStockForecaster(testSnapshot())
		r := f.EarningsGrowthModel(fptr(0.40), fptr(0.1), nil, 5)
		require.False(t, r.Failed())

		trajectory := r.Details["eps_trajectory"].([]float64)
		require.Len(t, trajectory, 5)
		// Year-over-year growth must shrink
		g1 := trajectory[0]/5 - 1
		g5 := trajectory[4]/trajectory[3] - 1
		assert.Greater(t, g1, g5)
	})

	t.Run("terminal PE caps at 25", func(t *testing.T) {
		snap := testSnapshot()
		snap.PERatio = 60
		r := NewStockForecaster(snap).EarningsGrowthModel(nil, nil, nil, 5)
		require.False(t, r.Failed())
		assert.InDelta(t, 25.0, r.Details["terminal_pe"].(float64), 0.001)
	})
}

func TestRevenueGrowthModel(t *testing.T) {
	t.Run("no revenue fails", func(t *testing.T) {
		snap := testSnapshot()
		snap.Revenue = 0
		r := NewStockForecaster(snap).RevenueGrowthModel(nil, nil, nil, nil, 5)
		assert.True(t, r.Failed())
	})

	t.Run("explicit zero growth stays flat", func(t *testing.T) {
		f := NewStockForecaster(testSnapshot())
		r := f.RevenueGrowthModel(fptr(0), fptr(0), fptr(2), fptr(0.2), 5)
		require.False(t, r.Failed())

		// Revenue 250 at 2x P/S over 10 shares, no compounding
		assert.Equal(t, 50.0, r.TargetPrice)
	})

	t.Run("deterministic projection", func(t *testing.T) {
		f := NewStockForecaster(testSnapshot())
		r := f.RevenueGrowthModel(fptr(0.03), fptr(0.9), fptr(2), fptr(0.2), 5)
		require.False(t, r.Failed())

		finalRevenue := 250 * math.Pow(1.03, 5)
		assert.InDelta(t, finalRevenue*2/10, r.TargetPrice, 0.001)
		assert.InDelta(t, finalRevenue*0.2/10, r.Details["implied_eps"].(float64), 0.001)
	})

	t.Run("terminal PS caps at 10", func(t *testing.T) {
		snap := testSnapshot()
		snap.PSRatio = 30
		r := NewStockForecaster(snap).RevenueGrowthModel(nil, nil, nil, nil, 5)
		require.False(t, r.Failed())
		assert.InDelta(t, 10.0, r.Details["terminal_ps"].(float64), 0.001)
	})
}

func TestDCFModel(t *testing.T) {
	t.Run("no FCF proxy fails", func(t *testing.T) {
		snap := &models.StockSnapshot{Ticker: "SHELL", CurrentPrice: 10}
		r := NewStockForecaster(snap).DCFModel(nil, nil, nil, 10)
		assert.True(t, r.Failed())
	})

	t.Run("EPS-derived base FCF", func(t *testing.T) {
		f := NewStockForecaster(testSnapshot())
		r := f.DCFModel(fptr(0.10), fptr(0.10), fptr(0.03), 10)
		require.False(t, r.Failed())

		// Recompute independently
		baseFCF := 0.8 * 5 * 10.0
		fcf := baseFCF
		var total float64
		for y := 1; y <= 10; y++ {
			fcf *= 1.10
			total += fcf / math.Pow(1.10, float64(y))
		}
		terminal := fcf * 1.03 / (0.10 - 0.03)
		total += terminal / math.Pow(1.10, 10)

		assert.InDelta(t, baseFCF, r.Details["base_fcf"].(float64), 0.001)
		assert.InDelta(t, total/10, r.TargetPrice, 0.01)
	})

	t.Run("explicit zero rates are honored", func(t *testing.T) {
		f := NewStockForecaster(testSnapshot())
		// Flat FCF of 40 over one year: PV(40) + PV(40/0.10) at 10%
		r := f.DCFModel(fptr(0), fptr(0.10), fptr(0), 1)
		require.False(t, r.Failed())
		assert.InDelta(t, 40.0, r.TargetPrice, 0.001)

		// A discount rate at or below terminal growth has no finite value
		r = f.DCFModel(nil, fptr(0.03), fptr(0.03), 10)
		assert.True(t, r.Failed())
	})

	t.Run("revenue fallback for unprofitable entity", func(t *testing.T) {
		snap := testSnapshot()
		snap.EPS = -1
		r := NewStockForecaster(snap).DCFModel(nil, nil, nil, 10)
		require.False(t, r.Failed())
		assert.InDelta(t, 0.05*250, r.Details["base_fcf"].(float64), 0.001)
	})
}

func TestScenarioAnalysis(t *testing.T) {
	t.Run("earnings path orders bear below bull", func(t *testing.T) {
		f := NewStockForecaster(testSnapshot())
		set := f.ScenarioAnalysis(5)
		require.Len(t, set.Scenarios, 3)

		bear := set.Scenarios["bear"]
		base := set.Scenarios["base"]
		bull := set.Scenarios["bull"]
		assert.Less(t, bear.TargetPrice, base.TargetPrice)
		assert.Less(t, base.TargetPrice, bull.TargetPrice)
		assert.NotNil(t, base.TerminalPE)
		assert.Nil(t, base.TerminalPS)
	})

	t.Run("base growth clamps to thirty percent", func(t *testing.T) {
		snap := testSnapshot()
		snap.EarningsGrowth = 0.80
		set := NewStockForecaster(snap).ScenarioAnalysis(5)
		assert.InDelta(t, 0.30, set.Scenarios["base"].GrowthRate, 0.001)
	})

	t.Run("pre-profit entity uses revenue multiples", func(t *testing.T) {
		snap := testSnapshot()
		snap.EPS = -1
		set := NewStockForecaster(snap).ScenarioAnalysis(5)
		require.Len(t, set.Scenarios, 3)
		require.NotNil(t, set.Scenarios["base"].TerminalPS)
		assert.InDelta(t, 5.0, *set.Scenarios["base"].TerminalPS, 0.001)
		assert.Nil(t, set.Scenarios["base"].TerminalPE)
	})
}
