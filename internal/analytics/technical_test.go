package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fathom/internal/models"
)

// barsFromCloses builds daily bars with a one-point high/low band around
// each close
func barsFromCloses(closes []float64) []models.PriceBar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestSupportResistance(t *testing.T) {
	t.Run("insufficient bars", func(t *testing.T) {
		ta := NewTechnicalAnalyzer(barsFromCloses(make([]float64, 30)))
		supports, resistances := ta.SupportResistance(20, 3)
		assert.Nil(t, supports)
		assert.Nil(t, resistances)
	})

	t.Run("peak becomes resistance", func(t *testing.T) {
		closes := make([]float64, 61)
		for i := 0; i <= 30; i++ {
			closes[i] = 100 + float64(i)
		}
		for i := 31; i < 61; i++ {
			closes[i] = 130 - float64(i-30)
		}
		ta := NewTechnicalAnalyzer(barsFromCloses(closes))
		supports, resistances := ta.SupportResistance(20, 3)
		assert.Empty(t, supports)
		require.Len(t, resistances, 1)
		assert.InDelta(t, 131.0, resistances[0], 0.001)
	})

	t.Run("tied peaks still register", func(t *testing.T) {
		// A two-bar plateau at the top: each bar only equals the
		// neighborhood max, which must still count as a resistance
		closes := []float64{
			100, 103, 106, 109, 112, 115, 118, 121, 124, 130, 130,
			124, 121, 118, 115, 112, 109, 106, 103, 100, 97,
		}
		ta := NewTechnicalAnalyzer(barsFromCloses(closes))
		supports, resistances := ta.SupportResistance(5, 3)
		assert.Empty(t, supports)
		require.Len(t, resistances, 1)
		assert.InDelta(t, 131.0, resistances[0], 0.001)
	})

	t.Run("trough becomes support", func(t *testing.T) {
		closes := make([]float64, 61)
		for i := 0; i <= 30; i++ {
			closes[i] = 130 - float64(i)
		}
		for i := 31; i < 61; i++ {
			closes[i] = 100 + float64(i-30)
		}
		ta := NewTechnicalAnalyzer(barsFromCloses(closes))
		supports, resistances := ta.SupportResistance(20, 3)
		assert.Empty(t, resistances)
		require.Len(t, supports, 1)
		assert.InDelta(t, 99.0, supports[0], 0.001)
	})
}

func TestClusterLevels(t *testing.T) {
	tests := []struct {
		name     string
		levels   []float64
		expected []float64
	}{
		{
			name:     "two nearby levels merge into their mean",
			levels:   []float64{100, 101, 150},
			expected: []float64{100.5, 150},
		},
		{
			name:     "distinct levels stay separate",
			levels:   []float64{100, 110, 120},
			expected: []float64{100, 110, 120},
		},
		{
			// Each value is within tolerance of the one before it, so
			// the chain keeps growing even once the span exceeds 2%
			name:     "chained levels merge into one cluster",
			levels:   []float64{100, 102, 103.9},
			expected: []float64{101.9666},
		},
		{
			name:     "empty input",
			levels:   nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clusterLevels(tt.levels)
			require.Len(t, got, len(tt.expected))
			for i := range tt.expected {
				assert.InDelta(t, tt.expected[i], got[i], 0.001)
			}
		})
	}
}

func TestPivotPoints(t *testing.T) {
	bars := []models.PriceBar{{
		Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		High: 110, Low: 90, Close: 100,
	}}
	ta := NewTechnicalAnalyzer(bars)
	p := ta.PivotPoints()
	require.NotNil(t, p)

	assert.InDelta(t, 100.0, p.Pivot, 0.001)
	assert.InDelta(t, 110.0, p.R1, 0.001)
	assert.InDelta(t, 90.0, p.S1, 0.001)
	assert.InDelta(t, 120.0, p.R2, 0.001)
	assert.InDelta(t, 80.0, p.S2, 0.001)
	assert.InDelta(t, 130.0, p.R3, 0.001)
	assert.InDelta(t, 70.0, p.S3, 0.001)

	empty := NewTechnicalAnalyzer(nil)
	assert.Nil(t, empty.PivotPoints())
}

func TestTrend(t *testing.T) {
	t.Run("perfect linear uptrend", func(t *testing.T) {
		closes := make([]float64, 50)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		ta := NewTechnicalAnalyzer(barsFromCloses(closes))
		trend := ta.Trend(90)
		require.NotNil(t, trend)

		assert.InDelta(t, 1.0, trend.Slope, 0.001)
		assert.InDelta(t, 1.0, trend.RSquared, 0.001)
		assert.Equal(t, "Bullish", trend.Direction)
		assert.InDelta(t, 149.0, trend.CurrentPrice, 0.001)
		assert.InDelta(t, 179.0, trend.Target30D, 0.01)
		assert.InDelta(t, 239.0, trend.Target90D, 0.01)
		require.NotNil(t, trend.MA20)
		assert.InDelta(t, 139.5, *trend.MA20, 0.001)
	})

	t.Run("downtrend is bearish", func(t *testing.T) {
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 200 - float64(i)
		}
		ta := NewTechnicalAnalyzer(barsFromCloses(closes))
		trend := ta.Trend(90)
		require.NotNil(t, trend)
		assert.Equal(t, "Bearish", trend.Direction)
		assert.Negative(t, trend.Slope)
	})

	t.Run("insufficient bars", func(t *testing.T) {
		ta := NewTechnicalAnalyzer(barsFromCloses([]float64{100, 101, 102}))
		assert.Nil(t, ta.Trend(90))
	})
}

func TestPriceTargets(t *testing.T) {
	ta := NewTechnicalAnalyzer(nil)
	targets := ta.PriceTargets(100, []float64{95, 90}, []float64{110, 105})
	require.NotNil(t, targets.NextResistance)
	assert.InDelta(t, 105.0, *targets.NextResistance, 0.001)
	require.NotNil(t, targets.NextSupport)
	assert.InDelta(t, 95.0, *targets.NextSupport, 0.001)
	require.NotNil(t, targets.UpsideToResistance)
	assert.InDelta(t, 5.0, *targets.UpsideToResistance, 0.001)
	require.NotNil(t, targets.DownsideToSupport)
	assert.InDelta(t, 5.0, *targets.DownsideToSupport, 0.001)

	// No levels on the far side
	above := ta.PriceTargets(120, []float64{95, 90}, []float64{110, 105})
	assert.Nil(t, above.NextResistance)
	assert.NotNil(t, above.NextSupport)
}

func TestTechnicalAnalyze(t *testing.T) {
	t.Run("no bars", func(t *testing.T) {
		ta := NewTechnicalAnalyzer(nil)
		assert.Nil(t, ta.Analyze("TEST"))
	})

	t.Run("full snapshot", func(t *testing.T) {
		closes := make([]float64, 120)
		for i := range closes {
			closes[i] = 100 + float64(i%40)
		}
		ta := NewTechnicalAnalyzer(barsFromCloses(closes))
		snap := ta.Analyze("TEST")
		require.NotNil(t, snap)

		assert.Equal(t, "TEST", snap.Ticker)
		assert.NotNil(t, snap.Pivots)
		assert.NotNil(t, snap.Trend)
		assert.NotNil(t, snap.Targets)
		assert.Equal(t, 120, snap.DataPoints)
		assert.Equal(t, "2024-01-02", snap.OldestDate)
	})
}
