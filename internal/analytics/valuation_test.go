package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/fathom/internal/models"
)

func TestBubbleScore(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.StockSnapshot
		expected int
	}{
		{
			name: "cheap profitable stock",
			snapshot: models.StockSnapshot{
				PERatio: 15, PSRatio: 2, IsProfitable: true, RevenueGrowth: 0.10,
			},
			expected: 0,
		},
		{
			name: "moderately expensive",
			snapshot: models.StockSnapshot{
				PERatio: 60, PSRatio: 12, IsProfitable: true, RevenueGrowth: 0.30,
			},
			expected: 2,
		},
		{
			name: "unprofitable with stretched multiple",
			snapshot: models.StockSnapshot{
				PERatio: 0, PSRatio: 25, IsProfitable: false, RevenueGrowth: 0.10,
			},
			expected: 6,
		},
		{
			name: "everything maxed caps at ten",
			snapshot: models.StockSnapshot{
				PERatio: 300, PSRatio: 60, IsProfitable: false, RevenueGrowth: 0.05,
			},
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BubbleScore(&tt.snapshot))
		})
	}
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, "LOW", RiskLevel(0))
	assert.Equal(t, "MEDIUM", RiskLevel(2))
	assert.Equal(t, "HIGH", RiskLevel(4))
	assert.Equal(t, "VERY HIGH", RiskLevel(6))
	assert.Equal(t, "EXTREME", RiskLevel(9))
}

func TestValueClassification(t *testing.T) {
	value := &models.StockSnapshot{PERatio: 15, PSRatio: 2, IsProfitable: true}
	assert.True(t, IsValue(value, 20, 3))
	assert.False(t, IsNearValue(value))

	nearOnPE := &models.StockSnapshot{PERatio: 25, PSRatio: 2.5, IsProfitable: true}
	assert.False(t, IsValue(nearOnPE, 20, 3))
	assert.True(t, IsNearValue(nearOnPE))

	nearOnPS := &models.StockSnapshot{PERatio: 18, PSRatio: 4, IsProfitable: true}
	assert.True(t, IsNearValue(nearOnPS))

	expensive := &models.StockSnapshot{PERatio: 45, PSRatio: 12, IsProfitable: true}
	assert.False(t, IsValue(expensive, 20, 3))
	assert.False(t, IsNearValue(expensive))

	unprofitable := &models.StockSnapshot{PERatio: 10, PSRatio: 1, IsProfitable: false}
	assert.False(t, IsValue(unprofitable, 20, 3))
	assert.False(t, IsNearValue(unprofitable))
}

func TestNearValueRank(t *testing.T) {
	onPE := &models.StockSnapshot{PERatio: 18, PSRatio: 4}
	assert.InDelta(t, 1.0, NearValueRank(onPE), 0.001)

	onPS := &models.StockSnapshot{PERatio: 25, PSRatio: 2.5}
	assert.InDelta(t, 5.0, NearValueRank(onPS), 0.001)

	both := &models.StockSnapshot{PERatio: 25, PSRatio: 4}
	assert.InDelta(t, 1.0, NearValueRank(both), 0.001)
}
