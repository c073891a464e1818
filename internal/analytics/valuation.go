package analytics

import (
	"github.com/bobmcallan/fathom/internal/models"
)

// BubbleScore rates how stretched a stock's valuation is on a 0-10 scale.
// Higher means more overvalued.
func BubbleScore(snapshot *models.StockSnapshot) int {
	score := 0

	switch pe := snapshot.PERatio; {
	case pe > 200:
		score += 3
	case pe > 100:
		score += 2
	case pe > 50:
		score++
	}

	switch ps := snapshot.PSRatio; {
	case ps > 50:
		score += 3
	case ps > 20:
		score += 2
	case ps > 10:
		score++
	}

	if !snapshot.IsProfitable {
		score += 2
	}

	// High P/S without the growth to back it up
	if snapshot.PSRatio > 15 && snapshot.RevenueGrowth < 0.2 {
		score += 2
	}

	if score > 10 {
		score = 10
	}
	return score
}

// RiskLevel maps a bubble score to a qualitative band
func RiskLevel(bubbleScore int) string {
	switch {
	case bubbleScore >= 8:
		return "EXTREME"
	case bubbleScore >= 6:
		return "VERY HIGH"
	case bubbleScore >= 4:
		return "HIGH"
	case bubbleScore >= 2:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// IsValue reports whether a stock qualifies as a value play: profitable
// with both multiples under the thresholds
func IsValue(s *models.StockSnapshot, maxPE, maxPS float64) bool {
	if maxPE <= 0 {
		maxPE = 20
	}
	if maxPS <= 0 {
		maxPS = 3
	}
	return s.IsProfitable && s.PERatio > 0 && s.PERatio <= maxPE && s.PSRatio > 0 && s.PSRatio <= maxPS
}

// IsNearValue reports whether a profitable stock sits just outside the
// value thresholds: P/E 20-30 with P/S at most 5, or P/E at most 25 with
// P/S 3-5. Stocks already qualifying as value plays are excluded.
func IsNearValue(s *models.StockSnapshot) bool {
	if !s.IsProfitable || s.PERatio <= 0 || s.PSRatio <= 0 {
		return false
	}
	if IsValue(s, 20, 3) {
		return false
	}
	closePE := s.PERatio > 20 && s.PERatio <= 30 && s.PSRatio <= 5
	closePS := s.PERatio <= 25 && s.PSRatio > 3 && s.PSRatio <= 5
	return closePE || closePS
}

// NearValueRank orders near-value candidates by how far they miss the
// thresholds; smaller is closer
func NearValueRank(s *models.StockSnapshot) float64 {
	switch {
	case s.PERatio <= 20:
		return s.PSRatio - 3
	case s.PSRatio <= 3:
		return s.PERatio - 20
	default:
		return (s.PERatio-20)/10 + (s.PSRatio-3)/2
	}
}
