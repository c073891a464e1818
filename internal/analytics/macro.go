package analytics

import (
	"math"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// MacroAnalyzer maps macro indicator levels to qualitative status bands.
// Everything here is table-driven threshold classification.
type MacroAnalyzer struct{}

// NewMacroAnalyzer returns an analyzer
func NewMacroAnalyzer() *MacroAnalyzer {
	return &MacroAnalyzer{}
}

// YieldCurveStatus10Y2Y classifies the 10Y-2Y spread level
func (m *MacroAnalyzer) YieldCurveStatus10Y2Y(spread float64) string {
	switch {
	case spread < -0.5:
		return "DEEPLY INVERTED"
	case spread < -0.1:
		return "INVERTED"
	case spread < 0:
		return "SLIGHTLY INVERTED"
	case spread < 0.25:
		return "FLAT"
	case spread < 1:
		return "NORMAL"
	case spread < 2:
		return "STEEP"
	default:
		return "VERY STEEP"
	}
}

// YieldCurveStatus10Y3M classifies the 10Y-3M spread level
func (m *MacroAnalyzer) YieldCurveStatus10Y3M(spread float64) string {
	switch {
	case spread < -0.3:
		return "DEEPLY INVERTED"
	case spread < 0:
		return "INVERTED"
	case spread < 0.5:
		return "FLAT"
	case spread < 2:
		return "NORMAL"
	default:
		return "STEEP"
	}
}

// YieldCurveStatus30Y5Y classifies the long-end 30Y-5Y spread level
func (m *MacroAnalyzer) YieldCurveStatus30Y5Y(spread float64) string {
	switch {
	case spread < 0.3:
		return "FLAT"
	case spread < 0.8:
		return "NORMAL"
	default:
		return "STEEP"
	}
}

// CreditSpreadStatus classifies a credit spread by its 10-year percentile
func (m *MacroAnalyzer) CreditSpreadStatus(percentile float64) string {
	switch {
	case percentile < 15:
		return "Very Tight"
	case percentile < 35:
		return "Tight"
	case percentile < 65:
		return "Moderate"
	case percentile < 85:
		return "Wide"
	default:
		return "Very Wide"
	}
}

// VixTermStructure classifies the VIX3M-VIX spread. Contango is the normal
// complacent state, backwardation signals a stressed market.
func (m *MacroAnalyzer) VixTermStructure(vixSpot, vix3M *float64) *models.VixTermStructure {
	ts := &models.VixTermStructure{Spot: vixSpot, ThreeMonth: vix3M}
	if vixSpot == nil || vix3M == nil {
		return ts
	}
	spread := *vix3M - *vixSpot
	ts.Spread = &spread
	switch {
	case spread > 2:
		ts.Structure = "CONTANGO"
	case spread < -2:
		ts.Structure = "BACKWARDATION"
	default:
		ts.Structure = "FLAT"
	}
	return ts
}

// FearGreedInputs are the raw readings feeding the composite index.
// Nil inputs drop their component; the overall is the mean of whatever
// remains.
type FearGreedInputs struct {
	VIX                *float64
	VixTermSpread      *float64
	CreditPercentile   *float64
	SP500PctAboveMA200 *float64
}

// FearGreed computes a 0-100 equal-weighted sentiment composite.
// Each component scores 0-100 with 50 neutral.
func (m *MacroAnalyzer) FearGreed(in FearGreedInputs) *models.FearGreedIndex {
	var components []models.FearGreedComponent

	if in.VIX != nil {
		// VIX 10 scores 100 (extreme greed), 40 scores 0 (extreme fear)
		score := clampScore(100 - ((*in.VIX - 10) / 30 * 100))
		components = append(components, models.FearGreedComponent{
			Name: "VIX Level", Value: *in.VIX, Score: score,
		})
	}
	if in.VixTermSpread != nil {
		// Contango at +5 scores 100, backwardation at -5 scores 0
		score := clampScore(50 + (*in.VixTermSpread/5)*50)
		components = append(components, models.FearGreedComponent{
			Name: "VIX Term Structure", Value: *in.VixTermSpread, Score: score,
		})
	}
	if in.CreditPercentile != nil {
		// Tight spreads (low percentile) read as greed
		score := clampScore(100 - *in.CreditPercentile)
		components = append(components, models.FearGreedComponent{
			Name: "Credit Spreads", Value: *in.CreditPercentile, Score: score,
		})
	}
	if in.SP500PctAboveMA200 != nil {
		// 10% above the 200-day MA scores 100, 10% below scores 0
		score := clampScore(50 + (*in.SP500PctAboveMA200/10)*50)
		components = append(components, models.FearGreedComponent{
			Name: "S&P 500 Trend", Value: *in.SP500PctAboveMA200, Score: score,
		})
	}

	if len(components) == 0 {
		return nil
	}

	var sum float64
	weight := 1.0 / float64(len(components))
	for i := range components {
		components[i].Weight = weight
		sum += components[i].Score
	}
	overall := sum / float64(len(components))

	return &models.FearGreedIndex{
		Score:      overall,
		Label:      fearGreedLabel(overall),
		Components: components,
		AsOf:       time.Now().UTC(),
	}
}

func fearGreedLabel(score float64) string {
	switch {
	case score >= 80:
		return "EXTREME GREED"
	case score >= 60:
		return "GREED"
	case score >= 40:
		return "NEUTRAL"
	case score >= 20:
		return "FEAR"
	default:
		return "EXTREME FEAR"
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// RecessionSummary scores yield-curve inversion depth into a risk band.
// Each inverted or flat spread contributes points; the total maps to a
// qualitative level.
func (m *MacroAnalyzer) RecessionSummary(spreads *models.SpreadSet) *models.RecessionSummary {
	summary := &models.RecessionSummary{RiskLevel: "LOW"}
	if spreads == nil {
		return summary
	}

	if s := spreads.TenYearTwoYear; s != nil && s.Current != nil {
		switch {
		case *s.Current < -0.5:
			summary.Score += 3
			summary.Signals = append(summary.Signals, "10Y-2Y deeply inverted (strong recession signal)")
		case *s.Current < 0:
			summary.Score += 2
			summary.Signals = append(summary.Signals, "10Y-2Y inverted (recession warning)")
		case *s.Current < 0.25:
			summary.Score++
			summary.Signals = append(summary.Signals, "10Y-2Y very flat (growth concerns)")
		}
	}
	if s := spreads.TenYearThreeMonth; s != nil && s.Current != nil {
		switch {
		case *s.Current < -0.3:
			summary.Score += 3
			summary.Signals = append(summary.Signals, "10Y-3M deeply inverted (strong recession signal)")
		case *s.Current < 0:
			summary.Score += 2
			summary.Signals = append(summary.Signals, "10Y-3M inverted (recession warning)")
		}
	}

	switch {
	case summary.Score >= 5:
		summary.RiskLevel = "HIGH"
	case summary.Score >= 3:
		summary.RiskLevel = "ELEVATED"
	case summary.Score >= 1:
		summary.RiskLevel = "MODERATE"
	}
	return summary
}
