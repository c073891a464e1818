package models

import "time"

// SeriesPoint is one observation of a macro data series
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MacroSeries is a complete stored history for one FRED series
type MacroSeries struct {
	SeriesID    string        `json:"series_id" badgerhold:"key"`
	Name        string        `json:"name"`
	Points      []SeriesPoint `json:"points"`
	LastUpdated time.Time     `json:"last_updated"`
}

// SpreadTrend is the 3-month directional classification of a spread
type SpreadTrend string

const (
	TrendExpanding   SpreadTrend = "EXPANDING"
	TrendContracting SpreadTrend = "CONTRACTING"
	TrendStable      SpreadTrend = "STABLE"
)

// YieldSpread is one treasury spread with its recent history and trend
type YieldSpread struct {
	Name        string      `json:"name"`
	Current     *float64    `json:"current"`
	OneMonthAgo *float64    `json:"one_month_ago"`
	ThreeMonths *float64    `json:"three_months_ago"`
	SixMonths   *float64    `json:"six_months_ago"`
	OneYearAgo  *float64    `json:"one_year_ago"`
	Change3M    *float64    `json:"change_3m"`
	Trend       SpreadTrend `json:"trend"`
	Inverted    bool        `json:"inverted"`
}

// SpreadSet holds all computed treasury spreads
type SpreadSet struct {
	TenYearTwoYear     *YieldSpread `json:"spread_10y_2y"`
	TenYearThreeMonth  *YieldSpread `json:"spread_10y_3m"`
	ThirtyYearFiveYear *YieldSpread `json:"spread_30y_5y"`
	AsOf               time.Time    `json:"as_of"`
}

// CreditSpread is a corporate credit spread with its historical percentile
type CreditSpread struct {
	Name       string   `json:"name"`
	Current    *float64 `json:"current"`
	Percentile *float64 `json:"percentile_10y"`
	Status     string   `json:"status"`
}

// FearGreedComponent is one scored input of the fear/greed composite
type FearGreedComponent struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// FearGreedIndex is a 0-100 composite sentiment reading
type FearGreedIndex struct {
	Score      float64              `json:"score"`
	Label      string               `json:"label"`
	Components []FearGreedComponent `json:"components"`
	AsOf       time.Time            `json:"as_of"`
}

// RecessionSummary scores yield-curve inversion depth into a risk band
type RecessionSummary struct {
	Score     int      `json:"score"`
	RiskLevel string   `json:"risk_level"` // HIGH | ELEVATED | MODERATE | LOW
	Signals   []string `json:"signals"`
}

// VixTermStructure classifies the spot/3-month VIX relationship
type VixTermStructure struct {
	Spot       *float64 `json:"vix_spot"`
	ThreeMonth *float64 `json:"vix_3m"`
	Spread     *float64 `json:"spread"`
	Structure  string   `json:"structure"` // CONTANGO | FLAT | BACKWARDATION
}

// MacroReport is the full cached macro dashboard payload
type MacroReport struct {
	ID               string            `json:"id" badgerhold:"key"`
	Spreads          *SpreadSet        `json:"spreads"`
	YieldCurveStatus string            `json:"yield_curve_status"`
	CreditSpreads    []CreditSpread    `json:"credit_spreads"`
	VixTerm          *VixTermStructure `json:"vix_term_structure"`
	FearGreed        *FearGreedIndex   `json:"fear_greed"`
	Recession        *RecessionSummary `json:"recession"`
	LastUpdated      time.Time         `json:"last_updated"`
}
