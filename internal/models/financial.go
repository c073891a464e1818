// Package models defines data structures for Fathom
package models

import (
	"time"
)

// PeriodType identifies the reporting cadence of a financial record
type PeriodType string

const (
	PeriodQuarterly PeriodType = "quarterly"
	PeriodAnnual    PeriodType = "annual"
)

// StockSnapshot holds the current fundamentals for one ticker.
// One row per ticker, overwritten on each refresh.
type StockSnapshot struct {
	Ticker          string    `json:"ticker" badgerhold:"key"`
	CompanyName     string    `json:"company_name"`
	Sector          string    `json:"sector"`
	Industry        string    `json:"industry"`
	CurrentPrice    float64   `json:"current_price"`
	MarketCap       float64   `json:"market_cap"`
	Revenue         float64   `json:"revenue"`
	Earnings        float64   `json:"earnings"`
	EPS             float64   `json:"eps"`
	PERatio         float64   `json:"pe_ratio"`
	ForwardPE       float64   `json:"forward_pe"`
	PSRatio         float64   `json:"ps_ratio"`
	PriceToBook     float64   `json:"price_to_book"`
	RevenueGrowth   float64   `json:"revenue_growth"`
	EarningsGrowth  float64   `json:"earnings_growth"`
	ProfitMargin    float64   `json:"profit_margin"`
	OperatingMargin float64   `json:"operating_margin"`
	FreeCashFlow    float64   `json:"free_cash_flow"`
	EnterpriseValue float64   `json:"enterprise_value"`
	CurrentRatio    float64   `json:"current_ratio"`
	TargetPrice     float64   `json:"target_price"`
	IsProfitable    bool      `json:"is_profitable"`
	BubbleScore     int       `json:"bubble_score"`
	RiskLevel       string    `json:"risk_level"`
	LastUpdated     time.Time `json:"last_updated"`
}

// FinancialRecord is one reporting period for one ticker.
// Unique per (ticker, period_end_date, period_type).
type FinancialRecord struct {
	Ticker              string     `json:"ticker"`
	PeriodEndDate       time.Time  `json:"period_end_date"`
	PeriodType          PeriodType `json:"period_type"`
	Revenue             *float64   `json:"revenue"`
	Earnings            *float64   `json:"earnings"`
	GrossProfit         *float64   `json:"gross_profit"`
	OperatingIncome     *float64   `json:"operating_income"`
	EBITDA              *float64   `json:"ebitda"`
	NetIncome           *float64   `json:"net_income"`
	EPS                 *float64   `json:"eps"`
	SharesOutstanding   *float64   `json:"shares_outstanding"`
	OperatingCashFlow   *float64   `json:"operating_cash_flow"`
	CapitalExpenditures *float64   `json:"capital_expenditures"`
	FreeCashFlow        *float64   `json:"free_cash_flow_calculated"`
	GrossMargin         *float64   `json:"gross_margin"`
	OperatingMargin     *float64   `json:"operating_margin"`
	ProfitMargin        *float64   `json:"profit_margin_quarterly"`
}

// Metric selects a numeric field of a FinancialRecord for growth math
type Metric string

const (
	MetricRevenue      Metric = "revenue"
	MetricEarnings     Metric = "earnings"
	MetricNetIncome    Metric = "net_income"
	MetricFreeCashFlow Metric = "free_cash_flow_calculated"
)

// Value returns the selected metric's value, or nil when absent
func (r *FinancialRecord) Value(m Metric) *float64 {
	switch m {
	case MetricRevenue:
		return r.Revenue
	case MetricEarnings:
		return r.Earnings
	case MetricNetIncome:
		return r.NetIncome
	case MetricFreeCashFlow:
		return r.FreeCashFlow
	default:
		return nil
	}
}

// MarginTrend classifies the direction of quarterly profit margins
type MarginTrend string

const (
	MarginExpanding   MarginTrend = "expanding"
	MarginContracting MarginTrend = "contracting"
	MarginStable      MarginTrend = "stable"
)

// GrowthStage is a qualitative lifecycle bucket
type GrowthStage string

const (
	StageEarlyGrowth  GrowthStage = "early_growth"
	StageRapidGrowth  GrowthStage = "rapid_growth"
	StageMatureGrowth GrowthStage = "mature_growth"
	StageInflection   GrowthStage = "inflection"
	StageDeclining    GrowthStage = "declining"
	StageStable       GrowthStage = "stable"
)

// GrowthMetrics is one computed-analytics snapshot per ticker, derived
// entirely from its FinancialRecords. Pointer fields are nil whenever the
// statistical preconditions for that metric are not met.
type GrowthMetrics struct {
	Ticker string `json:"ticker" badgerhold:"key"`

	// CAGR metrics
	RevenueCAGR3Y  *float64 `json:"revenue_cagr_3y"`
	RevenueCAGR5Y  *float64 `json:"revenue_cagr_5y"`
	EarningsCAGR3Y *float64 `json:"earnings_cagr_3y"`
	EarningsCAGR5Y *float64 `json:"earnings_cagr_5y"`

	// Quarterly averages
	AvgQuarterlyRevenueGrowth  *float64 `json:"avg_quarterly_revenue_growth"`
	AvgQuarterlyEarningsGrowth *float64 `json:"avg_quarterly_earnings_growth"`

	// Consistency scores (0-100)
	RevenueConsistencyScore  float64 `json:"revenue_consistency_score"`
	EarningsConsistencyScore float64 `json:"earnings_consistency_score"`

	// Trends
	RevenueGrowthAccelerating     bool `json:"revenue_growth_accelerating"`
	EarningsGrowthAccelerating    bool `json:"earnings_growth_accelerating"`
	ConsecutiveProfitableQuarters int  `json:"consecutive_profitable_quarters"`

	// PEG variants
	PEG3YCAGR    *float64 `json:"peg_3y_cagr"`
	PEGQuarterly *float64 `json:"peg_quarterly"`
	PEGProvider  *float64 `json:"peg_provider"`
	PEGAverage   *float64 `json:"peg_average"`

	// Free cash flow metrics
	FCFCAGR3Y           *float64 `json:"fcf_cagr_3y"`
	FCFMargin           *float64 `json:"fcf_margin"`
	CashConversionRatio *float64 `json:"cash_conversion_ratio"`

	// Efficiency
	RuleOf40          *float64 `json:"rule_of_40"`
	OperatingLeverage *float64 `json:"operating_leverage"`

	// Classification
	MarginTrend *MarginTrend `json:"margin_trend"`
	GrowthStage GrowthStage  `json:"growth_stage"`

	// Metadata
	DataPointsCount int       `json:"data_points_count"`
	OldestDataDate  string    `json:"oldest_data_date"`
	NewestDataDate  string    `json:"newest_data_date"`
	LastCalculated  time.Time `json:"last_calculated"`
}

// PriceBar represents a single trading day's price data.
// Unique per (ticker, date).
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PivotPoints holds classical floor-trader pivot levels from the latest bar
type PivotPoints struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	R3    float64 `json:"r3"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`
}

// TrendAnalysis holds the OLS regression trend over recent closes
type TrendAnalysis struct {
	Slope          float64  `json:"slope"`
	RSquared       float64  `json:"r_squared"`
	Direction      string   `json:"trend_direction"` // Bullish | Bearish
	CurrentPrice   float64  `json:"current_price"`
	Target30D      float64  `json:"target_30d"`
	Target90D      float64  `json:"target_90d"`
	Upside30DPct   float64  `json:"upside_30d_percent"`
	Upside90DPct   float64  `json:"upside_90d_percent"`
	MA20           *float64 `json:"ma_20"`
	MA50           *float64 `json:"ma_50"`
}

// PriceTargets holds the nearest support/resistance relative to a price
type PriceTargets struct {
	CurrentPrice        float64  `json:"current_price"`
	NextResistance      *float64 `json:"next_resistance"`
	NextSupport         *float64 `json:"next_support"`
	UpsideToResistance  *float64 `json:"upside_to_resistance"`
	DownsideToSupport   *float64 `json:"downside_to_support"`
}

// TechnicalSnapshot is the cached output of a full technical analysis run.
// Keyed by ticker and overwritten wholesale on recompute.
type TechnicalSnapshot struct {
	Ticker           string         `json:"ticker" badgerhold:"key"`
	SupportLevels    []float64      `json:"support_levels"`
	ResistanceLevels []float64      `json:"resistance_levels"`
	Pivots           *PivotPoints   `json:"pivot_points"`
	Trend            *TrendAnalysis `json:"trend"`
	Targets          *PriceTargets  `json:"price_targets"`
	DataPoints       int            `json:"data_points"`
	OldestDate       string         `json:"oldest_date"`
	NewestDate       string         `json:"newest_date"`
	LastCalculated   time.Time      `json:"last_calculated"`
}

// ForecastResult is the output of a single forecasting model. Transient,
// never persisted. Details carries method-specific fields; when the model's
// precondition fails, Details["error"] holds a human-readable explanation
// and TargetPrice is zero, so callers must check Failed before trusting it.
type ForecastResult struct {
	Method        string                 `json:"method"`
	CurrentPrice  float64                `json:"current_price"`
	TargetPrice   float64                `json:"target_price"`
	UpsidePercent float64                `json:"upside_percent"`
	Years         int                    `json:"years"`
	AnnualReturn  float64                `json:"annual_return"`
	Details       map[string]interface{} `json:"details"`
}

// Failed reports whether the model declined to produce a target
func (r *ForecastResult) Failed() bool {
	if r.Details == nil {
		return false
	}
	_, ok := r.Details["error"]
	return ok
}

// MonteCarloResult aggregates simulated terminal prices
type MonteCarloResult struct {
	Method         string             `json:"method"`
	Error          string             `json:"error,omitempty"`
	CurrentPrice   float64            `json:"current_price"`
	Years          int                `json:"years"`
	Simulations    int                `json:"simulations"`
	ExpectedReturn float64            `json:"expected_return"`
	Volatility     float64            `json:"volatility"`
	Percentiles    map[string]float64 `json:"percentiles"`
	MedianTarget   float64            `json:"median_target"`
	MedianUpside   float64            `json:"median_upside"`
	Probabilities  map[string]float64 `json:"probabilities"`
	HistogramBins  []float64          `json:"histogram_bins"`
	HistogramCount []int              `json:"histogram_counts"`
}

// Scenario is one leg of a bear/base/bull scenario analysis
type Scenario struct {
	TargetPrice   float64  `json:"target_price"`
	UpsidePercent float64  `json:"upside_percent"`
	GrowthRate    float64  `json:"growth_rate"`
	TerminalPE    *float64 `json:"terminal_pe,omitempty"`
	TerminalPS    *float64 `json:"terminal_ps,omitempty"`
	FinalEPS      *float64 `json:"final_eps,omitempty"`
}

// ScenarioSet holds the three scenario legs
type ScenarioSet struct {
	Method       string              `json:"method"`
	CurrentPrice float64             `json:"current_price"`
	Years        int                 `json:"years"`
	Scenarios    map[string]Scenario `json:"scenarios"`
}

// ForecastReport is the aggregate of all forecasting models for one ticker
type ForecastReport struct {
	Ticker        string            `json:"ticker"`
	CompanyName   string            `json:"company_name"`
	CurrentPrice  float64           `json:"current_price"`
	EarningsModel *ForecastResult   `json:"earnings_model"`
	RevenueModel  *ForecastResult   `json:"revenue_model"`
	DCFModel      *ForecastResult   `json:"dcf_model"`
	MonteCarlo    *MonteCarloResult `json:"monte_carlo"`
	Scenarios     *ScenarioSet      `json:"scenarios"`
}

// RefreshJob records one background or requested data refresh run
type RefreshJob struct {
	ID          string    `json:"id" badgerhold:"key"`
	Kind        string    `json:"kind"` // "stock", "list", "macro"
	Target      string    `json:"target"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Error       string    `json:"error,omitempty"`
}
