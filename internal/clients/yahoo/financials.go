package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

// Statement types requested from the fundamentals timeseries endpoint.
// Yahoo prefixes each with the period ("quarterly" or "annual").
var statementTypes = []string{
	"TotalRevenue",
	"NetIncome",
	"GrossProfit",
	"OperatingIncome",
	"EBITDA",
	"DilutedEPS",
	"BasicAverageShares",
	"OperatingCashFlow",
	"CapitalExpenditure",
}

// timeseriesEntry is one dated observation within a series
type timeseriesEntry struct {
	AsOfDate      string   `json:"asOfDate"`
	ReportedValue rawValue `json:"reportedValue"`
}

// timeseriesResponse mirrors the fundamentals timeseries envelope. Each
// result carries its series under a key matching its meta type, so the
// payload is decoded loosely and picked apart per result.
type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

// GetFinancials retrieves historical financial statements for a ticker
func (c *Client) GetFinancials(ctx context.Context, ticker string, periodType models.PeriodType) ([]*models.FinancialRecord, error) {
	prefix := "quarterly"
	lookback := 3
	if periodType == models.PeriodAnnual {
		prefix = "annual"
		lookback = 6
	}

	types := make([]string, len(statementTypes))
	for i, t := range statementTypes {
		types[i] = prefix + t
	}

	now := time.Now()
	params := url.Values{}
	params.Set("type", strings.Join(types, ","))
	params.Set("period1", strconv.FormatInt(now.AddDate(-lookback, 0, 0).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	params.Set("merge", "false")

	path := fmt.Sprintf("/ws/fundamentals-timeseries/v1/finance/timeseries/%s", url.PathEscape(ticker))

	var resp timeseriesResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("fundamentals for %s: %s", ticker, resp.Timeseries.Error.Description)
	}

	// Collect observations per period end date
	byDate := make(map[string]*models.FinancialRecord)
	for _, result := range resp.Timeseries.Result {
		for _, seriesType := range types {
			raw, ok := result[seriesType]
			if !ok {
				continue
			}
			var entries []*timeseriesEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				continue
			}
			field := strings.TrimPrefix(seriesType, prefix)
			for _, e := range entries {
				if e == nil || e.AsOfDate == "" {
					continue
				}
				record, ok := byDate[e.AsOfDate]
				if !ok {
					endDate, err := time.Parse("2006-01-02", e.AsOfDate)
					if err != nil {
						continue
					}
					record = &models.FinancialRecord{
						Ticker:        ticker,
						PeriodEndDate: endDate,
						PeriodType:    periodType,
					}
					byDate[e.AsOfDate] = record
				}
				assignField(record, field, float64(e.ReportedValue))
			}
		}
	}

	records := make([]*models.FinancialRecord, 0, len(byDate))
	for _, r := range byDate {
		deriveFields(r)
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PeriodEndDate.Before(records[j].PeriodEndDate)
	})
	return records, nil
}

func assignField(r *models.FinancialRecord, field string, value float64) {
	v := value
	switch field {
	case "TotalRevenue":
		r.Revenue = &v
	case "NetIncome":
		r.NetIncome = &v
		r.Earnings = &v
	case "GrossProfit":
		r.GrossProfit = &v
	case "OperatingIncome":
		r.OperatingIncome = &v
	case "EBITDA":
		r.EBITDA = &v
	case "DilutedEPS":
		r.EPS = &v
	case "BasicAverageShares":
		r.SharesOutstanding = &v
	case "OperatingCashFlow":
		r.OperatingCashFlow = &v
	case "CapitalExpenditure":
		r.CapitalExpenditures = &v
	}
}

// deriveFields fills in free cash flow and margins once the raw statement
// lines are in place
func deriveFields(r *models.FinancialRecord) {
	if r.OperatingCashFlow != nil && r.CapitalExpenditures != nil {
		fcf := *r.OperatingCashFlow - math.Abs(*r.CapitalExpenditures)
		r.FreeCashFlow = &fcf
	}
	if r.Revenue == nil || *r.Revenue <= 0 {
		return
	}
	rev := *r.Revenue
	if r.GrossProfit != nil {
		m := *r.GrossProfit / rev
		r.GrossMargin = &m
	}
	if r.OperatingIncome != nil {
		m := *r.OperatingIncome / rev
		r.OperatingMargin = &m
	}
	if r.NetIncome != nil {
		m := *r.NetIncome / rev
		r.ProfitMargin = &m
	}
}
