package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// quoteSummaryResponse mirrors the quoteSummary envelope for the modules
// we request
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				ShortName          string   `json:"shortName"`
				LongName           string   `json:"longName"`
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				MarketCap          rawValue `json:"marketCap"`
			} `json:"price"`
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			SummaryDetail struct {
				TrailingPE           rawValue `json:"trailingPE"`
				ForwardPE            rawValue `json:"forwardPE"`
				PriceToSalesTrailing rawValue `json:"priceToSalesTrailing12Months"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEPS     rawValue `json:"trailingEps"`
				ForwardPE       rawValue `json:"forwardPE"`
				PriceToBook     rawValue `json:"priceToBook"`
				EnterpriseValue rawValue `json:"enterpriseValue"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				TotalRevenue     rawValue `json:"totalRevenue"`
				RevenueGrowth    rawValue `json:"revenueGrowth"`
				EarningsGrowth   rawValue `json:"earningsGrowth"`
				ProfitMargins    rawValue `json:"profitMargins"`
				OperatingMargins rawValue `json:"operatingMargins"`
				FreeCashflow     rawValue `json:"freeCashflow"`
				CurrentRatio     rawValue `json:"currentRatio"`
				TargetMeanPrice  rawValue `json:"targetMeanPrice"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetSnapshot retrieves current fundamentals for a ticker
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*models.StockSnapshot, error) {
	params := url.Values{}
	params.Set("modules", "price,assetProfile,summaryDetail,defaultKeyStatistics,financialData")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary for %s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote summary data for %s", ticker)
	}

	r := resp.QuoteSummary.Result[0]
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	revenue := float64(r.FinancialData.TotalRevenue)
	earnings := float64(r.FinancialData.ProfitMargins) * revenue

	snapshot := &models.StockSnapshot{
		Ticker:          ticker,
		CompanyName:     name,
		Sector:          r.AssetProfile.Sector,
		Industry:        r.AssetProfile.Industry,
		CurrentPrice:    float64(r.Price.RegularMarketPrice),
		MarketCap:       float64(r.Price.MarketCap),
		Revenue:         revenue,
		Earnings:        earnings,
		EPS:             float64(r.DefaultKeyStatistics.TrailingEPS),
		PERatio:         float64(r.SummaryDetail.TrailingPE),
		ForwardPE:       float64(r.SummaryDetail.ForwardPE),
		PSRatio:         float64(r.SummaryDetail.PriceToSalesTrailing),
		PriceToBook:     float64(r.DefaultKeyStatistics.PriceToBook),
		RevenueGrowth:   float64(r.FinancialData.RevenueGrowth),
		EarningsGrowth:  float64(r.FinancialData.EarningsGrowth),
		ProfitMargin:    float64(r.FinancialData.ProfitMargins),
		OperatingMargin: float64(r.FinancialData.OperatingMargins),
		FreeCashFlow:    float64(r.FinancialData.FreeCashflow),
		EnterpriseValue: float64(r.DefaultKeyStatistics.EnterpriseValue),
		CurrentRatio:    float64(r.FinancialData.CurrentRatio),
		TargetPrice:     float64(r.FinancialData.TargetMeanPrice),
		LastUpdated:     time.Now().UTC(),
	}
	if snapshot.ForwardPE == 0 {
		snapshot.ForwardPE = float64(r.DefaultKeyStatistics.ForwardPE)
	}
	snapshot.IsProfitable = snapshot.EPS > 0 || snapshot.ProfitMargin > 0

	return snapshot, nil
}

// Ensure Client implements YahooClient
var _ interfaces.YahooClient = (*Client)(nil)
