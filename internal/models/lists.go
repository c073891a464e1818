package models

// StockList is a named, curated group of tickers
type StockList struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tickers     []string `json:"tickers"`
}

// CuratedLists are the built-in ticker groups, in display order
var CuratedLists = []StockList{
	{
		Key:         "mag_7",
		Name:        "Magnificent 7 (Big Tech)",
		Description: "The 7 largest tech companies by market cap",
		Tickers:     []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA"},
	},
	{
		Key:         "sp500_top_25",
		Name:        "S&P 500 Top 25",
		Description: "Top 25 S&P 500 companies by market capitalization",
		Tickers: []string{
			"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA",
			"BRK.B", "LLY", "V", "UNH", "XOM", "JPM", "JNJ", "WMT",
			"MA", "PG", "AVGO", "HD", "CVX", "MRK", "ABBV", "COST",
			"ORCL", "PEP",
		},
	},
	{
		Key:         "nasdaq_top_25",
		Name:        "NASDAQ Top 25",
		Description: "Top 25 NASDAQ-listed companies",
		Tickers: []string{
			"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA",
			"AVGO", "COST", "ASML", "NFLX", "AMD", "ADBE", "CSCO",
			"PEP", "CMCSA", "INTC", "INTU", "QCOM", "TXN", "AMAT",
			"HON", "AMGN", "SBUX", "ISRG",
		},
	},
	{
		Key:         "software_cloud",
		Name:        "Software & Cloud",
		Description: "Leading software and cloud computing companies",
		Tickers: []string{
			"MSFT", "GOOGL", "ORCL", "CRM", "ADBE", "NOW", "SNOW",
			"PLTR", "DDOG", "CRWD", "ZS", "PANW", "TEAM", "WDAY",
			"MNDY", "U", "NET", "S", "DOCN",
		},
	},
	{
		Key:         "semiconductors",
		Name:        "Semiconductors",
		Description: "Chip makers and semiconductor equipment companies",
		Tickers: []string{
			"NVDA", "AMD", "INTC", "TSM", "ASML", "AVGO", "QCOM",
			"TXN", "AMAT", "MU", "LRCX", "KLAC", "MCHP", "ADI",
			"NXPI", "ON",
		},
	},
	{
		Key:         "ev_auto",
		Name:        "Electric Vehicles & Auto",
		Description: "Electric vehicle manufacturers and traditional automakers",
		Tickers: []string{
			"TSLA", "F", "GM", "RIVN", "LCID", "NIO", "XPEV",
			"LI", "TM", "HMC",
		},
	},
	{
		Key:         "financial",
		Name:        "Financial Services",
		Description: "Banks, payment processors, and fintech companies",
		Tickers: []string{
			"JPM", "BAC", "WFC", "GS", "MS", "C", "BLK", "SCHW",
			"AXP", "USB", "PNC", "TFC", "COF", "V", "MA", "PYPL",
			"SQ", "COIN",
		},
	},
	{
		Key:         "healthcare",
		Name:        "Healthcare & Biotech",
		Description: "Healthcare providers, pharma, and biotech companies",
		Tickers: []string{
			"UNH", "JNJ", "LLY", "ABBV", "MRK", "TMO", "ABT", "PFE",
			"DHR", "BMY", "AMGN", "GILD", "VRTX", "REGN", "CVS",
			"ISRG", "CI", "MDT",
		},
	},
	{
		Key:         "ecommerce_retail",
		Name:        "E-commerce & Retail",
		Description: "Online and traditional retailers",
		Tickers: []string{
			"AMZN", "WMT", "COST", "HD", "TGT", "LOW", "NKE",
			"SBUX", "MCD", "BKNG", "EBAY", "ETSY", "W", "CHWY",
		},
	},
	{
		Key:         "ai_emerging",
		Name:        "AI & Emerging Tech",
		Description: "AI-focused and emerging technology companies",
		Tickers: []string{
			"NVDA", "MSFT", "GOOGL", "META", "ORCL", "PLTR", "SNOW",
			"CRWD", "DDOG", "NET", "AI", "SOUN", "PATH", "APP",
			"UPST", "BBAI",
		},
	},
	{
		Key:         "entertainment",
		Name:        "Entertainment & Media",
		Description: "Streaming, gaming, and media companies",
		Tickers: []string{
			"DIS", "NFLX", "CMCSA", "WBD", "PARA", "SPOT", "ROKU",
			"RBLX", "EA", "TTWO", "ATVI", "SONY",
		},
	},
}

// GetList returns the curated list for key, or nil when unknown
func GetList(key string) *StockList {
	for i := range CuratedLists {
		if CuratedLists[i].Key == key {
			return &CuratedLists[i]
		}
	}
	return nil
}
