// Package fred provides a client for the FRED (Federal Reserve Economic
// Data) observations API
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

const (
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	DefaultTimeout = 30 * time.Second
)

// Series identifiers used across the macro pipeline
const (
	SeriesTreasury10Y = "DGS10"
	SeriesTreasury2Y  = "DGS2"
	SeriesTreasury3M  = "DGS3MO"
	SeriesTreasury30Y = "DGS30"
	SeriesTreasury5Y  = "DGS5"

	SeriesCreditIG  = "BAMLC0A0CM"
	SeriesCreditHY  = "BAMLH0A0HYM2"
	SeriesCreditBBB = "BAMLC0A4CBBB"

	SeriesVIX   = "VIXCLS"
	SeriesVIX3M = "VXVCLS"
	SeriesSP500 = "SP500"
)

// Client implements the FREDClient interface
type Client struct {
	client *resty.Client
	apiKey string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.client.SetBaseURL(baseURL)
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.client.SetTimeout(timeout)
	}
}

// NewClient creates a new FRED client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := resty.New()
	client.SetBaseURL(DefaultBaseURL)
	client.SetTimeout(DefaultTimeout)

	c := &Client{
		client: client,
		apiKey: apiKey,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// observationsResponse mirrors the FRED observations envelope. Missing
// values come back as ".".
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetSeries retrieves observations for a series since the given date,
// oldest first. Missing observations are dropped.
func (c *Client) GetSeries(ctx context.Context, seriesID string, since time.Time) ([]models.SeriesPoint, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("FRED API key not configured")
	}

	params := map[string]string{
		"series_id": seriesID,
		"api_key":   c.apiKey,
		"file_type": "json",
	}
	if !since.IsZero() {
		params["observation_start"] = since.Format("2006-01-02")
	}

	c.logger.Debug().Str("series", seriesID).Msg("FRED API request")

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/series/observations")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series %s: %w", seriesID, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("FRED API error %d for %s: %s", resp.StatusCode(), seriesID, resp.String())
	}

	var envelope observationsResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse observations for %s: %w", seriesID, err)
	}

	points := make([]models.SeriesPoint, 0, len(envelope.Observations))
	for _, obs := range envelope.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		points = append(points, models.SeriesPoint{Date: date, Value: value})
	}
	return points, nil
}

// GetLatest retrieves the most recent observation for a series
func (c *Client) GetLatest(ctx context.Context, seriesID string) (*models.SeriesPoint, error) {
	points, err := c.GetSeries(ctx, seriesID, time.Now().AddDate(0, -3, 0))
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no observations for %s", seriesID)
	}
	return &points[len(points)-1], nil
}

// Ensure Client implements FREDClient
var _ interfaces.FREDClient = (*Client)(nil)
