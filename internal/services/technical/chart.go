package technical

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/fathom/internal/models"
)

// RenderChart renders a PNG close-price chart with support and resistance
// overlays from the latest technical snapshot. The rendered file is also
// written to the charts/ data directory for the dashboard to serve.
func (s *Service) RenderChart(ctx context.Context, ticker string, days int) ([]byte, error) {
	if days <= 0 {
		days = 180
	}

	snapshot, err := s.Analyze(ctx, ticker, false)
	if err != nil {
		return nil, err
	}

	since := s.now().AddDate(0, 0, -days)
	bars, err := s.storage.PriceStore().GetBars(ctx, snapshot.Ticker, since)
	if err != nil {
		return nil, err
	}

	png, err := renderPriceChart(snapshot, bars)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%dd.png", snapshot.Ticker, days)
	if err := s.storage.WriteRaw("charts", filename, png); err != nil {
		s.logger.Warn().Err(err).Str("ticker", snapshot.Ticker).Msg("Chart file write failed")
	}
	return png, nil
}

// renderPriceChart draws the close series plus horizontal level lines.
// Supports are green, resistances red.
func renderPriceChart(snapshot *models.TechnicalSnapshot, bars []models.PriceBar) ([]byte, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 bars, got %d", len(bars))
	}

	xValues := make([]time.Time, len(bars))
	closeY := make([]float64, len(bars))
	for i, bar := range bars {
		xValues[i] = bar.Date
		closeY[i] = bar.Close
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.0,
			},
			XValues: xValues,
			YValues: closeY,
		},
	}

	// Supports in green-600, resistances in red-600
	series = append(series, levelSeries(snapshot.SupportLevels, xValues, "16a34a")...)
	series = append(series, levelSeries(snapshot.ResistanceLevels, xValues, "dc2626")...)

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price with Support/Resistance", snapshot.Ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// levelSeries builds one dashed horizontal series per price level.
func levelSeries(levels []float64, xValues []time.Time, hexColor string) []chart.Series {
	series := make([]chart.Series, 0, len(levels))
	for _, level := range levels {
		yValues := make([]float64, len(xValues))
		for i := range yValues {
			yValues[i] = level
		}
		series = append(series, chart.TimeSeries{
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(hexColor),
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues,
			YValues: yValues,
		})
	}
	return series
}
