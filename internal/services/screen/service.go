// Package screen filters stored stocks by valuation criteria
package screen

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobmcallan/fathom/internal/analytics"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

const (
	ScreenValue     = "value"
	ScreenNearValue = "near_value"
	ScreenHighRisk  = "high_risk"
	ScreenGrowth    = "growth"
)

// Quality growth thresholds: high CAGR, consistent delivery, and a
// growth-adjusted valuation that is not absurd.
const (
	growthMinCAGR        = 0.20
	growthMinConsistency = 70.0
	growthMaxPEG         = 2.5
)

// Service implements ScreenService over stored snapshots.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new screening service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// Screen returns stored stocks matching a named screen. Value plays sort by
// P/E ascending, near-value by distance to the thresholds, high-risk by
// bubble score descending.
func (s *Service) Screen(ctx context.Context, options interfaces.ScreenOptions) ([]*models.StockSnapshot, error) {
	snapshots, err := s.storage.StockStore().ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*models.StockSnapshot
	switch options.Screen {
	case ScreenValue, "":
		for _, snap := range snapshots {
			if analytics.IsValue(snap, options.MaxPE, options.MaxPS) {
				matched = append(matched, snap)
			}
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].PERatio < matched[j].PERatio })

	case ScreenNearValue:
		for _, snap := range snapshots {
			if analytics.IsNearValue(snap) {
				matched = append(matched, snap)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			return analytics.NearValueRank(matched[i]) < analytics.NearValueRank(matched[j])
		})

	case ScreenGrowth:
		return s.screenGrowth(ctx, snapshots, options)

	case ScreenHighRisk:
		for _, snap := range snapshots {
			if snap.BubbleScore >= 4 {
				matched = append(matched, snap)
			}
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].BubbleScore > matched[j].BubbleScore })

	default:
		return nil, fmt.Errorf("unknown screen '%s'", options.Screen)
	}

	if options.Limit > 0 && len(matched) > options.Limit {
		matched = matched[:options.Limit]
	}

	s.logger.Debug().
		Str("screen", options.Screen).
		Int("candidates", len(snapshots)).
		Int("matched", len(matched)).
		Msg("Screen evaluated")
	return matched, nil
}

// screenGrowth selects quality growth names: 3-year revenue or earnings
// CAGR over the threshold, consistent delivery, and a PEG under the cap.
// Accelerating growers sort first, then higher consistency, then cheaper PEG.
func (s *Service) screenGrowth(ctx context.Context, snapshots []*models.StockSnapshot, options interfaces.ScreenOptions) ([]*models.StockSnapshot, error) {
	byTicker := make(map[string]*models.GrowthMetrics)
	allMetrics, err := s.storage.MetricsStore().ListMetrics(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range allMetrics {
		byTicker[m.Ticker] = m
	}

	var matched []*models.StockSnapshot
	for _, snap := range snapshots {
		m := byTicker[snap.Ticker]
		if m == nil {
			continue
		}
		cagrOK := (m.EarningsCAGR3Y != nil && *m.EarningsCAGR3Y >= growthMinCAGR) ||
			(m.RevenueCAGR3Y != nil && *m.RevenueCAGR3Y >= growthMinCAGR)
		if !cagrOK {
			continue
		}
		if m.EarningsConsistencyScore < growthMinConsistency {
			continue
		}
		if m.PEGAverage == nil || *m.PEGAverage > growthMaxPEG {
			continue
		}
		matched = append(matched, snap)
	}

	sort.Slice(matched, func(i, j int) bool {
		mi, mj := byTicker[matched[i].Ticker], byTicker[matched[j].Ticker]
		ai := mi.RevenueGrowthAccelerating || mi.EarningsGrowthAccelerating
		aj := mj.RevenueGrowthAccelerating || mj.EarningsGrowthAccelerating
		if ai != aj {
			return ai
		}
		if mi.EarningsConsistencyScore != mj.EarningsConsistencyScore {
			return mi.EarningsConsistencyScore > mj.EarningsConsistencyScore
		}
		return *mi.PEGAverage < *mj.PEGAverage
	})

	if options.Limit > 0 && len(matched) > options.Limit {
		matched = matched[:options.Limit]
	}
	return matched, nil
}

// Ensure Service implements ScreenService
var _ interfaces.ScreenService = (*Service)(nil)
