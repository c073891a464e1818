package app

import (
	"context"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/robfig/cron/v3"
)

// refreshTimeout bounds one scheduled run. Slow upstream responses should
// never let runs pile up across schedule ticks.
const refreshTimeout = 30 * time.Minute

// scheduler drives periodic stock and macro refreshes from cron expressions.
// An empty schedule disables that job.
type scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
}

func newScheduler(a *App, logger *common.Logger) (*scheduler, error) {
	c := cron.New()

	if expr := a.Config.Refresh.StockSchedule; expr != "" {
		if _, err := c.AddFunc(expr, func() { refreshStoredStocks(a, logger) }); err != nil {
			return nil, err
		}
		logger.Info().Str("schedule", expr).Msg("Stock refresh scheduled")
	}

	if expr := a.Config.Refresh.MacroSchedule; expr != "" {
		if _, err := c.AddFunc(expr, func() { refreshMacro(a, logger) }); err != nil {
			return nil, err
		}
		logger.Info().Str("schedule", expr).Msg("Macro refresh scheduled")
	}

	return &scheduler{cron: c, logger: logger}, nil
}

func (s *scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// refreshStoredStocks re-runs the collection pipeline for every stored
// ticker. Freshness TTLs keep this cheap when nothing is stale.
func refreshStoredStocks(a *App, logger *common.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	tickers, err := a.Storage.StockStore().ListTickers(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Scheduled refresh: ticker list failed")
		return
	}
	if len(tickers) == 0 {
		return
	}

	var failed int
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			logger.Warn().Msg("Scheduled refresh: timed out")
			break
		}
		if _, err := a.StockService.RefreshStock(ctx, ticker, false); err != nil {
			logger.Warn().Err(err).Str("ticker", ticker).Msg("Scheduled refresh: ticker failed")
			failed++
		}
	}

	logger.Info().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled stock refresh complete")
}

func refreshMacro(a *App, logger *common.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if _, err := a.MacroService.RefreshMacro(ctx, false); err != nil {
		logger.Warn().Err(err).Msg("Scheduled macro refresh failed")
		return
	}
	logger.Info().Msg("Scheduled macro refresh complete")
}
