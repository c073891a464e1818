// Package storage wires the concrete storage backends behind the
// interfaces.StorageManager contract.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/storage/badger"
)

// Manager owns the BadgerHold store and exposes typed accessors for each
// entity, plus a raw file area for rendered artifacts such as charts.
type Manager struct {
	store    *badger.Store
	dataPath string
	logger   *common.Logger

	stocks     interfaces.StockStore
	financials interfaces.FinancialStore
	prices     interfaces.PriceStore
	metrics    interfaces.MetricsStore
	technical  interfaces.TechnicalStore
	macro      interfaces.MacroStore
	watchlists interfaces.WatchlistStore
	portfolio  interfaces.PortfolioStore
	jobs       interfaces.JobStore
}

// NewManager opens the BadgerHold database under dataPath/badger and
// constructs all entity storages.
func NewManager(logger *common.Logger, dataPath string) (*Manager, error) {
	if dataPath == "" {
		dataPath = "./data"
	}
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data path %s: %w", dataPath, err)
	}

	store, err := badger.NewStore(logger, filepath.Join(absPath, "badger"))
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:    store,
		dataPath: absPath,
		logger:   logger,
	}
	m.stocks = badger.NewStockStorage(store, logger)
	m.financials = badger.NewFinancialStorage(store, logger)
	m.prices = badger.NewPriceStorage(store, logger)
	m.metrics = badger.NewMetricsStorage(store, logger)
	m.technical = badger.NewTechnicalStorage(store, logger)
	m.macro = badger.NewMacroStorage(store, logger)
	m.watchlists = badger.NewWatchlistStorage(store, logger)
	m.portfolio = badger.NewPortfolioStorage(store, logger)
	m.jobs = badger.NewJobStorage(store, logger)

	logger.Info().Str("path", absPath).Msg("Storage manager initialized")
	return m, nil
}

func (m *Manager) StockStore() interfaces.StockStore         { return m.stocks }
func (m *Manager) FinancialStore() interfaces.FinancialStore { return m.financials }
func (m *Manager) PriceStore() interfaces.PriceStore         { return m.prices }
func (m *Manager) MetricsStore() interfaces.MetricsStore     { return m.metrics }
func (m *Manager) TechnicalStore() interfaces.TechnicalStore { return m.technical }
func (m *Manager) MacroStore() interfaces.MacroStore         { return m.macro }
func (m *Manager) WatchlistStore() interfaces.WatchlistStore { return m.watchlists }
func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return m.portfolio }
func (m *Manager) JobStore() interfaces.JobStore             { return m.jobs }

// DataPath returns the base data directory.
func (m *Manager) DataPath() string {
	return m.dataPath
}

// WriteRaw writes data to dataPath/subdir/key atomically via a temp file
// rename. The key is sanitized so tickers and series IDs make safe filenames.
func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(m.dataPath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	target := filepath.Join(dir, sanitizeFilename(key))
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file to %s: %w", target, err)
	}

	m.logger.Debug().Str("file", target).Int("bytes", len(data)).Msg("Raw file written")
	return nil
}

// Close closes all storage backends, returning the first error.
func (m *Manager) Close() error {
	return m.store.Close()
}

// sanitizeFilename replaces characters unsafe for filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	cleaned := replacer.Replace(name)
	if cleaned == "" || strings.HasPrefix(cleaned, ".") {
		cleaned = "_" + strings.TrimPrefix(cleaned, ".")
	}
	return cleaned
}

var _ interfaces.StorageManager = (*Manager)(nil)
