// Package app wires configuration, storage, clients, and services into a
// single application core shared by the server binary and tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/fathom/internal/clients/fred"
	"github.com/bobmcallan/fathom/internal/clients/yahoo"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/services/forecast"
	"github.com/bobmcallan/fathom/internal/services/macro"
	"github.com/bobmcallan/fathom/internal/services/screen"
	"github.com/bobmcallan/fathom/internal/services/stock"
	"github.com/bobmcallan/fathom/internal/services/technical"
	"github.com/bobmcallan/fathom/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	YahooClient      interfaces.YahooClient
	FREDClient       interfaces.FREDClient
	StockService     interfaces.StockService
	TechnicalService interfaces.TechnicalService
	ForecastService  interfaces.ForecastService
	MacroService     interfaces.MacroService
	ScreenService    interfaces.ScreenService
	StartupTime      time.Time

	scheduler *scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration: provided path, FATHOM_CONFIG, binary dir, then
	// the development fallback
	if configPath == "" {
		configPath = os.Getenv("FATHOM_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fathom.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fathom.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	if config.Clients.FRED.APIKey == "" {
		logger.Warn().Msg("FRED API key not configured - macro dashboard will be unavailable")
	}
	fredClient := fred.NewClient(config.Clients.FRED.APIKey,
		fred.WithBaseURL(config.Clients.FRED.BaseURL),
		fred.WithLogger(logger),
		fred.WithTimeout(config.Clients.FRED.GetTimeout()),
	)

	stockService := stock.NewService(yahooClient, storageManager, logger)
	technicalService := technical.NewService(yahooClient, storageManager, logger)
	forecastService := forecast.NewService(stockService, logger)
	macroService := macro.NewService(fredClient, storageManager, logger)
	screenService := screen.NewService(storageManager, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		YahooClient:      yahooClient,
		FREDClient:       fredClient,
		StockService:     stockService,
		TechnicalService: technicalService,
		ForecastService:  forecastService,
		MacroService:     macroService,
		ScreenService:    screenService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// StartScheduler launches the cron-driven background refresh jobs.
func (a *App) StartScheduler() error {
	s, err := newScheduler(a, a.Logger)
	if err != nil {
		return err
	}
	a.scheduler = s
	a.scheduler.Start()
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
