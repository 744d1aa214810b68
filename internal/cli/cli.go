package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MinhaKim02/protest-crawling-database/internal/config"
	"github.com/MinhaKim02/protest-crawling-database/internal/geocode"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
	"github.com/MinhaKim02/protest-crawling-database/internal/region"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagDataDir      string
	flagVWorldKey    string
	flagNoGeocode    bool
	flagGeocodeDelay time.Duration
	flagLogLevel     string
	flagVerbose      bool
)

// NewRootCmd creates the root command. Flag defaults come from the environment
// (and .env), so an explicit flag always wins.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "protest-crawler",
		Short: "Collect and serve Seoul public assembly schedules",
		Long: `A CLI tool that scrapes the daily assembly schedules published by the
Seoul police, geocodes every place on the route and keeps one CSV snapshot per day.
Snapshots are reconciled across runs and served to a Kakao chatbot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&flagDataDir, "data-dir", cfg.DataDir, "Data directory for snapshots (env: "+config.EnvDataDir+")")
	flags.StringVar(&flagVWorldKey, "vworld-key", cfg.VWorldKey, "VWorld API key (env: "+config.EnvVWorldKey+")")
	flags.BoolVar(&flagNoGeocode, "no-geocode", false, "Skip geocoding")
	flags.DurationVar(&flagGeocodeDelay, "geocode-delay", cfg.GeocodeDelay, "Delay between geocoding requests (env: "+config.EnvGeocodeDelay+")")
	flags.StringVar(&flagLogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error (env: "+config.EnvLogLevel+")")
	flags.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newCollectCmd(),
		newIntegratedCmd(),
		newShowCmd(),
		newListCmd(),
		newNotifyCmd(cfg),
		newServeCmd(cfg.ListenAddr),
	)

	return cmd
}

func setupLogging() {
	level := logger.ParseLevel(flagLogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))
}

// newGeocoder returns nil when geocoding is disabled or no key is configured
func newGeocoder(area region.Area) geocode.Geocoder {
	if flagNoGeocode {
		logger.Info("Geocoding disabled", nil)
		return nil
	}
	if flagVWorldKey == "" {
		logger.Warn("No VWorld key configured; skipping geocoding", logger.Fields{
			"hint": "use --vworld-key or " + config.EnvVWorldKey,
		}, geocode.ErrNoKey)
		return nil
	}
	return geocode.NewVWorld(flagVWorldKey, area, flagGeocodeDelay)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
