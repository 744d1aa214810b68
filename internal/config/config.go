// Package config resolves runtime settings from the environment.
//
// A .env file in the working directory is loaded first (missing files are fine), then
// the PROTEST_*, VWORLD_KEY and TELEGRAM_* variables are read. Command-line flags default to these
// values, so an explicit flag always wins.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvVWorldKey    = "VWORLD_KEY"
	EnvDataDir      = "PROTEST_DATA_DIR"
	EnvLogLevel     = "PROTEST_LOG_LEVEL"
	EnvListenAddr   = "PROTEST_LISTEN_ADDR"
	EnvGeocodeDelay = "PROTEST_GEOCODE_DELAY"
	EnvTelegramBot  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChat = "TELEGRAM_CHAT_ID"

	DefaultDataDir      = "data"
	DefaultLogLevel     = "info"
	DefaultListenAddr   = ":8000"
	DefaultGeocodeDelay = 150 * time.Millisecond
)

// Config holds settings shared by every command
type Config struct {
	VWorldKey    string
	DataDir      string
	LogLevel     string
	ListenAddr   string
	GeocodeDelay time.Duration
	TelegramBot  string
	TelegramChat string
}

// Load reads .env (if present) and the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		VWorldKey:    os.Getenv(EnvVWorldKey),
		DataDir:      getenv(EnvDataDir, DefaultDataDir),
		LogLevel:     getenv(EnvLogLevel, DefaultLogLevel),
		ListenAddr:   getenv(EnvListenAddr, DefaultListenAddr),
		GeocodeDelay: getDuration(EnvGeocodeDelay, DefaultGeocodeDelay),
		TelegramBot:  os.Getenv(EnvTelegramBot),
		TelegramChat: os.Getenv(EnvTelegramChat),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("150ms") or plain seconds ("0.15")
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
