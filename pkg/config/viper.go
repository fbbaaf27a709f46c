// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"otowatch/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup to ensure that configuration is loaded and
// available to all other packages.
func InitConfig() {
	// --- Set Search Paths ---
	viper.SetConfigName("config")
	viper.AddConfigPath(".")               // Current working directory
	viper.AddConfigPath("/etc/otowatch/")  // System-wide configuration
	viper.AddConfigPath("$HOME/.otowatch") // User-specific configuration

	// --- Set Defaults ---
	// Set sensible defaults for key configuration parameters. These will be used
	// if the values are not provided in a config file or via environment variables.
	viper.SetDefault("scraper.search_url",
		"https://www.otomoto.pl/osobowe/ds-automobiles/7-crossback")
	viper.SetDefault("scraper.product_filter", "ds-7-crossback")
	viper.SetDefault("scraper.max_pages", 50)
	viper.SetDefault("scraper.page_delay", "2s")

	viper.SetDefault("fetch.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	viper.SetDefault("fetch.timeout", "15s")
	viper.SetDefault("fetch.retries", 3)
	viper.SetDefault("fetch.retry_delay", "5s")

	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.table", "listings")

	viper.SetDefault("export.path", "data/listings.csv")
	viper.SetDefault("export.include_price", false)

	viper.SetDefault("archive.dir", "data/pages")
	viper.SetDefault("archive.max_page_bytes", 5*1024*1024)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.addr", ":8080")

	viper.SetDefault("logging.development", false)

	// --- Environment Variables ---
	viper.SetEnvPrefix("OTOWATCH") // e.g., OTOWATCH_DATABASE_DSN=postgres://...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; this is not a fatal error if we can proceed
			// with defaults and environment variables.
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
