package scraper

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences one scrape run. All values
// originate from Viper so the run can be configured via file, env vars, or
// CLI flags.
type Config struct {
	SearchURL     string
	ProductFilter string
	MaxPages      int
	PageDelay     time.Duration
	ExportPath    string
	ExportPrice   bool
	ArchiveDir    string
	ArchiveMax    int64
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		SearchURL:     v.GetString("scraper.search_url"),
		ProductFilter: v.GetString("scraper.product_filter"),
		MaxPages:      v.GetInt("scraper.max_pages"),
		PageDelay:     v.GetDuration("scraper.page_delay"),
		ExportPath:    v.GetString("export.path"),
		ExportPrice:   v.GetBool("export.include_price"),
		ArchiveDir:    v.GetString("archive.dir"),
		ArchiveMax:    v.GetInt64("archive.max_page_bytes"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.SearchURL == "" {
		return fmt.Errorf("scraper.search_url must be set")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("scraper.max_pages must be > 0")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("scraper.page_delay must be >= 0")
	}
	return nil
}
