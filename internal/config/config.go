package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Sentiment SentimentConfig `yaml:"sentiment" mapstructure:"sentiment"`
	Feeds     FeedsConfig     `yaml:"feeds" mapstructure:"feeds"`
	Financial FinancialConfig `yaml:"financial" mapstructure:"financial"`
	Monitors  MonitorsConfig  `yaml:"monitors" mapstructure:"monitors"`
	Companies []string        `yaml:"companies" mapstructure:"companies"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`

	// KeywordsFile optionally replaces the built-in trigger keyword table.
	KeywordsFile string `yaml:"keywords_file" mapstructure:"keywords_file"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchConfig configures the HTTP fetch layer shared by all monitors.
type FetchConfig struct {
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	ItemsPerFeed  int     `yaml:"items_per_feed" mapstructure:"items_per_feed"`
	MaxContentLen int     `yaml:"max_content_len" mapstructure:"max_content_len"`
}

// SentimentConfig selects the sentiment engine. "vader" uses the govader
// lexicon model; "keywords" forces the deterministic keyword fallback.
type SentimentConfig struct {
	Engine string `yaml:"engine" mapstructure:"engine"`
}

// FeedsConfig maps source names to RSS feed URLs per monitor.
type FeedsConfig struct {
	News       map[string]string `yaml:"news" mapstructure:"news"`
	Regulatory map[string]string `yaml:"regulatory" mapstructure:"regulatory"`
	Tender     map[string]string `yaml:"tender" mapstructure:"tender"`
}

// FinancialConfig holds the pages and feeds the financial monitor scrapes.
type FinancialConfig struct {
	ScreenerURLs []string `yaml:"screener_urls" mapstructure:"screener_urls"`
	FilingsURL   string   `yaml:"filings_url" mapstructure:"filings_url"`
	FallbackFeed string   `yaml:"fallback_feed" mapstructure:"fallback_feed"`
	// JobsURL is a job board search URL with a %s placeholder for the
	// company name.
	JobsURL string `yaml:"jobs_url" mapstructure:"jobs_url"`
}

// MonitorsConfig holds the per-source monitor settings.
type MonitorsConfig struct {
	News       MonitorConfig `yaml:"news" mapstructure:"news"`
	Regulatory MonitorConfig `yaml:"regulatory" mapstructure:"regulatory"`
	Tender     MonitorConfig `yaml:"tender" mapstructure:"tender"`
	Financial  MonitorConfig `yaml:"financial" mapstructure:"financial"`
}

// MonitorConfig configures a single source monitor. Reliability feeds the
// trigger scorer (0-1). FlipAdverseSentiment inverts polarity for
// high-severity third-party alerts: their bad news is an opportunity for
// the monitored business.
type MonitorConfig struct {
	Enabled              bool    `yaml:"enabled" mapstructure:"enabled"`
	IntervalHours        int     `yaml:"interval_hours" mapstructure:"interval_hours"`
	Reliability          float64 `yaml:"reliability" mapstructure:"reliability"`
	FlipAdverseSentiment bool    `yaml:"flip_adverse_sentiment" mapstructure:"flip_adverse_sentiment"`
}

// ServerConfig configures the read-only JSON API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRIGGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "triggers.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 0.5)
	v.SetDefault("fetch.user_agent", "trigger-cli/1.0")
	v.SetDefault("fetch.items_per_feed", 20)
	v.SetDefault("fetch.max_content_len", 500)
	v.SetDefault("sentiment.engine", "vader")
	v.SetDefault("monitors.news.enabled", true)
	v.SetDefault("monitors.news.interval_hours", 4)
	v.SetDefault("monitors.news.reliability", 0.7)
	v.SetDefault("monitors.regulatory.enabled", true)
	v.SetDefault("monitors.regulatory.interval_hours", 24)
	v.SetDefault("monitors.regulatory.reliability", 0.85)
	v.SetDefault("monitors.regulatory.flip_adverse_sentiment", true)
	v.SetDefault("monitors.tender.enabled", true)
	v.SetDefault("monitors.tender.interval_hours", 12)
	v.SetDefault("monitors.tender.reliability", 0.8)
	v.SetDefault("monitors.financial.enabled", true)
	v.SetDefault("monitors.financial.interval_hours", 168)
	v.SetDefault("monitors.financial.reliability", 0.6)
	v.SetDefault("feeds.news", DefaultNewsFeeds())
	v.SetDefault("feeds.regulatory", DefaultRegulatoryFeeds())
	v.SetDefault("feeds.tender", DefaultTenderFeeds())
	v.SetDefault("financial.screener_urls", []string{
		"https://www.screener.in/screens/71/pharma-companies/",
		"https://www.screener.in/screens/23505/pharma-companies/",
	})
	v.SetDefault("financial.filings_url", "https://www.bseindia.com/corporates/ann.html")
	v.SetDefault("financial.fallback_feed", "https://www.moneycontrol.com/rss/pharma.xml")
	v.SetDefault("financial.jobs_url", "https://www.naukri.com/%s-pharmaceutical-jobs")
	v.SetDefault("companies", DefaultCompanies())

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// LoadKeywordsFile reads a category -> phrases table from a YAML file.
func LoadKeywordsFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read keywords file %s", path)
	}

	var keywords map[string][]string
	if err := yaml.Unmarshal(data, &keywords); err != nil {
		return nil, eris.Wrapf(err, "config: parse keywords file %s", path)
	}
	if len(keywords) == 0 {
		return nil, eris.Errorf("config: keywords file %s is empty", path)
	}
	return keywords, nil
}

// DefaultNewsFeeds returns the built-in pharma news RSS feeds.
func DefaultNewsFeeds() map[string]string {
	return map[string]string{
		"pharmabiz":             "http://www.pharmabiz.com/RSSFeed.aspx",
		"business_standard":     "https://www.business-standard.com/rss/companies/pharma-172.rss",
		"moneycontrol_pharma":   "https://www.moneycontrol.com/rss/pharma.xml",
		"economic_times_pharma": "https://economictimes.indiatimes.com/industry/healthcare/biotech/pharmaceuticals/rssfeeds/13357808.cms",
		"livemint_pharma":       "https://www.livemint.com/rss/companies/pharma",
	}
}

// DefaultRegulatoryFeeds returns feeds scanned for approvals, alerts, and
// patent news.
func DefaultRegulatoryFeeds() map[string]string {
	return map[string]string{
		"fda_press":     "https://www.fda.gov/about-fda/contact-fda/stay-informed/rss-feeds/press-releases/rss.xml",
		"fda_medwatch":  "https://www.fda.gov/about-fda/contact-fda/stay-informed/rss-feeds/medwatch/rss.xml",
		"pharmabiz_reg": "http://www.pharmabiz.com/RSSFeed.aspx",
	}
}

// DefaultTenderFeeds returns feeds scanned for tender and procurement news.
func DefaultTenderFeeds() map[string]string {
	return map[string]string{
		"et_pharma": "https://economictimes.indiatimes.com/industry/healthcare/biotech/pharmaceuticals/rssfeeds/13357808.cms",
		"bs_pharma": "https://www.business-standard.com/rss/companies/pharma-172.rss",
		"livemint":  "https://www.livemint.com/rss/companies/pharma",
		"pharmabiz": "http://www.pharmabiz.com/RSSFeed.aspx",
	}
}

// DefaultCompanies returns the pharma companies tracked for focused monitoring.
func DefaultCompanies() []string {
	return []string{
		"Sun Pharma",
		"Cipla",
		"Dr Reddy's",
		"Lupin",
		"Aurobindo Pharma",
		"Zydus Lifesciences",
		"Torrent Pharma",
		"Alkem Labs",
		"Glenmark",
		"Biocon",
		"Mankind Pharma",
		"Ipca Labs",
		"Ajanta Pharma",
		"Natco Pharma",
		"Laurus Labs",
	}
}

// MonitorFor returns the monitor settings for a source type name.
func (m MonitorsConfig) MonitorFor(sourceType string) MonitorConfig {
	switch sourceType {
	case "news":
		return m.News
	case "regulatory":
		return m.Regulatory
	case "tender":
		return m.Tender
	case "financial":
		return m.Financial
	default:
		return MonitorConfig{Reliability: 0.5}
	}
}
