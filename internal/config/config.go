package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "America/Los_Angeles"
	configPathEnv     = "PIZZA_SCANNER_CONFIG"
	portEnv           = "PORT"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	upstreamURLEnv    = "UPSTREAM_URL"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	strategyEnv       = "EXTRACTOR_STRATEGY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Upstream      UpstreamConfig     `yaml:"upstream"`
	Extractor     ExtractorConfig    `yaml:"extractor"`
	Statistics    StatisticsConfig   `yaml:"statistics"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ServerConfig configures the inbound HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the SQL driver and connection.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
}

// UpstreamConfig describes the menu page.
type UpstreamConfig struct {
	URL               string        `yaml:"url"`
	UserAgent         string        `yaml:"userAgent"`
	CacheTTL          time.Duration `yaml:"cacheTTL"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
}

// ExtractorConfig names the extraction strategy.
type ExtractorConfig struct {
	Strategy string `yaml:"strategy"`
}

// StatisticsConfig tunes statistic writes.
type StatisticsConfig struct {
	Workers int `yaml:"workers"`
}

// SchedulerConfig defines when the menu is prefetched.
type SchedulerConfig struct {
	CronExpression string `yaml:"cronExpression"`
	Timezone       string `yaml:"timezone"`
}

// Location resolves the scheduler timezone. An empty timezone means the default one.
func (s SchedulerConfig) Location() (*time.Location, error) {
	tz := s.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", tz, err)
	}
	return loc, nil
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig selects log level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env and the YAML configuration (if present) and applies environment overrides.
// Unreadable files are reported and skipped.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()
	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides(os.Getenv)
	if _, err := cfg.Scheduler.Location(); err != nil {
		log.Printf("config: %v", err)
	}
	return cfg
}

// LoadFile merges the YAML file at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("merge %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(portEnv); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.Server.Addr = ":" + v
		} else {
			log.Printf("config: ignoring non-numeric %s=%q", portEnv, v)
		}
	}

	if v := getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := getenv(upstreamURLEnv); v != "" {
		c.Upstream.URL = v
	}

	if v := getenv(strategyEnv); v != "" {
		c.Extractor.Strategy = v
	}

	if v := getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":3000"},
		Database: DatabaseConfig{
			Driver:       "postgres",
			DSN:          "postgres://localhost:5432/arizmendi?sslmode=disable",
			MaxOpenConns: 10,
		},
		Upstream: UpstreamConfig{
			URL:               "http://arizmendi-valencia.squarespace.com/pizza/",
			UserAgent:         "PizzaScanner/1.0",
			CacheTTL:          time.Minute,
			RequestsPerMinute: 30,
		},
		Extractor:  ExtractorConfig{Strategy: "structural"},
		Statistics: StatisticsConfig{Workers: 4},
		Scheduler:  SchedulerConfig{CronExpression: "0 9 * * *", Timezone: defaultTimezone},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
	}
}
