package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Store   StoreConfig
	Input   InputConfig
	Output  OutputConfig
	Scraper ScraperConfig
	Scoring ScoringConfig
	Brands  BrandsConfig
	Report  ReportConfig
	Logging LoggingConfig
}

type StoreConfig struct {
	Type        string
	Host        string
	Port        int
	User        string
	Password    string
	DialTimeout time.Duration
	LocalRoot   string
}

type InputConfig struct {
	Dir      string
	Filename string
}

type OutputConfig struct {
	ImageBaseDir string
}

type ScraperConfig struct {
	RequestTimeout time.Duration
	RequestDelay   time.Duration
	UserAgent      string
}

// ScoringConfig carries the empirically tuned heuristic weights used by the
// suggest matcher and the image extractor.
type ScoringConfig struct {
	HandleContainsSKU int
	SKUContainsHandle int
	TitleContainsSKU  int
	TokenInTitle      int
	TokenInHandle     int
	MinImageArea      int
	ImagePathBonus    int
}

// BrandsConfig extends the built-in brand table, e.g.
// BRAND_DOMAINS="ACME=www.acme.com,FOO BAR=shop.foobar.it".
type BrandsConfig struct {
	Domains string
}

type ReportConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			Type:        strings.ToLower(getEnvOrDefault("STORE_TYPE", "local")),
			Host:        getEnvOrDefault("FTP_HOST", "ftp.example.com"),
			Port:        getIntOrDefault("FTP_PORT", 21),
			User:        getEnvOrDefault("FTP_USER", "username"),
			Password:    getEnvOrDefault("FTP_PASS", "password"),
			DialTimeout: getDurationOrDefault("FTP_DIAL_TIMEOUT", 15*time.Second),
			LocalRoot:   getEnvOrDefault("LOCAL_STORE_ROOT", "./data"),
		},
		Input: InputConfig{
			Dir:      getEnvOrDefault("CSV_DIR", "/input"),
			Filename: getEnvOrDefault("CSV_FILENAME", "prodotti.csv"),
		},
		Output: OutputConfig{
			ImageBaseDir: getEnvOrDefault("IMG_BASE_DIR", "/images"),
		},
		Scraper: ScraperConfig{
			RequestTimeout: getDurationOrDefault("REQUEST_TIMEOUT", 20*time.Second),
			RequestDelay:   getDurationOrDefault("REQUEST_DELAY", 3*time.Second),
			UserAgent:      getEnvOrDefault("USER_AGENT", DefaultUserAgent),
		},
		Scoring: ScoringConfig{
			HandleContainsSKU: getIntOrDefault("SCORE_HANDLE_CONTAINS_SKU", 100),
			SKUContainsHandle: getIntOrDefault("SCORE_SKU_CONTAINS_HANDLE", 80),
			TitleContainsSKU:  getIntOrDefault("SCORE_TITLE_CONTAINS_SKU", 40),
			TokenInTitle:      getIntOrDefault("SCORE_TOKEN_IN_TITLE", 2),
			TokenInHandle:     getIntOrDefault("SCORE_TOKEN_IN_HANDLE", 1),
			MinImageArea:      getIntOrDefault("MIN_IMAGE_AREA", 40000),
			ImagePathBonus:    getIntOrDefault("IMAGE_PATH_BONUS", 100000),
		},
		Brands: BrandsConfig{
			Domains: getEnvOrDefault("BRAND_DOMAINS", ""),
		},
		Report: ReportConfig{
			Path: getEnvOrDefault("REPORT_PATH", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Type {
	case "ftp", "local":
	default:
		return fmt.Errorf("STORE_TYPE must be ftp or local, got %q", c.Store.Type)
	}

	if c.Store.Type == "ftp" && c.Store.Host == "" {
		return fmt.Errorf("FTP_HOST is required when STORE_TYPE=ftp")
	}

	if c.Input.Filename == "" {
		return fmt.Errorf("CSV_FILENAME must not be empty")
	}

	if c.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.Scraper.RequestDelay < 0 {
		return fmt.Errorf("REQUEST_DELAY cannot be negative")
	}

	if c.Scoring.MinImageArea < 0 {
		return fmt.Errorf("MIN_IMAGE_AREA cannot be negative")
	}

	return nil
}

// FTPAddr is host:port for the FTP dialer.
func (s StoreConfig) FTPAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
