package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 儲存 HTTP API 及外部相依的執行設定。
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	DB        DBConfig        `yaml:"db"`
	Auth      AuthConfig      `yaml:"auth"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Collector CollectorConfig `yaml:"collector"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DBConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
	Secret   string        `yaml:"secret"`
}

type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type CollectorConfig struct {
	UseSynthetic  bool          `yaml:"use_synthetic"`
	MarketDataURL string        `yaml:"market_data_url"`
	Interval      time.Duration `yaml:"interval"`
	NewsWindow    time.Duration `yaml:"news_window"`
	Workers       int           `yaml:"workers"`
}

// LoadFromFile 從 YAML 組態檔載入設定。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 30 * time.Minute
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = "dev-secret-change-me"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Collector.Interval == 0 {
		cfg.Collector.Interval = 30 * time.Minute
	}
	if cfg.Collector.NewsWindow == 0 {
		cfg.Collector.NewsWindow = 30 * time.Minute
	}
	if cfg.Collector.Workers == 0 {
		cfg.Collector.Workers = 3
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("HTTP_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("AUTH_SECRET"); val != "" {
		cfg.Auth.Secret = val
	}
	if val := os.Getenv("SMTP_SERVER"); val != "" {
		cfg.SMTP.Host = val
		cfg.SMTP.Enabled = true
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if val := os.Getenv("SMTP_USERNAME"); val != "" {
		cfg.SMTP.Username = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		cfg.SMTP.Password = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		cfg.SMTP.From = val
	}
	if val := os.Getenv("MARKET_DATA_URL"); val != "" {
		cfg.Collector.MarketDataURL = val
	}
	if val := os.Getenv("USE_SYNTHETIC"); val != "" {
		cfg.Collector.UseSynthetic = (val == "true")
	}
	if val := os.Getenv("COLLECT_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Collector.Interval = d
		}
	}
	if val := os.Getenv("NEWS_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Collector.NewsWindow = d
		}
	}
	if val := os.Getenv("COLLECT_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Collector.Workers = n
		}
	}
	return cfg
}
