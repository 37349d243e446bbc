package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model. It captures the HTTP
// server, free-tier quota, provider credentials, mail, and storage settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	FreeTier FreeTierConfig `yaml:"freeTier"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	LLM      LLMConfig      `yaml:"llm"`
	Payment  PaymentConfig  `yaml:"payment"`
	Mail     MailConfig     `yaml:"mail"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metricsAddr"`
	// MaxUploadBytes caps archive uploads; 0 means 50 MiB.
	MaxUploadBytes int64 `yaml:"maxUploadBytes"`
}

type FreeTierConfig struct {
	// Cap is the most-recent-tweet quota for unpaid sessions.
	Cap int `yaml:"cap"`
}

type ScrapeConfig struct {
	BaseURL string `yaml:"baseURL"`
	// If empty, read from env SCRAPE_API_KEY.
	APIKey string `yaml:"apiKey"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai", "anthropic", or "none"
	Model    string `yaml:"model"`
	// If empty, read from env OPENAI_API_KEY or ANTHROPIC_API_KEY.
	APIKey string `yaml:"apiKey"`
}

type PaymentConfig struct {
	BaseURL string `yaml:"baseURL"`
	// If empty, read from env PAYMENT_API_KEY.
	APIKey string `yaml:"apiKey"`
	// WebhookSecret signs incoming webhook payloads. If empty, read from
	// env PAYMENT_WEBHOOK_SECRET.
	WebhookSecret string `yaml:"webhookSecret"`
	SuccessURL    string `yaml:"successURL"`
	CancelURL     string `yaml:"cancelURL"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
	// SessionTTLHours controls the purge job; 0 keeps sessions 72 hours.
	SessionTTLHours int `yaml:"sessionTTLHours"`
	// PurgeSpec is a cron expression for the purge schedule.
	PurgeSpec string `yaml:"purgeSpec"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080", MetricsAddr: ":9090"},
		FreeTier: FreeTierConfig{Cap: 100},
		Scrape:   ScrapeConfig{BaseURL: "https://api.scraper.example/v1"},
		LLM:      LLMConfig{Provider: "none", Model: "gpt-4o-mini"},
		Payment:  PaymentConfig{BaseURL: "https://api.checkout.example/v1"},
		Mail:     MailConfig{Enabled: false, Port: 587},
		Storage:  StorageConfig{DBPath: "./tweetlens.db", SessionTTLHours: 72, PurgeSpec: "@hourly"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Scrape.APIKey == "" {
		c.Scrape.APIKey = os.Getenv("SCRAPE_API_KEY")
	}
	if c.Payment.APIKey == "" {
		c.Payment.APIKey = os.Getenv("PAYMENT_API_KEY")
	}
	if c.Payment.WebhookSecret == "" {
		c.Payment.WebhookSecret = os.Getenv("PAYMENT_WEBHOOK_SECRET")
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if c.Mail.Password == "" {
		c.Mail.Password = os.Getenv("SMTP_PASSWORD")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	if cfg.FreeTier.Cap <= 0 {
		cfg.FreeTier.Cap = 100
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
