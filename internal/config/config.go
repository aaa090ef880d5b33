package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	BaseHost    string `mapstructure:"BASE_HOST"`
	BaseScheme  string `mapstructure:"BASE_SCHEME"`
	TargetsFile string `mapstructure:"TARGETS_FILE"`

	StoreBackend string `mapstructure:"STORE_BACKEND"`
	SQLitePath   string `mapstructure:"SQLITE_PATH"`
	PostgresURL  string `mapstructure:"POSTGRES_URL"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`

	FetchTimeout  int `mapstructure:"FETCH_TIMEOUT"` // seconds, per fetch
	DetailWorkers int `mapstructure:"DETAIL_WORKERS"`
	ChunkLimit    int `mapstructure:"CHUNK_LIMIT"`

	TelegramBotToken  string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID    string `mapstructure:"TELEGRAM_CHAT_ID"`
	TelegramHardLimit int    `mapstructure:"TELEGRAM_HARD_LIMIT"`

	EmailSMTPServer  string `mapstructure:"EMAIL_SMTP_SERVER"`
	EmailSender      string `mapstructure:"EMAIL_SENDER"`
	EmailAppPassword string `mapstructure:"EMAIL_APP_PASSWORD"`
	EmailReceiver    string `mapstructure:"EMAIL_RECEIVER"`

	ScanIntervalHours int    `mapstructure:"SCAN_INTERVAL_HOURS"` // 0 = single run
	ServerPort        string `mapstructure:"SERVER_PORT"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables.
	_ = viper.ReadInConfig()

	viper.SetDefault("BASE_HOST", "www.olx.ro")
	viper.SetDefault("BASE_SCHEME", "https")
	viper.SetDefault("TARGETS_FILE", "target_urls.txt")
	viper.SetDefault("STORE_BACKEND", "sqlite")
	viper.SetDefault("SQLITE_PATH", "database.db")
	viper.SetDefault("POSTGRES_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("FETCH_TIMEOUT", 60)
	viper.SetDefault("DETAIL_WORKERS", 10)
	viper.SetDefault("CHUNK_LIMIT", 4000)
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("TELEGRAM_CHAT_ID", "")
	viper.SetDefault("TELEGRAM_HARD_LIMIT", 4096)
	viper.SetDefault("EMAIL_SMTP_SERVER", "")
	viper.SetDefault("EMAIL_SENDER", "")
	viper.SetDefault("EMAIL_APP_PASSWORD", "")
	viper.SetDefault("EMAIL_RECEIVER", "")
	viper.SetDefault("SCAN_INTERVAL_HOURS", 0)
	viper.SetDefault("SERVER_PORT", "8080")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store backend")
		}
	case "postgres":
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the postgres store backend")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be sqlite, postgres or redis, got %q", c.StoreBackend)
	}

	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	if c.EmailSMTPServer != "" {
		if c.EmailSender == "" || c.EmailAppPassword == "" || c.EmailReceiver == "" {
			return fmt.Errorf("EMAIL_SENDER, EMAIL_APP_PASSWORD and EMAIL_RECEIVER are required when EMAIL_SMTP_SERVER is set")
		}
	}
	if c.DetailWorkers < 1 {
		return fmt.Errorf("DETAIL_WORKERS must be a positive integer, got %d", c.DetailWorkers)
	}
	if c.ChunkLimit < 1 {
		return fmt.Errorf("CHUNK_LIMIT must be a positive integer, got %d", c.ChunkLimit)
	}
	return nil
}
