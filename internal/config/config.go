package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"zezin-crm/client/internal/validation"
)

type Config struct {
	AppPort          int           `mapstructure:"APP_PORT" validate:"min=1,max=65535"`
	AssistantURL     string        `mapstructure:"ASSISTANT_URL" validate:"required,url"`
	StreamTransport  string        `mapstructure:"STREAM_TRANSPORT" validate:"oneof=sse websocket ndjson"`
	StoreBackend     string        `mapstructure:"STORE_BACKEND" validate:"oneof=sqlite redis memory"`
	DatabasePath     string        `mapstructure:"DATABASE_PATH" validate:"required_if=StoreBackend sqlite"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR" validate:"required_if=StoreBackend redis"`
	SessionKey       string        `mapstructure:"SESSION_KEY" validate:"required"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`
	RevealTick       time.Duration `mapstructure:"REVEAL_TICK" validate:"gt=0"`
	RevealStep       int           `mapstructure:"REVEAL_STEP" validate:"min=1"`
	FollowUpDelay    time.Duration `mapstructure:"FOLLOWUP_DELAY" validate:"gte=0"`
	FollowUpMinPairs int           `mapstructure:"FOLLOWUP_MIN_PAIRS" validate:"min=1"`
	ThreadListLimit  int           `mapstructure:"THREAD_LIST_LIMIT" validate:"min=1"`
	TitleMaxWidth    int           `mapstructure:"TITLE_MAX_WIDTH" validate:"min=8"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT" validate:"gt=0"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("ASSISTANT_URL", "http://localhost:8080")
	viper.SetDefault("STREAM_TRANSPORT", "sse")
	viper.SetDefault("STORE_BACKEND", "sqlite")
	viper.SetDefault("DATABASE_PATH", "./data/zezin.db")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("SESSION_KEY", "default")
	viper.SetDefault("SESSION_TTL", 12*time.Hour)
	viper.SetDefault("REVEAL_TICK", 20*time.Millisecond)
	viper.SetDefault("REVEAL_STEP", 3)
	viper.SetDefault("FOLLOWUP_DELAY", 1500*time.Millisecond)
	viper.SetDefault("FOLLOWUP_MIN_PAIRS", 2)
	viper.SetDefault("THREAD_LIST_LIMIT", 50)
	viper.SetDefault("TITLE_MAX_WIDTH", 40)
	viper.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.StreamTransport = strings.ToLower(strings.TrimSpace(cfg.StreamTransport))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the decoded values against the `validate` tags.
func (c *Config) Validate() error {
	if err := validation.Instance().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %s", validation.Describe(err))
	}
	return nil
}
