package config

import (
	"fmt"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverBunt     = "buntdb"
	StorageDriverPostgres = "postgres"
)

type Config struct {
	Log       Logger         `mapstructure:"logger"`
	API       API            `mapstructure:"api"`
	Storage   Storage        `mapstructure:"storage"`
	DB        Database       `mapstructure:"database"`
	Cache     Cache          `mapstructure:"cache"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
	CoinGecko CoinGecko      `mapstructure:"coingecko"`
	News      News           `mapstructure:"news"`
	Gemini    Gemini         `mapstructure:"gemini"`
	Alert     Alert          `mapstructure:"alert"`
}

type Logger struct {
	Level    string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Encoding string `mapstructure:"encoding" validate:"required,oneof=json console"`
}

type API struct {
	Port int `mapstructure:"port" validate:"gt=0,lt=65536"`
}

type Storage struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=buntdb postgres"`
	BuntPath string `mapstructure:"bunt_path" validate:"required_if=Driver buntdb"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	PriceTTL          time.Duration `mapstructure:"price_ttl"`
	TelegramStateTTL  time.Duration `mapstructure:"telegram_state_ttl"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token" validate:"required"`
	ChatID                    string        `mapstructure:"chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	PollTimeout               time.Duration `mapstructure:"poll_timeout"`
	HandlerTimeout            time.Duration `mapstructure:"handler_timeout"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second" validate:"gt=0"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second" validate:"gt=0"`
	RatelimitExpireDuration   time.Duration `mapstructure:"ratelimit_expire_duration"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
	ChatHistorySize           int           `mapstructure:"chat_history_size"`
}

type CoinGecko struct {
	BaseURL             string        `mapstructure:"base_url" validate:"required,url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" validate:"gt=0"`
}

type News struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Limit   int           `mapstructure:"limit" validate:"gt=0"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseModel           string        `mapstructure:"base_model" validate:"required"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" validate:"gt=0"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute" validate:"gt=0"`
	MaxOutputTokens     int32         `mapstructure:"max_output_tokens"`
	Temperature         float32       `mapstructure:"temperature"`
}

type Alert struct {
	Interval        time.Duration `mapstructure:"interval" validate:"gt=0"`
	CycleTimeout    time.Duration `mapstructure:"cycle_timeout" validate:"gt=0"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
	NotifyTimeout   time.Duration `mapstructure:"notify_timeout" validate:"gt=0"`
	DefaultTimezone string        `mapstructure:"default_timezone"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("api.port", 8080)
	v.SetDefault("storage.driver", StorageDriverBunt)
	v.SetDefault("storage.bunt_path", "cryptiq.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "cryptiq")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.time_zone", "UTC")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.log_level", "Warn")
	v.SetDefault("cache.default_expiration", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)
	v.SetDefault("cache.price_ttl", 30*time.Second)
	v.SetDefault("cache.telegram_state_ttl", 30*time.Minute)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("telegram.poll_timeout", 10*time.Second)
	v.SetDefault("telegram.handler_timeout", 2*time.Minute)
	v.SetDefault("telegram.max_global_request_per_second", 30)
	v.SetDefault("telegram.max_user_request_per_second", 1)
	v.SetDefault("telegram.ratelimit_expire_duration", 10*time.Minute)
	v.SetDefault("telegram.rate_limit_cleanup_duration", 5*time.Minute)
	v.SetDefault("telegram.chat_history_size", 5)
	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.api_key", "")
	v.SetDefault("coingecko.timeout", 10*time.Second)
	v.SetDefault("coingecko.max_request_per_minute", 30)
	v.SetDefault("news.base_url", "https://min-api.cryptocompare.com")
	v.SetDefault("news.timeout", 10*time.Second)
	v.SetDefault("news.limit", 5)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout", 30*time.Second)
	v.SetDefault("gemini.max_request_per_minute", 15)
	v.SetDefault("gemini.max_token_per_minute", 250000)
	v.SetDefault("gemini.max_output_tokens", 500)
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("alert.interval", 60*time.Second)
	v.SetDefault("alert.cycle_timeout", 50*time.Second)
	v.SetDefault("alert.fetch_timeout", 15*time.Second)
	v.SetDefault("alert.notify_timeout", 5*time.Second)
	v.SetDefault("alert.default_timezone", "US/Pacific")
}

// Load reads .env, config.yaml and the environment, in that order of precedence
// (environment wins).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := goValidator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
