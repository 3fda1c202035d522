package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type ParkingConfig struct {
	RatePerHour string `mapstructure:"rate_per_hour"`
}

type QRCodeConfig struct {
	Dir     string `mapstructure:"dir"`
	URLPath string `mapstructure:"url_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Parking  ParkingConfig  `mapstructure:"parking"`
	QRCode   QRCodeConfig   `mapstructure:"qrcode"`
	Log      LogConfig      `mapstructure:"log"`
}

// DefaultRatePerHour is the hourly parking rate used when the configured
// rate is absent, malformed or negative.
var DefaultRatePerHour = decimal.RequireFromString("20.00")

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
// The database path is required; startup must fail when it is missing.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. PMS_SERVER_PORT=9000
		v.SetEnvPrefix("PMS") // parking management service
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		if c.Database.Path == "" {
			err = fmt.Errorf("database.path is required")
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

// ParseRate parses the configured hourly rate. Malformed or negative
// values fall back to DefaultRatePerHour with a logged warning; the
// returned value is fixed for the lifetime of the process.
func ParseRate(s string, log *zap.Logger) decimal.Decimal {
	trimmed := strings.TrimSpace(s)
	rate, err := decimal.NewFromString(trimmed)
	if err != nil {
		log.Warn("parking rate not set or invalid, using default",
			zap.String("rate", s),
			zap.String("default", DefaultRatePerHour.String()),
		)
		return DefaultRatePerHour
	}
	if rate.IsNegative() {
		log.Warn("parking rate is negative, using default",
			zap.String("rate", trimmed),
			zap.String("default", DefaultRatePerHour.String()),
		)
		return DefaultRatePerHour
	}
	return rate
}
