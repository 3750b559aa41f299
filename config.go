package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration. All values have working
// dev defaults; a config.yaml next to the binary or SCRIBBLE_* environment
// variables override them.
type Config struct {
	Port     int            `mapstructure:"port"`
	Env      string         `mapstructure:"env"`
	Pepper   string         `mapstructure:"pepper"`
	HMACKey  string         `mapstructure:"hmac_key"`
	CSRFKey  string         `mapstructure:"csrf_key"`
	PageSize int            `mapstructure:"page_size"`
	Database PostgresConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// IsProd reports whether the app runs with the production environment set.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// ConnectionInfo builds the postgres connection string.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
			pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// LoadConfig reads the configuration via viper. In production a config file
// is required and the app refuses to start without one; in development the
// defaults are enough to run against a local postgres and redis.
func LoadConfig(prod bool) (Config, error) {
	v := viper.New()

	v.SetDefault("port", 8000)
	v.SetDefault("env", "dev")
	v.SetDefault("pepper", "secret-random-string")
	v.SetDefault("hmac_key", "secret-hmac-key")
	v.SetDefault("csrf_key", "32-byte-long-auth-key-for-csrf!!")
	v.SetDefault("page_size", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "scribble")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.cache_ttl", 20*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("scribble")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if prod {
			return Config{}, fmt.Errorf("a config.yaml is required in production: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if prod {
		c.Env = "prod"
	}
	return c, nil
}
