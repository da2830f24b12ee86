package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverHybrid = "hybrid"
)

type AppCfg struct {
	Port string `mapstructure:"port" yaml:"port"`
	Env  string `mapstructure:"env" yaml:"env"`
}

type StoreCfg struct {
	Driver     string `mapstructure:"driver" yaml:"driver"`
	Namespace  string `mapstructure:"namespace" yaml:"namespace"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

type RedisCfg struct {
	URL string        `mapstructure:"url" yaml:"url"`
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type MongoCfg struct {
	URL        string `mapstructure:"url" yaml:"url"`
	Database   string `mapstructure:"database" yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

type CacheCfg struct {
	L1Size int `mapstructure:"l1_size" yaml:"l1_size"`
}

type MeiliCfg struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	URL     string        `mapstructure:"url" yaml:"url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Index   string        `mapstructure:"index" yaml:"index"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type WorkerCfg struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// Config is the whole service configuration.
type Config struct {
	App         AppCfg    `mapstructure:"app" yaml:"app"`
	Store       StoreCfg  `mapstructure:"store" yaml:"store"`
	Redis       RedisCfg  `mapstructure:"redis" yaml:"redis"`
	Mongo       MongoCfg  `mapstructure:"mongo" yaml:"mongo"`
	Cache       CacheCfg  `mapstructure:"cache" yaml:"cache"`
	Meilisearch MeiliCfg  `mapstructure:"meilisearch" yaml:"meilisearch"`
	Worker      WorkerCfg `mapstructure:"worker" yaml:"worker"`
}

// IsProduction reports whether app.env is "production".
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads config from path (or ./config/app.yaml, ./app.yaml when empty),
// then PRICE_TRACKER_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("app")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PRICE_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.namespace", "precio_justo_")
	v.SetDefault("store.sqlite_path", "price-tracker.db")
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.ttl", time.Duration(0))
	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "price_tracker")
	v.SetDefault("mongo.collection", "kv")
	v.SetDefault("cache.l1_size", 10000)
	v.SetDefault("meilisearch.enabled", false)
	v.SetDefault("meilisearch.url", "http://localhost:7700")
	v.SetDefault("meilisearch.api_key", "")
	v.SetDefault("meilisearch.index", "products")
	v.SetDefault("meilisearch.timeout", 5*time.Second)
	v.SetDefault("worker.interval", time.Hour)
}

// Validate rejects unknown drivers and nonsensical sizes.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverRedis, DriverMongo, DriverHybrid:
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Cache.L1Size <= 0 {
		return fmt.Errorf("config: cache.l1_size must be positive, got %d", c.Cache.L1Size)
	}
	if c.Worker.Interval <= 0 {
		return fmt.Errorf("config: worker.interval must be positive, got %s", c.Worker.Interval)
	}
	return nil
}
