package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	PokeAPI  PokeAPIConfig  `mapstructure:"pokeapi"`
	Seeding  SeedingConfig  `mapstructure:"seeding"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Query    QueryConfig    `mapstructure:"query"`
}

type DatabaseConfig struct {
	// Driver is one of mysql, sqlite or postgres.
	Driver          string            `mapstructure:"driver" validate:"oneof=mysql sqlite postgres"`
	Path            string            `mapstructure:"path" validate:"required_if=Driver sqlite"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port" validate:"gte=0,lte=65535"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type PokeAPIConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MinInterval    time.Duration `mapstructure:"min_interval" validate:"gte=0"`
	MaxRetries     uint          `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"gte=0"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay" validate:"gte=0"`
}

type SeedingConfig struct {
	BatchSize       int    `mapstructure:"batch_size" validate:"gte=1"`
	GenerationsFile string `mapstructure:"generations_file" validate:"omitempty,yaml_file"`
}

type CacheConfig struct {
	// Backend is one of memory, redis, sql or none. PayloadTTL of zero
	// disables caching of upstream payloads.
	Backend            string        `mapstructure:"backend" validate:"oneof=memory redis sql none"`
	TTL                time.Duration `mapstructure:"ttl" validate:"gt=0"`
	PayloadTTL         time.Duration `mapstructure:"payload_ttl" validate:"gte=0"`
	OpTimeout          time.Duration `mapstructure:"op_timeout" validate:"gt=0"`
	Capacity           int           `mapstructure:"capacity" validate:"gte=1"`
	NumShards          int           `mapstructure:"num_shards" validate:"gte=1"`
	EvictionPercentage int           `mapstructure:"eviction_percentage" validate:"gte=1,lte=100"`
	Redis              RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueryConfig struct {
	DefaultPerPage int `mapstructure:"default_per_page" validate:"gte=1,ltefield=MaxPerPage"`
	MaxPerPage     int `mapstructure:"max_per_page" validate:"gte=1"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/pokedex")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "pokedex.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "pokedex")
	v.SetDefault("database.username", "user")
	v.SetDefault("pokeapi.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("pokeapi.user_agent", "pokedex-seeder/1.0")
	v.SetDefault("pokeapi.timeout", 30*time.Second)
	v.SetDefault("pokeapi.min_interval", 100*time.Millisecond)
	v.SetDefault("pokeapi.max_retries", 3)
	v.SetDefault("pokeapi.retry_base_delay", time.Second)
	v.SetDefault("pokeapi.retry_max_delay", 30*time.Second)
	v.SetDefault("seeding.batch_size", 10)
	v.SetDefault("seeding.generations_file", "")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.payload_ttl", 24*time.Hour)
	v.SetDefault("cache.op_timeout", 200*time.Millisecond)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.num_shards", 10)
	v.SetDefault("cache.eviction_percentage", 10)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("query.default_per_page", 20)
	v.SetDefault("query.max_per_page", 100)

	// Secrets are bound to environment variables only
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("cache.redis.password", "REDIS_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind REDIS_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("pokeapi.base_url", "POKEAPI_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind POKEAPI_BASE_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// Load is a shorthand for NewConfigLoader(configFile).Load().
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}
