package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Debounce bounds for the persistence syncer.
const (
	MinDebounce = 500 * time.Millisecond
	MaxDebounce = 2 * time.Second
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address      string   `mapstructure:"address"`
	DefaultOwner string   `mapstructure:"default_owner"` // used when a request carries no token
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// StoreConfig selects the persistence backend: file, redis, mongo or postgres.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"` // empty disables publishing
	UseSSL          bool          `mapstructure:"use_ssl"`
	LinkExpiry      time.Duration `mapstructure:"link_expiry"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// SyncConfig tunes how edits are written back to the store.
type SyncConfig struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type CalendarConfig struct {
	StartTime string `mapstructure:"start_time"`
	ProdID    string `mapstructure:"prod_id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map onto env vars, e.g. store.backend -> STORE_BACKEND
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Every key needs a default for AutomaticEnv to reach it during Unmarshal.
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.default_owner", "local")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.data_dir", "./data")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "routine_builder")
	v.SetDefault("postgres.url", "postgres://localhost:5432/routine_builder?sslmode=disable")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "routine-builder")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.link_expiry", "15m")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("sync.debounce", "1s")
	v.SetDefault("sync.write_timeout", "10s")
	v.SetDefault("calendar.start_time", "09:00")
	v.SetDefault("calendar.prod_id", "-//RoutineBuilder//EN")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	err = v.ReadInConfig()
	// A missing file is fine, defaults and env vars still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	config.Sync.Debounce = ClampDebounce(config.Sync.Debounce)
	return config, nil
}

// ClampDebounce keeps the syncer delay within [MinDebounce, MaxDebounce].
func ClampDebounce(d time.Duration) time.Duration {
	if d < MinDebounce {
		return MinDebounce
	}
	if d > MaxDebounce {
		return MaxDebounce
	}
	return d
}
