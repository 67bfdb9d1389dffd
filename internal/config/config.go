// internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Sync     SyncConfig
	Source   SourceConfig
	Digest   DigestConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

// SyncConfig controls the metrics refresh behavior. The freshness window and
// page guard are process-wide knobs injected at construction, not hidden
// module constants.
type SyncConfig struct {
	FreshnessWindow   time.Duration
	MaxPagesPerFetch  int
	HistoryWindowDays int
}

type SourceConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenURL     string
	PageSize     int
	Timeout      time.Duration
}

type DigestConfig struct {
	Enabled  bool
	Schedule string
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "stockpilot")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("SYNC_FRESHNESS_MINUTES", 30)
		viper.SetDefault("SYNC_MAX_PAGES_PER_FETCH", 25)
		viper.SetDefault("SYNC_HISTORY_WINDOW_DAYS", 90)
		viper.SetDefault("SOURCE_BASE_URL", "")
		viper.SetDefault("SOURCE_CLIENT_ID", "")
		viper.SetDefault("SOURCE_CLIENT_SECRET", "")
		viper.SetDefault("SOURCE_TOKEN_URL", "")
		viper.SetDefault("SOURCE_PAGE_SIZE", 250)
		viper.SetDefault("SOURCE_TIMEOUT_SECONDS", 30)
		viper.SetDefault("DIGEST_ENABLED", false)
		viper.SetDefault("DIGEST_SCHEDULE", "0 7 * * *")
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "stockpilot-digests")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Sync: SyncConfig{
				FreshnessWindow:   time.Duration(viper.GetInt("SYNC_FRESHNESS_MINUTES")) * time.Minute,
				MaxPagesPerFetch:  viper.GetInt("SYNC_MAX_PAGES_PER_FETCH"),
				HistoryWindowDays: viper.GetInt("SYNC_HISTORY_WINDOW_DAYS"),
			},
			Source: SourceConfig{
				BaseURL:      viper.GetString("SOURCE_BASE_URL"),
				ClientID:     viper.GetString("SOURCE_CLIENT_ID"),
				ClientSecret: viper.GetString("SOURCE_CLIENT_SECRET"),
				TokenURL:     viper.GetString("SOURCE_TOKEN_URL"),
				PageSize:     viper.GetInt("SOURCE_PAGE_SIZE"),
				Timeout:      time.Duration(viper.GetInt("SOURCE_TIMEOUT_SECONDS")) * time.Second,
			},
			Digest: DigestConfig{
				Enabled:  viper.GetBool("DIGEST_ENABLED"),
				Schedule: viper.GetString("DIGEST_SCHEDULE"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
		}
	})

	return instance
}
