// backend-go/internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Inventory InventoryConfig
	Kafka     KafkaConfig
	Export    ExportConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL                    string
	Host                   string
	Port                   string
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
	MaxConcurrentTx        int64
}

// DSN returns DB_URL when set, otherwise a key/value connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type CacheConfig struct {
	Enabled                bool
	RedisURL               string
	RedisHost              string
	RedisPort              string
	RedisPassword          string
	RedisDB                int
	ShoppingListTTLSeconds int
}

type InventoryConfig struct {
	HorizonDays     int
	LookbackDays    int
	CommonTermsFile string
	LockTTLSeconds  int
	LockRetries     int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type ExportConfig struct {
	Enabled          bool
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	Region           string
	UseSSL           bool
	Prefix           string
	DecimalSeparator string
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		setDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = fromViper(v)
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cleanops")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	v.SetDefault("DB_MAX_CONCURRENT_TX", 10)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_SHOPPING_LIST_TTL_SECONDS", 300)

	v.SetDefault("INVENTORY_HORIZON_DAYS", 21)
	v.SetDefault("INVENTORY_LOOKBACK_DAYS", 30)
	v.SetDefault("NORMALIZER_COMMON_TERMS_FILE", "")
	v.SetDefault("LOCK_TTL_SECONDS", 10)
	v.SetDefault("LOCK_RETRIES", 3)

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA_TOPIC", "operations.events")
	v.SetDefault("KAFKA_GROUP_ID", "supply-inventory")

	v.SetDefault("EXPORT_ENABLED", false)
	v.SetDefault("EXPORT_ENDPOINT", "localhost:9000")
	v.SetDefault("EXPORT_ACCESS_KEY", "")
	v.SetDefault("EXPORT_SECRET_KEY", "")
	v.SetDefault("EXPORT_BUCKET", "inventory-exports")
	v.SetDefault("EXPORT_REGION", "")
	v.SetDefault("EXPORT_USE_SSL", false)
	v.SetDefault("EXPORT_PREFIX", "exports")
	v.SetDefault("EXPORT_DECIMAL_SEPARATOR", ",")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: splitList(v.GetStringSlice("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:                    v.GetString("DB_URL"),
			Host:                   v.GetString("DB_HOST"),
			Port:                   v.GetString("DB_PORT"),
			User:                   v.GetString("DB_USER"),
			Password:               v.GetString("DB_PASSWORD"),
			DBName:                 v.GetString("DB_NAME"),
			SSLMode:                v.GetString("DB_SSLMODE"),
			MaxOpenConns:           v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:           v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeMinutes: v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES"),
			MaxConcurrentTx:        v.GetInt64("DB_MAX_CONCURRENT_TX"),
		},
		Cache: CacheConfig{
			Enabled:                v.GetBool("CACHE_ENABLED"),
			RedisURL:               v.GetString("REDIS_URL"),
			RedisHost:              v.GetString("REDIS_HOST"),
			RedisPort:              v.GetString("REDIS_PORT"),
			RedisPassword:          v.GetString("REDIS_PASSWORD"),
			RedisDB:                v.GetInt("REDIS_DB"),
			ShoppingListTTLSeconds: v.GetInt("CACHE_SHOPPING_LIST_TTL_SECONDS"),
		},
		Inventory: InventoryConfig{
			HorizonDays:     v.GetInt("INVENTORY_HORIZON_DAYS"),
			LookbackDays:    v.GetInt("INVENTORY_LOOKBACK_DAYS"),
			CommonTermsFile: v.GetString("NORMALIZER_COMMON_TERMS_FILE"),
			LockTTLSeconds:  v.GetInt("LOCK_TTL_SECONDS"),
			LockRetries:     v.GetInt("LOCK_RETRIES"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: splitList(v.GetStringSlice("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		Export: ExportConfig{
			Enabled:          v.GetBool("EXPORT_ENABLED"),
			Endpoint:         v.GetString("EXPORT_ENDPOINT"),
			AccessKey:        v.GetString("EXPORT_ACCESS_KEY"),
			SecretKey:        v.GetString("EXPORT_SECRET_KEY"),
			Bucket:           v.GetString("EXPORT_BUCKET"),
			Region:           v.GetString("EXPORT_REGION"),
			UseSSL:           v.GetBool("EXPORT_USE_SSL"),
			Prefix:           v.GetString("EXPORT_PREFIX"),
			DecimalSeparator: v.GetString("EXPORT_DECIMAL_SEPARATOR"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// splitList accepts both "a,b" and "a b" from the environment.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
